package platform

import (
	"context"
	"errors"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/tracking"
)

// ConsentMethod is the method called on the consent service interface.
// It takes the permission kind and the request ID, and returns whether
// the user granted the permission.
const ConsentMethod = "RequestPermission"

// DBusPrompter asks a consent service on the DBus session bus to prompt the user.
type DBusPrompter struct {
	obj    dbus.BusObject
	method string

	replies chan tracking.PromptReply
}

var _ tracking.PermissionPrompter = (*DBusPrompter)(nil)

// NewDBusPrompter returns a prompter calling service over conn. The service
// is expected at the object path derived from its name, for example
// "org.motiontrack.Consent" at "/org/motiontrack/Consent".
func NewDBusPrompter(conn *dbus.Conn, service string) (*DBusPrompter, error) {
	if conn == nil || service == "" {
		return nil, errorkinds.ErrInvalidArgument
	}

	path := ServicePath(service)
	if !path.IsValid() {
		return nil, errorkinds.ErrInvalidArgument
	}

	return newDBusPrompter(conn.Object(service, path), service), nil
}

func newDBusPrompter(obj dbus.BusObject, service string) *DBusPrompter {
	return &DBusPrompter{
		obj:     obj,
		method:  service + "." + ConsentMethod,
		replies: make(chan tracking.PromptReply, 1),
	}
}

// ServicePath returns the object path of a consent service.
func ServicePath(service string) dbus.ObjectPath {
	return dbus.ObjectPath("/" + strings.ReplaceAll(service, ".", "/"))
}

// Request calls the consent service in the background. A call that fails
// or outlives the request's timeout is answered as cancelled.
func (d *DBusPrompter) Request(req tracking.PromptRequest) error {
	go func() {
		defer req.Timeout.Cancel()

		ctx := req.Timeout.Context()

		var granted bool
		err := d.obj.CallWithContext(ctx, d.method, 0, req.Kind, req.ID.String()).Store(&granted)

		d.deliver(ctx, tracking.PromptReply{
			RequestID: req.ID,
			Result:    consentResult(granted, err),
		})
	}()

	return nil
}

// PromptReplies returns the channel the answers are delivered on.
func (d *DBusPrompter) PromptReplies() <-chan tracking.PromptReply {
	return d.replies
}

func (d *DBusPrompter) deliver(ctx context.Context, reply tracking.PromptReply) {
	select {
	case d.replies <- reply:
	case <-ctx.Done():
		// Nobody is waiting for an expired prompt; keep the reply only
		// if there is room for it.
		select {
		case d.replies <- reply:
		default:
		}
	}
}

func consentResult(granted bool, err error) tracking.PermissionResult {
	switch {
	case err != nil:
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) && strings.HasSuffix(dbusErr.Name, ".AccessDenied") {
			return tracking.PermissionDenied
		}

		return tracking.PermissionCancelled

	case granted:
		return tracking.PermissionGranted
	}

	return tracking.PermissionDenied
}
