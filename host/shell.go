// Package host provides the host lifecycle shell: a single event loop that
// turns host lifecycle events and permission prompt replies into serialized
// calls on a tracking session.
package host

import (
	"context"
	"errors"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/ftag"
	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/tracking"
	"go.uber.org/zap"
)

// Event describes a host lifecycle event.
type Event string

const (
	EventCreate  Event = "create"
	EventResume  Event = "resume"
	EventPause   Event = "pause"
	EventDestroy Event = "destroy"
)

// EventQueueSize is the number of host events that can be posted ahead of the loop.
const EventQueueSize = 16

// ErrFeatureClosed is returned by Run when the tracking feature was closed
// because the user denied the permission.
var ErrFeatureClosed = errors.New("tracking feature closed")

// Session describes the session operations the shell drives.
type Session interface {
	tracking.Session
	ResolvePrompt(reply tracking.PromptReply) error
}

// Shell serializes host events and prompt replies onto a session.
type Shell struct {
	session Session
	replies <-chan tracking.PromptReply

	events chan Event
	done   chan struct{}

	log *zap.Logger
}

// NewShell returns a shell driving session. If prompter delivers its
// replies on a channel, the shell forwards them to the session.
func NewShell(session Session, prompter tracking.PermissionPrompter, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Shell{
		session: session,
		events:  make(chan Event, EventQueueSize),
		done:    make(chan struct{}),
		log:     log,
	}

	if replier, ok := prompter.(tracking.PromptReplier); ok {
		s.replies = replier.PromptReplies()
	}

	return s
}

// ParseEvent converts a string to an Event.
func ParseEvent(name string) (Event, error) {
	ev := Event(name)
	switch ev {
	case EventCreate, EventResume, EventPause, EventDestroy:
		return ev, nil
	}

	return "", fault.Wrap(errorkinds.ErrInvalidArgument,
		fctx.With(context.Background(), "event", name),
		ftag.With(ftag.InvalidArgument),
	)
}

// Post queues a host event for the loop.
func (s *Shell) Post(ctx context.Context, ev Event) error {
	select {
	case <-s.done:
		return errorkinds.ErrSessionNotExist

	default:
	}

	select {
	case s.events <- ev:
		return nil

	case <-s.done:
		return errorkinds.ErrSessionNotExist

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until the host is destroyed, the user denies the
// permission, or ctx is cancelled. The session is stopped in every case.
func (s *Shell) Run(ctx context.Context) error {
	defer close(s.done)

	for {
		// Answers already delivered are applied before the next host event.
		select {
		case reply := <-s.replies:
			if err := s.resolve(reply); err != nil {
				return err
			}
			continue

		default:
		}

		select {
		case <-ctx.Done():
			s.stop()
			return ctx.Err()

		case ev := <-s.events:
			if ev == EventDestroy {
				s.stop()
				return nil
			}

			if err := s.handle(string(ev), s.dispatch(ev)); err != nil {
				return err
			}

		case reply := <-s.replies:
			if err := s.resolve(reply); err != nil {
				return err
			}
		}
	}
}

func (s *Shell) resolve(reply tracking.PromptReply) error {
	s.log.Info("Permission prompt answered",
		zap.Stringer("request_id", reply.RequestID),
		zap.Stringer("result", reply.Result),
	)

	return s.handle("permission-result", s.session.ResolvePrompt(reply))
}

func (s *Shell) dispatch(ev Event) error {
	switch ev {
	case EventCreate:
		return s.session.Start()

	case EventResume:
		return s.session.OnForeground()

	case EventPause:
		return s.session.OnBackground()
	}

	return nil
}

func (s *Shell) handle(op string, err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, errorkinds.ErrInvalidState), errors.Is(err, errorkinds.ErrStalePrompt):
		s.log.Debug("Ignoring host event", zap.String("operation", op), zap.Error(err))
		return nil

	case errors.Is(err, errorkinds.ErrPermissionDenied):
		s.log.Warn("Motion tracking permission denied, closing tracking feature", zap.Error(err))
		s.stop()

		return errors.Join(ErrFeatureClosed, err)
	}

	s.log.Error("Tracking session failed", zap.String("operation", op), zap.Error(err))

	return nil
}

func (s *Shell) stop() {
	if err := s.session.Stop(); err != nil {
		s.log.Error("Cannot stop tracking session", zap.Error(err))
	}
}
