package errorkinds

import (
	"errors"
	"strings"
)

// Kind describes the category of a tracking session error.
type Kind string

const (
	KindNone              Kind = ""
	KindInit              Kind = "init-error"
	KindPermissionMissing Kind = "permission-missing"
	KindInvalidArgument   Kind = "invalid-argument"
	KindEngine            Kind = "engine-error"
	KindPermissionDenied  Kind = "permission-denied"
)

var (
	ErrInit              = errors.New("tracking engine could not be initialized")
	ErrPermissionMissing = errors.New("motion tracking permission is missing")
	ErrInvalidArgument   = errors.New("tracking engine rejected the call arguments")
	ErrEngine            = errors.New("tracking engine reported an error")
	ErrPermissionDenied  = errors.New("motion tracking permission was denied")

	ErrInvalidState    = errors.New("operation is not allowed in the current session state")
	ErrStalePrompt     = errors.New("permission reply does not match the pending prompt")
	ErrSessionNotExist = errors.New("session does not exist")
	ErrMethodCall      = errors.New("method call is not supported")
)

// String converts a Kind to a string.
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}

	return string(k)
}

// Sentinel returns the sentinel error associated with the kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindInit:
		return ErrInit
	case KindPermissionMissing:
		return ErrPermissionMissing
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindEngine:
		return ErrEngine
	}

	return nil
}

// Fatal reports whether the kind ends a session.
func (k Kind) Fatal() bool {
	return k != KindNone && k != KindPermissionMissing
}

// Failure describes why a session entered the failed state.
type Failure struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`

	// Cause holds the error reported by the engine or prompter, if any.
	Cause error `json:"-"`
}

// NewFailure returns a new failure of the provided kind.
func NewFailure(kind Kind, reason string, cause error) *Failure {
	return &Failure{Kind: kind, Reason: reason, Cause: cause}
}

func (f *Failure) Error() string {
	sb := strings.Builder{}

	sb.WriteString(f.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(f.Reason)
	if f.Cause != nil {
		sb.WriteString(" (")
		sb.WriteString(f.Cause.Error())
		sb.WriteString(")")
	}

	return sb.String()
}

// Unwrap exposes both the kind's sentinel error and the underlying cause,
// so that errors.Is matches either.
func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := f.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if f.Cause != nil {
		errs = append(errs, f.Cause)
	}

	return errs
}

// KindOf classifies an error into a Kind. Errors that match no
// sentinel are classified as engine errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}

	switch {
	case errors.Is(err, ErrInit):
		return KindInit
	case errors.Is(err, ErrPermissionMissing):
		return KindPermissionMissing
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	}

	return KindEngine
}
