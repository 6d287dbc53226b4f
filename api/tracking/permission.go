package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/motiontrack/api-native/api/errorkinds"
)

// PermissionPrompter describes an interface for asking the user to grant
// access to the tracking engine. Request must return immediately; the
// answer is delivered to the host, which forwards it to the session.
type PermissionPrompter interface {
	Request(req PromptRequest) error
}

// PromptReplier is implemented by prompters that deliver their answers
// on a channel the host can read from.
type PromptReplier interface {
	PromptReplies() <-chan PromptReply
}

// PromptTimeout describes a permission prompt timeout.
// The context value is created with 'context.WithTimeout()'.
type PromptTimeout struct {
	ctx    context.Context
	cancel context.CancelFunc
}

type PermissionResult string

const (
	PermissionGranted   PermissionResult = "granted"
	PermissionDenied    PermissionResult = "denied"
	PermissionCancelled PermissionResult = "cancelled"
)

// PromptRequest describes a single permission prompt.
type PromptRequest struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Kind      string    `json:"kind"`

	Timeout PromptTimeout `json:"-"`
}

// PromptReply describes the answer to a permission prompt.
type PromptReply struct {
	RequestID uuid.UUID        `json:"request_id"`
	Result    PermissionResult `json:"result"`
}

// NewPromptTimeout returns a new prompt timeout token.
// A zero timeout returns a token that only expires when cancelled.
func NewPromptTimeout(timeout time.Duration) PromptTimeout {
	if timeout <= 0 {
		ctx, cancel := context.WithCancel(context.Background())
		return PromptTimeout{ctx, cancel}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	return PromptTimeout{ctx, cancel}
}

// Context returns the inner context.
func (p PromptTimeout) Context() context.Context {
	if p.ctx == nil {
		return context.Background()
	}

	return p.ctx
}

// Done returns the inner context's Done() channel.
func (p PromptTimeout) Done() <-chan struct{} {
	return p.Context().Done()
}

// Cancel cancels the inner context.
func (p PromptTimeout) Cancel() {
	if p.cancel != nil {
		p.cancel()
	}
}

// Granted reports whether the result allows the session to connect.
// Cancelled prompts count as denied.
func (r PermissionResult) Granted() bool {
	return r == PermissionGranted
}

// String converts a PermissionResult to a string.
func (r PermissionResult) String() string {
	return string(r)
}

// AutoPrompter describes a prompter that answers every request with a fixed result.
type AutoPrompter struct {
	result  PermissionResult
	replies chan PromptReply
}

// NewAutoPrompter returns a prompter answering every request with result.
func NewAutoPrompter(result PermissionResult) *AutoPrompter {
	return &AutoPrompter{
		result:  result,
		replies: make(chan PromptReply, 1),
	}
}

// DefaultPrompter returns a prompter that grants all permission requests.
func DefaultPrompter() *AutoPrompter {
	return NewAutoPrompter(PermissionGranted)
}

// Request queues the fixed answer for the request.
func (a *AutoPrompter) Request(req PromptRequest) error {
	defer req.Timeout.Cancel()

	select {
	case a.replies <- PromptReply{RequestID: req.ID, Result: a.result}:
		return nil

	default:
	}

	return errorkinds.ErrMethodCall
}

// PromptReplies returns the channel the answers are delivered on.
func (a *AutoPrompter) PromptReplies() <-chan PromptReply {
	return a.replies
}
