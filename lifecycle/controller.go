// Package lifecycle implements the tracking session state machine that
// sequences engine initialization, permission negotiation, and engine
// connect/disconnect calls in response to host lifecycle events.
package lifecycle

import (
	"context"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"
	"github.com/motiontrack/api-native/api/config"
	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/eventbus"
	"github.com/motiontrack/api-native/api/tracking"
	"go.uber.org/zap"
)

// Controller drives a tracking engine through a session's lifecycle.
//
// Calls are expected to be serialized by the host. The engine is
// connected if and only if the state is StateConnected.
type Controller struct {
	engine   tracking.Engine
	prompter tracking.PermissionPrompter
	cfg      config.Configuration

	log   *zap.Logger
	hooks []TransitionHook

	id      uuid.UUID
	state   tracking.State
	failure *errorkinds.Failure

	granted  bool
	prompted bool

	pending        uuid.UUID
	pendingTimeout tracking.PromptTimeout

	mu sync.Mutex
}

var _ tracking.Session = (*Controller)(nil)

// New returns a controller for the provided engine. If prompter is nil,
// every permission request is granted. With the passive profile the
// engine is replaced by tracking.NopEngine and may be nil.
func New(engine tracking.Engine, prompter tracking.PermissionPrompter, cfg config.Configuration, opts ...Option) (*Controller, error) {
	if cfg.Profile == "" {
		cfg.Profile = config.ProfileFull
	}
	if !cfg.Profile.Valid() {
		return nil, fault.Wrap(errorkinds.ErrInvalidArgument,
			fctx.With(context.Background(), "profile", string(cfg.Profile)),
			ftag.With(ftag.InvalidArgument),
			fmsg.With("Unknown session profile"),
		)
	}

	if cfg.Profile == config.ProfilePassive {
		engine = tracking.NopEngine{}
	}
	if engine == nil {
		return nil, fault.Wrap(errorkinds.ErrInvalidArgument,
			ftag.With(ftag.InvalidArgument),
			fmsg.With("No tracking engine was provided"),
		)
	}

	if prompter == nil {
		prompter = tracking.DefaultPrompter()
	}
	if cfg.PermissionKind == "" {
		cfg.PermissionKind = config.DefaultPermissionKind
	}

	c := &Controller{
		engine:   engine,
		prompter: prompter,
		cfg:      cfg,
		log:      zap.NewNop(),
		state:    tracking.StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("profile", string(cfg.Profile)))

	return c, nil
}

// Start initializes the tracking engine and begins a new session.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != tracking.StateUninitialized {
		return c.invalidState("start")
	}

	c.id = uuid.New()
	if err := c.engine.Initialize(c.cfg.HostContext); err != nil {
		return c.fail(errorkinds.KindInit, "initialize", "Cannot initialize the tracking engine", err)
	}

	c.transition(tracking.StateInitialized)

	return nil
}

// OnForeground registers the engine callbacks and connects the engine.
// If the engine reports a missing permission, a permission prompt is started
// and the session waits for OnPermissionResult. The user is prompted at most
// once per session; a missing permission after that fails the session.
func (c *Controller) OnForeground() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != tracking.StateInitialized && c.state != tracking.StateSuspended {
		return c.invalidState("foreground")
	}

	err := c.engine.ConnectCallbacks()
	switch errorkinds.KindOf(err) {
	case errorkinds.KindNone:
		c.granted = true
		return c.connect("connect")

	case errorkinds.KindPermissionMissing:
		if c.prompted {
			return c.fail(errorkinds.KindPermissionDenied, "connect-callbacks", "Motion tracking permission was revoked", err)
		}

		c.log.Info("Motion tracking permission is missing, requesting it", zap.Stringer("session_id", c.id))
		return c.requestPermission()

	case errorkinds.KindInvalidArgument:
		return c.fail(errorkinds.KindInvalidArgument, "connect-callbacks", "Tracking engine rejected the callback registration", err)
	}

	return c.fail(errorkinds.KindEngine, "connect-callbacks", "Cannot register tracking callbacks", err)
}

// OnPermissionResult applies the answer of the pending permission prompt.
func (c *Controller) OnPermissionResult(granted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != tracking.StateAwaitingPermission {
		return c.invalidState("permission-result")
	}

	return c.applyPermission(granted)
}

// ResolvePrompt applies a prompt reply if it answers the pending prompt.
// Cancelled prompts are treated as denied.
func (c *Controller) ResolvePrompt(reply tracking.PromptReply) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != tracking.StateAwaitingPermission {
		return c.invalidState("permission-result")
	}

	if reply.RequestID != c.pending {
		return fault.Wrap(errorkinds.ErrStalePrompt,
			fctx.With(context.Background(),
				"request_id", reply.RequestID.String(),
				"pending_id", c.pending.String(),
			),
			ftag.With(ftag.InvalidArgument),
		)
	}

	return c.applyPermission(reply.Result.Granted())
}

// RetryPermission asks for the permission again after the user denied it.
func (c *Controller) RetryPermission() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != tracking.StateFailed || c.failure == nil ||
		c.failure.Kind != errorkinds.KindPermissionDenied || c.granted {
		return c.invalidState("retry-permission")
	}

	c.failure = nil
	c.log.Info("Retrying motion tracking permission request", zap.Stringer("session_id", c.id))

	return c.requestPermission()
}

// OnBackground disconnects the engine if it is connected. In any other
// state it does nothing.
func (c *Controller) OnBackground() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != tracking.StateConnected {
		return nil
	}

	c.engine.Disconnect()
	c.transition(tracking.StateSuspended)

	return nil
}

// Stop ends the session from any state, disconnecting the engine
// if it is connected. A pending permission prompt is discarded.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == tracking.StateUninitialized {
		return nil
	}

	if c.state == tracking.StateConnected {
		c.engine.Disconnect()
	}

	c.clearPrompt()
	c.transition(tracking.StateUninitialized)

	c.granted = false
	c.prompted = false
	c.failure = nil
	c.id = uuid.Nil

	return nil
}

// State returns the current session state.
func (c *Controller) State() tracking.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Failure returns the reason the session failed, or nil.
func (c *Controller) Failure() *errorkinds.Failure {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failure == nil {
		return nil
	}

	f := *c.failure
	return &f
}

// Granted reports whether motion tracking permission was granted in this session.
func (c *Controller) Granted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.granted
}

// SessionID returns the identifier of the current session.
// It is uuid.Nil if no session is active.
func (c *Controller) SessionID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.id
}

// Snapshot returns the observable session state.
func (c *Controller) Snapshot() tracking.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := tracking.Snapshot{
		SessionID: c.id,
		State:     c.state,
		Granted:   c.granted,
	}
	if c.failure != nil {
		f := *c.failure
		snap.Failure = &f
	}

	return snap
}

func (c *Controller) connect(at string) error {
	if err := c.engine.SetupConfig(); err != nil {
		return c.fail(errorkinds.KindEngine, at, "Cannot set up the tracking configuration", err)
	}

	if err := c.engine.Connect(); err != nil {
		return c.fail(errorkinds.KindEngine, at, "Cannot connect to the tracking service", err)
	}

	c.transition(tracking.StateConnected)

	return nil
}

func (c *Controller) requestPermission() error {
	req := tracking.PromptRequest{
		ID:        uuid.New(),
		SessionID: c.id,
		Kind:      c.cfg.PermissionKind,
		Timeout:   tracking.NewPromptTimeout(c.cfg.PromptTimeout),
	}

	c.pending = req.ID
	c.pendingTimeout = req.Timeout
	c.prompted = true
	c.transition(tracking.StateAwaitingPermission)

	eventbus.Publish(tracking.PromptEventID, tracking.PromptEvent{
		SessionID: c.id,
		RequestID: req.ID,
		Kind:      req.Kind,
	})

	if err := c.prompter.Request(req); err != nil {
		c.clearPrompt()
		return c.fail(errorkinds.KindPermissionDenied, "request-permission", "Cannot show the permission prompt", err)
	}

	return nil
}

func (c *Controller) applyPermission(granted bool) error {
	c.clearPrompt()

	if !granted {
		return c.fail(errorkinds.KindPermissionDenied, "permission-result", "Motion tracking permission was denied", nil)
	}

	c.granted = true

	return c.connect("permission-result")
}

func (c *Controller) clearPrompt() {
	c.pendingTimeout.Cancel()
	c.pendingTimeout = tracking.PromptTimeout{}
	c.pending = uuid.Nil
}

func (c *Controller) transition(to tracking.State) {
	from := c.state
	c.state = to

	c.log.Debug("Tracking session state changed",
		zap.Stringer("session_id", c.id),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)

	eventbus.Publish(tracking.StateEventID, tracking.StateEvent{
		SessionID: c.id,
		From:      from,
		To:        to,
	})

	var failure *errorkinds.Failure
	if to == tracking.StateFailed && c.failure != nil {
		f := *c.failure
		failure = &f
	}
	for _, hook := range c.hooks {
		hook(from, to, failure)
	}
}

func (c *Controller) fail(kind errorkinds.Kind, at, reason string, cause error) error {
	c.failure = errorkinds.NewFailure(kind, reason, cause)
	c.transition(tracking.StateFailed)

	c.log.Error("Tracking session failed",
		zap.Stringer("session_id", c.id),
		zap.Stringer("kind", kind),
		zap.String("error_at", at),
		zap.Error(cause),
	)

	eventbus.Publish(tracking.FailureEventID, tracking.FailureEvent{
		SessionID: c.id,
		Failure:   *c.failure,
	})

	return fault.Wrap(c.failure,
		fctx.With(context.Background(),
			"error_at", at,
			"session_id", c.id.String(),
		),
		ftag.With(failureTag(kind)),
		fmsg.With(reason),
	)
}

func (c *Controller) invalidState(op string) error {
	return fault.Wrap(errorkinds.ErrInvalidState,
		fctx.With(context.Background(),
			"operation", op,
			"state", c.state.String(),
		),
		ftag.With(ftag.InvalidArgument),
	)
}

func failureTag(kind errorkinds.Kind) ftag.Kind {
	switch kind {
	case errorkinds.KindInvalidArgument:
		return ftag.InvalidArgument

	case errorkinds.KindPermissionDenied:
		return ftag.PermissionDenied
	}

	return ftag.Internal
}
