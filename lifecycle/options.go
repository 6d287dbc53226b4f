package lifecycle

import (
	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/tracking"
	"go.uber.org/zap"
)

// TransitionHook is called after every state transition. failure is
// non-nil only when the session enters the failed state.
type TransitionHook func(from, to tracking.State, failure *errorkinds.Failure)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used by the controller.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTransitionHook registers a hook invoked on every state transition.
// Hooks run synchronously and must not call back into the controller.
func WithTransitionHook(hook TransitionHook) Option {
	return func(c *Controller) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}
