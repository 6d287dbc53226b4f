// Package metrics exports tracking session transitions as Prometheus metrics.
package metrics

import (
	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/tracking"
	"github.com/motiontrack/api-native/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "motiontrack"

var states = []tracking.State{
	tracking.StateUninitialized,
	tracking.StateInitialized,
	tracking.StateAwaitingPermission,
	tracking.StateConnected,
	tracking.StateSuspended,
	tracking.StateFailed,
}

// Recorder records session transitions.
type Recorder struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	prompts     prometheus.Counter
	state       *prometheus.GaugeVec
}

// NewRecorder creates a recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Number of tracking session state transitions.",
		}, []string{"from", "to"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "failures_total",
			Help:      "Number of tracking sessions that failed, by kind.",
		}, []string{"kind"}),
		prompts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "permission_prompts_total",
			Help:      "Number of permission prompts started.",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "state",
			Help:      "Current tracking session state (1 for the active state).",
		}, []string{"state"}),
	}

	for _, c := range []prometheus.Collector{r.transitions, r.failures, r.prompts, r.state} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	r.setState(tracking.StateUninitialized)

	return r, nil
}

// Hook returns a controller option that feeds the recorder.
func (r *Recorder) Hook() lifecycle.Option {
	return lifecycle.WithTransitionHook(r.Observe)
}

// Observe records a single transition.
func (r *Recorder) Observe(from, to tracking.State, failure *errorkinds.Failure) {
	r.transitions.WithLabelValues(from.String(), to.String()).Inc()
	r.setState(to)

	if to == tracking.StateAwaitingPermission {
		r.prompts.Inc()
	}
	if failure != nil {
		r.failures.WithLabelValues(failure.Kind.String()).Inc()
	}
}

func (r *Recorder) setState(current tracking.State) {
	for _, s := range states {
		v := 0.0
		if s == current {
			v = 1
		}
		r.state.WithLabelValues(s.String()).Set(v)
	}
}
