// Package shim provides a scripted stand-in for the native tracking bridge.
// It answers engine calls from a per-call queue of native status codes and
// records every call it receives.
package shim

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/tracking"
	"github.com/motiontrack/api-native/internal/serde"
	"github.com/puzpuzpuz/xsync/v3"
)

// Call describes an engine call.
type Call string

const (
	CallInitialize       Call = "initialize"
	CallConnectCallbacks Call = "connect_callbacks"
	CallSetupConfig      Call = "setup_config"
	CallConnect          Call = "connect"
	CallDisconnect       Call = "disconnect"
)

// Script holds the status codes returned for each call, in order.
// Once a call's queue is empty, it succeeds.
type Script map[Call][]tracking.StatusCode

// Engine is a scripted tracking engine.
type Engine struct {
	script *xsync.MapOf[Call, []tracking.StatusCode]
	counts *xsync.MapOf[Call, *xsync.Counter]

	host       tracking.HostContext
	configured atomic.Bool
	connected  atomic.Bool

	calls []Call

	sync.Mutex
}

var _ tracking.Engine = (*Engine)(nil)

// NewEngine returns an engine answering calls from script.
func NewEngine(script Script) *Engine {
	e := &Engine{
		script: xsync.NewMapOf[Call, []tracking.StatusCode](),
		counts: xsync.NewMapOf[Call, *xsync.Counter](),
	}

	for call, codes := range script {
		e.Push(call, codes...)
	}

	return e
}

// LoadScript decodes a JSON script, for example:
//
//	{"connect_callbacks": [-3], "connect": [0, -1]}
func LoadScript(data []byte) (Script, error) {
	script := make(Script)
	if err := serde.UnmarshalJson(data, &script); err != nil {
		return nil, err
	}

	for call := range script {
		if !call.Valid() {
			return nil, fault.Wrap(errorkinds.ErrInvalidArgument,
				fctx.With(context.Background(), "call", string(call)),
				ftag.With(ftag.InvalidArgument),
				fmsg.With("Unknown engine call in script"),
			)
		}
	}

	return script, nil
}

// Push appends status codes to the queue of a call.
func (e *Engine) Push(call Call, codes ...tracking.StatusCode) {
	e.script.Compute(call, func(queue []tracking.StatusCode, _ bool) ([]tracking.StatusCode, bool) {
		return append(queue, codes...), false
	})
}

// Initialize records the host and returns the next scripted status.
func (e *Engine) Initialize(host tracking.HostContext) error {
	err := e.next(CallInitialize).Err()
	if err == nil {
		e.host = host
	}

	return err
}

// ConnectCallbacks returns the next scripted status.
func (e *Engine) ConnectCallbacks() error {
	return e.next(CallConnectCallbacks).Err()
}

// SetupConfig returns the next scripted status.
func (e *Engine) SetupConfig() error {
	err := e.next(CallSetupConfig).Err()
	e.configured.Store(err == nil)

	return err
}

// Connect returns the next scripted status. Connecting without a
// configuration is rejected as an invalid call.
func (e *Engine) Connect() error {
	status := e.next(CallConnect)
	if !e.configured.Load() {
		return tracking.StatusInvalid.Err()
	}

	if err := status.Err(); err != nil {
		e.configured.Store(false)
		return err
	}

	e.connected.Store(true)

	return nil
}

// Disconnect releases the configuration and the connection.
func (e *Engine) Disconnect() {
	e.record(CallDisconnect)

	e.configured.Store(false)
	e.connected.Store(false)
}

// Count returns the number of times call was made.
func (e *Engine) Count(call Call) int {
	counter, ok := e.counts.Load(call)
	if !ok {
		return 0
	}

	return int(counter.Value())
}

// Calls returns every call made so far, in order.
func (e *Engine) Calls() []Call {
	e.Lock()
	defer e.Unlock()

	calls := make([]Call, len(e.calls))
	copy(calls, e.calls)

	return calls
}

// Connected reports whether the engine currently holds a connection.
func (e *Engine) Connected() bool {
	return e.connected.Load()
}

// Host returns the host context the engine was initialized with.
func (e *Engine) Host() tracking.HostContext {
	return e.host
}

// Valid reports whether the call is a known engine call.
func (c Call) Valid() bool {
	switch c {
	case CallInitialize, CallConnectCallbacks, CallSetupConfig, CallConnect, CallDisconnect:
		return true
	}

	return false
}

func (e *Engine) next(call Call) tracking.StatusCode {
	e.record(call)

	status := tracking.StatusSuccess
	e.script.Compute(call, func(queue []tracking.StatusCode, loaded bool) ([]tracking.StatusCode, bool) {
		if !loaded || len(queue) == 0 {
			return nil, true
		}

		status = queue[0]
		return queue[1:], false
	})

	return status
}

func (e *Engine) record(call Call) {
	counter, _ := e.counts.LoadOrCompute(call, xsync.NewCounter)
	counter.Inc()

	e.Lock()
	e.calls = append(e.calls, call)
	e.Unlock()
}
