package main

import (
	"fmt"
	"os"

	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/tracking"
	"github.com/motiontrack/api-native/host"
	"github.com/motiontrack/api-native/internal/serde"
	"github.com/motiontrack/api-native/shim"
)

// scenario describes a scripted run: the engine answers and the host events.
type scenario struct {
	Engine shim.Script `json:"engine,omitempty"`
	Events []string    `json:"events"`
}

// defaultScenario mirrors an activity that is created, asks for the
// permission on first resume, and is paused and resumed once.
func defaultScenario() scenario {
	return scenario{
		Engine: shim.Script{
			shim.CallConnectCallbacks: {tracking.StatusNoMotionTrackingPermission},
		},
		Events: []string{"create", "resume", "pause", "resume", "destroy"},
	}
}

func loadScenario(path string) (scenario, error) {
	if path == "" {
		return defaultScenario(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, err
	}

	var sc scenario
	if err := serde.UnmarshalJson(data, &sc); err != nil {
		return scenario{}, fmt.Errorf("decode scenario %s: %w", path, err)
	}

	for call := range sc.Engine {
		if !call.Valid() {
			return scenario{}, fmt.Errorf("%w: unknown engine call %q", errorkinds.ErrInvalidArgument, call)
		}
	}

	return sc, nil
}

func (sc scenario) hostEvents() ([]host.Event, error) {
	events := make([]host.Event, 0, len(sc.Events))
	for _, name := range sc.Events {
		ev, err := host.ParseEvent(name)
		if err != nil {
			return nil, err
		}

		events = append(events, ev)
	}

	return events, nil
}
