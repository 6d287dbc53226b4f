// Package eventbus carries tracking session notifications to observers.
// The lifecycle controller publishes state changes, failures and permission
// prompts on it (see the tracking event IDs); the CLI and tests subscribe.
// Publishing never blocks the session: a subscriber whose buffer is full
// misses events.
package eventbus

import (
	"sync"

	"github.com/cskr/pubsub/v2"
)

// DefaultCapacity is the per-subscriber buffer size of the default handler.
const DefaultCapacity = 16

// nilEventHandler represents a disabled event handler.
type nilEventHandler struct{}

// defaultEventHandler represents an internal event handler.
type defaultEventHandler struct {
	*pubsub.PubSub[uint, any]
}

// EventPublisher represents an interface that provides an event publisher.
type EventPublisher interface {
	// Publish publishes an event to the event stream.
	Publish(id uint, name string, data any)
}

// EventSubscriber represents an interface that provides an event subscriber.
type EventSubscriber interface {
	// Subscribe subscribes to one or more events from the event stream.
	// Events of all ids are delivered on one channel, in publish order.
	Subscribe(ids ...uint) SubscriberID
}

// EventHandler represents an interface that provides an event publisher and subscriber.
type EventHandler interface {
	EventPublisher
	EventSubscriber
}

// eventHandler represents the main event handler.
type eventHandler struct {
	p EventPublisher
	s EventSubscriber

	mu sync.RWMutex
}

var eventEmitter eventHandler

func init() {
	RegisterEventHandler(DefaultHandler())
}

// RegisterEventHandler registers the event handler interface.
func RegisterEventHandler(eh EventHandler) {
	if eh == nil {
		return
	}

	RegisterEventHandlers(eh, eh)
}

// RegisterEventHandlers registers the event publisher and subscriber interfaces separately.
// To disable an EventPublisher or EventSubscriber, pass 'nil' as the parameter.
func RegisterEventHandlers(p EventPublisher, s EventSubscriber) {
	eventEmitter.mu.Lock()
	defer eventEmitter.mu.Unlock()

	if p == nil {
		p = &nilEventHandler{}
	}
	if s == nil {
		s = &nilEventHandler{}
	}

	eventEmitter.p = p
	eventEmitter.s = s
}

// DisableEvents unregisters the event handler.
func DisableEvents() {
	RegisterEventHandler(&nilEventHandler{})
}

// Publish calls the registered publisher handler.
func Publish(id EventID, data any) {
	if id == nil {
		return
	}

	eventEmitter.mu.RLock()
	p := eventEmitter.p
	eventEmitter.mu.RUnlock()

	p.Publish(id.Value(), id.String(), data)
}

// Subscribe calls the registered subscriber handler with the given events.
func Subscribe(ids ...EventID) SubscriberID {
	values := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != nil {
			values = append(values, id.Value())
		}
	}
	if len(values) == 0 {
		return (&nilEventHandler{}).Subscribe()
	}

	eventEmitter.mu.RLock()
	s := eventEmitter.s
	eventEmitter.mu.RUnlock()

	return s.Subscribe(values...)
}

// DefaultHandler returns the default event handler.
func DefaultHandler() *defaultEventHandler {
	return &defaultEventHandler{PubSub: pubsub.New[uint, any](DefaultCapacity)}
}

// NilHandler returns a disabled event handler.
func NilHandler() *nilEventHandler {
	return &nilEventHandler{}
}

// Publish publishes an event to the event stream.
// Slow subscribers miss events instead of blocking the session.
func (d *defaultEventHandler) Publish(id uint, _ string, data any) {
	d.TryPub(data, id)
}

// Subscribe subscribes to events from the event stream.
func (d *defaultEventHandler) Subscribe(ids ...uint) SubscriberID {
	ch := d.Sub(ids...)
	return SubscriberID{
		C:      ch,
		active: true,
		once:   &sync.Once{},
		unsub: func() {
			go d.Unsub(ch, ids...)
		},
	}
}

// Publish does not do anything.
func (n *nilEventHandler) Publish(uint, string, any) {
}

// Subscribe does not do anything.
func (n *nilEventHandler) Subscribe(...uint) SubscriberID {
	ch := make(chan any)
	close(ch)
	return SubscriberID{C: ch}
}
