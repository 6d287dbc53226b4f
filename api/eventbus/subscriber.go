package eventbus

import "sync"

// EventID describes an identifier that events are published under.
type EventID interface {
	Value() uint
	String() string
}

// SubscriberID describes a subscription to an event stream.
type SubscriberID struct {
	// C receives the published event data.
	C chan any

	active bool
	unsub  func()
	once   *sync.Once
}

// IsActive reports whether the subscription receives events.
func (s SubscriberID) IsActive() bool {
	return s.active
}

// Unsubscribe stops the subscription. The channel is closed asynchronously.
func (s SubscriberID) Unsubscribe() {
	if !s.active || s.unsub == nil {
		return
	}

	if s.once == nil {
		s.unsub()
		return
	}

	s.once.Do(s.unsub)
}
