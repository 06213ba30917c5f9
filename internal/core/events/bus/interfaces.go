package bus

import "time"

// EventBus is an in-process pub/sub bus used to announce portal activity
// (entries, exits, teleports, forced exits) to collaborators such as the
// telemetry server.
//
// Handlers subscribe by Event.Type() and run in subscription order in the
// publisher's goroutine. Handler errors are joined and returned from
// Publish. All methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers the event synchronously to every active subscriber of
	// event.Type().
	Publish(event Event) error
	// Subscribe registers a handler for one event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. A nil subscription is ignored.
	Unsubscribe(Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	Metrics() Metrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is invoked per delivered event.
type EventHandler func(event Event) error

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Observer is told about every publish after its handlers ran. Observers
// run in the publisher's goroutine and should return quickly.
type Observer interface {
	OnDelivered(event Event, handlers int, err error)
}

// Metrics is a snapshot of bus activity.
type Metrics struct {
	Published   uint64
	Delivered   uint64
	Errors      uint64
	Subscribers uint64
}
