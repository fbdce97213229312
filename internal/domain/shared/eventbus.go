package shared

import "context"

// EventPublisher delivers events raised by an aggregate after it was saved.
// Delivery is asynchronous: a nil error only means the events were accepted.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler is a subscriber. EventTypes names the event types it reacts
// to; an empty list subscribes it to everything.
type EventHandler interface {
	EventTypes() []string
	Handle(ctx context.Context, event DomainEvent) error
}
