package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseAggregateRoot carries identity, timestamps and the events an aggregate
// raised since it was last persisted. Version starts at 1 and is stored for
// optimistic locking.
type BaseAggregateRoot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int

	pending []DomainEvent
}

// NewBaseAggregateRoot creates an aggregate root stamped with the current time
func NewBaseAggregateRoot() BaseAggregateRoot {
	return NewBaseAggregateRootAt(time.Now())
}

// NewBaseAggregateRootAt creates an aggregate root stamped with at
func NewBaseAggregateRootAt(at time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{
		ID:        uuid.New(),
		CreatedAt: at,
		UpdatedAt: at,
		Version:   1,
	}
}

// Touch bumps the version and the update time
func (a *BaseAggregateRoot) Touch(at time.Time) {
	a.Version++
	a.UpdatedAt = at
}

// Record queues a domain event for publication
func (a *BaseAggregateRoot) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PendingEvents returns the queued events without removing them
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// PullEvents returns the queued events and empties the queue
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
