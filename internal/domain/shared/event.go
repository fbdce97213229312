package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent holds the envelope fields shared by every event and is
// meant to be embedded
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"event_id"`
	Type          string    `json:"event_type"`
	At            time.Time `json:"occurred_at"`
	Aggregate     uuid.UUID `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
}

// NewBaseDomainEvent creates an event envelope stamped with the current time
func NewBaseDomainEvent(eventType, aggregateType string, aggregateID uuid.UUID) BaseDomainEvent {
	return NewBaseDomainEventAt(eventType, aggregateType, aggregateID, time.Now())
}

// NewBaseDomainEventAt creates an event envelope stamped with at
func NewBaseDomainEventAt(eventType, aggregateType string, aggregateID uuid.UUID, at time.Time) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		At:            at,
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
	}
}

func (e BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseDomainEvent) EventType() string      { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate }
func (e BaseDomainEvent) AggregateType() string  { return e.AggregateKind }
