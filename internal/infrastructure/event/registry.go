package event

import (
	"sync"
	"sync/atomic"

	"github.com/pattycroche/storefront/internal/domain/shared"
)

// anyEvent keys handlers that receive every event type
const anyEvent = "*"

type routes map[string][]shared.EventHandler

// HandlerRegistry routes event types to handlers. Subscriptions happen at
// startup and lookups on every publish, so lookups read an immutable
// snapshot and writers replace it.
type HandlerRegistry struct {
	writeMu sync.Mutex
	current atomic.Pointer[routes]
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	r := &HandlerRegistry{}
	r.current.Store(&routes{})
	return r
}

// Register routes the given event types to handler. Without event types
// the handler receives every event.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{anyEvent}
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	old := *r.current.Load()
	next := make(routes, len(old)+len(eventTypes))
	for k, v := range old {
		next[k] = v
	}
	for _, t := range eventTypes {
		handlers := make([]shared.EventHandler, 0, len(next[t])+1)
		next[t] = append(append(handlers, next[t]...), handler)
	}
	r.current.Store(&next)
}

// GetHandlers returns the handlers registered for eventType followed by
// the handlers registered for every event
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	snapshot := *r.current.Load()
	specific, all := snapshot[eventType], snapshot[anyEvent]
	if eventType == anyEvent {
		specific = nil
	}
	out := make([]shared.EventHandler, 0, len(specific)+len(all))
	out = append(out, specific...)
	return append(out, all...)
}
