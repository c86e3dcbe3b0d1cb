package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStart       EventType = "start"
	EventStartFailed EventType = "start_failed"
	EventStop        EventType = "stop"
	EventStopFailed  EventType = "stop_failed"
)

// Record is the per-instance state captured alongside an event.
type Record struct {
	Identity string `json:"identity"`
	PID      int    `json:"pid"`
	Mode     string `json:"mode"`
	Error    string `json:"error,omitempty"`
}

// Event represents a lifecycle event to be exported to audit stores.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for history events. Implementations must be
// safe for concurrent use. Sink failures are audit-only and never fail
// the lifecycle operation that produced the event.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
