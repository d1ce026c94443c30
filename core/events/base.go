package events

import "time"

// Kind names an event type. Values are dotted, "<area>.<what happened>".
type Kind string

// Event is anything the orchestrator reports to its event handler.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base is embedded by every event to carry its kind and creation time.
type Base struct {
	kind       Kind
	occurredAt time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, occurredAt: time.Now()}
}

func (b Base) Kind() Kind           { return b.kind }
func (b Base) Timestamp() time.Time { return b.occurredAt }
