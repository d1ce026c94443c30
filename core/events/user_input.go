package events

// KindInputUpdated identifies pending input snapshots.
const KindInputUpdated Kind = "user_input.updated"

// InputUpdated carries the full pending input after a change.
type InputUpdated struct {
	Base
	Text string
}

// NewInputUpdated creates a pending input snapshot event.
func NewInputUpdated(text string) InputUpdated {
	return InputUpdated{Base: NewBase(KindInputUpdated), Text: text}
}
