package events

const (
	// KindCaptureStateChanged identifies recorder state transitions.
	KindCaptureStateChanged Kind = "capture.state_changed"
	// KindCaptureFailed identifies failed recordings.
	KindCaptureFailed Kind = "capture.failed"
)

// CaptureStateChanged carries the recorder state after a transition.
type CaptureStateChanged struct {
	Base
	State string
}

// NewCaptureStateChanged creates a recorder state transition event.
func NewCaptureStateChanged(state string) CaptureStateChanged {
	return CaptureStateChanged{Base: NewBase(KindCaptureStateChanged), State: state}
}

// CaptureFailed carries the reason a recording produced no text.
type CaptureFailed struct {
	Base
	Err error
}

// NewCaptureFailed creates a failed recording event.
func NewCaptureFailed(err error) CaptureFailed {
	return CaptureFailed{Base: NewBase(KindCaptureFailed), Err: err}
}
