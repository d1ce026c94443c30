package events

const (
	KindSendStarted  Kind = "send_state.started"
	KindSendFinished Kind = "send_state.finished"
)

type SendStarted struct{ Base }

func NewSendStarted() SendStarted {
	return SendStarted{Base: NewBase(KindSendStarted)}
}

// SendFinished is emitted on every exit path of a send, Err is nil when the
// response was interpreted successfully.
type SendFinished struct {
	Base
	Err error
}

func NewSendFinished(err error) SendFinished {
	return SendFinished{Base: NewBase(KindSendFinished), Err: err}
}
