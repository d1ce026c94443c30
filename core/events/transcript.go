package events

// KindMessageAppended identifies a transcript append.
const KindMessageAppended Kind = "transcript.message_appended"

// MessageAppended carries a message that was just appended to the transcript.
type MessageAppended struct {
	Base
	ID     string
	Text   string
	IsUser bool
}

// NewMessageAppended creates a message appended event.
func NewMessageAppended(id, text string, isUser bool) MessageAppended {
	return MessageAppended{Base: NewBase(KindMessageAppended), ID: id, Text: text, IsUser: isUser}
}
