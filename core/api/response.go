package api

// Kind is the discriminator carried by the orchestration envelope.
type Kind string

const (
	KindChat         Kind = "chat"
	KindConversation Kind = "conversation"
	KindReport       Kind = "report"
	KindError        Kind = "error"
)

// Response is a closed union over the orchestration reply shapes. The
// unexported marker keeps implementations inside this package so a type
// switch over Chat, Conversation, Report, ErrorReply and Unrecognized is
// exhaustive.
type Response interface {
	Kind() Kind
	isResponse()
}

// Chat is a single direct reply.
type Chat struct {
	Reply string
}

// Conversation is a multi-agent dialogue in speaking order.
type Conversation struct {
	Entries []ConversationEntry
}

type ConversationEntry struct {
	Sender string
	Text   string
}

// Report describes one self-improvement cycle of the backend worker prompt.
type Report struct {
	InitialPrompt  string
	WorkerResult   string
	CriticFeedback string
	NewPrompt      string
}

// ErrorReply carries a failure the backend chose to report in-band.
type ErrorReply struct {
	Message string
}

// Unrecognized preserves an envelope whose kind this client does not know.
type Unrecognized struct {
	Type string
}

func (Chat) Kind() Kind         { return KindChat }
func (Conversation) Kind() Kind { return KindConversation }
func (Report) Kind() Kind       { return KindReport }
func (ErrorReply) Kind() Kind   { return KindError }
func (u Unrecognized) Kind() Kind {
	return Kind(u.Type)
}

func (Chat) isResponse()         {}
func (Conversation) isResponse() {}
func (Report) isResponse()       {}
func (ErrorReply) isResponse()   {}
func (Unrecognized) isResponse() {}
