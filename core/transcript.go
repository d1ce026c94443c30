package orchestration

import (
	"sync"

	events "github.com/koscakluka/ema-chat/core/events"
)

// Message is one immutable transcript entry.
type Message struct {
	ID     string
	Text   string
	IsUser bool
}

// MessageDraft is a message that has not been given an identity yet.
type MessageDraft struct {
	Text   string
	IsUser bool
}

func userDraft(text string) MessageDraft      { return MessageDraft{Text: text, IsUser: true} }
func assistantDraft(text string) MessageDraft { return MessageDraft{Text: text} }

// transcript is the append-only message log. Nothing is ever reordered,
// edited or removed.
type transcript struct {
	mu       sync.RWMutex
	messages []Message

	newID     func() string
	emitEvent eventEmitter
}

func newTranscript(newID func() string, emitEvent eventEmitter) *transcript {
	if emitEvent == nil {
		emitEvent = noopEventEmitter
	}
	return &transcript{newID: newID, emitEvent: emitEvent}
}

// append assigns ids in draft order and appends all drafts as one batch.
func (t *transcript) append(drafts ...MessageDraft) []Message {
	if len(drafts) == 0 {
		return nil
	}

	appended := make([]Message, 0, len(drafts))
	t.mu.Lock()
	for _, draft := range drafts {
		message := Message{ID: t.newID(), Text: draft.Text, IsUser: draft.IsUser}
		t.messages = append(t.messages, message)
		appended = append(appended, message)
	}
	t.mu.Unlock()

	for _, message := range appended {
		t.emitEvent(events.NewMessageAppended(message.ID, message.Text, message.IsUser))
	}
	return appended
}

func (t *transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	messages := make([]Message, len(t.messages))
	copy(messages, t.messages)
	return messages
}

func (t *transcript) Find(id string) (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, message := range t.messages {
		if message.ID == id {
			return message, true
		}
	}
	return Message{}, false
}
