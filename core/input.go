package orchestration

import (
	"sync"

	events "github.com/koscakluka/ema-chat/core/events"
)

// pendingInput is the text the user is composing. Typing replaces it,
// dictation appends to it and a send clears it.
type pendingInput struct {
	mu   sync.Mutex
	text string

	emitEvent eventEmitter
}

func newPendingInput(emitEvent eventEmitter) *pendingInput {
	if emitEvent == nil {
		emitEvent = noopEventEmitter
	}
	return &pendingInput{emitEvent: emitEvent}
}

func (p *pendingInput) Value() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

func (p *pendingInput) Set(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
	p.emitEvent(events.NewInputUpdated(text))
}

func (p *pendingInput) Append(text string) {
	p.mu.Lock()
	p.text += text
	updated := p.text
	p.mu.Unlock()
	p.emitEvent(events.NewInputUpdated(updated))
}

func (p *pendingInput) Clear() { p.Set("") }
