package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-chat/core/api"
	events "github.com/koscakluka/ema-chat/core/events"
)

// Orchestrator is the client core. It owns the transcript, the pending input,
// the send latch, the capture state machine and the playback slot. Renderers
// read snapshots from it and follow its events.
type Orchestrator struct {
	service         OrchestrationService
	speechToText    *speechToText
	textToSpeech    *textToSpeech
	microphone      Microphone
	speaker         Speaker
	contextProvider func() map[string]any
	coordinatorRole string
	greeting        string
	newID           func() string
	eventHandler    func(events.Event)

	model atomic.Value

	transcript   *transcript
	input        *pendingInput
	dispatcher   *dispatcher
	audioInput   *audioInput
	speechPlayer *speechPlayer

	closeOnce sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		speechToText:    newSpeechToText(nil),
		textToSpeech:    newTextToSpeech(nil),
		coordinatorRole: DefaultCoordinatorRole,
		newID:           uuid.NewString,
	}
	o.model.Store(api.DefaultModel)

	for _, opt := range opts {
		opt(o)
	}

	o.transcript = newTranscript(o.newID, o.emit)
	o.input = newPendingInput(o.emit)
	o.dispatcher = &dispatcher{
		service:         o.service,
		transcript:      o.transcript,
		input:           o.input,
		model:           o.Model,
		contextProvider: o.contextProvider,
		coordinatorRole: o.coordinatorRole,
		emitEvent:       o.emit,
	}
	o.audioInput = newAudioInput(o.microphone, o.speechToText, o.input, o.emit)
	o.speechPlayer = newSpeechPlayer(o.speaker, o.textToSpeech, o.emit)

	if o.greeting != "" {
		o.transcript.append(assistantDraft(o.greeting))
	}

	return o
}

func (o *Orchestrator) emit(event events.Event) {
	if o.eventHandler != nil {
		o.eventHandler(event)
	}
}

// Close stops any playback and aborts any recording, releasing both devices.
// An in-flight send is left to finish.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.speechPlayer.Stop()

		if err := o.audioInput.Abort(); err != nil {
			logger.Warn("failed to release microphone on close", "error", fmt.Errorf("failed to close audio input: %w", err))
		}
	})
}

// Send submits text to the backend. It returns ErrEmptyInput or ErrBusy when
// the send is refused and nil otherwise; backend failures end up in the
// transcript.
func (o *Orchestrator) Send(ctx context.Context, text string) error {
	return o.dispatcher.Send(ctx, text)
}

// SendPending submits the current pending input.
func (o *Orchestrator) SendPending(ctx context.Context) error {
	return o.dispatcher.Send(ctx, o.input.Value())
}

func (o *Orchestrator) Messages() []Message  { return o.transcript.Messages() }
func (o *Orchestrator) Input() string        { return o.input.Value() }
func (o *Orchestrator) SetInput(text string) { o.input.Set(text) }
func (o *Orchestrator) IsBusy() bool         { return o.dispatcher.IsBusy() }

func (o *Orchestrator) Model() api.Model { return o.model.Load().(api.Model) }

// SetModel changes the model used by the next send. Unknown models are
// ignored.
func (o *Orchestrator) SetModel(model api.Model) {
	if model.IsValid() {
		o.model.Store(model)
	}
}

// StartRecording acquires the microphone and starts buffering audio. It is a
// no-op unless capture is idle.
func (o *Orchestrator) StartRecording(ctx context.Context) error {
	return o.audioInput.Start(ctx)
}

// StopRecording releases the microphone and appends the transcription of the
// recording to the pending input. It is a no-op unless recording.
func (o *Orchestrator) StopRecording(ctx context.Context) error {
	return o.audioInput.Stop(ctx)
}

func (o *Orchestrator) CaptureState() CaptureState { return o.audioInput.State() }
func (o *Orchestrator) IsCapturing() bool          { return o.audioInput.IsCapturing() }

// TogglePlayback speaks the assistant message messageID, or stops it if it is
// the one currently speaking. Starting a message stops any other.
func (o *Orchestrator) TogglePlayback(ctx context.Context, messageID string) error {
	message, ok := o.transcript.Find(messageID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}
	if message.IsUser {
		return ErrNotAssistantMessage
	}

	err := o.speechPlayer.Toggle(ctx, message.ID, message.Text)
	if err != nil && !errors.Is(err, api.ErrSynthesis) {
		logger.WarnContext(ctx, "failed to toggle playback", "message_id", messageID, "error", err)
	}
	return err
}

// PlayingMessageID returns the message being spoken, or "" if none is.
func (o *Orchestrator) PlayingMessageID() string { return o.speechPlayer.ActiveMessageID() }
