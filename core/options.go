package orchestration

import (
	"context"

	"github.com/koscakluka/ema-chat/core/api"
	"github.com/koscakluka/ema-chat/core/audio"
	events "github.com/koscakluka/ema-chat/core/events"
)

type OrchestratorOption func(*Orchestrator)

// OrchestrationService answers one user request with one orchestration
// response.
type OrchestrationService interface {
	Orchestrate(ctx context.Context, request api.Request) (api.Response, error)
}

func WithOrchestrationService(service OrchestrationService) OrchestratorOption {
	return func(o *Orchestrator) { o.service = service }
}

// Transcriber turns one finished recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip) (string, error)
}

func WithTranscriber(client Transcriber) OrchestratorOption {
	return func(o *Orchestrator) { o.speechToText = newSpeechToText(client) }
}

// Synthesizer turns message text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audio.Clip, error)
}

func WithSynthesizer(client Synthesizer) OrchestratorOption {
	return func(o *Orchestrator) { o.textToSpeech = newTextToSpeech(client) }
}

// Backend is a single remote service serving all three endpoints.
type Backend interface {
	OrchestrationService
	Transcriber
	Synthesizer
}

// WithBackend wires backend as orchestration service, transcriber and
// synthesizer in one go.
func WithBackend(backend Backend) OrchestratorOption {
	return func(o *Orchestrator) {
		o.service = backend
		o.speechToText = newSpeechToText(backend)
		o.textToSpeech = newTextToSpeech(backend)
	}
}

// Microphone is an exclusive capture device. StartCapture acquires it and
// StopCapture releases it; onAudio receives raw chunks in EncodingInfo's
// format.
type Microphone interface {
	EncodingInfo() audio.EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

func WithMicrophone(microphone Microphone) OrchestratorOption {
	return func(o *Orchestrator) { o.microphone = microphone }
}

// Speaker plays one clip per call. onFinished is called once if the clip
// plays to its end; it is not called after Stop.
type Speaker interface {
	Play(clip audio.Clip, onFinished func()) (audio.Playback, error)
}

func WithSpeaker(speaker Speaker) OrchestratorOption {
	return func(o *Orchestrator) { o.speaker = speaker }
}

func WithModel(model api.Model) OrchestratorOption {
	return func(o *Orchestrator) {
		if model.IsValid() {
			o.model.Store(model)
		}
	}
}

// WithContextProvider sets where the opaque request context comes from. It
// is read once per send.
func WithContextProvider(provider func() map[string]any) OrchestratorOption {
	return func(o *Orchestrator) { o.contextProvider = provider }
}

// WithCoordinatorRole sets the conversation sender whose lines are shown as
// the user's side of a two-agent conversation.
func WithCoordinatorRole(role string) OrchestratorOption {
	return func(o *Orchestrator) {
		if role != "" {
			o.coordinatorRole = role
		}
	}
}

// WithGreeting seeds the transcript with an assistant message.
func WithGreeting(greeting string) OrchestratorOption {
	return func(o *Orchestrator) { o.greeting = greeting }
}

func WithIDGenerator(newID func() string) OrchestratorOption {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithEventHandler registers the renderer's event sink. Events are delivered
// synchronously from whichever goroutine caused them, so the handler should
// not block.
func WithEventHandler(handler func(events.Event)) OrchestratorOption {
	return func(o *Orchestrator) { o.eventHandler = handler }
}
