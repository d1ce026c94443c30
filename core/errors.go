package orchestration

import "errors"

var (
	ErrEmptyInput = errors.New("send rejected: input is empty")
	ErrBusy       = errors.New("send rejected: a send is already in flight")

	ErrMessageNotFound     = errors.New("message not found")
	ErrNotAssistantMessage = errors.New("only assistant messages can be spoken")

	ErrMicrophoneNotConfigured  = errors.New("microphone not configured")
	ErrTranscriberNotConfigured = errors.New("transcriber not configured")
	ErrSpeakerNotConfigured     = errors.New("speaker not configured")
	ErrSynthesizerNotConfigured = errors.New("synthesizer not configured")
	ErrServiceNotConfigured     = errors.New("orchestration service not configured")
)
