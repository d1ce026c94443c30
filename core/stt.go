package orchestration

import (
	"context"

	"github.com/koscakluka/ema-chat/core/api"
	"github.com/koscakluka/ema-chat/core/audio"
)

type speechToText struct {
	// client stores the configured speech-to-text implementation.
	client Transcriber
}

func newSpeechToText(client Transcriber) *speechToText {
	return &speechToText{client: client}
}

func (s *speechToText) isConfigured() bool {
	return s != nil && s.client != nil
}

// Transcribe runs one transcription call. Every error it returns matches
// api.ErrTranscription.
func (s *speechToText) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe recording")
	defer span.End()

	if !s.isConfigured() {
		err := ensureKind(ErrTranscriberNotConfigured, api.ErrTranscription)
		recordSpanError(span, err)
		return "", err
	}

	text, err := s.client.Transcribe(ctx, clip)
	if err != nil {
		err = ensureKind(err, api.ErrTranscription)
		recordSpanError(span, err)
		return "", err
	}

	return text, nil
}
