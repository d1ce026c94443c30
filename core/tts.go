package orchestration

import (
	"context"

	"github.com/koscakluka/ema-chat/core/api"
	"github.com/koscakluka/ema-chat/core/audio"
)

type textToSpeech struct {
	// client stores the configured speech synthesis implementation.
	client Synthesizer
}

func newTextToSpeech(client Synthesizer) *textToSpeech {
	return &textToSpeech{client: client}
}

func (t *textToSpeech) isConfigured() bool {
	return t != nil && t.client != nil
}

// Synthesize requests speech for text. Every error it returns matches
// api.ErrSynthesis.
func (t *textToSpeech) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()

	if !t.isConfigured() {
		err := ensureKind(ErrSynthesizerNotConfigured, api.ErrSynthesis)
		recordSpanError(span, err)
		return audio.Clip{}, err
	}

	clip, err := t.client.Synthesize(ctx, text)
	if err != nil {
		err = ensureKind(err, api.ErrSynthesis)
		recordSpanError(span, err)
		return audio.Clip{}, err
	}

	return clip, nil
}
