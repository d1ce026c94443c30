package orchestration

import (
	"context"
	"fmt"
	"sync"

	"github.com/koscakluka/ema-chat/core/audio"
	events "github.com/koscakluka/ema-chat/core/events"
)

// playbackHandle is the single live speech output. While playback is nil the
// handle only marks a message whose speech is still being synthesized.
type playbackHandle struct {
	messageID string
	playback  audio.Playback
}

// speechPlayer owns the one playback slot. Taking the slot always evicts the
// previous holder first, so two messages never play at once.
type speechPlayer struct {
	// deviceMu serializes opening and closing playbacks, so an evicted
	// playback is stopped before the next one is opened.
	deviceMu sync.Mutex

	mu     sync.Mutex
	active *playbackHandle

	speaker      Speaker
	textToSpeech *textToSpeech

	emitEvent eventEmitter
}

func newSpeechPlayer(speaker Speaker, textToSpeech *textToSpeech, emitEvent eventEmitter) *speechPlayer {
	if emitEvent == nil {
		emitEvent = noopEventEmitter
	}
	return &speechPlayer{speaker: speaker, textToSpeech: textToSpeech, emitEvent: emitEvent}
}

// ActiveMessageID returns the message currently playing or being
// synthesized, or "" when the slot is empty.
func (p *speechPlayer) ActiveMessageID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active == nil {
		return ""
	}
	return p.active.messageID
}

// Toggle stops messageID if it holds the slot, otherwise evicts whatever does
// and starts speaking text for messageID.
func (p *speechPlayer) Toggle(ctx context.Context, messageID, text string) error {
	if p.speaker == nil {
		return ErrSpeakerNotConfigured
	}

	handle, cancelled := p.claim(messageID)
	if cancelled {
		return nil
	}

	ctx, span := tracer.Start(ctx, "play message")
	defer span.End()

	clip, err := p.textToSpeech.Synthesize(ctx, text)
	if err != nil {
		p.vacate(handle)
		recordSpanError(span, err)
		countOutcome(ctx, playbackCounter, "synthesis_failure")
		logger.WarnContext(ctx, "failed to synthesize speech", "message_id", messageID, "error", err)
		p.emitEvent(events.NewPlaybackFailed(messageID, err))
		return err
	}

	started, err := p.start(handle, clip)
	switch {
	case err != nil:
		err = fmt.Errorf("failed to start playback: %w", err)
		recordSpanError(span, err)
		countOutcome(ctx, playbackCounter, "playback_failure")
		p.emitEvent(events.NewPlaybackFailed(messageID, err))
		return err
	case !started:
		// Toggled off or superseded while synthesizing.
		countOutcome(ctx, playbackCounter, "discarded")
		return nil
	}

	countOutcome(ctx, playbackCounter, "started")
	p.emitEvent(events.NewPlaybackStarted(messageID))
	return nil
}

// claim evicts the slot holder and hands the slot to messageID, unless
// messageID was the holder, in which case the slot is left empty.
func (p *speechPlayer) claim(messageID string) (handle *playbackHandle, cancelled bool) {
	p.deviceMu.Lock()
	defer p.deviceMu.Unlock()

	p.mu.Lock()
	evicted := p.active
	p.active = nil
	if evicted == nil || evicted.messageID != messageID {
		handle = &playbackHandle{messageID: messageID}
		p.active = handle
	}
	p.mu.Unlock()

	p.release(evicted, false)
	return handle, handle == nil
}

// start opens the playback for handle if it still holds the slot.
func (p *speechPlayer) start(handle *playbackHandle, clip audio.Clip) (bool, error) {
	p.deviceMu.Lock()
	defer p.deviceMu.Unlock()

	if !p.holds(handle) {
		return false, nil
	}

	playback, err := p.speaker.Play(clip, func() { p.finished(handle) })
	if err != nil {
		p.vacate(handle)
		return false, err
	}

	p.mu.Lock()
	if p.active != handle {
		// Finished before Play returned.
		p.mu.Unlock()
		stopPlayback(context.Background(), playback)
		return false, nil
	}
	handle.playback = playback
	p.mu.Unlock()
	return true, nil
}

// Stop empties the slot.
func (p *speechPlayer) Stop() {
	p.deviceMu.Lock()
	defer p.deviceMu.Unlock()

	p.mu.Lock()
	evicted := p.active
	p.active = nil
	p.mu.Unlock()

	p.release(evicted, false)
}

func (p *speechPlayer) holds(handle *playbackHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active == handle
}

func (p *speechPlayer) vacate(handle *playbackHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == handle {
		p.active = nil
	}
}

func (p *speechPlayer) finished(handle *playbackHandle) {
	p.mu.Lock()
	if p.active != handle {
		p.mu.Unlock()
		return
	}
	p.active = nil
	p.mu.Unlock()

	p.release(handle, true)
}

func (p *speechPlayer) release(handle *playbackHandle, finished bool) {
	if handle == nil {
		return
	}

	if handle.playback != nil {
		stopPlayback(context.Background(), handle.playback)
	}
	p.emitEvent(events.NewPlaybackStopped(handle.messageID, finished))
}

func stopPlayback(ctx context.Context, playback audio.Playback) {
	if err := playback.Stop(); err != nil {
		logger.WarnContext(ctx, "failed to release playback", "error", err)
	}
}
