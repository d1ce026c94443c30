package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/ema-chat/core/api"
	events "github.com/koscakluka/ema-chat/core/events"
)

func newTestPlaybackOrchestrator(t *testing.T, synthesizer *testSynthesizer, speaker *testSpeaker, opts ...OrchestratorOption) (*Orchestrator, []Message) {
	t.Helper()

	service := &testOrchestrationService{response: api.Conversation{Entries: []api.ConversationEntry{
		{Sender: "Engineer", Text: "first"},
		{Sender: "Engineer", Text: "second"},
	}}}
	opts = append([]OrchestratorOption{
		WithOrchestrationService(service),
		WithSynthesizer(synthesizer),
		WithSpeaker(speaker),
		WithIDGenerator(sequentialIDs()),
	}, opts...)
	o := NewOrchestrator(opts...)

	if err := o.Send(context.Background(), "talk"); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}
	messages := o.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	return o, messages[1:]
}

func TestTogglePlaybackSameMessageTwiceStops(t *testing.T) {
	speaker := &testSpeaker{}
	o, assistant := newTestPlaybackOrchestrator(t, &testSynthesizer{}, speaker)

	if err := o.TogglePlayback(context.Background(), assistant[0].ID); err != nil {
		t.Fatalf("expected playback to start, got %v", err)
	}
	if got := o.PlayingMessageID(); got != assistant[0].ID {
		t.Fatalf("expected %s to be playing, got %q", assistant[0].ID, got)
	}

	if err := o.TogglePlayback(context.Background(), assistant[0].ID); err != nil {
		t.Fatalf("expected playback to stop, got %v", err)
	}

	if got := o.PlayingMessageID(); got != "" {
		t.Fatalf("expected nothing playing, got %q", got)
	}
	if got := speaker.live(); got != 0 {
		t.Fatalf("expected no outstanding playback, got %d", got)
	}
	if got := len(speaker.started()); got != 1 {
		t.Fatalf("expected one playback to have started, got %d", got)
	}
}

func TestTogglePlaybackDifferentMessageStopsFirst(t *testing.T) {
	recorder := &testEventRecorder{}
	speaker := &testSpeaker{}
	o, assistant := newTestPlaybackOrchestrator(t, &testSynthesizer{}, speaker, WithEventHandler(recorder.record))

	if err := o.TogglePlayback(context.Background(), assistant[0].ID); err != nil {
		t.Fatalf("expected first playback to start, got %v", err)
	}
	if err := o.TogglePlayback(context.Background(), assistant[1].ID); err != nil {
		t.Fatalf("expected second playback to start, got %v", err)
	}

	playbacks := speaker.started()
	if len(playbacks) != 2 {
		t.Fatalf("expected 2 playbacks, got %d", len(playbacks))
	}
	if playbacks[0].stopCalls.Load() != 1 {
		t.Fatalf("expected first playback to be stopped once, got %d", playbacks[0].stopCalls.Load())
	}
	if playbacks[1].stopCalls.Load() != 0 {
		t.Fatalf("expected second playback to be live")
	}
	if got := o.PlayingMessageID(); got != assistant[1].ID {
		t.Fatalf("expected %s to be playing, got %q", assistant[1].ID, got)
	}

	kinds := recorder.kinds()
	stoppedAt, startedAt := -1, -1
	for i, kind := range kinds {
		if kind == events.KindPlaybackStopped && stoppedAt < 0 {
			stoppedAt = i
		}
		if kind == events.KindPlaybackStarted {
			startedAt = i
		}
	}
	if stoppedAt < 0 || stoppedAt > startedAt {
		t.Fatalf("expected first playback to stop before the second started, got %v", kinds)
	}
}

func TestPlaybackNaturalCompletionReleasesOnce(t *testing.T) {
	speaker := &testSpeaker{}
	o, assistant := newTestPlaybackOrchestrator(t, &testSynthesizer{}, speaker)

	if err := o.TogglePlayback(context.Background(), assistant[0].ID); err != nil {
		t.Fatalf("expected playback to start, got %v", err)
	}
	playback := speaker.started()[0]
	playback.finish()
	playback.finish()

	if got := o.PlayingMessageID(); got != "" {
		t.Fatalf("expected nothing playing, got %q", got)
	}
	if got := playback.stopCalls.Load(); got != 1 {
		t.Fatalf("expected resource to be released once, got %d", got)
	}

	if err := o.TogglePlayback(context.Background(), assistant[0].ID); err != nil {
		t.Fatalf("expected replay to start, got %v", err)
	}
	if got := len(speaker.started()); got != 2 {
		t.Fatalf("expected the message to play again, got %d playbacks", got)
	}
}

func TestPlaybackSynthesisFailureClearsMarker(t *testing.T) {
	recorder := &testEventRecorder{}
	speaker := &testSpeaker{}
	synthesizer := &testSynthesizer{err: errors.New("tts unavailable")}
	o, assistant := newTestPlaybackOrchestrator(t, synthesizer, speaker, WithEventHandler(recorder.record))
	before := o.Messages()

	err := o.TogglePlayback(context.Background(), assistant[0].ID)
	if !errors.Is(err, api.ErrSynthesis) {
		t.Fatalf("expected synthesis failure, got %v", err)
	}

	if got := o.PlayingMessageID(); got != "" {
		t.Fatalf("expected marker to be cleared, got %q", got)
	}
	if got := len(speaker.started()); got != 0 {
		t.Fatalf("expected nothing to play, got %d", got)
	}
	after := o.Messages()
	if len(after) != len(before) || after[1] != before[1] {
		t.Fatalf("expected transcript to be unchanged")
	}
	if got := recorder.count(events.KindPlaybackFailed); got != 1 {
		t.Fatalf("expected 1 playback failed event, got %d", got)
	}
}

func TestTogglePlaybackWhileSynthesizingCancels(t *testing.T) {
	speaker := &testSpeaker{}
	synthesizer := &testSynthesizer{release: make(chan struct{})}
	o, assistant := newTestPlaybackOrchestrator(t, synthesizer, speaker)

	done := make(chan error, 1)
	go func() { done <- o.TogglePlayback(context.Background(), assistant[0].ID) }()
	waitFor(t, func() bool { return synthesizer.calls.Load() == 1 }, "synthesis to start")

	if got := o.PlayingMessageID(); got != assistant[0].ID {
		t.Fatalf("expected pending message to hold the slot, got %q", got)
	}
	if err := o.TogglePlayback(context.Background(), assistant[0].ID); err != nil {
		t.Fatalf("expected cancel to succeed, got %v", err)
	}

	close(synthesizer.release)
	if err := <-done; err != nil {
		t.Fatalf("expected cancelled playback to return cleanly, got %v", err)
	}
	if got := len(speaker.started()); got != 0 {
		t.Fatalf("expected late audio to be discarded, got %d playbacks", got)
	}
	if got := o.PlayingMessageID(); got != "" {
		t.Fatalf("expected nothing playing, got %q", got)
	}
}

func TestTogglePlaybackRejectsUnknownAndUserMessages(t *testing.T) {
	speaker := &testSpeaker{}
	o, _ := newTestPlaybackOrchestrator(t, &testSynthesizer{}, speaker)

	if err := o.TogglePlayback(context.Background(), "missing"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	user := o.Messages()[0]
	if err := o.TogglePlayback(context.Background(), user.ID); !errors.Is(err, ErrNotAssistantMessage) {
		t.Fatalf("expected ErrNotAssistantMessage, got %v", err)
	}
	if got := len(speaker.started()); got != 0 {
		t.Fatalf("expected nothing to play, got %d", got)
	}
}

func TestCloseStopsPlayback(t *testing.T) {
	speaker := &testSpeaker{}
	o, assistant := newTestPlaybackOrchestrator(t, &testSynthesizer{}, speaker)

	if err := o.TogglePlayback(context.Background(), assistant[0].ID); err != nil {
		t.Fatalf("expected playback to start, got %v", err)
	}
	o.Close()

	if got := speaker.live(); got != 0 {
		t.Fatalf("expected no outstanding playback after close, got %d", got)
	}
}

func TestConcurrentTogglesNeverOpenTwoPlaybacks(t *testing.T) {
	speaker := &testSpeaker{delay: time.Millisecond}
	o, assistant := newTestPlaybackOrchestrator(t, &testSynthesizer{}, speaker)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = o.TogglePlayback(context.Background(), assistant[i%2].ID)
		}()
	}
	wg.Wait()

	if got := speaker.peakLive(); got > 1 {
		t.Fatalf("expected at most one live playback at a time, got %d", got)
	}

	o.Close()
	if got := speaker.live(); got != 0 {
		t.Fatalf("expected no outstanding playback after close, got %d", got)
	}
}
