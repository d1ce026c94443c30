package orchestration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/ema-chat/core/api"
	"github.com/koscakluka/ema-chat/core/audio"
	events "github.com/koscakluka/ema-chat/core/events"
)

type testOrchestrationService struct {
	calls    atomic.Int32
	requests chan api.Request
	release  chan struct{}

	response api.Response
	err      error
}

func (s *testOrchestrationService) Orchestrate(ctx context.Context, request api.Request) (api.Response, error) {
	s.calls.Add(1)
	if s.requests != nil {
		s.requests <- request
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.response, s.err
}

type testTranscriber struct {
	calls atomic.Int32
	clips chan audio.Clip

	text string
	err  error
}

func (t *testTranscriber) Transcribe(_ context.Context, clip audio.Clip) (string, error) {
	t.calls.Add(1)
	if t.clips != nil {
		t.clips <- clip
	}
	return t.text, t.err
}

type testSynthesizer struct {
	calls   atomic.Int32
	release chan struct{}

	err error
}

func (s *testSynthesizer) Synthesize(_ context.Context, text string) (audio.Clip, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return audio.Clip{}, s.err
	}
	return audio.Clip{EncodingInfo: audio.GetDefaultEncodingInfo(), Data: []byte(text)}, nil
}

type testMicrophone struct {
	startCalls atomic.Int32
	stopCalls  atomic.Int32
	held       atomic.Int32

	chunks   [][]byte
	startErr error
	stopErr  error
}

func (m *testMicrophone) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (m *testMicrophone) StartCapture(_ context.Context, onAudio func([]byte)) error {
	m.startCalls.Add(1)
	if m.startErr != nil {
		return m.startErr
	}
	m.held.Add(1)
	for _, chunk := range m.chunks {
		onAudio(chunk)
	}
	return nil
}

func (m *testMicrophone) StopCapture() error {
	m.stopCalls.Add(1)
	if m.held.Load() > 0 {
		m.held.Add(-1)
	}
	return m.stopErr
}

type testSpeaker struct {
	mu        sync.Mutex
	playbacks []*testPlayback
	maxLive   int

	// delay is how long opening the device takes.
	delay time.Duration
	err   error
}

func (s *testSpeaker) Play(clip audio.Clip, onFinished func()) (audio.Playback, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	playback := &testPlayback{clip: clip, onFinished: onFinished}
	s.playbacks = append(s.playbacks, playback)

	live := 0
	for _, p := range s.playbacks {
		if p.stopCalls.Load() == 0 {
			live++
		}
	}
	s.maxLive = max(s.maxLive, live)
	return playback, nil
}

func (s *testSpeaker) peakLive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxLive
}

func (s *testSpeaker) started() []*testPlayback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*testPlayback(nil), s.playbacks...)
}

func (s *testSpeaker) live() int {
	live := 0
	for _, playback := range s.started() {
		if playback.stopCalls.Load() == 0 {
			live++
		}
	}
	return live
}

type testPlayback struct {
	clip       audio.Clip
	onFinished func()
	stopCalls  atomic.Int32
}

func (p *testPlayback) Stop() error {
	p.stopCalls.Add(1)
	return nil
}

// finish simulates the audio running to its end.
func (p *testPlayback) finish() { p.onFinished() }

type testEventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *testEventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *testEventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *testEventRecorder) count(kind events.Kind) int {
	count := 0
	for _, k := range r.kinds() {
		if k == kind {
			count++
		}
	}
	return count
}

func sequentialIDs() func() string {
	var next atomic.Int32
	return func() string { return fmt.Sprintf("m%d", next.Add(1)) }
}

func waitFor(t *testing.T, condition func() bool, description string) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}
