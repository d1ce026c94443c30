package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/ema-chat/core/api"
	"github.com/koscakluka/ema-chat/core/audio"
	events "github.com/koscakluka/ema-chat/core/events"
)

// CaptureState is the recorder lifecycle. Failures fall back to
// CaptureIdle, there is no separate error state.
type CaptureState int32

const (
	CaptureIdle CaptureState = iota
	CaptureRecording
	CaptureFinalizing
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureRecording:
		return "recording"
	case CaptureFinalizing:
		return "finalizing"
	}
	return fmt.Sprintf("CaptureState(%d)", int32(s))
}

// captureSession lives from start to stop of one recording.
type captureSession struct {
	mu     sync.Mutex
	chunks [][]byte
	closed bool
}

// add copies the chunk since capture backends reuse their buffers.
func (s *captureSession) add(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.chunks = append(s.chunks, append([]byte(nil), chunk...))
}

// close stops collection and hands the buffered chunks over.
func (s *captureSession) close() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks := s.chunks
	s.chunks = nil
	s.closed = true
	return chunks
}

type audioInput struct {
	// state holds a CaptureState; transitions are compare-and-swap only.
	state atomic.Int32

	microphone   Microphone
	speechToText *speechToText
	input        *pendingInput

	sessionMu sync.Mutex
	session   *captureSession

	emitEvent eventEmitter
}

func newAudioInput(microphone Microphone, speechToText *speechToText, input *pendingInput, emitEvent eventEmitter) *audioInput {
	if emitEvent == nil {
		emitEvent = noopEventEmitter
	}
	return &audioInput{
		microphone:   microphone,
		speechToText: speechToText,
		input:        input,
		emitEvent:    emitEvent,
	}
}

func (a *audioInput) State() CaptureState { return CaptureState(a.state.Load()) }
func (a *audioInput) IsCapturing() bool   { return a.State() != CaptureIdle }

func (a *audioInput) transition(from, to CaptureState) bool {
	if !a.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	a.emitEvent(events.NewCaptureStateChanged(to.String()))
	return true
}

func (a *audioInput) reset() {
	a.state.Store(int32(CaptureIdle))
	a.emitEvent(events.NewCaptureStateChanged(CaptureIdle.String()))
}

// Start acquires the microphone and begins buffering. It is a no-op unless
// the recorder is idle, so a second start never opens a second device.
func (a *audioInput) Start(ctx context.Context) error {
	if a.microphone == nil {
		err := fmt.Errorf("%w: %w", api.ErrDeviceAccess, ErrMicrophoneNotConfigured)
		a.emitEvent(events.NewCaptureFailed(err))
		return err
	}

	if !a.state.CompareAndSwap(int32(CaptureIdle), int32(CaptureRecording)) {
		return nil
	}

	if err := a.acquire(ctx); err != nil {
		a.state.Store(int32(CaptureIdle))
		recordedErr := fmt.Errorf("%w: %w", api.ErrDeviceAccess, err)
		countOutcome(ctx, captureCounter, "device_failure")
		logger.WarnContext(ctx, "failed to acquire microphone", "error", err)
		a.emitEvent(events.NewCaptureFailed(recordedErr))
		return recordedErr
	}

	a.emitEvent(events.NewCaptureStateChanged(CaptureRecording.String()))
	return nil
}

// acquire holds sessionMu across device acquisition so a concurrent Stop
// waits for the device before releasing it.
func (a *audioInput) acquire(ctx context.Context) error {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	session := &captureSession{}
	if err := a.microphone.StartCapture(ctx, session.add); err != nil {
		return err
	}
	a.session = session
	return nil
}

// Stop ends the recording, releases the microphone and transcribes what was
// captured. Recognized text is appended to the pending input. Without a
// recording in progress it does nothing.
func (a *audioInput) Stop(ctx context.Context) error {
	if !a.transition(CaptureRecording, CaptureFinalizing) {
		return nil
	}
	defer a.reset()

	ctx, span := tracer.Start(ctx, "finalize recording")
	defer span.End()

	chunks := a.takeSession().close()
	if err := a.microphone.StopCapture(); err != nil {
		logger.WarnContext(ctx, "failed to release microphone", "error", err)
	}

	clip := audio.AssembleClip(a.microphone.EncodingInfo(), chunks)
	if clip.IsEmpty() {
		countOutcome(ctx, captureCounter, "empty")
		return nil
	}

	text, err := a.speechToText.Transcribe(ctx, clip)
	if err != nil {
		recordSpanError(span, err)
		countOutcome(ctx, captureCounter, "transcription_failure")
		logger.WarnContext(ctx, "failed to transcribe recording", "error", err)
		a.emitEvent(events.NewCaptureFailed(err))
		return err
	}

	countOutcome(ctx, captureCounter, "ok")
	a.input.Append(text)
	return nil
}

// Abort drops an in-progress recording without transcribing it.
func (a *audioInput) Abort() error {
	if !a.transition(CaptureRecording, CaptureFinalizing) {
		return nil
	}
	defer a.reset()

	a.takeSession().close()
	if err := a.microphone.StopCapture(); err != nil {
		return fmt.Errorf("failed to release microphone: %w", err)
	}
	return nil
}

func (a *audioInput) takeSession() *captureSession {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	session := a.session
	a.session = nil
	if session == nil {
		return &captureSession{}
	}
	return session
}

// ensureKind makes err match kind without hiding what it already matches.
func ensureKind(err, kind error) error {
	if err == nil || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
