package miniaudio

import (
	"testing"
	"time"
)

func TestProcessAudioFinishesAfterQueuedPeriodsPlay(t *testing.T) {
	finished := make(chan struct{}, 1)
	stream := &PlaybackStream{
		leftoverAudio: []byte{1, 0, 2, 0, 3, 0},
		tailPeriods:   2,
		onFinished:    func() { finished <- struct{}{} },
	}
	process := stream.processAudio(2)

	out := make([]byte, 4)
	process(out, nil, 2)
	process(out, nil, 2)
	if out[0] != 3 || out[2] != 0 {
		t.Fatalf("expected last sample followed by silence, got %v", out)
	}
	process(out, nil, 2)

	select {
	case <-finished:
		t.Fatalf("expected playback to keep running while queued periods drain")
	case <-time.After(20 * time.Millisecond):
	}

	process(out, nil, 2)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("expected playback to finish after the tail periods")
	}

	process(out, nil, 2)
	select {
	case <-finished:
		t.Fatalf("expected finish to be reported once")
	case <-time.After(20 * time.Millisecond):
	}
}
