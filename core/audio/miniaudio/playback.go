package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-chat/core/audio"
)

const playbackPeriods = 4

// PlaybackStream plays exactly one clip on its own device.
type PlaybackStream struct {
	device *malgo.Device

	audioMu       sync.Mutex
	leftoverAudio []byte

	// tailPeriods is how many silent periods follow the last audio before
	// the clip counts as finished, so queued periods are heard in full.
	tailPeriods   int
	silentPeriods int
	finishOnce    sync.Once
	onFinished    func()

	stopOnce sync.Once
	stopErr  error
}

func startPlayback(audioContext *malgo.AllocatedContext, clip audio.Clip, onFinished func()) (*PlaybackStream, error) {
	if clip.EncodingInfo.Format != audio.EncodingLinear16 {
		return nil, fmt.Errorf("%w: playback needs linear16, got %q", audio.ErrUnsupportedFormat, clip.EncodingInfo.Format)
	}
	if onFinished == nil {
		onFinished = func() {}
	}

	format := malgo.FormatS16
	channels := clip.EncodingInfo.ChannelCount()
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels
	sampleRate := uint32(clip.EncodingInfo.SampleRate)

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = sampleRate
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	config.Periods = playbackPeriods

	stream := &PlaybackStream{
		leftoverAudio: clip.Data,
		tailPeriods:   playbackPeriods,
		onFinished:    onFinished,
	}

	var err error
	if stream.device, err = malgo.InitDevice(
		audioContext.Context,
		config,
		malgo.DeviceCallbacks{Data: stream.processAudio(bytesPerFrame)},
	); err != nil {
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := stream.device.Start(); err != nil {
		stream.device.Uninit()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return stream, nil
}

// Stop halts playback and releases the device. Repeated calls are ignored.
func (s *PlaybackStream) Stop() error {
	s.stopOnce.Do(func() {
		if s.device.IsStarted() {
			if err := s.device.Stop(); err != nil {
				s.stopErr = fmt.Errorf("failed to stop playback device: %w", err)
			}
		}
		s.device.Uninit()

		s.audioMu.Lock()
		s.leftoverAudio = nil
		s.audioMu.Unlock()
	})
	return s.stopErr
}

func (s *PlaybackStream) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		s.audioMu.Lock()
		n := copy(pOutput[:need], s.leftoverAudio)
		s.leftoverAudio = s.leftoverAudio[n:]
		if n == 0 {
			s.silentPeriods++
		}
		finished := n == 0 && s.silentPeriods >= s.tailPeriods
		s.audioMu.Unlock()

		if n < need {
			clear(pOutput[n:need])
		}

		if finished {
			// The device must not be stopped from its own callback.
			s.finishOnce.Do(func() { go s.onFinished() })
		}
	}
}
