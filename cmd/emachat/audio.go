package main

import (
	"fmt"

	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/audio/miniaudio"
	"github.com/koscakluka/ema-chat/core/audio/portaudio"
	"github.com/koscakluka/ema-chat/internal/config"
)

type audioBackend interface {
	orchestration.Microphone
	orchestration.Speaker
	Close()
}

type audioDevice struct {
	backend audioBackend
}

const portaudioBufferSize = 512

func openAudioDevice(cfg config.AudioConfig) (*audioDevice, error) {
	switch cfg.Driver {
	case config.AudioDriverMiniaudio:
		client, err := miniaudio.NewClient(cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to open miniaudio: %w", err)
		}
		return &audioDevice{backend: client}, nil

	case config.AudioDriverPortaudio:
		client, err := portaudio.NewClient(cfg.SampleRate, portaudioBufferSize)
		if err != nil {
			return nil, fmt.Errorf("failed to open portaudio: %w", err)
		}
		return &audioDevice{backend: client}, nil

	default:
		return &audioDevice{}, nil
	}
}

// options wires the device as microphone and speaker. Without a device
// recording and playback report that they are not configured.
func (d *audioDevice) options() []orchestration.OrchestratorOption {
	if d.backend == nil {
		return nil
	}
	return []orchestration.OrchestratorOption{
		orchestration.WithMicrophone(d.backend),
		orchestration.WithSpeaker(d.backend),
	}
}

func (d *audioDevice) Close() {
	if d.backend != nil {
		d.backend.Close()
	}
}
