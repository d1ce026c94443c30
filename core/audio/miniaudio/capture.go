package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-chat/core/audio"
)

type captureClient struct {
	audioContext *malgo.AllocatedContext
	encodingInfo audio.EncodingInfo
	device       *malgo.Device

	onAudio func(audio []byte)

	mu sync.Mutex
}

// StartCapture acquires the default input device and streams audio to
// onAudio until StopCapture. A second call while capturing is a no-op.
func (c *captureClient) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		return nil
	}

	format := malgo.FormatS16
	channels := c.encodingInfo.ChannelCount()
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(c.encodingInfo.SampleRate)
	config.Capture.Format = format
	config.Capture.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	c.onAudio = onAudio
	device, err := malgo.InitDevice(c.audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			if c.onAudio != nil {
				c.onAudio(pInput[:n])
			}
		},
	})
	if err != nil {
		c.onAudio = nil
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		c.onAudio = nil
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	c.device = device
	return nil
}

// StopCapture stops and releases the input device. Calling it without an
// active capture is a no-op.
func (c *captureClient) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return nil
	}

	var stopErr error
	if c.device.IsStarted() {
		if err := c.device.Stop(); err != nil {
			stopErr = fmt.Errorf("failed to stop capture device: %w", err)
		}
	}

	c.device.Uninit()
	c.device = nil
	c.onAudio = nil
	return stopErr
}
