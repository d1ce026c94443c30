package miniaudio

import (
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-chat/core/audio"
)

// Client owns one miniaudio context. Devices are created on demand: a capture
// device for each recording and a playback device for each clip, so nothing
// holds the hardware between uses.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	captureClient

	encodingInfo audio.EncodingInfo
}

func NewClient(sampleRate int) (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("malgo context initialization failed: %w", err)
	}

	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}

	encodingInfo := audio.EncodingInfo{
		SampleRate: sampleRate,
		Format:     audio.EncodingLinear16,
		Channels:   1,
	}

	return &Client{
		audioContext:  audioCtx,
		captureClient: captureClient{audioContext: audioCtx, encodingInfo: encodingInfo},
		encodingInfo:  encodingInfo,
	}, nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return c.encodingInfo
}

// Play opens a dedicated playback device for the clip. The returned stream is
// the only owner of that device.
func (c *Client) Play(clip audio.Clip, onFinished func()) (audio.Playback, error) {
	stream, err := startPlayback(c.audioContext, clip, onFinished)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (c *Client) Close() {
	_ = c.captureClient.StopCapture()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
