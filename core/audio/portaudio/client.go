package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-chat/core/audio"
)

// Client is a blocking-I/O alternative to the miniaudio backend. The
// microphone stream is opened per recording; every clip gets its own output
// stream.
type Client struct {
	bufferSize int
	sampleRate int

	mu          sync.Mutex
	stream      *portaudio.Stream
	stopCapture context.CancelFunc
	captureDone chan struct{}
}

func NewClient(sampleRate, bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	if bufferSize <= 0 {
		bufferSize = 512
	}

	return &Client{bufferSize: bufferSize, sampleRate: sampleRate}, nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: c.sampleRate,
		Format:     audio.EncodingLinear16,
		Channels:   1,
	}
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return nil
	}

	in := make([]int16, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(c.sampleRate), c.bufferSize, in)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	captureCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	c.stream, c.stopCapture, c.captureDone = stream, cancel, done

	go func() {
		defer close(done)
		for {
			select {
			case <-captureCtx.Done():
				return
			default:
			}

			if err := stream.Read(); err != nil {
				logger.Warn("failed to read from input stream", "error", err)
				continue
			}

			audioBuffer := bytes.Buffer{}
			_ = binary.Write(&audioBuffer, binary.LittleEndian, in)
			onAudio(audioBuffer.Bytes())
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return nil
	}

	c.stopCapture()
	<-c.captureDone

	err := errors.Join(c.stream.Stop(), c.stream.Close())
	c.stream, c.stopCapture, c.captureDone = nil, nil, nil
	if err != nil {
		return fmt.Errorf("failed to release input stream: %w", err)
	}
	return nil
}

// Play writes the clip to a fresh output stream from a background goroutine.
func (c *Client) Play(clip audio.Clip, onFinished func()) (audio.Playback, error) {
	if clip.EncodingInfo.Format != audio.EncodingLinear16 {
		return nil, fmt.Errorf("%w: playback needs linear16, got %q", audio.ErrUnsupportedFormat, clip.EncodingInfo.Format)
	}
	if onFinished == nil {
		onFinished = func() {}
	}

	channels := clip.EncodingInfo.ChannelCount()
	out := make([]int16, c.bufferSize*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(clip.EncodingInfo.SampleRate), c.bufferSize, out)
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("failed to start output stream: %w", err)
	}

	samples := make([]int16, len(clip.Data)/2)
	_ = binary.Read(bytes.NewReader(clip.Data[:len(samples)*2]), binary.LittleEndian, samples)

	playback := &playbackStream{stream: stream, stopped: make(chan struct{}), done: make(chan struct{})}
	go playback.run(samples, out, onFinished)
	return playback, nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	_ = portaudio.Terminate()
}

type playbackStream struct {
	stream *portaudio.Stream

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
	stopErr  error
}

func (p *playbackStream) run(samples, out []int16, onFinished func()) {
	defer close(p.done)
	for offset := 0; offset < len(samples); offset += len(out) {
		select {
		case <-p.stopped:
			return
		default:
		}

		n := copy(out, samples[offset:])
		clear(out[n:])
		if err := p.stream.Write(); err != nil {
			logger.Warn("failed to write to output stream", "error", err)
			return
		}
	}

	select {
	case <-p.stopped:
	default:
		go onFinished()
	}
}

func (p *playbackStream) Stop() error {
	p.stopOnce.Do(func() {
		close(p.stopped)
		<-p.done
		p.stopErr = errors.Join(p.stream.Stop(), p.stream.Close())
	})
	return p.stopErr
}
