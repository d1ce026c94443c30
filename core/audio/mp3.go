package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes a complete MP3 payload into a linear16 clip. The decoder
// always produces interleaved stereo at the stream's sample rate.
func DecodeMP3(data []byte) (Clip, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Clip{}, fmt.Errorf("failed to open mp3 stream: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to decode mp3 stream: %w", err)
	}

	return Clip{
		EncodingInfo: EncodingInfo{
			SampleRate: decoder.SampleRate(),
			Format:     EncodingLinear16,
			Channels:   2,
		},
		Data: pcm,
	}, nil
}
