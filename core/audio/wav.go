package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

const wavHeaderSize = 44

// EncodeWAV wraps a linear16 clip in a RIFF/WAVE container.
func EncodeWAV(clip Clip) ([]byte, error) {
	if clip.EncodingInfo.Format != EncodingLinear16 {
		return nil, fmt.Errorf("%w: wav encoding needs linear16, got %q", ErrUnsupportedFormat, clip.EncodingInfo.Format)
	}
	if clip.EncodingInfo.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", clip.EncodingInfo.SampleRate)
	}

	channels := uint16(clip.EncodingInfo.ChannelCount())
	bitsPerSample := uint16(16)
	blockAlign := channels * bitsPerSample / 8
	// Drop a trailing partial frame so players do not choke on it.
	data := clip.Data[:len(clip.Data)-len(clip.Data)%int(blockAlign)]
	dataSize := uint32(len(data))

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    uint32(clip.EncodingInfo.SampleRate),
		ByteRate:      uint32(clip.EncodingInfo.SampleRate) * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(data)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write wav header: %w", err)
	}
	buf.Write(data)

	return buf.Bytes(), nil
}
