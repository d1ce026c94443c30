package audio

import "time"

// Clip is a self-contained piece of audio: raw interleaved samples plus the
// encoding needed to interpret them.
type Clip struct {
	EncodingInfo EncodingInfo
	Data         []byte
}

// AssembleClip joins captured chunks, in arrival order, into one clip.
func AssembleClip(encodingInfo EncodingInfo, chunks [][]byte) Clip {
	size := 0
	for _, chunk := range chunks {
		size += len(chunk)
	}

	data := make([]byte, 0, size)
	for _, chunk := range chunks {
		data = append(data, chunk...)
	}

	return Clip{EncodingInfo: encodingInfo, Data: data}
}

func (c Clip) IsEmpty() bool { return len(c.Data) == 0 }

// Frames returns the number of complete frames in the clip.
func (c Clip) Frames() int {
	bytesPerFrame := c.EncodingInfo.BytesPerFrame()
	if bytesPerFrame <= 0 {
		return 0
	}
	return len(c.Data) / bytesPerFrame
}

func (c Clip) Duration() time.Duration {
	if c.EncodingInfo.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.EncodingInfo.SampleRate)
}

// Playback is a live output of one clip. Stop releases the underlying
// device and must be safe to call more than once.
type Playback interface {
	Stop() error
}
