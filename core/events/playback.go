package events

const (
	// KindPlaybackStarted identifies start of message speech playback.
	KindPlaybackStarted Kind = "playback.started"
	// KindPlaybackStopped identifies end of message speech playback.
	KindPlaybackStopped Kind = "playback.stopped"
	// KindPlaybackFailed identifies failed synthesis or playback.
	KindPlaybackFailed Kind = "playback.failed"
)

// PlaybackStarted marks that speech for a message started playing.
type PlaybackStarted struct {
	Base
	MessageID string
}

// NewPlaybackStarted creates a playback started event.
func NewPlaybackStarted(messageID string) PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted), MessageID: messageID}
}

// PlaybackStopped marks the end of playback. Finished is true when the audio
// ran to its natural end rather than being stopped.
type PlaybackStopped struct {
	Base
	MessageID string
	Finished  bool
}

// NewPlaybackStopped creates a playback stopped event.
func NewPlaybackStopped(messageID string, finished bool) PlaybackStopped {
	return PlaybackStopped{Base: NewBase(KindPlaybackStopped), MessageID: messageID, Finished: finished}
}

// PlaybackFailed carries why speech for a message did not play.
type PlaybackFailed struct {
	Base
	MessageID string
	Err       error
}

// NewPlaybackFailed creates a playback failed event.
func NewPlaybackFailed(messageID string, err error) PlaybackFailed {
	return PlaybackFailed{Base: NewBase(KindPlaybackFailed), MessageID: messageID, Err: err}
}
