package api

import "errors"

var (
	// ErrNetwork covers rejected requests and non-success statuses.
	ErrNetwork = errors.New("network failure")
	// ErrDecode means a payload did not have the expected shape.
	ErrDecode = errors.New("decode failure")
	// ErrServerReported is matched by every *ServerError.
	ErrServerReported = errors.New("server reported error")
	// ErrUnrecognizedResponse is returned for envelopes of an unknown kind.
	ErrUnrecognizedResponse = errors.New("unrecognized response")
	// ErrDeviceAccess means the microphone could not be acquired.
	ErrDeviceAccess  = errors.New("device access failure")
	ErrSynthesis     = errors.New("speech synthesis failure")
	ErrTranscription = errors.New("transcription failure")
)

// ServerError is an error-tagged orchestration payload. Its message is meant
// to be shown to the user as is.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

func (e *ServerError) Is(target error) bool { return target == ErrServerReported }
