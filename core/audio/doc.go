// Package audio holds the encoding metadata and clip helpers shared by the
// capture and playback paths: chunk assembly, WAV wrapping for uploads and
// MP3 decoding of synthesized speech.
package audio
