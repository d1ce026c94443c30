// Package events defines the typed event contract between the chat engine
// and whatever renders it.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - transcript.*
//   - user_input.*
//   - send_state.*
//   - capture.*
//   - playback.*
//
// transcript events
//
//   - MessageAppended (transcript.message_appended): a message was appended
//     to the transcript. Messages are never edited or removed afterwards.
//
// user_input events
//
//   - InputUpdated (user_input.updated): point-in-time snapshot of the pending
//     input buffer after it was set, cleared or extended by dictation.
//
// send_state events
//
//   - SendStarted (send_state.started): an orchestration request is in flight.
//   - SendFinished (send_state.finished): the request settled, successfully or
//     not; the engine accepts new sends again.
//
// capture events
//
//   - CaptureStateChanged (capture.state_changed): the recorder moved between
//     idle, recording and finalizing.
//   - CaptureFailed (capture.failed): a recording could not start or its
//     transcription failed. The transcript is untouched.
//
// playback events
//
//   - PlaybackStarted (playback.started): speech for a message started playing.
//   - PlaybackStopped (playback.stopped): playback ended naturally or was
//     stopped.
//   - PlaybackFailed (playback.failed): speech could not be synthesized or
//     played for a message.
package events
