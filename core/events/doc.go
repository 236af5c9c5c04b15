// Package events defines the observable contract between the tutor session
// and its front-end.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - transcript.*
//   - turn_state.*
//   - assistant_speech.*
//   - expression.*
//   - practice.*
//   - session.*
//   - user_input.*
//
// transcript events
//
//   - TranscriptUpdated (transcript.updated): deep-copied snapshot of the
//     whole transcript after any change.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a chat turn or greeting started.
//   - TurnCompleted (turn_state.completed): the reply stream ended and every
//     dispatched sentence settled.
//   - TurnFailed (turn_state.failed): the reply stream failed.
//   - TurnCancelled (turn_state.cancelled): a newer turn took over.
//
// assistant_speech events
//
//   - AssistantSpeechScheduled (assistant_speech.scheduled): a sentence was
//     placed on the playback timeline.
//   - AssistantSpeechSkipped (assistant_speech.skipped): a sentence produced
//     no audio and was dropped.
//   - AssistantPlaybackEnded (assistant_speech.playback_ended): the queued
//     timeline finished playing.
//
// expression events
//
//   - ExpressionChanged (expression.changed): the tutor's expression changed.
//
// practice events
//
//   - ExerciseLoaded (practice.exercise_loaded): a new exercise replaced the
//     current one.
//   - FeedbackReady (practice.feedback_ready): grading feedback arrived.
//
// session events
//
//   - ErrorRaised (session.error): user-facing error message, or an empty
//     message when the error is cleared.
//   - WarningRaised (session.warning): non-blocking warning.
//   - LoadingChanged (session.loading): a mode started or stopped loading.
//   - LevelChanged (session.level_changed) and ModeChanged
//     (session.mode_changed).
//
// user_input events
//
//   - UserTranscriptInterimUpdated (user_input.transcript_interim_updated):
//     running voice transcript.
//   - UserTranscriptFinal (user_input.transcript_final): final voice
//     transcript before it is submitted.
package events
