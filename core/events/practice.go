package events

import "github.com/koscakluka/ema-tutor/core/tutoring"

const (
	KindExerciseLoaded Kind = "practice.exercise_loaded"
	KindFeedbackReady  Kind = "practice.feedback_ready"
)

type ExerciseLoaded struct {
	Base
	Exercise tutoring.Exercise
}

func NewExerciseLoaded(exercise tutoring.Exercise) ExerciseLoaded {
	return ExerciseLoaded{Base: NewBase(KindExerciseLoaded), Exercise: exercise}
}

// FeedbackReady carries grading feedback with the correctness marker already
// stripped.
type FeedbackReady struct {
	Base
	Feedback  string
	IsCorrect bool
}

func NewFeedbackReady(feedback string, isCorrect bool) FeedbackReady {
	return FeedbackReady{Base: NewBase(KindFeedbackReady), Feedback: feedback, IsCorrect: isCorrect}
}
