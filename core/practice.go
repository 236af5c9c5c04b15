package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/sentences"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NewExercise replaces the current exercise with a freshly generated one for
// the current level and clears the previous feedback.
func (t *Tutor) NewExercise(ctx context.Context) error {
	if t.generator == nil {
		return ErrPracticeUnavailable
	}

	ctx, span := tracer.Start(ctx, "new exercise")
	defer span.End()

	t.mu.Lock()
	if err := t.registerLocked(); err != nil {
		t.mu.Unlock()
		return err
	}
	defer t.tasks.Done()

	tn := t.beginTurnLocked(ctx, turnExercise)
	t.feedback = nil
	t.clearErrorLocked()
	level := t.level
	t.mu.Unlock()

	span.SetAttributes(attribute.String("turn.id", tn.id), attribute.String("tutor.level", string(level)))

	exercise, err := t.generator.GenerateExercise(tn.ctx, level)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isCurrentLocked(tn) {
		return nil
	}
	if err != nil {
		err = fmt.Errorf("failed to generate exercise: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.abortTurnLocked(tn, err)
		t.raiseErrorLocked(ExerciseErrorMessage, err)
		return err
	}

	t.exercise = &exercise
	t.emitter.emit(events.NewExerciseLoaded(exercise))
	t.resolveTurnLocked(tn)
	return nil
}

// CheckAnswer grades answer against the current exercise and voices the
// feedback. A correct answer makes the tutor celebrate once the feedback has
// been played.
func (t *Tutor) CheckAnswer(ctx context.Context, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	if t.grader == nil {
		return ErrPracticeUnavailable
	}

	ctx, span := tracer.Start(ctx, "check answer")
	defer span.End()

	t.mu.Lock()
	if t.exercise == nil {
		t.mu.Unlock()
		return tutoring.ErrNoExercise
	}
	if err := t.registerLocked(); err != nil {
		t.mu.Unlock()
		return err
	}
	defer t.tasks.Done()

	tn := t.beginTurnLocked(ctx, turnFeedback)
	t.clearErrorLocked()
	exercise := *t.exercise
	level := t.level
	t.mu.Unlock()

	span.SetAttributes(attribute.String("turn.id", tn.id), attribute.String("exercise.type", exercise.Type))

	graded, err := t.grader.GradeAnswer(tn.ctx, exercise, level, answer)

	t.mu.Lock()
	if !t.isCurrentLocked(tn) {
		t.mu.Unlock()
		return nil
	}
	if err != nil {
		defer t.mu.Unlock()
		err = fmt.Errorf("failed to grade answer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.abortTurnLocked(tn, err)
		t.raiseErrorLocked(GradingErrorMessage, err)
		return err
	}

	feedback, isCorrect := tutoring.ParseFeedback(graded)
	span.SetAttributes(attribute.Bool("exercise.correct", isCorrect))
	t.feedback = &Feedback{Text: feedback, IsCorrect: isCorrect}
	tn.happy = isCorrect
	t.emitter.emit(events.NewFeedbackReady(feedback, isCorrect))
	t.mu.Unlock()

	if !sentences.IsBlank(feedback) {
		if t.voiced() {
			t.dispatch(tn, feedback)
		} else {
			t.warnAudioUnavailable()
		}
	}
	if err := tn.group.Wait(); err != nil {
		span.RecordError(err)
		logger.Warn("feedback speech failed", "turn", tn.id, "error", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isCurrentLocked(tn) {
		t.resolveTurnLocked(tn)
	}
	return nil
}
