package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/expression"
	"github.com/koscakluka/ema-tutor/core/tutoring"
)

var testExercise = tutoring.Exercise{
	Type:     "fill-in-the-blank",
	Question: "Ayer yo ___ (ir) al mercado.",
	Answer:   "fui",
}

type practiceTutor struct {
	voicedTutor
	generator *exerciseStub
	grader    *graderStub
}

func newPracticeTutor(t *testing.T, grader *graderStub) practiceTutor {
	t.Helper()

	p := practiceTutor{
		voicedTutor: voicedTutor{
			chat:     &chatStub{},
			synth:    newSynthStub(),
			output:   &outputStub{},
			clock:    &fakeClock{},
			animator: &animatorStub{},
			events:   &eventRecorder{},
		},
		generator: &exerciseStub{exercise: testExercise},
		grader:    grader,
	}
	p.tutor = NewTutor(
		WithChatLLM(p.chat),
		WithSpeechSynthesizer(p.synth),
		WithAudioOutput(p.output),
		WithClock(p.clock),
		WithAnimator(p.animator),
		WithEventHandler(p.events.handle),
		WithExerciseGenerator(p.generator),
		WithExerciseGrader(p.grader),
	)
	t.Cleanup(p.tutor.Close)
	return p
}

func TestSetModeToPracticeFetchesExercise(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{})

	if err := p.tutor.SetMode(context.Background(), tutoring.ModePractice); err != nil {
		t.Fatalf("expected mode switch to succeed, got %v", err)
	}

	snapshot := p.tutor.Snapshot()
	if snapshot.Mode != tutoring.ModePractice {
		t.Fatalf("expected practice mode, got %s", snapshot.Mode)
	}
	if snapshot.Exercise == nil || *snapshot.Exercise != testExercise {
		t.Fatalf("expected exercise to be loaded, got %+v", snapshot.Exercise)
	}
	if snapshot.Expression != expression.Idle {
		t.Fatalf("expected idle after loading, got %s", snapshot.Expression)
	}

	// Switching back and forth keeps the exercise.
	_ = p.tutor.SetMode(context.Background(), tutoring.ModeChat)
	_ = p.tutor.SetMode(context.Background(), tutoring.ModePractice)
	if p.generator.calls != 1 {
		t.Fatalf("expected one exercise request, got %d", p.generator.calls)
	}
}

func TestCheckAnswerCelebratesCorrectAnswerAfterPlayback(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{feedback: "[CORRECT] ¡Muy bien! **Fui** es correcto."})
	if err := p.tutor.NewExercise(context.Background()); err != nil {
		t.Fatalf("expected exercise to load, got %v", err)
	}

	if err := p.tutor.CheckAnswer(context.Background(), " fui "); err != nil {
		t.Fatalf("expected grading to succeed, got %v", err)
	}

	if got := p.grader.answers; len(got) != 1 || got[0] != "fui" {
		t.Fatalf("expected trimmed answer to be graded, got %q", got)
	}
	snapshot := p.tutor.Snapshot()
	if snapshot.Feedback == nil || !snapshot.Feedback.IsCorrect {
		t.Fatalf("expected correct feedback, got %+v", snapshot.Feedback)
	}
	if got := snapshot.Feedback.Text; got != "¡Muy bien! **Fui** es correcto." {
		t.Fatalf("expected marker to be stripped, got %q", got)
	}
	if snapshot.Expression != expression.Talking {
		t.Fatalf("expected talking while feedback plays, got %s", snapshot.Expression)
	}
	if got := p.synth.calls; len(got) != 1 || got[0] != "¡Muy bien! Fui es correcto." {
		t.Fatalf("expected feedback to be synthesized without markup, got %q", got)
	}

	p.clock.fireLast()
	if got := p.tutor.Expression(); got != expression.Happy {
		t.Fatalf("expected happy after correct feedback, got %s", got)
	}
	if got := p.animator.last(); got != expression.AnimationHappy {
		t.Fatalf("expected happy animation, got %q", got)
	}

	p.tutor.AnimationEnded()
	if got := p.animator.last(); got != expression.AnimationIdle {
		t.Fatalf("expected idle animation after the celebration, got %q", got)
	}
	if got := p.tutor.Expression(); got != expression.Happy {
		t.Fatalf("expected expression to stay happy, got %s", got)
	}
}

func TestCheckAnswerIncorrectEndsIdle(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{feedback: "Casi. La respuesta es fui."})
	if err := p.tutor.NewExercise(context.Background()); err != nil {
		t.Fatalf("expected exercise to load, got %v", err)
	}

	if err := p.tutor.CheckAnswer(context.Background(), "iba"); err != nil {
		t.Fatalf("expected grading to succeed, got %v", err)
	}
	p.clock.fireLast()

	if got := p.tutor.Expression(); got != expression.Idle {
		t.Fatalf("expected idle after incorrect feedback, got %s", got)
	}
	waitForCondition(t, time.Second, "feedback event", func() bool {
		return p.events.count(events.KindFeedbackReady) == 1
	})
	if feedback := p.events.ofKind(events.KindFeedbackReady)[0].(events.FeedbackReady); feedback.IsCorrect {
		t.Fatalf("expected incorrect feedback event")
	}
}

func TestCheckAnswerWithoutExercise(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{feedback: "[CORRECT]"})

	if err := p.tutor.CheckAnswer(context.Background(), "fui"); !errors.Is(err, tutoring.ErrNoExercise) {
		t.Fatalf("expected ErrNoExercise, got %v", err)
	}
}

func TestCheckAnswerFailureRaisesError(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{err: errors.New("quota")})
	if err := p.tutor.NewExercise(context.Background()); err != nil {
		t.Fatalf("expected exercise to load, got %v", err)
	}

	if err := p.tutor.CheckAnswer(context.Background(), "fui"); err == nil {
		t.Fatalf("expected grading failure")
	}

	snapshot := p.tutor.Snapshot()
	if snapshot.Error != GradingErrorMessage {
		t.Fatalf("expected grading error message, got %q", snapshot.Error)
	}
	if snapshot.Expression != expression.Idle || snapshot.PracticeLoading {
		t.Fatalf("expected idle and not loading, got %s and %v", snapshot.Expression, snapshot.PracticeLoading)
	}
}

func TestNewExerciseFailureKeepsPreviousExercise(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{})
	if err := p.tutor.NewExercise(context.Background()); err != nil {
		t.Fatalf("expected exercise to load, got %v", err)
	}

	p.generator.mu.Lock()
	p.generator.err = errors.New("unavailable")
	p.generator.mu.Unlock()

	if err := p.tutor.NewExercise(context.Background()); err == nil {
		t.Fatalf("expected exercise failure")
	}

	snapshot := p.tutor.Snapshot()
	if snapshot.Error != ExerciseErrorMessage {
		t.Fatalf("expected exercise error message, got %q", snapshot.Error)
	}
	if snapshot.Exercise == nil || *snapshot.Exercise != testExercise {
		t.Fatalf("expected previous exercise to stay, got %+v", snapshot.Exercise)
	}
	if snapshot.Expression != expression.Idle {
		t.Fatalf("expected idle after failure, got %s", snapshot.Expression)
	}
}

func TestRestartFollowsMode(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{})
	p.chat.streams = []*streamStub{{chunks: []string{"¡Hola!"}}}

	if err := p.tutor.Restart(context.Background()); err != nil {
		t.Fatalf("expected restart in chat to succeed, got %v", err)
	}
	if got := p.chat.callCount(); got != 1 {
		t.Fatalf("expected a greeting request, got %d", got)
	}

	if err := p.tutor.SetMode(context.Background(), tutoring.ModePractice); err != nil {
		t.Fatalf("expected mode switch to succeed, got %v", err)
	}
	if err := p.tutor.Restart(context.Background()); err != nil {
		t.Fatalf("expected restart in practice to succeed, got %v", err)
	}
	if p.generator.calls != 2 {
		t.Fatalf("expected two exercise requests, got %d", p.generator.calls)
	}
}

func TestSetLevelStartsNewConversation(t *testing.T) {
	p := newPracticeTutor(t, &graderStub{})
	p.chat.streams = []*streamStub{{chunks: []string{"¡Hola!"}}}

	if err := p.tutor.SetLevel(context.Background(), tutoring.LevelC1); err != nil {
		t.Fatalf("expected level change to succeed, got %v", err)
	}

	if got := p.chat.call(0).instructions; got != tutoring.SystemInstruction(tutoring.LevelC1) {
		t.Fatalf("expected C1 instructions for the new greeting")
	}
	if got := p.tutor.Snapshot().Level; got != tutoring.LevelC1 {
		t.Fatalf("expected level C1, got %s", got)
	}

	if err := p.tutor.SetLevel(context.Background(), tutoring.Level("A1")); err == nil {
		t.Fatalf("expected unknown level to be rejected")
	}
}
