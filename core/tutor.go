package orchestration

import (
	"context"
	"errors"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/expression"
	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/playback"
	"github.com/koscakluka/ema-tutor/core/speechtotext"
	"github.com/koscakluka/ema-tutor/core/tutoring"
)

var (
	ErrChatUnavailable     = errors.New("chat model is not configured")
	ErrPracticeUnavailable = errors.New("exercise generation is not configured")
	ErrVoiceUnavailable    = errors.New("voice input is not configured")
	ErrClosed              = errors.New("tutor is closed")
)

// User-facing messages.
const (
	ChatErrorMessage     = "Sorry, I encountered an error. Please try again."
	GreetingErrorMessage = "Failed to initialize chat. Please check your API key and restart."
	ExerciseErrorMessage = "Failed to fetch a new exercise. Please try again."
	GradingErrorMessage  = "Failed to check your answer. Please try again."
	VoiceErrorMessage    = "Voice input failed. Please try again."
	AudioWarningMessage  = "Audio playback is not available; continuing in text-only mode."
)

// Tutor is a single tutoring session: the chat transcript, the current
// practice exercise, the avatar's expression and the speech timeline.
//
// At most one turn is active at a time. Starting a chat message, a greeting,
// an exercise fetch or an answer check supersedes whatever turn was running.
type Tutor struct {
	mu sync.Mutex

	level      tutoring.Level
	mode       tutoring.Mode
	transcript transcript
	exercise   *tutoring.Exercise
	feedback   *Feedback
	loading    map[tutoring.Mode]bool
	lastError  string
	turn       *turn
	voice      *voiceSession
	closed     bool

	chat        ChatLLM
	synthesizer SpeechSynthesizer
	output      playback.Output
	generator   ExerciseGenerator
	grader      ExerciseGrader
	audioInput  AudioInput
	transcriber speechtotext.Transcriber
	animator    expression.Animator
	handler     events.Handler
	clock       playback.Clock

	scheduler  *playback.Scheduler
	expression *expression.Machine
	emitter    *eventEmitter
	// epoch stands in for the scheduler's epoch in text-only mode.
	epoch playback.Epoch

	tasks        sync.WaitGroup
	voiceMu      sync.Mutex
	audioWarning sync.Once
	closeOnce    sync.Once
}

// Feedback is the graded result of the last answer.
type Feedback struct {
	Text      string
	IsCorrect bool
}

// Snapshot is a deep copy of the session state.
type Snapshot struct {
	Level           tutoring.Level
	Mode            tutoring.Mode
	Messages        []llms.Message
	Exercise        *tutoring.Exercise
	Feedback        *Feedback
	ChatLoading     bool
	PracticeLoading bool
	Error           string
	Expression      expression.Expression
	Recording       bool
}

func NewTutor(opts ...TutorOption) *Tutor {
	t := &Tutor{
		level:   tutoring.DefaultLevel,
		mode:    tutoring.ModeChat,
		loading: map[tutoring.Mode]bool{},
	}
	for _, opt := range opts {
		opt(t)
	}

	t.emitter = newEventEmitter(t.handler)
	t.expression = expression.New(
		expression.WithAnimator(t.animator),
		expression.WithChangeCallback(func(from, to expression.Expression) {
			t.emitter.emit(events.NewExpressionChanged(from, to))
		}),
	)

	if t.output != nil {
		schedulerOpts := []playback.Option{playback.WithFinishedCallback(t.onPlaybackFinished)}
		if t.clock != nil {
			schedulerOpts = append(schedulerOpts, playback.WithClock(t.clock))
		}
		t.scheduler = playback.NewScheduler(t.output, schedulerOpts...)
	}

	return t
}

// Close cancels the active turn and voice input and waits for every
// in-flight operation to settle. The tutor cannot be used afterwards.
func (t *Tutor) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		if t.turn != nil {
			t.turn.cancel()
		}
		t.resetTimelineLocked()
		t.mu.Unlock()

		if err := t.StopVoiceInput(); err != nil {
			logger.Debug("failed to stop voice input on close", "error", err)
		}

		t.tasks.Wait()
		t.emitter.close()
	})
}

func (t *Tutor) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := Snapshot{
		Level:           t.level,
		Mode:            t.mode,
		Messages:        t.transcript.snapshot(),
		ChatLoading:     t.loading[tutoring.ModeChat],
		PracticeLoading: t.loading[tutoring.ModePractice],
		Error:           t.lastError,
		Expression:      t.expression.Current(),
		Recording:       t.voice != nil,
	}
	if t.exercise != nil {
		snapshot.Exercise = &tutoring.Exercise{}
		if err := copier.Copy(snapshot.Exercise, t.exercise); err != nil {
			logger.Error("failed to copy exercise", "error", err)
		}
	}
	if t.feedback != nil {
		feedback := *t.feedback
		snapshot.Feedback = &feedback
	}
	return snapshot
}

// SetLevel switches the proficiency level and starts a new conversation at
// that level.
func (t *Tutor) SetLevel(ctx context.Context, level tutoring.Level) error {
	level, err := tutoring.ParseLevel(string(level))
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.level == level {
		t.mu.Unlock()
		return nil
	}
	t.level = level
	t.emitter.emit(events.NewLevelChanged(level))
	t.mu.Unlock()

	return t.NewConversation(ctx)
}

// SetMode switches between chat and practice. Entering practice without an
// exercise fetches one.
func (t *Tutor) SetMode(ctx context.Context, mode tutoring.Mode) error {
	mode, err := tutoring.ParseMode(string(mode))
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.mode == mode {
		t.mu.Unlock()
		return nil
	}
	t.mode = mode
	t.emitter.emit(events.NewModeChanged(mode))
	needsExercise := mode == tutoring.ModePractice && t.exercise == nil
	t.mu.Unlock()

	if needsExercise {
		return t.NewExercise(ctx)
	}
	return nil
}

// Restart starts over in the current mode: a fresh conversation in chat, a
// new exercise in practice.
func (t *Tutor) Restart(ctx context.Context) error {
	t.mu.Lock()
	mode := t.mode
	t.mu.Unlock()

	if mode == tutoring.ModePractice {
		return t.NewExercise(ctx)
	}
	return t.NewConversation(ctx)
}

// AnimationEnded forwards the avatar's notification that a one-shot
// animation finished.
func (t *Tutor) AnimationEnded() {
	t.expression.AnimationEnded()
}

func (t *Tutor) Expression() expression.Expression {
	return t.expression.Current()
}

func (t *Tutor) fireLocked(event expression.Event) {
	if err := t.expression.Fire(event); err != nil {
		logger.Debug("expression transition ignored", "event", event.String(), "error", err)
	}
}

func (t *Tutor) setLoadingLocked(mode tutoring.Mode, loading bool) {
	if t.loading[mode] == loading {
		return
	}
	t.loading[mode] = loading
	t.emitter.emit(events.NewLoadingChanged(mode, loading))
}

func (t *Tutor) raiseErrorLocked(message string, err error) {
	t.lastError = message
	t.emitter.emit(events.NewErrorRaised(message, err))
}

func (t *Tutor) clearErrorLocked() {
	if t.lastError == "" {
		return
	}
	t.lastError = ""
	t.emitter.emit(events.NewErrorRaised("", nil))
}

func (t *Tutor) emitTranscriptLocked() {
	t.emitter.emit(events.NewTranscriptUpdated(t.transcript.snapshot()))
}

func (t *Tutor) warnAudioUnavailable() {
	t.audioWarning.Do(func() {
		logger.Warn("audio playback unavailable")
		t.emitter.emit(events.NewWarningRaised(AudioWarningMessage))
	})
}

// register marks the start of an operation Close must wait for.
func (t *Tutor) registerLocked() error {
	if t.closed {
		return ErrClosed
	}
	t.tasks.Add(1)
	return nil
}

func (t *Tutor) voiced() bool {
	return t.synthesizer != nil && t.scheduler != nil
}
