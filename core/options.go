package orchestration

import (
	"context"

	"github.com/koscakluka/ema-tutor/core/audio"
	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/expression"
	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/playback"
	"github.com/koscakluka/ema-tutor/core/speechtotext"
	"github.com/koscakluka/ema-tutor/core/tutoring"
)

type TutorOption func(*Tutor)

type ChatLLM interface {
	PromptWithStream(ctx context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream
}

// WithChatLLM sets the model that streams chat replies and the greeting.
func WithChatLLM(client ChatLLM) TutorOption {
	return func(t *Tutor) {
		t.chat = client
	}
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

func WithSpeechSynthesizer(client SpeechSynthesizer) TutorOption {
	return func(t *Tutor) {
		t.synthesizer = client
	}
}

// WithAudioOutput sets the device synthesized speech is scheduled on. Without
// one the tutor runs in text-only mode.
func WithAudioOutput(output playback.Output) TutorOption {
	return func(t *Tutor) {
		t.output = output
	}
}

func WithAnimator(animator expression.Animator) TutorOption {
	return func(t *Tutor) {
		t.animator = animator
	}
}

type ExerciseGenerator interface {
	GenerateExercise(ctx context.Context, level tutoring.Level) (tutoring.Exercise, error)
}

func WithExerciseGenerator(generator ExerciseGenerator) TutorOption {
	return func(t *Tutor) {
		t.generator = generator
	}
}

type ExerciseGrader interface {
	GradeAnswer(ctx context.Context, exercise tutoring.Exercise, level tutoring.Level, answer string) (string, error)
}

func WithExerciseGrader(grader ExerciseGrader) TutorOption {
	return func(t *Tutor) {
		t.grader = grader
	}
}

type AudioInput interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() audio.EncodingInfo
}

// WithVoiceInput enables push-to-talk: audio captured from input is streamed
// to transcriber and the final transcript is submitted like typed text.
func WithVoiceInput(input AudioInput, transcriber speechtotext.Transcriber) TutorOption {
	return func(t *Tutor) {
		t.audioInput = input
		t.transcriber = transcriber
	}
}

// WithEventHandler registers the receiver of every session event. Events are
// delivered in order from a single goroutine, so the handler may call back
// into the tutor.
func WithEventHandler(handler events.Handler) TutorOption {
	return func(t *Tutor) {
		t.handler = handler
	}
}

func WithLevel(level tutoring.Level) TutorOption {
	return func(t *Tutor) {
		t.level = level
	}
}

func WithMode(mode tutoring.Mode) TutorOption {
	return func(t *Tutor) {
		t.mode = mode
	}
}

// WithClock replaces the wall clock driving playback completion timers.
func WithClock(clock playback.Clock) TutorOption {
	return func(t *Tutor) {
		t.clock = clock
	}
}
