package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/koscakluka/ema-tutor/core/audio"
	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/expression"
	"github.com/koscakluka/ema-tutor/core/playback"
	"github.com/koscakluka/ema-tutor/core/sentences"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// dispatch starts speaking text in the background. Synthesis runs
// concurrently with the rest of the turn, but each sentence waits for the one
// dispatched before it to be scheduled, so playback follows dispatch order.
func (t *Tutor) dispatch(tn *turn, text string) {
	prev := tn.tail
	done := make(chan struct{})
	tn.tail = done
	tn.dispatched++
	sentencesDispatched.Add(tn.ctx, 1, metricTurnKind(tn))

	run := panicSafeNamedWorker("speech", func(ctx context.Context) error {
		return t.speak(ctx, tn, text, prev)
	})
	tn.group.Go(func() error {
		defer func() {
			// A failed task still holds its place in line.
			waitFor(tn.ctx, prev)
			close(done)
		}()
		return run(tn.ctx)
	})
}

func (t *Tutor) speak(ctx context.Context, tn *turn, text string, prev <-chan struct{}) error {
	ctx, span := tracer.Start(ctx, "speak sentence")
	defer span.End()
	span.SetAttributes(attribute.String("turn.id", tn.id), attribute.Int("sentence.length", len(text)))

	var data []byte
	var synthErr error
	if speech := tutoring.SpeechText(text); !sentences.IsBlank(speech) {
		data, synthErr = t.synthesizer.Synthesize(ctx, speech)
	}

	if !waitFor(ctx, prev) {
		return nil
	}

	buffer := audio.DecodeLinear16(data, audio.SpeechSampleRate)
	if synthErr != nil || buffer == nil {
		if synthErr != nil {
			synthErr = fmt.Errorf("failed to synthesize speech: %w", synthErr)
			span.RecordError(synthErr)
		}
		span.AddEvent("speech skipped")
		synthesisFailures.Add(ctx, 1, metricTurnKind(tn))
		t.emitter.emit(events.NewAssistantSpeechSkipped(tn.id, text, synthErr))
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isCurrentLocked(tn) {
		return nil
	}

	scheduled, err := t.scheduler.Enqueue(ctx, tn.epoch, buffer, tn.happy)
	if errors.Is(err, playback.ErrStaleEpoch) {
		return nil
	} else if err != nil {
		err = fmt.Errorf("failed to schedule speech: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	tn.scheduled++
	tn.drained = nil
	if scheduled.First {
		t.fireLocked(expression.AudioScheduled)
	}
	t.emitter.emit(events.NewAssistantSpeechScheduled(tn.id, text, scheduled.Start, scheduled.Duration))
	return nil
}
