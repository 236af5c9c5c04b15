package orchestration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/expression"
	"github.com/koscakluka/ema-tutor/core/playback"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

type turnKind int

const (
	turnGreeting turnKind = iota
	turnChat
	turnExercise
	turnFeedback
)

func (k turnKind) String() string {
	switch k {
	case turnGreeting:
		return "greeting"
	case turnChat:
		return "chat"
	case turnExercise:
		return "exercise"
	case turnFeedback:
		return "feedback"
	}
	return "unknown"
}

func (k turnKind) mode() tutoring.Mode {
	if k == turnExercise || k == turnFeedback {
		return tutoring.ModePractice
	}
	return tutoring.ModeChat
}

// turn is one request to the tutor and everything it dispatched.
type turn struct {
	id      string
	kind    turnKind
	epoch   playback.Epoch
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time

	group errgroup.Group
	// tail is closed once the most recently dispatched sentence finished its
	// scheduling step.
	tail       chan struct{}
	dispatched int

	// Guarded by Tutor.mu.
	happy     bool
	scheduled int
	resolved  bool
	aborted   bool
	// drained holds the completion signal when the timeline ran out before
	// the turn resolved; it is applied on resolve unless more audio arrives.
	drained *bool
}

// beginTurnLocked supersedes the active turn and starts a new one: the old
// turn's context is cancelled, the playback timeline moves to a new epoch and
// the tutor starts thinking.
func (t *Tutor) beginTurnLocked(ctx context.Context, kind turnKind) *turn {
	if prev := t.turn; prev != nil {
		prev.cancel()
		if !prev.resolved {
			prev.resolved = true
			t.setLoadingLocked(prev.kind.mode(), false)
			t.emitter.emit(events.NewTurnCancelled(prev.id))
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	tn := &turn{
		id:      uuid.NewString(),
		kind:    kind,
		epoch:   t.resetTimelineLocked(),
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}
	t.turn = tn

	t.fireLocked(expression.TurnStarted)
	t.setLoadingLocked(kind.mode(), true)
	t.emitter.emit(events.NewTurnStarted(tn.id))
	return tn
}

func (t *Tutor) resetTimelineLocked() playback.Epoch {
	if t.scheduler != nil {
		t.epoch = t.scheduler.Reset()
	} else {
		t.epoch++
	}
	return t.epoch
}

// isCurrentLocked reports whether tn may still change the session. Superseded,
// finished and closed-over turns may not.
func (t *Tutor) isCurrentLocked(tn *turn) bool {
	return t.turn == tn && !tn.resolved && !t.closed
}

// resolveTurnLocked ends a turn that completed normally. A turn that never
// reached the timeline goes straight back to idle; otherwise the playback
// completion callback ends the talking.
func (t *Tutor) resolveTurnLocked(tn *turn) {
	tn.resolved = true
	t.setLoadingLocked(tn.kind.mode(), false)

	switch {
	case tn.scheduled == 0:
		t.fireLocked(expression.TurnEndedSilently)
	case tn.drained != nil:
		t.finishPlaybackLocked(*tn.drained)
	}

	t.emitter.emit(events.NewTurnCompleted(tn.id, tn.dispatched, tn.scheduled))
	turnDuration.Record(context.WithoutCancel(tn.ctx), time.Since(tn.started).Seconds(), metricTurnKind(tn))
}

func metricTurnKind(tn *turn) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("turn.kind", tn.kind.String()))
}

// abortTurnLocked ends a failed turn. Sentences still in flight are cancelled
// and the timeline is invalidated so nothing else gets scheduled for it.
func (t *Tutor) abortTurnLocked(tn *turn, err error) {
	tn.resolved = true
	tn.aborted = true
	tn.cancel()
	t.resetTimelineLocked()
	t.setLoadingLocked(tn.kind.mode(), false)
	t.fireLocked(expression.TurnAborted)
	t.emitter.emit(events.NewTurnFailed(tn.id, err))
}

func (t *Tutor) onPlaybackFinished(epoch playback.Epoch, happy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tn := t.turn
	if tn == nil || tn.epoch != epoch || tn.aborted {
		return
	}
	if !tn.resolved {
		tn.drained = &happy
		return
	}
	t.finishPlaybackLocked(happy)
}

func (t *Tutor) finishPlaybackLocked(happy bool) {
	event := expression.PlaybackFinished
	if happy {
		event = expression.PlaybackFinishedHappy
	}
	t.fireLocked(event)
	t.emitter.emit(events.NewAssistantPlaybackEnded(happy))
}
