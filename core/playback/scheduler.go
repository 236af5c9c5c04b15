// Package playback schedules decoded speech buffers back to back on a single
// audio output and reports when everything queued has finished playing.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/koscakluka/ema-tutor/core/audio"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrStaleEpoch = errors.New("playback epoch is no longer current")

// Output is a clocked audio sink. Times are seconds on the output's own
// clock.
type Output interface {
	CurrentTime() float64
	Suspended() bool
	Resume(ctx context.Context) error
	Schedule(buffer *audio.Buffer, at float64) error
}

// Epoch identifies one turn's ownership of the timeline. Every Reset starts a
// new epoch and invalidates everything armed under the previous one.
type Epoch uint64

// Scheduled describes where an enqueued buffer landed on the timeline.
type Scheduled struct {
	Start    float64
	End      float64
	Duration float64
	// First is true for the first buffer scheduled in the epoch.
	First bool
}

type Scheduler struct {
	mu sync.Mutex

	output Output
	clock  Clock

	epoch     Epoch
	nextStart float64
	scheduled int
	timer     Timer

	onFinished func(epoch Epoch, happy bool)
}

type Option func(*Scheduler)

// WithClock replaces the timer source, mainly for tests.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithFinishedCallback registers the callback fired when the whole queued
// timeline of the current epoch has played. It is never called for an epoch
// that was reset.
func WithFinishedCallback(callback func(epoch Epoch, happy bool)) Option {
	return func(s *Scheduler) { s.onFinished = callback }
}

func NewScheduler(output Output, opts ...Option) *Scheduler {
	s := &Scheduler{
		output:     output,
		clock:      realClock{},
		onFinished: func(Epoch, bool) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset starts a new epoch: the timeline offset goes back to zero and any
// pending completion timer is disarmed. Buffers already handed to the output
// keep playing.
func (s *Scheduler) Reset() Epoch {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.nextStart = 0
	s.scheduled = 0
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.epoch
}

// Epoch returns the current epoch.
func (s *Scheduler) Epoch() Epoch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Enqueue schedules buffer right after everything queued before it in the
// same epoch (or now, if the timeline already drained) and re-arms the
// completion timer for the new end of the timeline. Calls must arrive in the
// order the buffers should play.
func (s *Scheduler) Enqueue(ctx context.Context, epoch Epoch, buffer *audio.Buffer, happy bool) (Scheduled, error) {
	ctx, span := tracer.Start(ctx, "enqueue speech buffer")
	defer span.End()

	if buffer == nil || buffer.Frames() == 0 {
		return Scheduled{}, fmt.Errorf("empty buffer")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		span.SetAttributes(attribute.Int64("playback.epoch", int64(epoch)), attribute.Int64("playback.current_epoch", int64(s.epoch)))
		return Scheduled{}, ErrStaleEpoch
	}

	if s.output.Suspended() {
		if err := s.output.Resume(ctx); err != nil {
			err = fmt.Errorf("failed to resume audio output: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Scheduled{}, err
		}
	}

	now := s.output.CurrentTime()
	start := max(now, s.nextStart)
	if err := s.output.Schedule(buffer, start); err != nil {
		err = fmt.Errorf("failed to schedule buffer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Scheduled{}, err
	}

	duration := buffer.Duration()
	s.nextStart = start + duration
	s.scheduled++
	s.armLocked(epoch, time.Duration((s.nextStart-now)*float64(time.Second)), happy)

	span.AddEvent("buffer scheduled", trace.WithAttributes(
		attribute.Float64("playback.start", start),
		attribute.Float64("playback.duration", duration),
	))
	buffersScheduled.Add(ctx, 1)

	return Scheduled{Start: start, End: s.nextStart, Duration: duration, First: s.scheduled == 1}, nil
}

// armLocked replaces the completion timer. Each enqueue extends the timeline,
// so only the newest timer marks its end.
func (s *Scheduler) armLocked(epoch Epoch, after time.Duration, happy bool) {
	if s.timer != nil {
		s.timer.Stop()
	}

	var timer Timer
	timer = s.clock.AfterFunc(after, func() {
		s.mu.Lock()
		if epoch != s.epoch || s.timer != timer {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		// Called unlocked so the callback may enqueue or reset.
		s.onFinished(epoch, happy)
	})
	s.timer = timer
}

// NextStart returns the end of the current epoch's timeline.
func (s *Scheduler) NextStart() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

// Pending reports whether a completion timer is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
