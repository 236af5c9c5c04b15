package orchestration

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/ema-tutor/core/audio"
	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/playback"
	"github.com/koscakluka/ema-tutor/core/speechtotext"
	"github.com/koscakluka/ema-tutor/core/tutoring"
)

func waitForCondition(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", description)
}

type textChunk string

func (textChunk) FinishReason() *string { return nil }
func (c textChunk) Content() string     { return string(c) }

// streamStub yields its chunks in order. With hold set it stops after
// holdAfter chunks until hold is closed; with block set it waits for
// cancellation once the chunks are exhausted.
type streamStub struct {
	chunks    []string
	err       error
	holdAfter int
	hold      chan struct{}
	block     bool
}

func (s *streamStub) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		for i, chunk := range s.chunks {
			if s.hold != nil && i == s.holdAfter {
				select {
				case <-s.hold:
				case <-ctx.Done():
					yield(nil, ctx.Err())
					return
				}
			}
			if !yield(textChunk(chunk), nil) {
				return
			}
		}
		if s.block {
			<-ctx.Done()
			yield(nil, ctx.Err())
			return
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

type chatCall struct {
	prompt       *string
	instructions string
	messages     []llms.Message
}

type chatStub struct {
	mu      sync.Mutex
	streams []*streamStub
	calls   []chatCall
}

func (c *chatStub) PromptWithStream(_ context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream {
	options := llms.StreamingPromptOptions{}
	for _, opt := range opts {
		opt.ApplyToStreaming(&options)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, chatCall{prompt: prompt, instructions: options.Instructions, messages: options.Messages})

	if len(c.streams) == 0 {
		return &streamStub{}
	}
	stream := c.streams[0]
	if len(c.streams) > 1 {
		c.streams = c.streams[1:]
	}
	return stream
}

func (c *chatStub) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *chatStub) call(i int) chatCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[i]
}

// synthStub returns 0.1s of silence per sentence. A sentence listed in after
// is not synthesized until the sentence it maps to has been.
type synthStub struct {
	mu    sync.Mutex
	after map[string]string
	empty map[string]bool
	done  map[string]chan struct{}
	calls []string
}

func newSynthStub() *synthStub {
	return &synthStub{after: map[string]string{}, empty: map[string]bool{}, done: map[string]chan struct{}{}}
}

func (s *synthStub) doneFor(text string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.done[text]
	if !ok {
		ch = make(chan struct{})
		s.done[text] = ch
	}
	return ch
}

func (s *synthStub) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	waitOn, waits := s.after[text]
	empty := s.empty[text]
	s.mu.Unlock()

	if waits {
		select {
		case <-s.doneFor(waitOn):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	defer close(s.doneFor(text))

	if empty {
		return nil, nil
	}
	return make([]byte, audio.SpeechSampleRate/10*2), nil
}

func (s *synthStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type scheduledCall struct {
	at       float64
	duration float64
}

type outputStub struct {
	mu        sync.Mutex
	now       float64
	suspended bool
	scheduled []scheduledCall
}

func (o *outputStub) CurrentTime() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now
}

func (o *outputStub) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

func (o *outputStub) Resume(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suspended = false
	return nil
}

func (o *outputStub) Schedule(buffer *audio.Buffer, at float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scheduled = append(o.scheduled, scheduledCall{at: at, duration: buffer.Duration()})
	return nil
}

func (o *outputStub) calls() []scheduledCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]scheduledCall(nil), o.scheduled...)
}

type fakeTimer struct {
	fn func()
}

func (*fakeTimer) Stop() bool { return true }

// fakeClock never fires on its own; tests fire timers explicitly, including
// ones the scheduler already stopped.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) playback.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *fakeClock) fire(i int) {
	c.mu.Lock()
	timer := c.timers[i]
	c.mu.Unlock()
	timer.fn()
}

func (c *fakeClock) fireLast() {
	c.fire(c.count() - 1)
}

type animatorStub struct {
	mu    sync.Mutex
	plays []string
}

func (a *animatorStub) Play(name string, _ bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.plays = append(a.plays, name)
}

func (a *animatorStub) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.plays) == 0 {
		return ""
	}
	return a.plays[len(a.plays)-1]
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) ofKind(kind events.Kind) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []events.Event
	for _, event := range r.events {
		if event.Kind() == kind {
			matched = append(matched, event)
		}
	}
	return matched
}

func (r *eventRecorder) count(kind events.Kind) int {
	return len(r.ofKind(kind))
}

type exerciseStub struct {
	mu       sync.Mutex
	exercise tutoring.Exercise
	err      error
	calls    int
}

func (g *exerciseStub) GenerateExercise(context.Context, tutoring.Level) (tutoring.Exercise, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.exercise, g.err
}

type graderStub struct {
	feedback string
	err      error
	answers  []string
}

func (g *graderStub) GradeAnswer(_ context.Context, _ tutoring.Exercise, _ tutoring.Level, answer string) (string, error) {
	g.answers = append(g.answers, answer)
	return g.feedback, g.err
}

type audioInputStub struct {
	mu        sync.Mutex
	onAudio   func([]byte)
	capturing bool
}

func (a *audioInputStub) StartCapture(_ context.Context, onAudio func([]byte)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onAudio = onAudio
	a.capturing = true
	return nil
}

func (a *audioInputStub) StopCapture() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.capturing = false
	return nil
}

func (a *audioInputStub) isCapturing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capturing
}

func (a *audioInputStub) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (a *audioInputStub) speak(frame []byte) {
	a.mu.Lock()
	onAudio := a.onAudio
	a.mu.Unlock()
	onAudio(frame)
}

// transcriberStub transcribes every frame as one word and delivers the
// transcript when the stream is stopped.
type transcriberStub struct {
	mu     sync.Mutex
	frames int
	words  []string
}

func (s *transcriberStub) Transcribe(_ context.Context, opts ...speechtotext.TranscriptionOption) (speechtotext.Stream, error) {
	return &transcriptionStreamStub{owner: s, options: speechtotext.NewOptions(opts...)}, nil
}

type transcriptionStreamStub struct {
	owner   *transcriberStub
	options speechtotext.TranscriptionOptions
	words   []string
}

func (s *transcriptionStreamStub) SendAudio([]byte) error {
	s.owner.mu.Lock()
	word := s.owner.words[s.owner.frames%len(s.owner.words)]
	s.owner.frames++
	s.owner.mu.Unlock()

	s.words = append(s.words, word)
	s.options.InterimTranscriptionCallback(word)
	return nil
}

func (s *transcriptionStreamStub) StopStream() error {
	go s.options.TranscriptionCallback(strings.Join(s.words, " "))
	return nil
}
