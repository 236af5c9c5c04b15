package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/ema-tutor/core/events"
)

const eventBuffer = 64

// Bridge feeds a tutor's callbacks into the update loop. It is both the
// tutor's event handler and its avatar animator.
//
// Events are delivered in order and block the tutor's emitter once the
// buffer is full. Animations never block: only the latest one is kept.
type Bridge struct {
	events    chan events.Event
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	animation AnimationMsg
	changed   chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{
		events:  make(chan events.Event, eventBuffer),
		done:    make(chan struct{}),
		changed: make(chan struct{}, 1),
	}
}

func (b *Bridge) HandleEvent(event events.Event) {
	select {
	case b.events <- event:
	case <-b.done:
	}
}

// Play is called with the expression machine locked, so it must not wait on
// the update loop.
func (b *Bridge) Play(name string, loop bool) {
	b.mu.Lock()
	b.animation = AnimationMsg{Name: name, Loop: loop, Seq: b.animation.Seq + 1}
	b.mu.Unlock()

	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Close releases anything blocked on the bridge. Call it before closing the
// tutor so its remaining events are dropped.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *Bridge) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-b.events:
			return EventMsg{Event: event}
		case <-b.done:
			return nil
		}
	}
}

func (b *Bridge) waitForAnimation() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.changed:
		case <-b.done:
			return nil
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		return b.animation
	}
}
