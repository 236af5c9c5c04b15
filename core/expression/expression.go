// Package expression tracks the tutor's emotive state and mirrors it onto an
// external avatar animation sink.
package expression

import (
	"errors"
	"fmt"
	"sync"
)

type Expression string

const (
	Idle     Expression = "idle"
	Thinking Expression = "thinking"
	Talking  Expression = "talking"
	Happy    Expression = "happy"
)

type Event int

const (
	TurnStarted Event = iota
	AudioScheduled
	PlaybackFinished
	PlaybackFinishedHappy
	TurnEndedSilently
	TurnAborted
)

func (e Event) String() string {
	switch e {
	case TurnStarted:
		return "turn started"
	case AudioScheduled:
		return "audio scheduled"
	case PlaybackFinished:
		return "playback finished"
	case PlaybackFinishedHappy:
		return "playback finished happy"
	case TurnEndedSilently:
		return "turn ended silently"
	case TurnAborted:
		return "turn aborted"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var ErrInvalidTransition = errors.New("invalid expression transition")

// Animator is the avatar's animation engine.
type Animator interface {
	Play(name string, loop bool)
}

const (
	AnimationIdle     = "Idle"
	AnimationTalking  = "Talking_1"
	AnimationHappy    = "Happy"
	AnimationThinking = "Thinking"
)

type animation struct {
	name string
	loop bool
}

var animations = map[Expression]animation{
	Idle:     {name: AnimationIdle, loop: true},
	Talking:  {name: AnimationTalking, loop: true},
	Happy:    {name: AnimationHappy},
	Thinking: {name: AnimationThinking},
}

// Machine is safe for concurrent use. Animator and change callbacks are
// invoked while the machine's lock is held and must not call back into it.
type Machine struct {
	mu sync.Mutex

	current   Expression
	animation string

	animator Animator
	onChange func(from, to Expression)
}

type Option func(*Machine)

func WithAnimator(animator Animator) Option {
	return func(m *Machine) { m.animator = animator }
}

func WithChangeCallback(callback func(from, to Expression)) Option {
	return func(m *Machine) { m.onChange = callback }
}

// New returns a machine resting in Idle. The idle animation is started
// immediately when an animator is configured.
func New(opts ...Option) *Machine {
	m := &Machine{current: Idle}
	for _, opt := range opts {
		opt(m)
	}
	m.playLocked(Idle)
	return m
}

func (m *Machine) Current() Expression {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Fire applies event to the current state. Disallowed transitions leave the
// state unchanged and return ErrInvalidTransition.
func (m *Machine) Fire(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := transition(m.current, event)
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, m.current)
	}
	m.setLocked(next)
	return nil
}

func transition(from Expression, event Event) (Expression, bool) {
	switch event {
	case TurnStarted:
		return Thinking, true
	case TurnAborted:
		return Idle, true
	case AudioScheduled:
		return Talking, from == Thinking
	case PlaybackFinished:
		return Idle, from == Talking
	case PlaybackFinishedHappy:
		return Happy, from == Talking
	case TurnEndedSilently:
		return Idle, from == Thinking
	}
	return from, false
}

func (m *Machine) setLocked(next Expression) {
	prev := m.current
	m.current = next
	m.playLocked(next)
	if prev != next && m.onChange != nil {
		m.onChange(prev, next)
	}
}

func (m *Machine) playLocked(e Expression) {
	anim := animations[e]
	if m.animator == nil || anim.name == m.animation {
		return
	}
	m.animation = anim.name
	m.animator.Play(anim.name, anim.loop)
}

// AnimationEnded is the animator's notification that a one-shot animation
// finished. The avatar falls back to the looping idle animation without
// changing the expression.
func (m *Machine) AnimationEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.animation == AnimationIdle || m.animation == AnimationTalking {
		return
	}
	if m.animator == nil {
		return
	}
	m.animation = AnimationIdle
	m.animator.Play(AnimationIdle, true)
}

// Animation returns the name of the last animation commanded.
func (m *Machine) Animation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.animation
}
