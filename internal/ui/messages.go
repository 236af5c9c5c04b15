package ui

import "github.com/koscakluka/ema-tutor/core/events"

// EventMsg carries one tutor event into the update loop.
type EventMsg struct {
	Event events.Event
}

// AnimationMsg is the latest animation the avatar was told to play.
type AnimationMsg struct {
	Name string
	Loop bool
	Seq  uint64
}

// AnimationEndedMsg fires when a one-shot animation has run its course.
type AnimationEndedMsg struct {
	Seq uint64
}

// ActionDoneMsg is returned when a tutor operation started from the UI
// finishes.
type ActionDoneMsg struct {
	Action string
	Err    error
}
