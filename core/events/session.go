package events

import "github.com/koscakluka/ema-tutor/core/tutoring"

const (
	KindErrorRaised    Kind = "session.error"
	KindWarningRaised  Kind = "session.warning"
	KindLoadingChanged Kind = "session.loading"
	KindLevelChanged   Kind = "session.level_changed"
	KindModeChanged    Kind = "session.mode_changed"
)

// ErrorRaised carries a user-facing message. An empty message clears the
// previous error.
type ErrorRaised struct {
	Base
	Message string
	Err     error
}

func NewErrorRaised(message string, err error) ErrorRaised {
	return ErrorRaised{Base: NewBase(KindErrorRaised), Message: message, Err: err}
}

type WarningRaised struct {
	Base
	Message string
}

func NewWarningRaised(message string) WarningRaised {
	return WarningRaised{Base: NewBase(KindWarningRaised), Message: message}
}

type LoadingChanged struct {
	Base
	Mode    tutoring.Mode
	Loading bool
}

func NewLoadingChanged(mode tutoring.Mode, loading bool) LoadingChanged {
	return LoadingChanged{Base: NewBase(KindLoadingChanged), Mode: mode, Loading: loading}
}

type LevelChanged struct {
	Base
	Level tutoring.Level
}

func NewLevelChanged(level tutoring.Level) LevelChanged {
	return LevelChanged{Base: NewBase(KindLevelChanged), Level: level}
}

type ModeChanged struct {
	Base
	Mode tutoring.Mode
}

func NewModeChanged(mode tutoring.Mode) ModeChanged {
	return ModeChanged{Base: NewBase(KindModeChanged), Mode: mode}
}
