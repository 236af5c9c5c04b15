// Package tutoring holds the Spanish tutor's domain vocabulary: proficiency
// levels, the Pablo persona prompts, practice exercises and grading feedback.
package tutoring

import (
	"fmt"
	"strings"
)

type Level string

const (
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"

	DefaultLevel = LevelB2
)

var Levels = []Level{LevelB1, LevelB2, LevelC1, LevelC2}

func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	switch level {
	case LevelB1, LevelB2, LevelC1, LevelC2:
		return level, nil
	}
	return "", fmt.Errorf("unknown proficiency level %q", s)
}

func (l Level) Description() string {
	switch l {
	case LevelB1:
		return "Intermediate"
	case LevelB2:
		return "Upper Intermediate"
	case LevelC1:
		return "Advanced"
	case LevelC2:
		return "Proficient"
	}
	return ""
}

type Mode string

const (
	ModeChat     Mode = "chat"
	ModePractice Mode = "practice"
)

func ParseMode(s string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ModeChat, ModePractice:
		return mode, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
