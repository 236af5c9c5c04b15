package tutoring

import (
	"errors"
	"strings"
)

var ErrNoExercise = errors.New("no exercise loaded")

// Exercise is a single practice item. It is replaced wholesale, never edited.
type Exercise struct {
	Type     string `json:"type" jsonschema:"title=Type,description=The exercise kind,enum=fill-in-the-blank,enum=conjugation,enum=restructure"`
	Question string `json:"question" jsonschema:"title=Question,description=The full instruction for the student"`
	Answer   string `json:"answer" jsonschema:"title=Answer,description=The expected answer"`
}

func (e Exercise) Validate() error {
	if strings.TrimSpace(e.Question) == "" {
		return errors.New("exercise has no question")
	}
	if strings.TrimSpace(e.Answer) == "" {
		return errors.New("exercise has no answer")
	}
	return nil
}

// CorrectMarker prefixes grading feedback for a correct answer.
const CorrectMarker = "[CORRECT]"

// ParseFeedback splits the correctness marker off grading feedback. Feedback
// for a correct answer is returned trimmed, without the marker.
func ParseFeedback(text string) (feedback string, isCorrect bool) {
	if !strings.HasPrefix(text, CorrectMarker) {
		return text, false
	}
	return strings.TrimSpace(strings.Replace(text, CorrectMarker, "", 1)), true
}
