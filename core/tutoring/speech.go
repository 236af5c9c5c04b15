package tutoring

import (
	"regexp"
	"strings"
)

var (
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

	speechReplacer = strings.NewReplacer(
		"¡Ojo a esto!:", "Ojo a esto.",
		"Un tip de músico:", "Un tip de músico.",
		"*", "",
		"\r\n", " ",
		"\n", " ",
	)
)

// SpeechText strips markdown markup from text so it can be read aloud.
func SpeechText(text string) string {
	return speechReplacer.Replace(boldPattern.ReplaceAllString(text, "$1"))
}
