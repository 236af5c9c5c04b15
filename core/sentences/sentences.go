// Package sentences extracts complete sentences from a growing text buffer.
//
// A sentence ends at a run of whitespace that immediately follows a run of
// terminal punctuation (".", "!" or "?"). The whitespace belongs to the
// sentence it ends. Terminal punctuation at the very end of the buffer also
// ends a sentence. Nothing else (abbreviations, decimals, quotes) is treated
// specially.
package sentences

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split returns every complete sentence in buffer, in order, and the
// incomplete trailing fragment. Joining the sentences and the fragment always
// reproduces buffer exactly.
//
// Split keeps no state; callers feed the previous fragment with new text
// appended on the next call.
func Split(buffer string) (sentences []string, fragment string) {
	start := 0
	i := 0
	for i < len(buffer) {
		r, size := utf8.DecodeRuneInString(buffer[i:])
		if !isTerminal(r) {
			i += size
			continue
		}

		end := skip(buffer, i, isTerminal)
		boundary := skip(buffer, end, unicode.IsSpace)
		if boundary == end && end < len(buffer) {
			i = end
			continue
		}

		sentences = append(sentences, buffer[start:boundary])
		start = boundary
		i = boundary
	}

	return sentences, buffer[start:]
}

// Feed appends chunk to fragment and splits the result.
func Feed(fragment, chunk string) (sentences []string, newFragment string) {
	return Split(fragment + chunk)
}

// IsBlank reports whether text has nothing worth synthesizing.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func skip(s string, from int, match func(rune) bool) int {
	for from < len(s) {
		r, size := utf8.DecodeRuneInString(s[from:])
		if !match(r) {
			break
		}
		from += size
	}
	return from
}
