package parse

import (
	"strings"
	"unicode"
)

const (
	// leadingDecor is stripped from the front of a fragment, together with
	// any whitespace mixed into the run.
	leadingDecor = "-‐‑‒–—―:：·•*#>› \t"

	// wrapChars is stripped from both ends.
	wrapChars = " \t\r\n\"'{}<>“”‘’«»"
)

// CleanQuote trims decoration and wrapper characters from a raw fragment and
// collapses internal whitespace to single spaces.
func CleanQuote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, leadingDecor)
	s = strings.Trim(s, wrapChars)
	return strings.Join(strings.Fields(s), " ")
}

// IsMeaningful reports whether s holds at least one word character.
func IsMeaningful(s string) bool {
	return strings.IndexFunc(s, isWordRune) >= 0
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// WordCount counts whitespace-delimited words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// stripWrappers trims wrapper characters from a speaker label.
func stripWrappers(s string) string {
	return strings.Trim(s, wrapChars)
}
