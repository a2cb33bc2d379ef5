package parse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// nameBoundaryPunct lists the punctuation that may sit directly next to a
// name. Anything else that is not whitespace (letters, digits, emoji) glues
// the name to a longer word and rejects the match.
const nameBoundaryPunct = `.,;:!?'"()[]{}<>/\|-‐‑–—…“”‘’«»*#@&~`

// IsNameBoundary reports whether r may directly precede or follow a name.
func IsNameBoundary(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(nameBoundaryPunct, r)
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return IsNameBoundary(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return IsNameBoundary(r)
}

// normalizeName trims, collapses internal whitespace and composes to NFC.
func normalizeName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// NameMatcher finds whole, case-insensitive occurrences of one human name.
// Tokens of a multi-word name may be separated by any run of whitespace in
// the searched text. A NameMatcher is immutable and safe for concurrent use.
type NameMatcher struct {
	name   string
	re     *regexp.Regexp
	prefix *regexp.Regexp
}

// NewNameMatcher compiles a matcher for name. An empty name yields a matcher
// that never matches.
func NewNameMatcher(name string) *NameMatcher {
	n := normalizeName(name)
	m := &NameMatcher{name: n}
	if n == "" {
		return m
	}

	tokens := strings.Fields(n)
	for i, t := range tokens {
		tokens[i] = regexp.QuoteMeta(t)
	}
	body := strings.Join(tokens, `[\s\p{Zs}]+`)
	m.re = regexp.MustCompile(`(?i)` + body)
	m.prefix = regexp.MustCompile(`(?i)^[\s\p{Zs}]*(?:` + body + `)`)
	return m
}

// Name returns the normalized name.
func (m *NameMatcher) Name() string {
	return m.name
}

// find returns the first boundary-delimited match at or after from.
func (m *NameMatcher) find(text string, from int) (int, int, bool) {
	if m.re == nil {
		return 0, 0, false
	}
	for from <= len(text) {
		loc := m.re.FindStringIndex(text[from:])
		if loc == nil {
			return 0, 0, false
		}
		start, end := from+loc[0], from+loc[1]
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return start, end, true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		if size == 0 {
			break
		}
		from = start + size
	}
	return 0, 0, false
}

// Replace substitutes token for every whole occurrence of the name. The
// characters around each occurrence are left untouched.
func (m *NameMatcher) Replace(text, token string) string {
	start, end, ok := m.find(text, 0)
	if !ok {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for ok {
		b.WriteString(text[last:start])
		b.WriteString(token)
		last = end
		start, end, ok = m.find(text, end)
	}
	b.WriteString(text[last:])
	return b.String()
}

// MatchPrefix reports whether text starts, after optional whitespace, with
// the name followed by a boundary character or the end of text. end is the
// byte offset just past the name.
func (m *NameMatcher) MatchPrefix(text string) (end int, ok bool) {
	if m.prefix == nil {
		return 0, false
	}
	loc := m.prefix.FindStringIndex(text)
	if loc == nil || !boundaryAfter(text, loc[1]) {
		return 0, false
	}
	return loc[1], true
}
