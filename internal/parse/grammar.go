package parse

import (
	"regexp"
	"strings"
)

// LineKind identifies which line grammar recognized a segment.
type LineKind int

const (
	KindNoMatch LineKind = iota
	KindHeader
	KindCue
	KindTimestampOnly
	KindNameParen
	KindBracket
	KindDelimiter
	KindBareToken
	KindContinuation
)

var kindNames = [...]string{
	KindNoMatch:       "no-match",
	KindHeader:        "header",
	KindCue:           "cue",
	KindTimestampOnly: "timestamp-only",
	KindNameParen:     "name-paren",
	KindBracket:       "bracket",
	KindDelimiter:     "delimiter",
	KindBareToken:     "bare-token",
	KindContinuation:  "continuation",
}

func (k LineKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Line is the result of classifying one segment.
type Line struct {
	Kind LineKind

	// Speaker is the raw label found on the line, before role mapping.
	Speaker string

	Timestamp    Timestamp
	HasTimestamp bool

	// Text is the cleaned quote fragment, empty when nothing meaningful
	// is left on the line.
	Text string
}

// lineContext carries what a grammar may need beyond the segment itself.
type lineContext struct {
	// next is the next non-blank normalized line, used to tell a cue
	// number from a spoken number.
	next string
}

type classifier func(p *Parser, s string, ctx lineContext) (Line, bool)

var (
	// grammars is tried in order; the first match wins.
	grammars []classifier

	// speakerGrammars are the grammars that may follow a leading timestamp.
	speakerGrammars []classifier
)

func init() {
	grammars = []classifier{
		classifyHeader,
		classifyCue,
		classifyTimestampOnly,
		classifyNameParen,
		classifyBracket,
		classifyDelimiter,
		classifyBareToken,
		classifyContinuation,
	}
	speakerGrammars = grammars[3:]
}

// nameChars is the character class allowed in a speaker label.
const nameChars = `\p{L}\p{M}\p{N}\p{So}\p{Sk}_ .'’&/-`

var (
	cueIDRe      = regexp.MustCompile(`^\d+$`)
	noteRe       = regexp.MustCompile(`^(?:NOTE|STYLE|REGION)(?:\s|$)`)
	nameParenRe  = regexp.MustCompile(`^\s*([` + nameChars + `]{1,48})\s*\(([^()]*)\)\s*(.*)$`)
	bracketRe    = regexp.MustCompile(`^\s*\[([^\[\]]+)\]\s*(.*)$`)
	delimiterRe  = regexp.MustCompile(`^\s*([` + nameChars + `]{1,48}?)(?:\s*[:：]|\s+[-‐‑–—―]|\s*[–—―])(?:\s+|$)(.*)$`)
	cueArrows    = []string{"-->", "→", "—>", "–>"}
	leadingOpen  = "([{ \t"
	leadingClose = ")]} \t|"
)

// Classify runs the grammars over one segment.
func (p *Parser) Classify(s string) Line {
	return p.classify(s, lineContext{})
}

func (p *Parser) classify(s string, ctx lineContext) Line {
	return p.classifyWith(grammars, s, ctx)
}

func (p *Parser) classifyWith(gs []classifier, s string, ctx lineContext) Line {
	s = strings.TrimSpace(s)
	if s == "" {
		return Line{Kind: KindNoMatch}
	}
	for _, g := range gs {
		if l, ok := g(p, s, ctx); ok {
			return l
		}
	}
	return Line{Kind: KindNoMatch}
}

func classifyHeader(_ *Parser, s string, ctx lineContext) (Line, bool) {
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "WEBVTT") && boundaryAfter(upper, len("WEBVTT")) {
		return Line{Kind: KindHeader}, true
	}
	if noteRe.MatchString(s) {
		return Line{Kind: KindHeader}, true
	}
	if cueIDRe.MatchString(s) && hasCueArrow(ctx.next) {
		return Line{Kind: KindHeader}, true
	}
	return Line{}, false
}

func hasCueArrow(s string) bool {
	for _, a := range cueArrows {
		if strings.Contains(s, a) {
			return true
		}
	}
	return false
}

func classifyCue(_ *Parser, s string, _ lineContext) (Line, bool) {
	if !hasCueArrow(s) {
		return Line{}, false
	}
	l := Line{Kind: KindCue}
	l.Timestamp, l.HasTimestamp = FindTimestamp(s)
	return l, true
}

// classifyTimestampOnly handles lines whose first timestamp leaves nothing
// meaningful behind. A timestamp that opens a line with more text after it
// is taken as the line's timestamp and the rest goes through the speaker
// grammars.
func classifyTimestampOnly(p *Parser, s string, ctx lineContext) (Line, bool) {
	ts, ok := FindTimestamp(s)
	if !ok {
		return Line{}, false
	}
	if !IsMeaningful(CleanQuote(cutTimestamp(s, ts))) {
		return Line{Kind: KindTimestampOnly, Timestamp: ts, HasTimestamp: true}, true
	}
	if strings.Trim(s[:ts.Start], leadingOpen) != "" {
		return Line{}, false
	}

	rest := strings.TrimLeft(s[ts.End:], leadingClose)
	l := p.classifyWith(speakerGrammars, rest, ctx)
	if l.Kind == KindNoMatch {
		return Line{}, false
	}
	l.Timestamp, l.HasTimestamp = ts, true
	return l, true
}

func classifyNameParen(_ *Parser, s string, _ lineContext) (Line, bool) {
	m := nameParenRe.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	name := strings.TrimSpace(m[1])
	if !IsMeaningful(name) {
		return Line{}, false
	}
	ts, ok := FindTimestamp(m[2])
	if !ok {
		return Line{}, false
	}
	return Line{
		Kind:         KindNameParen,
		Speaker:      name,
		Timestamp:    ts,
		HasTimestamp: true,
		Text:         meaningfulText(m[3]),
	}, true
}

func classifyBracket(_ *Parser, s string, _ lineContext) (Line, bool) {
	m := bracketRe.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	name := strings.TrimSpace(stripWrappers(m[1]))
	if !IsMeaningful(name) {
		return Line{}, false
	}
	return withInlineTimestamp(Line{Kind: KindBracket, Speaker: name}, m[2]), true
}

func classifyDelimiter(_ *Parser, s string, _ lineContext) (Line, bool) {
	m := delimiterRe.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	name := strings.TrimSpace(m[1])
	if !IsMeaningful(name) {
		return Line{}, false
	}
	return withInlineTimestamp(Line{Kind: KindDelimiter, Speaker: name}, m[2]), true
}

// classifyBareToken matches a line opening with a configured name or a role
// token. The longest candidate wins so "Sam B" beats "Sam".
func classifyBareToken(p *Parser, s string, _ lineContext) (Line, bool) {
	best := 0
	for _, m := range p.speakerTokens {
		if end, ok := m.MatchPrefix(s); ok && end > best {
			best = end
		}
	}
	if best == 0 {
		return Line{}, false
	}
	speaker := strings.TrimSpace(s[:best])
	return withInlineTimestamp(Line{Kind: KindBareToken, Speaker: speaker}, s[best:]), true
}

func classifyContinuation(_ *Parser, s string, _ lineContext) (Line, bool) {
	text := meaningfulText(s)
	if text == "" {
		return Line{}, false
	}
	return Line{Kind: KindContinuation, Text: text}, true
}

// withInlineTimestamp cuts the first timestamp out of rest and stores the
// cleaned remainder as the line's text.
func withInlineTimestamp(l Line, rest string) Line {
	if ts, ok := FindTimestamp(rest); ok {
		l.Timestamp, l.HasTimestamp = ts, true
		rest = cutTimestamp(rest, ts)
	}
	l.Text = meaningfulText(rest)
	return l
}

func meaningfulText(s string) string {
	text := CleanQuote(s)
	if !IsMeaningful(text) {
		return ""
	}
	return text
}
