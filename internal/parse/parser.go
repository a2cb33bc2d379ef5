package parse

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrMissingName   = errors.New("counselor and client names are both required")
	ErrSameName      = errors.New("counselor and client names must differ")
	ErrNegativeShift = errors.New("shift must not be negative")
)

// maxSummaryRunes bounds the summary stored for a transcript.
const maxSummaryRunes = 200

// Options configures a Parser.
type Options struct {
	CounselorName string
	ClientName    string

	// ShiftSeconds is subtracted from every timestamp.
	ShiftSeconds float64
	TimeFormat   TimeFormat
}

// Parser converts transcript text into dialogue turns. It holds only
// compiled, read-only matchers, so one Parser may serve concurrent parses;
// every parse gets its own state.
type Parser struct {
	opts Options

	counselorKey string
	clientKey    string

	// speakerTokens are the names a bare-token line may open with.
	speakerTokens []*NameMatcher

	// anonymizers run longest name first.
	anonymizers []anonymizer
}

type anonymizer struct {
	m     *NameMatcher
	token string
}

// New validates opts and compiles the name matchers.
func New(opts Options) (*Parser, error) {
	counselor := NewNameMatcher(opts.CounselorName)
	client := NewNameMatcher(opts.ClientName)
	if counselor.Name() == "" || client.Name() == "" {
		return nil, ErrMissingName
	}
	if opts.ShiftSeconds < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeShift, opts.ShiftSeconds)
	}

	p := &Parser{
		opts:         opts,
		counselorKey: foldLabel(opts.CounselorName),
		clientKey:    foldLabel(opts.ClientName),
		speakerTokens: []*NameMatcher{
			counselor, client, counselorTokenMatcher, clientTokenMatcher,
		},
	}
	if p.counselorKey == p.clientKey {
		return nil, ErrSameName
	}

	p.anonymizers = []anonymizer{
		{m: counselor, token: RoleCounselor},
		{m: client, token: RoleClient},
	}
	if utf8.RuneCountInString(client.Name()) > utf8.RuneCountInString(counselor.Name()) {
		p.anonymizers[0], p.anonymizers[1] = p.anonymizers[1], p.anonymizers[0]
	}
	return p, nil
}

// Options returns the options the parser was built with.
func (p *Parser) Options() Options {
	return p.opts
}

// Anonymize replaces the counselor and client names in text with their role
// tokens.
func (p *Parser) Anonymize(text string) string {
	for _, a := range p.anonymizers {
		text = a.m.Replace(text, a.token)
	}
	return text
}

// separatorRe splits a physical line into independent segments.
var separatorRe = regexp.MustCompile(`-{3,}`)

// Parse converts a whole transcript. Malformed lines are skipped, never
// reported; input without any speaker attribution yields no turns.
func (p *Parser) Parse(text string) []Turn {
	return p.ParseLines(SplitLines(text))
}

// ParseLines converts pre-split physical lines.
func (p *Parser) ParseLines(lines []string) []Turn {
	normalized := make([]string, len(lines))
	for i, raw := range lines {
		normalized[i] = NormalizeLine(raw)
	}

	// next[i] is the first non-blank line after i.
	next := make([]string, len(normalized))
	following := ""
	for i := len(normalized) - 1; i >= 0; i-- {
		next[i] = following
		if normalized[i] != "" {
			following = normalized[i]
		}
	}

	st := newState(p)
	for i, line := range normalized {
		if line == "" {
			continue
		}
		ctx := lineContext{next: next[i]}
		for _, seg := range separatorRe.Split(line, -1) {
			st.apply(p.classify(seg, ctx), i+1)
		}
	}
	return st.finish()
}

// ParseFile reads, decodes and parses a transcript file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	text := DecodeBytes(data)
	lines := SplitLines(text)
	result := &ParseResult{
		Meta: TranscriptMeta{
			FilePath: path,
			Mtime:    info.ModTime(),
			Size:     info.Size(),
			Lines:    len(lines),
		},
		Turns: p.ParseLines(lines),
	}
	result.Meta.Summary = Summary(result.Turns)
	return result, nil
}

// Summary is the opening of the first turn, used as a transcript title.
func Summary(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	s := turns[0].Quote
	if utf8.RuneCountInString(s) > maxSummaryRunes {
		s = string([]rune(s)[:maxSummaryRunes])
	}
	return strings.TrimSpace(s)
}
