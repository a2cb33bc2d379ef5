package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/transcript-cleaner/internal/index"
	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

const (
	colorReset     = "\033[0m"
	colorCounselor = "\033[1;32m" // bold green
	colorClient    = "\033[1;34m" // bold blue, as in the spreadsheet export
	colorOther     = "\033[1;33m" // bold yellow for unmapped speakers
	colorDim       = "\033[2m"
	colorHit       = "\033[43m"   // yellow background
	colorBoldRed   = "\033[1;31m" // bold red for keyword highlights
	colorTag       = "\033[2;35m" // dim magenta for the ME marker
)

type Options struct {
	HitTurnID int    // -1 for none
	Context   int    // turns before/after hit to show
	Width     int    // wrap width (0 = no wrap)
	Query     string // search query for keyword highlighting
	NoColor   bool
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var filtered []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"`)
		if t != "" && !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			rest := text[i:]
			idx := strings.Index(strings.ToLower(rest), lower)
			if idx < 0 || len(strings.ToLower(rest)) != len(rest) {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// stripANSI removes color sequences for NoColor output.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func speakerColor(speaker string) string {
	switch speaker {
	case parse.RoleCounselor:
		return colorCounselor
	case parse.RoleClient:
		return colorClient
	default:
		return colorOther
	}
}

type window struct {
	title     string
	turns     []parse.Turn
	hitIdx    int
	before    int
	after     int
	emptyText string
}

// render lays out a window of turns and returns the content and the 0-based
// line of the hit turn header (-1 if no hit).
func render(w window, opts Options) (string, int) {
	if len(w.turns) == 0 {
		return w.emptyText, -1
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		if opts.NoColor {
			s = stripANSI(s)
		}
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	if w.title != "" {
		writeLine(fmt.Sprintf("%s--- %s ---%s", colorDim, w.title, colorReset))
	}
	if w.before > 0 {
		writeLine(fmt.Sprintf("%s... (%d turns before) ...%s", colorDim, w.before, colorReset))
	}

	for i, t := range w.turns {
		isHit := i == w.hitIdx
		if isHit {
			hitLine = lineCount
		}

		label := t.Speaker
		if t.Timestamp != "" {
			label += " " + colorDim + t.Timestamp + colorReset
		}
		if t.Tag != "" {
			label += " " + colorTag + "[" + t.Tag + "]" + colorReset
		}

		if isHit {
			writeLine(fmt.Sprintf("%s>> %s <<%s", colorHit, stripANSI(label), colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s%s", speakerColor(t.Speaker), label, colorReset))
		}

		text := highlightKeywords(t.Quote, opts.Query)
		writeLine(indentLines(text, "  "))
		writeLine("") // blank line after turn
	}

	if w.after > 0 {
		writeLine(fmt.Sprintf("%s... (%d turns after) ...%s", colorDim, w.after, colorReset))
	}

	return b.String(), hitLine
}

// RenderTurns renders freshly parsed turns, e.g. for a parse preview.
func RenderTurns(title string, turns []parse.Turn, opts Options) (string, int) {
	hit := -1
	if opts.HitTurnID >= 0 && opts.HitTurnID < len(turns) {
		hit = opts.HitTurnID
	}
	return render(window{
		title:     title,
		turns:     turns,
		hitIdx:    hit,
		emptyText: "(no dialogue turns)",
	}, opts)
}

// RenderTranscript renders an indexed transcript around opts.HitTurnID and
// returns the content, the 0-based line number of the hit turn header (-1 if
// no hit), and any error.
func RenderTranscript(db *index.DB, key string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	tr, err := db.GetTranscript(key)
	if err != nil {
		return "", -1, fmt.Errorf("get transcript: %w", err)
	}

	rows, hitIdx, startPos, totalCount, err := db.GetTurnsWindow(key, opts.HitTurnID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get turns: %w", err)
	}

	turns := make([]parse.Turn, len(rows))
	for i, r := range rows {
		turns[i] = parse.Turn{Timestamp: r.Ts, Speaker: r.Speaker, Quote: r.Quote, Tag: r.Tag, Line: r.LineNumber}
	}

	content, hitLine := render(window{
		title:     fmt.Sprintf("%s [%d turns] %s", key, tr.TurnCount, tr.FilePath),
		turns:     turns,
		hitIdx:    hitIdx,
		before:    startPos,
		after:     totalCount - startPos - len(rows),
		emptyText: "(empty transcript)",
	}, opts)
	return content, hitLine, nil
}
