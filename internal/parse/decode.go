package parse

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeBytes turns raw transcript bytes into text. A BOM selects UTF-8 or
// UTF-16; otherwise valid UTF-8 is used as is and anything else is read as
// Windows-1252. It never fails.
func DecodeBytes(b []byte) string {
	if bytes.HasPrefix(b, bomUTF8) || bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF16BE) {
		dec := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
		if out, _, err := transform.Bytes(dec, b); err == nil {
			return string(out)
		}
	}
	if utf8.Valid(b) {
		return string(b)
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(b); err == nil {
		return string(out)
	}
	return strings.ToValidUTF8(string(b), "")
}

var lineBreaks = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
	"\u0085", "\n",
	"\f", "\n",
	"\v", "\n",
)

// SplitLines splits text on every line-break convention.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(lineBreaks.Replace(text), "\n")
}

// mojibakeMarkers are what UTF-8 punctuation and accents look like after a
// Windows-1252 misread.
var mojibakeMarkers = []string{"â€", "Ã", "Â", "ï»¿"}

var invisible = strings.NewReplacer(
	"\ufeff", "",
	"\u200b", "",
	"\u200e", "",
	"\u200f", "",
)

var (
	voiceTagRe = regexp.MustCompile(`^\s*<v(?:\.[^\s>]*)?\s+([^>]+)>`)
	cueTagRe   = regexp.MustCompile(`</?(?:c|i|b|u|v|ruby|rt|lang)\b[^>]*>|<\d{1,2}:\d{2}(?::\d{2})?[.,]\d+>`)
)

// NormalizeLine unescapes HTML entities, repairs mojibake, drops BOMs and
// zero-width marks, composes to NFC and rewrites WebVTT voice spans
// ("<v Jane D>Hi</v>") to the bracketed speaker form.
func NormalizeLine(raw string) string {
	s := html.UnescapeString(raw)
	s = repairMojibake(s)
	s = invisible.Replace(s)
	s = norm.NFC.String(s)
	s = voiceTagRe.ReplaceAllString(s, "[$1] ")
	s = cueTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// repairMojibake re-decodes runs of Windows-1252 characters that hold UTF-8
// byte sequences. Characters outside such runs (emoji, CJK) and bytes that do
// not form a valid sequence are kept as they are.
func repairMojibake(s string) string {
	found := false
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			found = true
			break
		}
	}
	if !found {
		return s
	}

	var b strings.Builder
	var run []rune
	var raw []byte
	flush := func() {
		b.WriteString(redecodeRun(run, raw))
		run, raw = run[:0], raw[:0]
	}
	for _, r := range s {
		c, ok := encode1252(r)
		if !ok {
			flush()
			b.WriteRune(r)
			continue
		}
		run = append(run, r)
		raw = append(raw, c)
	}
	flush()
	return b.String()
}

// redecodeRun decodes raw as UTF-8 where it forms multi-byte sequences and
// falls back to the original rune elsewhere. raw[i] is the encoding of run[i].
func redecodeRun(run []rune, raw []byte) string {
	var b strings.Builder
	for i := 0; i < len(raw); {
		if raw[i] >= utf8.RuneSelf {
			if r, size := utf8.DecodeRune(raw[i:]); r != utf8.RuneError && size > 1 {
				b.WriteRune(r)
				i += size
				continue
			}
		}
		b.WriteRune(run[i])
		i++
	}
	return b.String()
}

// encode1252 maps r to its Windows-1252 byte. The five bytes the code page
// leaves undefined come through a misread as C1 controls and map back to
// themselves.
func encode1252(r rune) (byte, bool) {
	switch r {
	case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
		return byte(r), true
	}
	return charmap.Windows1252.EncodeRune(r)
}
