package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeFormat selects how normalized timestamps are displayed. One format is
// used for a whole parse.
type TimeFormat int

const (
	FormatAuto    TimeFormat = iota // MM:SS, HH:MM:SS from the first hour on
	FormatMinutes                   // always MM:SS, minutes grow past 59
	FormatHours                     // always HH:MM:SS
)

func (f TimeFormat) String() string {
	switch f {
	case FormatMinutes:
		return "minutes"
	case FormatHours:
		return "hours"
	default:
		return "auto"
	}
}

// ParseTimeFormat maps a config/flag value to a TimeFormat. Empty means auto.
func ParseTimeFormat(s string) (TimeFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "minutes", "mm:ss":
		return FormatMinutes, nil
	case "hours", "hh:mm:ss":
		return FormatHours, nil
	default:
		return FormatAuto, fmt.Errorf("unknown time format %q (want auto, minutes or hours)", s)
	}
}

// timestampRe matches MM:SS and HH:MM:SS with an optional .mmm or ,mmm
// fraction. The fraction is matched so it can be cut out, never used.
var timestampRe = regexp.MustCompile(`\b(\d{1,3}):(\d{2})(?::(\d{2}))?(?:[.,]\d+)?\b`)

// Timestamp is a time token located in a line.
type Timestamp struct {
	Hours    int
	Minutes  int
	Seconds  int
	HasHours bool

	// Start and End are byte offsets of the whole token, fraction included.
	Start int
	End   int
}

// TotalSeconds uses the last two components as minutes and seconds and adds
// the hours component separately.
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// FindTimestamp returns the first well-formed timestamp in s. Tokens whose
// components are out of range are skipped.
func FindTimestamp(s string) (Timestamp, bool) {
	for _, m := range timestampRe.FindAllStringSubmatchIndex(s, -1) {
		ts, ok := decomposeTimestamp(s, m)
		if ok {
			return ts, true
		}
	}
	return Timestamp{}, false
}

func decomposeTimestamp(s string, m []int) (Timestamp, bool) {
	group := func(i int) (int, bool) {
		if m[2*i] < 0 {
			return 0, false
		}
		n, err := strconv.Atoi(s[m[2*i]:m[2*i+1]])
		return n, err == nil
	}

	first, ok1 := group(1)
	second, ok2 := group(2)
	if !ok1 || !ok2 {
		return Timestamp{}, false
	}

	ts := Timestamp{Start: m[0], End: m[1]}
	if third, ok := group(3); ok {
		if second > 59 || third > 59 {
			return Timestamp{}, false
		}
		ts.Hours, ts.Minutes, ts.Seconds = first, second, third
		ts.HasHours = true
	} else {
		if second > 59 {
			return Timestamp{}, false
		}
		ts.Minutes, ts.Seconds = first, second
	}
	return ts, true
}

// Shifted subtracts shift seconds from ts and floors the result at zero.
// Fractional results are truncated.
func Shifted(ts Timestamp, shift float64) int {
	total := float64(ts.TotalSeconds()) - shift
	if total < 0 {
		return 0
	}
	return int(total)
}

// Normalize applies the shift and formats the result.
func Normalize(ts Timestamp, shift float64, format TimeFormat) string {
	return FormatSeconds(Shifted(ts, shift), format)
}

// FormatSeconds renders a non-negative seconds count.
func FormatSeconds(total int, format TimeFormat) string {
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	switch format {
	case FormatMinutes:
		return fmt.Sprintf("%02d:%02d", total/60, s)
	case FormatHours:
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	default:
		if h > 0 {
			return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
		}
		return fmt.Sprintf("%02d:%02d", m, s)
	}
}

// cutTimestamp removes ts from s, leaving a space in its place.
func cutTimestamp(s string, ts Timestamp) string {
	return strings.TrimSpace(s[:ts.Start] + " " + s[ts.End:])
}
