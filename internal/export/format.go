// Package export writes parsed turns as spreadsheets, delimited text, tables
// and structured data. Every format keeps the Timestamp, Speaker, Quote, Tag
// column order.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatXLSX     Format = "xlsx"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

var formats = []Format{
	FormatCSV, FormatTSV, FormatXLSX, FormatTable,
	FormatMarkdown, FormatHTML, FormatJSON, FormatYAML,
}

var aliases = map[string]Format{
	"md":   FormatMarkdown,
	"yml":  FormatYAML,
	"htm":  FormatHTML,
	"text": FormatTable,
}

// Names lists the accepted format names, for flag help.
func Names() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	if f, ok := aliases[s]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(Names(), ", "))
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil || f == FormatTable {
		return "", false
	}
	return f, true
}

// Binary reports whether the format must go to a file rather than a terminal.
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// DefaultOutput derives an output path from the input path, e.g.
// "session.txt" becomes "session.xlsx". Stdin input yields "dialogue.xlsx".
func DefaultOutput(input string, f Format) string {
	ext := string(f)
	if f == FormatMarkdown {
		ext = "md"
	}
	if input == "" || input == "-" {
		return "dialogue." + ext
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + ext
}
