package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

// Flatten collapses every whitespace run, tabs and newlines included, into
// one space so a value fits in a single TSV cell.
func Flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TSVRow joins a turn's flattened columns with tabs, pasteable into exactly
// four spreadsheet cells.
func TSVRow(t parse.Turn) string {
	fields := t.Row()
	for i, f := range fields {
		fields[i] = Flatten(f)
	}
	return strings.Join(fields, "\t")
}

// quoteWidthMax wraps long quotes in terminal tables.
const quoteWidthMax = 80

// Write renders turns to w in the given format.
func Write(w io.Writer, f Format, turns []parse.Turn) error {
	if turns == nil {
		turns = []parse.Turn{}
	}
	switch f {
	case FormatCSV:
		return writeDelimited(w, ',', turns)
	case FormatTSV:
		return writeDelimited(w, '\t', turns)
	case FormatXLSX:
		return writeXLSX(w, turns)
	case FormatTable, FormatMarkdown, FormatHTML:
		return writePretty(w, f, turns)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(turns)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(turns); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteFile writes turns to path, replacing any existing file.
func WriteFile(path string, f Format, turns []parse.Turn) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	if err := Write(bw, f, turns); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func writeDelimited(w io.Writer, comma rune, turns []parse.Turn) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(parse.Columns); err != nil {
		return err
	}
	for _, t := range turns {
		if err := cw.Write(t.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePretty(w io.Writer, f Format, turns []parse.Turn) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(parse.Columns))
	for i, c := range parse.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, t := range turns {
		tw.AppendRow(table.Row{t.Timestamp, t.Speaker, t.Quote, t.Tag})
	}

	configs := make([]table.ColumnConfig, 0, len(parse.Columns))
	for i := range parse.Columns {
		cc := table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		}
		if f == FormatTable && parse.Columns[i] == "Quote" {
			cc.WidthMax = quoteWidthMax
		}
		configs = append(configs, cc)
	}
	tw.SetColumnConfigs(configs)

	var out string
	switch f {
	case FormatMarkdown:
		out = tw.RenderMarkdown()
	case FormatHTML:
		out = tw.RenderHTML()
	default:
		out = tw.Render()
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
