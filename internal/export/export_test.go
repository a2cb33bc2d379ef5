package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

var sample = []parse.Turn{
	{Timestamp: "00:05", Speaker: parse.RoleCounselor, Quote: "Hello, Client.", Tag: parse.TagMinimalEncourager, Line: 3},
	{Speaker: parse.RoleClient, Quote: `She said "fine", then left.`, Line: 7},
	{Speaker: "Supervisor", Quote: "Noted", Line: 9},
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{
		"csv":   FormatCSV,
		" XLSX": FormatXLSX,
		"md":    FormatMarkdown,
		"yml":   FormatYAML,
		"html":  FormatHTML,
	} {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Error("ParseFormat(docx): want error")
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"out/session.xlsx", FormatXLSX, true},
		{"notes.MD", FormatMarkdown, true},
		{"rows.tsv", FormatTSV, true},
		{"rows.table", "", false},
		{"rows", "", false},
		{"rows.docx", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatFromPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	t.Parallel()

	if got := DefaultOutput("dir/session 1.txt", FormatXLSX); got != "dir/session 1.xlsx" {
		t.Errorf("got %q", got)
	}
	if got := DefaultOutput("-", FormatXLSX); got != "dialogue.xlsx" {
		t.Errorf("got %q", got)
	}
	if got := DefaultOutput("a.vtt", FormatMarkdown); got != "a.md" {
		t.Errorf("got %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sample); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		parse.Columns,
		{"00:05", "Couns", "Hello, Client.", "ME"},
		{"", "Client", `She said "fine", then left.`, ""},
		{"", "Supervisor", "Noted", ""},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatTSV, sample[:1]); err != nil {
		t.Fatal(err)
	}
	want := "Timestamp\tSpeaker\tQuote\tTag\n00:05\tCouns\tHello, Client.\tME\n"
	if buf.String() != want {
		t.Errorf("tsv = %q, want %q", buf.String(), want)
	}
}

func TestWriteJSONKeepsFieldOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sample[:1]); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	order := []string{`"Timestamp"`, `"Speaker"`, `"Quote"`, `"Tag"`}
	last := -1
	for _, key := range order {
		i := strings.Index(out, key)
		if i <= last {
			t.Fatalf("key %s out of order in %s", key, out)
		}
		last = i
	}
	if strings.Contains(out, "Line") {
		t.Errorf("json leaks the source line: %s", out)
	}

	var back []parse.Turn
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back[0].Quote != "Hello, Client." {
		t.Errorf("quote = %q", back[0].Quote)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty json = %q, want []", got)
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, sample[1:2]); err != nil {
		t.Fatal(err)
	}
	var back []map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	want := []map[string]string{{"Timestamp": "", "Speaker": "Client", "Quote": `She said "fine", then left.`, "Tag": ""}}
	if diff := cmp.Diff(want, back); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePretty(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatTable, FormatMarkdown, FormatHTML} {
		var buf bytes.Buffer
		if err := Write(&buf, f, sample); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		out := strings.ToLower(buf.String())
		for _, want := range []string{"timestamp", "supervisor", "noted"} {
			if !strings.Contains(out, want) {
				t.Errorf("%s output missing %q:\n%s", f, want, out)
			}
		}
	}

	var md bytes.Buffer
	if err := Write(&md, FormatMarkdown, sample[:1]); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md.String(), ":---") {
		t.Errorf("markdown output has no header rule:\n%s", md.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dialogue.xlsx")
	if err := WriteFile(path, FormatXLSX, sample); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != sheetName {
		t.Fatalf("sheets = %v, want [%s]", got, sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	for i := range rows {
		for len(rows[i]) < len(parse.Columns) {
			rows[i] = append(rows[i], "")
		}
	}
	want := [][]string{parse.Columns}
	for _, turn := range sample {
		want = append(want, turn.Row())
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	counselorStyle, err := f.GetCellStyle(sheetName, "A2")
	if err != nil {
		t.Fatal(err)
	}
	clientStyle, err := f.GetCellStyle(sheetName, "A3")
	if err != nil {
		t.Fatal(err)
	}
	otherStyle, err := f.GetCellStyle(sheetName, "A4")
	if err != nil {
		t.Fatal(err)
	}
	if clientStyle == counselorStyle {
		t.Error("client row shares the counselor row style")
	}
	if otherStyle != counselorStyle {
		t.Error("non-client rows should be unstyled alike")
	}
	tagStyle, err := f.GetCellStyle(sheetName, "D3")
	if err != nil {
		t.Fatal(err)
	}
	if tagStyle != clientStyle {
		t.Error("client styling does not span the whole row")
	}

	width, err := f.GetColWidth(sheetName, "C")
	if err != nil {
		t.Fatal(err)
	}
	if width != 100 {
		t.Errorf("quote column width = %v, want 100", width)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	got := Summarize(sample)
	want := Stats{Rows: 3, ClientRows: 1, CounselorRows: 1, OtherRows: 1, MinimalTags: 1}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
	if s := got.String(); !strings.Contains(s, "Tags (ME): 1") || !strings.Contains(s, "Other rows: 1") {
		t.Errorf("String() = %q", s)
	}
}

func TestTSVRow(t *testing.T) {
	t.Parallel()

	got := TSVRow(parse.Turn{Timestamp: "00:05", Speaker: "Couns", Quote: "tab\there\nand  newline", Tag: "ME"})
	if want := "00:05\tCouns\ttab here and newline\tME"; got != want {
		t.Errorf("TSVRow = %q, want %q", got, want)
	}
	if got := TSVRow(parse.Turn{Speaker: "Client", Quote: "Hi."}); strings.Count(got, "\t") != 3 {
		t.Errorf("TSVRow lost empty columns: %q", got)
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	if got, want := Flatten(" a\tb\n\nc "), "a b c"; got != want {
		t.Errorf("Flatten = %q, want %q", got, want)
	}
}
