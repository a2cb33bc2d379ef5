package parse

import "time"

// Canonical speaker labels and the tag marker written to the Tag column.
const (
	RoleCounselor        = "Couns"
	RoleClient           = "Client"
	TagMinimalEncourager = "ME"
)

// maxTagWords is the largest counselor quote (in words) that is tagged ME.
const maxTagWords = 3

// Columns is the output column order. Downstream spreadsheets depend on it.
var Columns = []string{"Timestamp", "Speaker", "Quote", "Tag"}

// Turn is one attributed unit of dialogue.
type Turn struct {
	Timestamp string `json:"Timestamp" yaml:"Timestamp"`
	Speaker   string `json:"Speaker" yaml:"Speaker"`
	Quote     string `json:"Quote" yaml:"Quote"`
	Tag       string `json:"Tag" yaml:"Tag"`

	// Line is the 1-based source line of the turn's first fragment.
	Line int `json:"-" yaml:"-"`
}

// Row returns the turn's fields in Columns order.
func (t Turn) Row() []string {
	return []string{t.Timestamp, t.Speaker, t.Quote, t.Tag}
}

type TranscriptMeta struct {
	FilePath string
	Summary  string
	Mtime    time.Time
	Size     int64
	Lines    int
}

type ParseResult struct {
	Meta  TranscriptMeta
	Turns []Turn
}
