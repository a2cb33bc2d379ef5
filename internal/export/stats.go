package export

import (
	"fmt"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

// Stats counts rows by speaker.
type Stats struct {
	Rows          int
	ClientRows    int
	CounselorRows int
	OtherRows     int
	MinimalTags   int
}

func Summarize(turns []parse.Turn) Stats {
	s := Stats{Rows: len(turns)}
	for _, t := range turns {
		switch t.Speaker {
		case parse.RoleClient:
			s.ClientRows++
		case parse.RoleCounselor:
			s.CounselorRows++
		default:
			s.OtherRows++
		}
		if t.Tag == parse.TagMinimalEncourager {
			s.MinimalTags++
		}
	}
	return s
}

func (s Stats) String() string {
	out := fmt.Sprintf("Rows: %d • Client rows: %d • Couns rows: %d • Tags (ME): %d",
		s.Rows, s.ClientRows, s.CounselorRows, s.MinimalTags)
	if s.OtherRows > 0 {
		out += fmt.Sprintf(" • Other rows: %d", s.OtherRows)
	}
	return out
}
