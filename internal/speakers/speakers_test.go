package speakers

import (
	"testing"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

func TestSurvey(t *testing.T) {
	t.Parallel()

	turns := []parse.Turn{
		{Speaker: "Supervisor", Quote: "Recording started"},
		{Speaker: parse.RoleClient, Quote: "Hi there"},
		{Speaker: "Jayne D", Quote: "Welcome back, how are you"},
		{Speaker: parse.RoleCounselor, Quote: "Okay"},
		{Speaker: parse.RoleClient, Quote: "Fine thanks"},
	}

	got := Survey(turns, "Jane D", "Samuel")
	if len(got) != 4 {
		t.Fatalf("got %d entries, want 4", len(got))
	}

	if got[0].Label != parse.RoleCounselor || got[1].Label != parse.RoleClient {
		t.Errorf("roles not listed first: %q, %q", got[0].Label, got[1].Label)
	}
	if got[1].Turns != 2 || got[1].Words != 4 {
		t.Errorf("client counts = %d turns %d words, want 2 and 4", got[1].Turns, got[1].Words)
	}

	byLabel := map[string]Entry{}
	for _, e := range got {
		byLabel[e.Label] = e
	}
	if e := byLabel["Jayne D"]; e.Suggestion != parse.RoleCounselor || e.LikelyName != "Jane D" {
		t.Errorf("Jayne D suggestion = %+v, want counselor", e)
	}
	if e := byLabel["Supervisor"]; e.Suggestion != "" {
		t.Errorf("Supervisor got a suggestion: %+v", e)
	}
	if byLabel[parse.RoleCounselor].Suggestion != "" {
		t.Error("mapped role got a suggestion")
	}
}

func TestSuggestPrefersPhonetic(t *testing.T) {
	t.Parallel()

	cands := []candidate{
		{name: "Catherine", role: parse.RoleCounselor},
		{name: "Samuel", role: parse.RoleClient},
	}
	c, score, ok := suggest("Kathryn", cands)
	if !ok || c.role != parse.RoleCounselor {
		t.Fatalf("suggest(Kathryn) = %+v %v %v", c, score, ok)
	}
	if score < phoneticThreshold {
		t.Errorf("score %v below threshold", score)
	}

	if _, _, ok := suggest("   ", cands); ok {
		t.Error("blank label matched")
	}
}
