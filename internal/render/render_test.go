package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

func TestWrapLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line  string
		width int
		want  []string
	}{
		{"abcdef", 0, []string{"abcdef"}},
		{"abcdef", 4, []string{"abcd", "ef"}},
		{"\033[1mabcd\033[0m", 2, []string{"\033[1mab", "cd\033[0m"}},
		{"日本語", 4, []string{"日本", "語"}},
		{"", 5, []string{""}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, wrapLine(tt.line, tt.width)); diff != "" {
			t.Errorf("wrapLine(%q, %d) mismatch (-want +got):\n%s", tt.line, tt.width, diff)
		}
	}
}

func TestHighlightKeywords(t *testing.T) {
	t.Parallel()

	got := highlightKeywords("Sleep is hard. I need sleep.", "sleep AND")
	want := colorBoldRed + "Sleep" + colorReset + " is hard. I need " + colorBoldRed + "sleep" + colorReset + "."
	if got != want {
		t.Errorf("highlightKeywords = %q, want %q", got, want)
	}
	if got := highlightKeywords("text", ""); got != "text" {
		t.Errorf("empty query changed text: %q", got)
	}
}

func TestRenderTurns(t *testing.T) {
	t.Parallel()

	turns := []parse.Turn{
		{Timestamp: "00:05", Speaker: parse.RoleCounselor, Quote: "Hello.", Tag: parse.TagMinimalEncourager},
		{Speaker: parse.RoleClient, Quote: "Hi, I had a rough week."},
	}
	out, hit := RenderTurns("session.txt", turns, Options{HitTurnID: 1, NoColor: true})

	want := strings.Join([]string{
		"--- session.txt ---",
		"Couns 00:05 [ME]",
		"  Hello.",
		"",
		">> Client <<",
		"  Hi, I had a rough week.",
		"",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("RenderTurns mismatch (-want +got):\n%s", diff)
	}
	if hit != 4 {
		t.Errorf("hit line = %d, want 4", hit)
	}

	empty, hit := RenderTurns("", nil, Options{HitTurnID: -1})
	if empty != "(no dialogue turns)" || hit != -1 {
		t.Errorf("empty render = (%q, %d)", empty, hit)
	}
}
