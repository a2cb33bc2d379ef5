package parse

import "testing"

func TestCleanQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  - • Hello   there  ", "Hello there"},
		{"\"“Quoted”\"", "Quoted"},
		{"> > reply", "reply"},
		{"{<'x'>}", "x"},
		{": — fine, thanks", "fine, thanks"},
		{"---", ""},
		{"multi\tline spacing", "multi line spacing"},
	}

	for _, tt := range tests {
		if got := CleanQuote(tt.in); got != tt.want {
			t.Errorf("CleanQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsMeaningful(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"":      false,
		"...":   false,
		"( )":   false,
		"🙂":     false,
		"ok":    true,
		"42":    true,
		"Zoë":   true,
		"日本":    true,
		"_":     true,
	} {
		if got := IsMeaningful(in); got != want {
			t.Errorf("IsMeaningful(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]int{
		"":                   0,
		"   ":                0,
		"Okay":               1,
		"Mm hmm, go on":      4,
		"  spaced   words  ": 2,
	} {
		if got := WordCount(in); got != want {
			t.Errorf("WordCount(%q) = %d, want %d", in, got, want)
		}
	}
}
