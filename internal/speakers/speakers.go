// Package speakers summarizes who speaks in a parsed transcript and points
// out unmapped speaker labels that look like a misspelled counselor or
// client name.
//
// Suggestions use Double Metaphone to find phonetic candidates and rank them
// with Jaro-Winkler similarity. Labels with no phonetic overlap still get a
// suggestion when their plain similarity is high enough.
package speakers

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

const (
	phoneticThreshold = 0.70
	fuzzyThreshold    = 0.85
)

// Entry describes one speaker label.
type Entry struct {
	Label string
	Turns int
	Words int
	Mapped bool

	// Suggestion is the role an unmapped label probably meant, with the
	// configured name it resembles. Empty when nothing is close.
	Suggestion string
	LikelyName string
	Score      float64
}

// Survey counts turns and words per speaker. Counselor and client come first,
// then other labels by turn count.
func Survey(turns []parse.Turn, counselorName, clientName string) []Entry {
	byLabel := make(map[string]*Entry)
	var order []string
	for _, t := range turns {
		e, ok := byLabel[t.Speaker]
		if !ok {
			e = &Entry{
				Label:  t.Speaker,
				Mapped: t.Speaker == parse.RoleCounselor || t.Speaker == parse.RoleClient,
			}
			byLabel[t.Speaker] = e
			order = append(order, t.Speaker)
		}
		e.Turns++
		e.Words += parse.WordCount(t.Quote)
	}

	candidates := []candidate{
		{name: counselorName, role: parse.RoleCounselor},
		{name: clientName, role: parse.RoleClient},
	}

	out := make([]Entry, 0, len(order))
	for _, label := range order {
		e := byLabel[label]
		if !e.Mapped {
			if c, score, ok := suggest(label, candidates); ok {
				e.Suggestion, e.LikelyName, e.Score = c.role, c.name, score
			}
		}
		out = append(out, *e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Label), rank(out[j].Label)
		if ri != rj {
			return ri < rj
		}
		return out[i].Turns > out[j].Turns
	})
	return out
}

func rank(label string) int {
	switch label {
	case parse.RoleCounselor:
		return 0
	case parse.RoleClient:
		return 1
	default:
		return 2
	}
}

type candidate struct {
	name string
	role string
}

// suggest returns the candidate most similar to label.
func suggest(label string, candidates []candidate) (candidate, float64, bool) {
	labelLower := strings.ToLower(strings.TrimSpace(label))
	labelTokens := strings.Fields(labelLower)
	if len(labelTokens) == 0 {
		return candidate{}, 0, false
	}
	labelCodes := codesForTokens(labelTokens)

	var best candidate
	var bestScore float64
	bestPhonetic := false
	for _, c := range candidates {
		nameLower := strings.ToLower(strings.TrimSpace(c.name))
		nameTokens := strings.Fields(nameLower)
		if len(nameTokens) == 0 {
			continue
		}

		phonetic := codesOverlap(labelCodes, codesForTokens(nameTokens))
		score := bestJWScore(labelTokens, nameTokens, labelLower, nameLower)

		switch {
		case phonetic && score >= phoneticThreshold:
			if !bestPhonetic || score > bestScore {
				best, bestScore, bestPhonetic = c, score, true
			}
		case !phonetic && !bestPhonetic && score >= fuzzyThreshold && score > bestScore:
			best, bestScore = c, score
		}
	}
	if best.role == "" {
		return candidate{}, 0, false
	}
	return best, bestScore, true
}

// codesForTokens returns the union of the non-empty Double Metaphone codes of
// tokens.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore takes the best of the full-string, space-stripped and
// pairwise-token Jaro-Winkler scores.
func bestJWScore(aTokens, bTokens []string, aFull, bFull string) float64 {
	score := matchr.JaroWinkler(aFull, bFull, false)

	if len(aTokens) > 1 || len(bTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(aTokens, ""), strings.Join(bTokens, ""), false); s > score {
			score = s
		}
	}

	for _, at := range aTokens {
		for _, bt := range bTokens {
			if s := matchr.JaroWinkler(at, bt, false); s > score {
				score = s
			}
		}
	}
	return score
}
