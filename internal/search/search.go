package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/transcript-cleaner/internal/index"
)

type Result struct {
	TranscriptKey string
	TurnID        int
	FilePath      string
	Mtime         int64
	Summary       string
	Snippet       string
	Timestamp     string
	Speaker       string
	Tag           string
	Quote         string
	Rank          float64
}

type Options struct {
	Query   string
	Speaker string // "" = all, "Couns", "Client" or any passed-through label
	Tag     string // "" = all, "ME"
	Limit   int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(query))
	if query == "" || idx < 0 || len(lower) != len(text) {
		// no match, return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qLen := len([]rune(query))
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + qLen + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end])
	return prefix + snippet + suffix
}

// ftsQuery quotes each term so punctuation in a quote ("don't", "mm-hmm")
// is not read as FTS5 syntax. Terms are ANDed.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return ListAll(db, opts)
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	// Deduplicate: keep only the best-ranked result per transcript
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.TranscriptKey] {
			continue
		}
		seen[r.TranscriptKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters builds the speaker and tag conditions against the turns table
// aliased as alias.
func filters(opts Options, alias string) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	if opts.Speaker != "" {
		conditions = append(conditions, alias+".speaker = ? COLLATE NOCASE")
		args = append(args, opts.Speaker)
	}
	if opts.Tag != "" {
		conditions = append(conditions, alias+".tag = ?")
		args = append(args, opts.Tag)
	}
	return conditions, args
}

const resultColumns = `
			t.transcript_key,
			t.turn_id,
			s.file_path,
			s.mtime,
			s.summary,
			t.ts,
			t.speaker,
			t.tag,
			t.quote`

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"turns_fts MATCH ?"}
	args := []interface{}{ftsQuery(opts.Query)}
	fc, fa := filters(opts, "t")
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT %s,
			snippet(turns_fts, 0, '>>>', '<<<', '...', 40) AS snip,
			bm25(turns_fts, 1.0) AS rank
		FROM turns_fts
		JOIN turns t ON turns_fts.rowid = t.rowid
		JOIN transcripts s ON t.transcript_key = s.transcript_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, resultColumns, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.TranscriptKey, &r.TurnID, &r.FilePath, &r.Mtime, &r.Summary,
			&r.Timestamp, &r.Speaker, &r.Tag, &r.Quote,
			&r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	// LIKE match for CJK substring search
	conditions := []string{"t.quote LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}
	fc, fa := filters(opts, "t")
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT %s
		FROM turns t
		JOIN transcripts s ON t.transcript_key = s.transcript_key
		WHERE %s
		ORDER BY s.mtime DESC, t.turn_id
		LIMIT ?
	`, resultColumns, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Snippet = makeSnippet(results[i].Quote, opts.Query, 30)
	}
	return results, nil
}

// ListAll returns one row per indexed transcript, newest first, anchored on
// its first turn that matches the speaker and tag filters.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	conditions, args := filters(opts, "t2")
	where := ""
	if len(conditions) > 0 {
		where = "AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM transcripts s
		JOIN turns t ON t.transcript_key = s.transcript_key
		WHERE t.turn_id = (
			SELECT MIN(t2.turn_id) FROM turns t2
			WHERE t2.transcript_key = s.transcript_key %s
		)
		ORDER BY s.mtime DESC, s.transcript_key
		LIMIT ?
	`, resultColumns, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Snippet = makeSnippet(results[i].Quote, "", 40)
	}
	return results, nil
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.TranscriptKey, &r.TurnID, &r.FilePath, &r.Mtime, &r.Summary,
			&r.Timestamp, &r.Speaker, &r.Tag, &r.Quote,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
