package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var ErrTranscriptNotFound = errors.New("transcript not found")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS transcripts (
    transcript_key TEXT PRIMARY KEY,
    file_path      TEXT NOT NULL,
    summary        TEXT NOT NULL DEFAULT '',
    mtime          INTEGER NOT NULL DEFAULT 0,
    size           INTEGER NOT NULL DEFAULT 0,
    line_count     INTEGER NOT NULL DEFAULT 0,
    turn_count     INTEGER NOT NULL DEFAULT 0,
    shift_seconds  REAL NOT NULL DEFAULT 0,
    time_format    TEXT NOT NULL DEFAULT '',
    options_hash   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS turns (
    transcript_key TEXT NOT NULL,
    turn_id        INTEGER NOT NULL,
    ts             TEXT NOT NULL DEFAULT '',
    speaker        TEXT NOT NULL,
    quote          TEXT NOT NULL,
    tag            TEXT NOT NULL DEFAULT '',
    line_number    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (transcript_key, turn_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS turns_fts USING fts5(
    quote,
    content=turns,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS turns_ai AFTER INSERT ON turns BEGIN
    INSERT INTO turns_fts(rowid, quote) VALUES (new.rowid, new.quote);
END;

CREATE TRIGGER IF NOT EXISTS turns_ad AFTER DELETE ON turns BEGIN
    INSERT INTO turns_fts(turns_fts, rowid, quote) VALUES('delete', old.rowid, old.quote);
END;

CREATE TRIGGER IF NOT EXISTS turns_au AFTER UPDATE ON turns BEGIN
    INSERT INTO turns_fts(turns_fts, rowid, quote) VALUES('delete', old.rowid, old.quote);
    INSERT INTO turns_fts(rowid, quote) VALUES (new.rowid, new.quote);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db   *sql.DB
	path string
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db, path: dbPath}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema version: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever turn parsing logic changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if ver == schemaVersion {
		return nil
	}
	// force re-index by resetting all transcript mtime/size to 0
	if _, err := d.db.Exec("UPDATE transcripts SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

func (d *DB) Path() string {
	return d.path
}

// LockPath is the file locked while an index run writes.
func (d *DB) LockPath() string {
	return d.path + ".lock"
}

type TranscriptInfo struct {
	Mtime       int64
	Size        int64
	OptionsHash string
}

func (d *DB) GetTranscriptInfo(key string) (*TranscriptInfo, error) {
	var info TranscriptInfo
	err := d.db.QueryRow(
		"SELECT mtime, size, options_hash FROM transcripts WHERE transcript_key = ?",
		key,
	).Scan(&info.Mtime, &info.Size, &info.OptionsHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllTranscriptKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT transcript_key FROM transcripts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteTranscript(key string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM turns WHERE transcript_key = ?", key); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM transcripts WHERE transcript_key = ?", key); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) TranscriptCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}

func (d *DB) TurnCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&n)
	return n, err
}

// SpeakerCounts returns the number of indexed turns per speaker.
func (d *DB) SpeakerCounts() (map[string]int, error) {
	rows, err := d.db.Query("SELECT speaker, COUNT(*) FROM turns GROUP BY speaker")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var speaker string
		var n int
		if err := rows.Scan(&speaker, &n); err != nil {
			return nil, err
		}
		counts[speaker] = n
	}
	return counts, rows.Err()
}

type TranscriptRow struct {
	Key          string
	FilePath     string
	Summary      string
	Mtime        int64
	TurnCount    int
	ShiftSeconds float64
	TimeFormat   string
}

func (d *DB) GetTranscript(key string) (*TranscriptRow, error) {
	var t TranscriptRow
	err := d.db.QueryRow(
		`SELECT transcript_key, file_path, summary, mtime, turn_count, shift_seconds, time_format
		 FROM transcripts WHERE transcript_key = ?`,
		key,
	).Scan(&t.Key, &t.FilePath, &t.Summary, &t.Mtime, &t.TurnCount, &t.ShiftSeconds, &t.TimeFormat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type TurnRow struct {
	TranscriptKey string
	TurnID        int
	Ts            string
	Speaker       string
	Quote         string
	Tag           string
	LineNumber    int
}

const turnColumns = "transcript_key, turn_id, ts, speaker, quote, tag, line_number"

func scanTurn(rows *sql.Rows) (TurnRow, error) {
	var t TurnRow
	err := rows.Scan(&t.TranscriptKey, &t.TurnID, &t.Ts, &t.Speaker, &t.Quote, &t.Tag, &t.LineNumber)
	return t, err
}

func (d *DB) GetTurns(key string) ([]TurnRow, error) {
	rows, err := d.db.Query(
		"SELECT "+turnColumns+" FROM turns WHERE transcript_key = ? ORDER BY turn_id",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []TurnRow
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// GetTurn returns a single turn.
func (d *DB) GetTurn(key string, turnID int) (*TurnRow, error) {
	rows, err := d.db.Query(
		"SELECT "+turnColumns+" FROM turns WHERE transcript_key = ? AND turn_id = ?",
		key, turnID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s turn %d", ErrTranscriptNotFound, key, turnID)
	}
	t, err := scanTurn(rows)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTurnsWindow returns a window of turns around a hit turn. Turn ids are
// dense positions, so the window is a plain id range. startPos is the number
// of turns before the returned window and totalCount the number of turns in
// the transcript. A negative hitTurnID returns every turn.
func (d *DB) GetTurnsWindow(key string, hitTurnID, context int) (turns []TurnRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM turns WHERE transcript_key = ?", key,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	startPos = 0
	limit := totalCount
	if hitTurnID >= 0 && hitTurnID < totalCount {
		startPos = hitTurnID - context
		if startPos < 0 {
			startPos = 0
		}
		endPos := hitTurnID + context + 1
		if endPos > totalCount {
			endPos = totalCount
		}
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+turnColumns+" FROM turns WHERE transcript_key = ? ORDER BY turn_id LIMIT ? OFFSET ?",
		key, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	hitIdx = -1
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, -1, 0, 0, err
		}
		if t.TurnID == hitTurnID {
			hitIdx = len(turns)
		}
		turns = append(turns, t)
	}
	return turns, hitIdx, startPos, totalCount, rows.Err()
}
