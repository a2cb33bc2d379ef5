package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
	"github.com/Zuo-Peng/transcript-cleaner/internal/scan"
)

var ErrIndexBusy = errors.New("another index run holds the lock")

const (
	lockWait  = 10 * time.Second
	lockRetry = 200 * time.Millisecond
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Empty   int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d empty=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Empty, s.Errors)
}

// OptionsHash fingerprints the parse options so a changed name, shift or
// time format re-indexes every transcript.
func OptionsHash(opts parse.Options) string {
	fold := cases.Fold()
	key := strings.Join([]string{
		fold.String(strings.Join(strings.Fields(opts.CounselorName), " ")),
		fold.String(strings.Join(strings.Fields(opts.ClientName), " ")),
		fmt.Sprintf("%g", opts.ShiftSeconds),
		opts.TimeFormat.String(),
	}, "\x00")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// IndexAll brings the index in line with the transcripts under root.
// Changed files are parsed concurrently and written one at a time; files
// that disappeared are pruned.
func IndexAll(ctx context.Context, db *DB, root string, p *parse.Parser, log *logrus.Entry) (Stats, error) {
	var stats Stats

	lock := flock.New(db.LockPath())
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, lockRetry)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return stats, fmt.Errorf("acquire index lock: %w", err)
	}
	if !locked {
		return stats, ErrIndexBusy
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("failed to release index lock")
		}
	}()

	files, err := scan.ScanRoot(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	hash := OptionsHash(p.Options())

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{}, len(files))
	var todo []scan.FileInfo
	for _, fi := range files {
		seenKeys[fi.Key] = struct{}{}
		needs, err := needsUpdate(db, fi, hash)
		if err != nil {
			stats.Errors++
			log.WithError(err).WithField("file", fi.Path).Warn("check index state")
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}
		todo = append(todo, fi)
	}

	results, parseErrs, err := parseAll(ctx, p, todo)
	if err != nil {
		return stats, err
	}

	for i, fi := range todo {
		if parseErrs[i] != nil {
			stats.Errors++
			log.WithError(parseErrs[i]).WithField("file", fi.Path).Warn("parse failed")
			continue
		}
		res := results[i]
		if len(res.Turns) == 0 {
			stats.Empty++
			log.WithField("file", fi.Path).Info("no dialogue turns found")
		}
		if err := indexTranscript(db, fi, res, p.Options(), hash); err != nil {
			stats.Errors++
			log.WithError(err).WithField("file", fi.Path).Warn("index failed")
			continue
		}
		log.WithFields(logrus.Fields{
			"file":  fi.Key,
			"turns": len(res.Turns),
		}).Debug("indexed")
		stats.Updated++
	}

	// prune transcripts whose files no longer exist
	pruned, err := pruneTranscripts(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

// parseAll parses files on a bounded worker pool. Per-file errors are
// returned in errs; the error result is only set when ctx is cancelled.
func parseAll(ctx context.Context, p *parse.Parser, files []scan.FileInfo) ([]*parse.ParseResult, []error, error) {
	results := make([]*parse.ParseResult, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, fi := range files {
		i, fi := i, fi
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = p.ParseFile(fi.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}

func needsUpdate(db *DB, fi scan.FileInfo, hash string) (bool, error) {
	info, err := db.GetTranscriptInfo(fi.Key)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new transcript
	}
	return info.Mtime != fi.Mtime || info.Size != fi.Size || info.OptionsHash != hash, nil
}

func indexTranscript(db *DB, fi scan.FileInfo, result *parse.ParseResult, opts parse.Options, hash string) error {
	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// delete old data first
	if _, err := tx.Exec("DELETE FROM turns WHERE transcript_key = ?", fi.Key); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM transcripts WHERE transcript_key = ?", fi.Key); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO transcripts (transcript_key, file_path, summary, mtime, size, line_count, turn_count, shift_seconds, time_format, options_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fi.Key,
		fi.Path,
		result.Meta.Summary,
		fi.Mtime,
		fi.Size,
		result.Meta.Lines,
		len(result.Turns),
		opts.ShiftSeconds,
		opts.TimeFormat.String(),
		hash,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO turns (transcript_key, turn_id, ts, speaker, quote, tag, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range result.Turns {
		if _, err := stmt.Exec(fi.Key, i, t.Timestamp, t.Speaker, t.Quote, t.Tag, t.Line); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneTranscripts(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllTranscriptKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteTranscript(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
