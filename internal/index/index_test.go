package index

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newParser(t *testing.T, opts parse.Options) *parse.Parser {
	t.Helper()
	p, err := parse.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "db", "tclean.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeTranscript(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sessionOne = `WEBVTT

00:00:01.000 --> 00:00:03.000
<v Jane D>Hi Sam, how has the week been?

00:00:04.000 --> 00:00:06.000
<v Sam>Busy. Work has been a lot.

00:00:07.000 --> 00:00:08.000
<v Jane D>Mm-hmm.

00:00:09.000 --> 00:00:12.000
<v Sam>I keep thinking about the deadline.
`

func TestIndexAll(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	db := openTestDB(t)
	p := newParser(t, parse.Options{CounselorName: "Jane D", ClientName: "Sam"})
	ctx := context.Background()

	writeTranscript(t, root, "one.vtt", sessionOne)
	second := writeTranscript(t, root, "week2/two.txt", "Jane D: Welcome back.\nSam: Thanks.\n")
	writeTranscript(t, root, "empty.txt", "no speakers here\n")

	stats, err := IndexAll(ctx, db, root, p, quietLogger())
	if err != nil {
		t.Fatalf("IndexAll: %v", err)
	}
	if want := (Stats{Scanned: 3, Updated: 3, Empty: 1}); stats != want {
		t.Errorf("first run stats = %+v, want %+v", stats, want)
	}

	turns, err := db.GetTurns("one.vtt")
	if err != nil {
		t.Fatal(err)
	}
	var got []parse.Turn
	for _, tr := range turns {
		got = append(got, parse.Turn{Timestamp: tr.Ts, Speaker: tr.Speaker, Quote: tr.Quote, Tag: tr.Tag})
	}
	want := []parse.Turn{
		{Timestamp: "00:01", Speaker: "Couns", Quote: "Hi Client, how has the week been?"},
		{Speaker: "Client", Quote: "Busy. Work has been a lot."},
		{Timestamp: "00:07", Speaker: "Couns", Quote: "Mm-hmm.", Tag: "ME"},
		{Speaker: "Client", Quote: "I keep thinking about the deadline."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("turns mismatch (-want +got):\n%s", diff)
	}

	stats, err = IndexAll(ctx, db, root, p, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if want := (Stats{Scanned: 3, Skipped: 3}); stats != want {
		t.Errorf("second run stats = %+v, want %+v", stats, want)
	}

	// changed options re-index everything
	shifted := newParser(t, parse.Options{CounselorName: "Jane D", ClientName: "Sam", ShiftSeconds: 1})
	stats, err = IndexAll(ctx, db, root, shifted, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 3 {
		t.Errorf("after option change updated = %d, want 3", stats.Updated)
	}
	first, err := db.GetTurn("one.vtt", 0)
	if err != nil {
		t.Fatal(err)
	}
	if first.Ts != "00:00" {
		t.Errorf("shifted timestamp = %q, want 00:00", first.Ts)
	}

	if err := os.Remove(second); err != nil {
		t.Fatal(err)
	}
	stats, err = IndexAll(ctx, db, root, shifted, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pruned != 1 {
		t.Errorf("pruned = %d, want 1", stats.Pruned)
	}
	if _, err := db.GetTranscript("week2/two.txt"); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("GetTranscript after prune: %v, want ErrTranscriptNotFound", err)
	}

	n, err := db.TranscriptCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("TranscriptCount = %d, want 2", n)
	}
}

func TestIndexAllModifiedFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	db := openTestDB(t)
	p := newParser(t, parse.Options{CounselorName: "Jane D", ClientName: "Sam"})

	path := writeTranscript(t, root, "s.txt", "Sam: first version\n")
	if _, err := IndexAll(context.Background(), db, root, p, quietLogger()); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("Sam: second, longer version\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	stats, err := IndexAll(context.Background(), db, root, p, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 {
		t.Fatalf("updated = %d, want 1", stats.Updated)
	}
	tr, err := db.GetTranscript("s.txt")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Summary != "second, longer version" {
		t.Errorf("summary = %q", tr.Summary)
	}
}

func TestIndexAllCancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	db := openTestDB(t)
	p := newParser(t, parse.Options{CounselorName: "Jane D", ClientName: "Sam"})
	writeTranscript(t, root, "s.txt", "Sam: hello\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := IndexAll(ctx, db, root, p, quietLogger()); err == nil {
		t.Error("IndexAll with a cancelled context: want error")
	}
}

func TestGetTurnsWindow(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	db := openTestDB(t)
	p := newParser(t, parse.Options{CounselorName: "Jane D", ClientName: "Sam"})
	writeTranscript(t, root, "one.vtt", sessionOne)
	if _, err := IndexAll(context.Background(), db, root, p, quietLogger()); err != nil {
		t.Fatal(err)
	}

	turns, hitIdx, start, total, err := db.GetTurnsWindow("one.vtt", 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 || start != 1 || hitIdx != 1 || len(turns) != 3 {
		t.Errorf("window = (%d turns, hit %d, start %d, total %d), want (3, 1, 1, 4)", len(turns), hitIdx, start, total)
	}

	all, hitIdx, _, _, err := db.GetTurnsWindow("one.vtt", -1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || hitIdx != -1 {
		t.Errorf("full window = (%d turns, hit %d), want (4, -1)", len(all), hitIdx)
	}
}

func TestOptionsHash(t *testing.T) {
	t.Parallel()

	base := parse.Options{CounselorName: "Jane D", ClientName: "Sam"}
	same := parse.Options{CounselorName: "jane  d", ClientName: "SAM"}
	if OptionsHash(base) != OptionsHash(same) {
		t.Error("hash depends on name case or spacing")
	}
	for _, changed := range []parse.Options{
		{CounselorName: "Jane E", ClientName: "Sam"},
		{CounselorName: "Jane D", ClientName: "Sam", ShiftSeconds: 3},
		{CounselorName: "Jane D", ClientName: "Sam", TimeFormat: parse.FormatHours},
	} {
		if OptionsHash(base) == OptionsHash(changed) {
			t.Errorf("hash unchanged for %+v", changed)
		}
	}
}
