package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

func TestLoadFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "tclean.toml")
	content := `counselor_name = "Jane D"
client_name = "Sam"
shift_seconds = 2.5
time_format = "hours"
transcripts_root = "~/sessions"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TranscriptsRoot != filepath.Join(home, "sessions") {
		t.Errorf("TranscriptsRoot = %q, ~ not expanded", cfg.TranscriptsRoot)
	}
	if cfg.DBPath != filepath.Join(home, ".config", "tclean", "tclean.db") {
		t.Errorf("DBPath default = %q", cfg.DBPath)
	}

	opts, err := cfg.ParseOptions()
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	want := parse.Options{CounselorName: "Jane D", ClientName: "Sam", ShiftSeconds: 2.5, TimeFormat: parse.FormatHours}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("ParseOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingDefaultIsFine(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TimeFormat != "auto" {
		t.Errorf("TimeFormat = %q, want auto", cfg.TimeFormat)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join(home, ".config", "tclean", "config.toml"); path != want {
		t.Fatalf("DefaultPath = %q, want %q", path, want)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("client_name = \"Sam\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClientName != "Sam" {
		t.Errorf("ClientName = %q, want Sam from the default file", cfg.ClientName)
	}
}

func TestLoadMissingExplicitFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load of a missing explicit path: want error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"both names", Config{CounselorName: "Jane D", ClientName: "Sam"}, nil},
		{"no counselor", Config{ClientName: "Sam"}, ErrMissingNames},
		{"blank client", Config{CounselorName: "Jane D", ClientName: " "}, ErrMissingNames},
		{"negative shift", Config{CounselorName: "Jane D", ClientName: "Sam", ShiftSeconds: -3}, ErrNegativeShift},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate error = %v, want %v", err, tt.want)
			}
		})
	}

	bad := Config{CounselorName: "Jane D", ClientName: "Sam", TimeFormat: "weeks"}
	if err := bad.Validate(); err == nil {
		t.Error("Validate accepted an unknown time format")
	}
}
