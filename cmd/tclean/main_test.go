package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Zuo-Peng/transcript-cleaner/internal/config"
)

const sampleTranscript = "Jane D: How are you?\nSam: Fine, I guess. It was a long week.\n"

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTemp(t, dir, "config.toml", "counselor_name = \"Jane D\"\nclient_name = \"Sam\"\n")
	in := writeTemp(t, dir, "session.txt", sampleTranscript)
	out := filepath.Join(dir, "session.csv")

	if err := execute(t, "--config", cfgPath, "export", in, "--out", out); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Timestamp,Speaker,Quote,Tag",
		",Couns,How are you?,ME",
		`,Client,"Fine, I guess. It was a long week.",`,
	}
	got := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTemp(t, dir, "config.toml", "counselor_name = \"Someone Else\"\nclient_name = \"Nobody\"\n")
	in := writeTemp(t, dir, "session.txt", sampleTranscript)
	out := filepath.Join(dir, "session.json")

	err := execute(t, "--config", cfgPath, "--counselor", "Jane D", "--client", "Sam", "export", in, "--out", out)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"Speaker": "Couns"`, `"Speaker": "Client"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("json output missing %s:\n%s", want, data)
		}
	}
}

func TestMissingNamesStopsBeforeParsing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTemp(t, dir, "config.toml", "client_name = \"Sam\"\n")
	in := writeTemp(t, dir, "session.txt", sampleTranscript)
	out := filepath.Join(dir, "session.xlsx")

	err := execute(t, "--config", cfgPath, "export", in, "--out", out)
	if !errors.Is(err, config.ErrMissingNames) {
		t.Fatalf("export error = %v, want %v", err, config.ErrMissingNames)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file was written despite missing names")
	}
}

func TestMissingConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "session.txt", sampleTranscript)

	if err := execute(t, "--config", filepath.Join(dir, "nope.toml"), "export", in); err == nil {
		t.Fatal("want error for a missing explicit config file")
	}
}
