package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

var (
	ErrMissingNames  = errors.New("please enter both counselor and client names")
	ErrNegativeShift = errors.New("shift seconds must be zero or positive")
)

type Config struct {
	CounselorName   string  `toml:"counselor_name"`
	ClientName      string  `toml:"client_name"`
	ShiftSeconds    float64 `toml:"shift_seconds"`
	TimeFormat      string  `toml:"time_format"`
	TranscriptsRoot string  `toml:"transcripts_root"`
	DBPath          string  `toml:"db_path"`
	LogLevel        string  `toml:"log_level"`
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tclean", "config.toml"), nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TimeFormat:      "auto",
		TranscriptsRoot: filepath.Join(home, "transcripts"),
		DBPath:          filepath.Join(home, ".config", "tclean", "tclean.db"),
		LogLevel:        "warning",
	}

	explicit := path != ""
	if !explicit {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	path = expandHome(path, home)

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// expand ~ in paths
	cfg.TranscriptsRoot = expandHome(cfg.TranscriptsRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

// Validate checks the settings a parse needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CounselorName) == "" || strings.TrimSpace(c.ClientName) == "" {
		return ErrMissingNames
	}
	if c.ShiftSeconds < 0 {
		return fmt.Errorf("%w: got %v", ErrNegativeShift, c.ShiftSeconds)
	}
	if _, err := parse.ParseTimeFormat(c.TimeFormat); err != nil {
		return err
	}
	return nil
}

// ParseOptions validates the config and converts it to parser options.
func (c *Config) ParseOptions() (parse.Options, error) {
	if err := c.Validate(); err != nil {
		return parse.Options{}, err
	}
	format, err := parse.ParseTimeFormat(c.TimeFormat)
	if err != nil {
		return parse.Options{}, err
	}
	return parse.Options{
		CounselorName: c.CounselorName,
		ClientName:    c.ClientName,
		ShiftSeconds:  c.ShiftSeconds,
		TimeFormat:    format,
	}, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
