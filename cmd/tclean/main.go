package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/config"
	"github.com/Zuo-Peng/transcript-cleaner/internal/index"
	"github.com/Zuo-Peng/transcript-cleaner/internal/logging"
	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

var version = "dev"

// rootFlags are shared by every command. Name and timing flags override the
// config file only when given.
type rootFlags struct {
	configPath string
	verbose    bool
	counselor  string
	client     string
	shift      float64
	timeFormat string
}

var flags rootFlags

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags = rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "tclean",
		Short: "Transcript cleaner - turn counseling transcripts into anonymized dialogue rows",
		Long: `tclean parses raw counseling session transcripts (Zoom/Teams/Otter text,
WebVTT, SRT) into Timestamp, Speaker, Quote, Tag rows. Counselor and client
names are replaced with "Couns" and "Client", and short counselor turns are
tagged "ME" (minimal encourager).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.verbose {
				return logging.SetLevel("debug")
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/tclean/config.toml)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging")
	pf.StringVar(&flags.counselor, "counselor", "", "Counselor name as it appears in the transcript")
	pf.StringVar(&flags.client, "client", "", "Client name as it appears in the transcript")
	pf.Float64Var(&flags.shift, "shift", 0, "Seconds to subtract from every timestamp")
	pf.StringVar(&flags.timeFormat, "time-format", "", "Timestamp format: auto, minutes or hours")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(speakersCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	return rootCmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("counselor") {
		cfg.CounselorName = flags.counselor
	}
	if changed("client") {
		cfg.ClientName = flags.client
	}
	if changed("shift") {
		cfg.ShiftSeconds = flags.shift
	}
	if changed("time-format") {
		cfg.TimeFormat = flags.timeFormat
	}

	if !flags.verbose {
		if err := logging.SetLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newParser validates the names and builds a parser. Nothing is parsed when
// either name is missing.
func newParser(cfg *config.Config) (*parse.Parser, error) {
	opts, err := cfg.ParseOptions()
	if err != nil {
		return nil, err
	}
	return parse.New(opts)
}

// parseInput parses a transcript file, or stdin when path is "-".
func parseInput(p *parse.Parser, path string) (*parse.ParseResult, error) {
	if path != "-" {
		res, err := p.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		return res, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	lines := parse.SplitLines(parse.DecodeBytes(data))
	turns := p.ParseLines(lines)
	return &parse.ParseResult{
		Meta:  parse.TranscriptMeta{FilePath: "-", Lines: len(lines), Summary: parse.Summary(turns)},
		Turns: turns,
	}, nil
}

func openIndex(cfg *config.Config) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// refreshIndex brings the index up to date before a query. It is skipped,
// with a warning, when the names needed for parsing are not configured.
func refreshIndex(ctx context.Context, cfg *config.Config, db *index.DB, log *logrus.Entry) {
	p, err := newParser(cfg)
	if err != nil {
		log.WithError(err).Warn("index not refreshed")
		return
	}
	stats, err := index.IndexAll(ctx, db, cfg.TranscriptsRoot, p, log)
	if err != nil {
		log.WithError(err).Warn("index refresh failed")
		return
	}
	log.WithField("stats", stats.String()).Debug("index refreshed")
}
