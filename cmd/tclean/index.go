package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/index"
	"github.com/Zuo-Peng/transcript-cleaner/internal/logging"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Parse and index every transcript under the transcripts root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newParser(cfg)
			if err != nil {
				return err
			}

			db, err := openIndex(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning %s\n", cfg.TranscriptsRoot)

			stats, err := index.IndexAll(cmd.Context(), db, cfg.TranscriptsRoot, p, logging.NewLogger("index"))
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
