package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/render"
)

func previewCmd() *cobra.Command {
	var hitTurnID int
	var context int
	var query string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "preview <transcriptKey>",
		Short: "Preview an indexed transcript with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := openIndex(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderTranscript(db, args[0], render.Options{
				HitTurnID: hitTurnID,
				Context:   context,
				Query:     query,
				NoColor:   noColor,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitTurnID, "hit", -1, "Turn ID to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Turns before/after hit to show")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")

	return cmd
}
