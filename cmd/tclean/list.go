package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/logging"
	"github.com/Zuo-Peng/transcript-cleaner/internal/search"
	"github.com/Zuo-Peng/transcript-cleaner/internal/tui"
)

func listCmd() *cobra.Command {
	var speaker string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all transcripts sorted by modification time",
		Long:  `Opens a TUI panel showing all indexed transcripts, newest first. Type to filter by summary or file name; tab cycles the speaker filter.`,
		Args:  cobra.NoArgs,
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

			refreshIndex(cmd.Context(), cfg, db, logging.NewLogger("list"))

			return tui.RunList(db, search.Options{
				Speaker: speaker,
				Limit:   limit,
			})
		},
	}

	cmd.Flags().StringVar(&speaker, "speaker", "", "Filter by speaker (Couns/Client)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
