package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/open"
)

func openCmd() *cobra.Command {
	var hitTurnID int

	cmd := &cobra.Command{
		Use:   "open <transcriptKey>",
		Short: "Open the source transcript in $EDITOR at the hit line",
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

			return open.OpenTranscript(db, args[0], hitTurnID)
		},
	}

	cmd.Flags().IntVar(&hitTurnID, "hit", -1, "Turn ID to jump to")

	return cmd
}
