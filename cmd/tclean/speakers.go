package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/speakers"
)

func speakersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speakers <file|->",
		Short: "List speaker labels and flag ones that look like a misspelled name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newParser(cfg)
			if err != nil {
				return err
			}

			res, err := parseInput(p, args[0])
			if err != nil {
				return err
			}

			entries := speakers.Survey(res.Turns, cfg.CounselorName, cfg.ClientName)
			if len(entries) == 0 {
				fmt.Println("No speakers found. Check your input and name settings.")
				return nil
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Speaker", "Turns", "Words", "Did you mean"})
			for _, e := range entries {
				hint := ""
				if e.Suggestion != "" {
					hint = fmt.Sprintf("%s (%s, %.2f)", e.Suggestion, e.LikelyName, e.Score)
				}
				tw.AppendRow(table.Row{e.Label, e.Turns, e.Words, hint})
			}
			fmt.Println(tw.Render())
			return nil
		},
	}
}
