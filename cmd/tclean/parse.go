package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/transcript-cleaner/internal/export"
	"github.com/Zuo-Peng/transcript-cleaner/internal/render"
)

func parseCmd() *cobra.Command {
	var format string
	var stats bool

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a transcript and print the dialogue rows",
		Long: `Parse a transcript and print Timestamp, Speaker, Quote, Tag rows.

On a terminal without --format the rows are shown as a colored preview;
otherwise the output is TSV, ready to paste into a spreadsheet.`,
		Args: cobra.ExactArgs(1),
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
			if len(res.Turns) == 0 {
				fmt.Fprintln(os.Stderr, "No dialogue rows were parsed. Check your input and name settings.")
				return nil
			}

			if format == "" && term.IsTerminal(int(os.Stdout.Fd())) {
				width, _, _ := term.GetSize(int(os.Stdout.Fd()))
				out, _ := render.RenderTurns(filepath.Base(args[0]), res.Turns, render.Options{HitTurnID: -1, Width: width})
				fmt.Print(out)
			} else {
				if format == "" {
					format = string(export.FormatTSV)
				}
				f, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				if f.Binary() {
					return fmt.Errorf("%s output needs a file, use 'tclean export --out'", f)
				}
				if err := export.Write(os.Stdout, f, res.Turns); err != nil {
					return err
				}
			}

			if stats {
				fmt.Fprintln(os.Stderr, export.Summarize(res.Turns))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (csv, tsv, table, markdown, html, json, yaml)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print row counts to stderr")

	return cmd
}
