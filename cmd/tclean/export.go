package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/export"
	"github.com/Zuo-Peng/transcript-cleaner/internal/logging"
)

func exportCmd() *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "export <file|->",
		Short: "Parse a transcript and write it as a spreadsheet or data file",
		Long: `Parse a transcript and write the rows to a file. The format comes from
--format, then from the --out extension, and defaults to xlsx. Without --out
the input name is reused with the new extension (dialogue.xlsx for stdin).

In xlsx output Client rows are blue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.NewLogger("export")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newParser(cfg)
			if err != nil {
				return err
			}

			f := export.FormatXLSX
			switch {
			case format != "":
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			case out != "" && out != "-":
				if byExt, ok := export.FormatFromPath(out); ok {
					f = byExt
				}
			}
			if out == "" {
				out = export.DefaultOutput(args[0], f)
			}

			res, err := parseInput(p, args[0])
			if err != nil {
				return err
			}
			if len(res.Turns) == 0 {
				log.WithField("file", args[0]).Warn("no dialogue rows were parsed, check your input and name settings")
			}

			if out == "-" {
				if f.Binary() {
					return fmt.Errorf("refusing to write %s to stdout", f)
				}
				if err := export.Write(os.Stdout, f, res.Turns); err != nil {
					return err
				}
			} else {
				if err := export.WriteFile(out, f, res.Turns); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
			}

			fmt.Fprintln(os.Stderr, export.Summarize(res.Turns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (xlsx, csv, tsv, markdown, html, json, yaml)")

	return cmd
}
