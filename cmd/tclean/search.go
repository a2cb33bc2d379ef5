package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/transcript-cleaner/internal/export"
	"github.com/Zuo-Peng/transcript-cleaner/internal/logging"
	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
	"github.com/Zuo-Peng/transcript-cleaner/internal/search"
	"github.com/Zuo-Peng/transcript-cleaner/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeSpeaker(speaker string) string {
	switch speaker {
	case parse.RoleClient:
		return sColorBlue + speaker + sColorReset
	case parse.RoleCounselor:
		return sColorGreen + speaker + sColorReset
	default:
		return speaker
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var speaker, tag string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed transcripts",
		Long: `Search indexed dialogue turns using FTS5. Output is TSV for fzf integration:
  transcriptKey, turnId, modified, timestamp, speaker, tag, snippet

Recommended shell function (add to .zshrc):
  tcf() {
    tclean search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'tclean preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --preview-debounce=150 \
      --bind 'enter:execute(tclean open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
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

			refreshIndex(cmd.Context(), cfg, db, logging.NewLogger("search"))

			opts := search.Options{
				Speaker: speaker,
				Tag:     tag,
				Limit:   limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				tagCol := r.Tag
				if tagCol == "" {
					tagCol = "-"
				}
				// first two fields (transcriptKey, turnID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\n",
					r.TranscriptKey,
					r.TurnID,
					sColorDim, time.Unix(r.Mtime, 0).Format("2006-01-02"), sColorReset,
					r.Timestamp,
					colorizeSpeaker(r.Speaker),
					tagCol,
					colorizeSnippet(export.Flatten(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&speaker, "speaker", "", "Filter by speaker (Couns/Client)")
	cmd.Flags().StringVar(&tag, "tag", "", "Filter by tag (ME)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
