package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/transcript-cleaner/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify names, root, DB, FTS5, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Println("=== Names ===")
			if err := cfg.Validate(); err != nil {
				fmt.Printf("  %v\n", err)
			} else {
				fmt.Printf("  Counselor: %s -> Couns\n", cfg.CounselorName)
				fmt.Printf("  Client:    %s -> Client\n", cfg.ClientName)
				fmt.Printf("  Shift: %gs, time format: %s\n", cfg.ShiftSeconds, cfg.TimeFormat)
			}

			fmt.Println("\n=== Root ===")
			checkDir("Transcripts", cfg.TranscriptsRoot)

			fmt.Println("\n=== File Scan ===")
			files, err := scan.ScanRoot(cfg.TranscriptsRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				byExt := make(map[string]int)
				for _, f := range files {
					byExt[strings.ToLower(filepath.Ext(f.Path))]++
				}
				for _, ext := range scan.Extensions {
					fmt.Printf("  %-5s files: %d\n", ext, byExt[ext])
				}
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'tclean index' first)")
				return nil
			}

			db, err := openIndex(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			transcriptCount, err := db.TranscriptCount()
			if err != nil {
				return fmt.Errorf("count transcripts: %w", err)
			}

			turnCount, err := db.TurnCount()
			if err != nil {
				return fmt.Errorf("count turns: %w", err)
			}

			fmt.Printf("  Transcripts: %d\n", transcriptCount)
			fmt.Printf("  Turns:       %d\n", turnCount)

			speakers, err := db.SpeakerCounts()
			if err != nil {
				return fmt.Errorf("count speakers: %w", err)
			}
			labels := make([]string, 0, len(speakers))
			for s := range speakers {
				labels = append(labels, s)
			}
			sort.Strings(labels)
			for _, s := range labels {
				fmt.Printf("    %-10s %d\n", s, speakers[s])
			}

			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM turns_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == turnCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (turns=%d, fts=%d)\n", turnCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
