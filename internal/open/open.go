package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/transcript-cleaner/internal/index"
)

// OpenTranscript opens the source file of an indexed transcript in $EDITOR,
// positioned at the line of turnID when the editor supports it.
func OpenTranscript(db *index.DB, key string, turnID int) error {
	tr, err := db.GetTranscript(key)
	if err != nil {
		return fmt.Errorf("get transcript: %w", err)
	}

	filePath := tr.FilePath
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	// find line number for the turn
	lineNum := 1
	if turnID >= 0 {
		if t, err := db.GetTurn(key, turnID); err == nil && t.LineNumber > 0 {
			lineNum = t.LineNumber
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	return editorCommand(editor, filePath, lineNum).Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"less"}
	}
	name, args := fields[0], fields[1:]

	switch {
	case strings.Contains(name, "vim") || strings.Contains(name, "nvim") ||
		strings.Contains(name, "nano") || strings.Contains(name, "less"):
		args = append(args, "+"+strconv.Itoa(lineNum), filePath)
	case strings.Contains(name, "code"):
		args = append(args, "--goto", filePath+":"+strconv.Itoa(lineNum))
	default:
		args = append(args, filePath)
	}

	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
