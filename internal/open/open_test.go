package open

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEditorCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		editor string
		want   []string
	}{
		{"vim", []string{"vim", "+12", "s.txt"}},
		{"nvim -R", []string{"nvim", "-R", "+12", "s.txt"}},
		{"code --wait", []string{"code", "--wait", "--goto", "s.txt:12"}},
		{"less", []string{"less", "+12", "s.txt"}},
		{"emacsclient", []string{"emacsclient", "s.txt"}},
	}
	for _, tt := range tests {
		cmd := editorCommand(tt.editor, "s.txt", 12)
		if diff := cmp.Diff(tt.want, cmd.Args); diff != "" {
			t.Errorf("editorCommand(%q) mismatch (-want +got):\n%s", tt.editor, diff)
		}
	}
}
