package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/transcript-cleaner/internal/index"
	"github.com/Zuo-Peng/transcript-cleaner/internal/render"
	"github.com/Zuo-Peng/transcript-cleaner/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	transcriptKey string
	turnID        int
	content       string
	hitLine       int
	err           error
}

// loadPreviewCmd returns a tea.Cmd that renders the transcript preview async.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderTranscript(db, r.TranscriptKey, render.Options{
			HitTurnID: r.TurnID,
			Context:   -1,
			Width:     width,
			Query:     query,
		})
		return previewRenderedMsg{
			transcriptKey: r.TranscriptKey,
			turnID:        r.TurnID,
			content:       content,
			hitLine:       hitLine,
			err:           err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
