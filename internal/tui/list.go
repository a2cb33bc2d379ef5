package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/transcript-cleaner/internal/export"
	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
	"github.com/Zuo-Peng/transcript-cleaner/internal/search"
)

const (
	// linesPerItem is the number of terminal lines each result occupies.
	linesPerItem = 2

	speakerWidth = 7
	// tagWidth is the room kept for a "[ME]" marker after the speaker.
	tagWidth = 4
)

// renderList renders the left panel: search results list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
		return empty
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatResultLine(r, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats a single search result as two lines:
//
//	line 1: [>] speaker  date  transcript key
//	line 2:    timestamp snippet (dimmed)
func formatResultLine(r search.Result, width int, selected bool) []string {
	var spk string
	switch r.Speaker {
	case parse.RoleCounselor:
		spk = styleCounselor.Render(r.Speaker)
	case parse.RoleClient:
		spk = styleClient.Render(r.Speaker)
	default:
		spk = styleOther.Render(runewidth.Truncate(r.Speaker, speakerWidth, ""))
	}

	if r.Tag != "" {
		spk += styleTag.Render("[" + r.Tag + "]")
	} else {
		spk += strings.Repeat(" ", tagWidth)
	}

	date := ""
	if r.Mtime > 0 {
		date = time.Unix(r.Mtime, 0).Format("01-02")
	}

	// Truncate the key to fit width: leave room for prefix "  speaker MM-DD "
	title := r.TranscriptKey
	titleMax := width - 2 - speakerWidth - tagWidth - 6 - 2 // prefix + speaker + tag + date + padding
	if titleMax < 0 {
		titleMax = 0
	}
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "")
	}

	// Line 1: speaker date key
	line1 := fmt.Sprintf("%s %s %s", spk, date, title)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	// Line 2: snippet (dimmed, indented)
	snippet := export.Flatten(r.Snippet)
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	if r.Timestamp != "" {
		snippet = r.Timestamp + " " + snippet
	}
	snippetMax := width - 4 // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
