package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/ui"
)

var styleKey = ui.StyleKey

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing…"
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, ui.StyleHeader.Width(m.width).Render("  linotype demo"))
	lines = append(lines, ui.StyleDivider.Render(strings.Repeat("─", m.width)))

	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	rendered := m.renderRows(rows)
	lines = append(lines, rendered...)
	for i := len(rendered); i < rows; i++ {
		lines = append(lines, "")
	}

	lines = append(lines, ui.StyleDivider.Render(strings.Repeat("─", m.width)))
	lines = append(lines, m.statusLine())
	lines = append(lines, ui.StyleFooter.Width(m.width).Render(m.keyHints()))

	return strings.Join(lines, "\n")
}

// renderRows lays out up to n display lines from the viewport's current top
// and paints each chunk with its resolved style, marking the cursor cell in
// reverse video wherever it falls within the chunk's byte range.
func (m Model) renderRows(n int) []string {
	cur := m.cursor()
	out := make([]string, 0, n)
	for _, dl := range m.tr.VisibleLines(m.viewer, n) {
		var b strings.Builder
		width := 0
		for _, c := range dl.Chunks {
			text := strings.TrimSuffix(c.Text, "\n")
			v, _ := m.tr.Styles().Lookup(c.Style)
			st := ui.ChunkStyle(v)
			b.WriteString(renderChunk(st, text, c, cur))
			width += lipgloss.Width(text)
		}
		if width < m.width {
			b.WriteString(strings.Repeat(" ", m.width-width))
		}
		out = append(out, b.String())
	}
	return out
}

// renderChunk paints one chunk's text under st, substituting a
// reverse-video cell for the byte the cursor currently sits on.
func renderChunk(st lipgloss.Style, text string, c layout.Chunk, cur btree.Index) string {
	if c.Start.Line != cur.Line || cur.Offset < c.Start.Offset || cur.Offset >= c.Start.Offset+len(text) {
		return st.Render(text)
	}
	within := cur.Offset - c.Start.Offset
	before := text[:within]
	cursorCh := text[within : within+1]
	after := text[within+1:]
	return st.Render(before) + ui.StyleCursor.Render(cursorCh) + st.Render(after)
}

func (m Model) statusLine() string {
	cur := m.cursor()
	lineNum := m.tr.BTree().LineNumber(cur.Line) + 1
	sync := "syncing"
	if m.tr.InSync(m.viewer) {
		sync = "in sync"
	}
	dirty := ""
	if m.dirty {
		dirty = " [modified]"
	}
	size := humanize.Bytes(uint64(len(m.tr.GetString(m.tr.Begin(), m.tr.End()))))
	left := fmt.Sprintf(" %s  ln %d, col %d  %s  %s  transitions:%d%s",
		m.tr.FormatIndex(cur), lineNum, cur.Offset, size, sync, m.state.syncTransitions, dirty)
	right := m.status + " "
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return ui.StyleFooter.Render(left + strings.Repeat(" ", gap) + right)
}
