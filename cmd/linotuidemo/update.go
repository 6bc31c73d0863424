package main

import (
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/viewport"
)

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tr.Configure(m.viewer, m.layoutOptions(), m.height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case tickMsg:
		m.tr.Updater().Tick()
		m.drainErrors()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// drainErrors empties the background-error channel into the status line
// (§7: errors never abort the operation that triggered them, so the only
// place left to surface one is here, on the next frame).
func (m *Model) drainErrors() {
	for {
		select {
		case err := <-m.tr.Errors():
			m.status = "error: " + err.Error()
		default:
			return
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		_ = m.tr.Destroy()
		return m, tea.Quit
	case tea.KeyCtrlS:
		m.save()
		return m, nil
	case tea.KeyCtrlB:
		s, e := m.wordRange(m.cursor())
		m.toggleTag("bold", s, e)
		m.dirty = true
		return m, nil
	case tea.KeyCtrlE:
		s, e := m.wordRange(m.cursor())
		m.toggleTag("hidden", s, e)
		m.dirty = true
		return m, nil
	case tea.KeyCtrlL:
		m.tr.DispatchEvent("click", m.cursor())
		if m.state.lastTagClicked != "" {
			m.status = "clicked tag: " + m.state.lastTagClicked
			m.state.lastTagClicked = ""
		}
		return m, nil
	case tea.KeyEnter:
		m.insert("\n")
		return m, nil
	case tea.KeyTab:
		m.insert("\t")
		return m, nil
	case tea.KeyBackspace:
		m.backspace()
		return m, nil
	case tea.KeyDelete:
		m.deleteForward()
		return m, nil
	case tea.KeyLeft:
		m.setCursor(m.tr.BackwardChars(m.cursor(), 1))
		return m, nil
	case tea.KeyRight:
		m.setCursor(m.tr.ForwardChars(m.cursor(), 1))
		return m, nil
	case tea.KeyUp:
		m.moveVertical(-1)
		return m, nil
	case tea.KeyDown:
		m.moveVertical(1)
		return m, nil
	case tea.KeyHome:
		m.setCursor(m.parseRelative("linestart"))
		return m, nil
	case tea.KeyEnd:
		m.setCursor(m.parseRelative("lineend"))
		return m, nil
	case tea.KeyPgUp:
		m.tr.YViewScroll(m.viewer, -1, viewport.ScrollPages)
		return m, nil
	case tea.KeyPgDown:
		m.tr.YViewScroll(m.viewer, 1, viewport.ScrollPages)
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		m.insert(string(msg.Runes))
		return m, nil
	}
	return m, nil
}

// parseRelative resolves "<cursor> <modifier>" against the current cursor
// position, falling back to the cursor itself on a parse failure.
func (m Model) parseRelative(modifier string) btree.Index {
	idx, _, err := m.tr.ParseIndex(m.tr.FormatIndex(m.cursor()) + " " + modifier)
	if err != nil {
		return m.cursor()
	}
	return idx
}

func (m *Model) insert(s string) {
	end := m.tr.Insert(m.cursor(), s)
	m.setCursor(end)
	m.dirty = true
}

func (m *Model) backspace() {
	cur := m.cursor()
	prev := m.tr.BackwardChars(cur, 1)
	if btree.Compare(prev, cur) == 0 {
		return
	}
	m.tr.Delete(prev, cur)
	m.setCursor(prev)
	m.dirty = true
}

func (m *Model) deleteForward() {
	cur := m.cursor()
	next := m.tr.ForwardChars(cur, 1)
	if btree.Compare(next, cur) == 0 {
		return
	}
	m.tr.Delete(cur, next)
	m.setCursor(cur)
	m.dirty = true
}

// moveVertical steps the cursor to the logical line above/below, preserving
// its byte offset (clamped to the target line's length) since the demo does
// not track a remembered "preferred column" across line-length changes.
func (m *Model) moveVertical(dir int) {
	cur := m.cursor()
	lineNum := m.tr.BTree().LineNumber(cur.Line)
	target := lineNum + dir
	if target < 0 || target >= m.tr.BTree().LineCount() {
		return
	}
	line := m.tr.BTree().FindLine(target)
	offset := cur.Offset
	if lastByte := line.ByteLen() - 1; lastByte >= 0 && offset > lastByte {
		offset = lastByte
	}
	if offset < 0 {
		offset = 0
	}
	m.setCursor(btree.Index{Tree: m.tr.BTree(), Line: line, Offset: offset})
}

func (m *Model) save() {
	path := m.savePath
	if path == "" {
		path = "linotype-demo.txt"
	}
	end, _, err := m.tr.ParseIndex("end -1 chars")
	if err != nil {
		end = m.tr.End()
	}
	content := m.tr.GetString(m.tr.Begin(), end)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { // #nosec G306 -- demo output, not sensitive
		m.status = "save failed: " + err.Error()
		return
	}
	m.savePath = path
	m.dirty = false
	m.status = "saved to " + path
}
