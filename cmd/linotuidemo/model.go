package main

import (
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/config"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/segtype"
	"github.com/mobanhawi/linotype/internal/text"
)

const insertMark = "insert"

// sharedState is written from within OnSync/TagBind callbacks, which the
// package doc on internal/text guarantees only ever fire synchronously
// inside this program's own Update call (the single-threaded contract);
// a plain pointer shared across Model's value-receiver copies is therefore
// safe without a mutex, unlike the bytes-scanned atomic.Int64 the teacher's
// own model needed for a genuinely concurrent background scan.
type sharedState struct {
	syncTransitions int
	lastTagClicked  string
}

// tickMsg drives the async pixel-height updater's cooperative Tick once per
// frame, the demo's analogue of the teacher's spinner.TickMsg.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the Bubble Tea application model driving one linotype.Tree.
type Model struct {
	tr     *text.Tree
	viewer text.Viewer
	cfg    config.Config

	width  int
	height int

	savePath string
	dirty    bool
	status   string

	sp    spinner.Model
	state *sharedState

	// cachedHints is rebuilt only when width changes, mirroring the
	// teacher's keyHints() memoization.
	cachedHints      string
	cachedHintsWidth int
}

// New builds a Model seeded from seedPath's contents, or a short built-in
// sample demonstrating tags when seedPath is empty.
func New(cfg config.Config, seedPath string) (Model, error) {
	tr := text.New()

	seed := sampleDocument
	if seedPath != "" {
		b, err := os.ReadFile(seedPath) // #nosec G304 -- path is an explicit CLI argument
		if err != nil {
			return Model{}, err
		}
		seed = string(b)
	}
	tr.Insert(tr.Begin(), seed)

	state := &sharedState{}
	seedDemoTags(tr, state)

	v := tr.AddViewer(cfg.DefaultLineHeight, 80, 24)
	tr.SetMark(insertMark, tr.Begin(), segtype.GravityRight)

	tr.OnSync(func(_ text.Viewer, inSync bool) {
		if inSync {
			state.syncTransitions++
		}
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		tr:       tr,
		viewer:   v,
		cfg:      cfg,
		savePath: seedPath,
		sp:       sp,
		state:    state,
	}, nil
}

// findSubstring locates sub's first occurrence in the whole buffer and
// returns its [start, end) index range in char units, using the engine's
// own ForwardChars rather than recomputing line/column arithmetic by hand.
func findSubstring(tr *text.Tree, sub string) (btree.Index, btree.Index, bool) {
	full := tr.GetString(tr.Begin(), tr.End())
	byteOff := strings.Index(full, sub)
	if byteOff < 0 {
		return btree.Index{}, btree.Index{}, false
	}
	charOff := utf8.RuneCountInString(full[:byteOff])
	start := tr.ForwardChars(tr.Begin(), charOff)
	end := tr.ForwardChars(start, utf8.RuneCountInString(sub))
	return start, end, true
}

// seedDemoTags wires a handful of tags over the sample document so the
// renderer, tag_bind, and is_elided all have something to show on launch;
// "bold"/"hidden" are also the tags ctrl+b/ctrl+e toggle interactively on
// whatever word the cursor is over.
func seedDemoTags(tr *text.Tree, state *sharedState) {
	tr.TagCreate("heading")
	_ = tr.TagConfigure("heading", tagAttrsBold())

	tr.TagCreate("link")
	_ = tr.TagConfigure("link", tagAttrsLink())
	_ = tr.TagBind("link", "click", func(tags []string) {
		for _, n := range tags {
			if n == "link" {
				state.lastTagClicked = "link"
			}
		}
	})

	tr.TagCreate("bold")
	_ = tr.TagConfigure("bold", tagAttrsBold())

	tr.TagCreate("hidden")
	_ = tr.TagConfigure("hidden", tagAttrsElide())

	if s, e, ok := findSubstring(tr, "Linotype Demo Buffer"); ok {
		_ = tr.TagAdd("heading", s, e)
	}
	if s, e, ok := findSubstring(tr, "https://example.com"); ok {
		_ = tr.TagAdd("link", s, e)
	}
	if s, e, ok := findSubstring(tr, "(secret)"); ok {
		_ = tr.TagAdd("hidden", s, e)
	}
}

func (m Model) cursor() btree.Index {
	idx, ok := m.tr.MarkIndex(insertMark)
	if !ok {
		return m.tr.Begin()
	}
	return idx
}

func (m *Model) setCursor(idx btree.Index) {
	m.tr.SetMark(insertMark, idx, segtype.GravityRight)
	m.tr.See(m.viewer, idx)
}

// wordRange returns the [start, end) of the word containing idx, via the
// "wordstart"/"wordend" modifiers (§4.5), for the ctrl+b/ctrl+e word-toggle
// commands.
func (m Model) wordRange(idx btree.Index) (btree.Index, btree.Index) {
	s := idx
	if ws, _, err := m.tr.ParseIndex(m.tr.FormatIndex(idx) + " wordstart"); err == nil {
		s = ws
	}
	e := idx
	if we, _, err := m.tr.ParseIndex(m.tr.FormatIndex(idx) + " wordend"); err == nil {
		e = we
	}
	return s, e
}

// toggleTag adds name over [s, e) unless the whole range is already tagged,
// in which case it removes it instead — a plain on/off toggle built from
// tag_add/tag_remove and tags_at.
func (m Model) toggleTag(name string, s, e btree.Index) {
	for _, n := range m.tr.TagsAt(s) {
		if n == name {
			_ = m.tr.TagRemove(name, s, e)
			return
		}
	}
	_ = m.tr.TagAdd(name, s, e)
}

// keyHints returns the cached footer hint string, matching the teacher's
// width-keyed memoization in internal/ui.
func (m *Model) keyHints() string {
	if m.cachedHintsWidth != m.width {
		k := func(key, desc string) string {
			return styleKey.Render(key) + " " + desc + "  "
		}
		m.cachedHints = " " +
			k("←↑↓→", "move") + k("ctrl+b", "bold word") + k("ctrl+e", "hide word") +
			k("ctrl+l", "click tag") + k("pgup/pgdn", "scroll") + k("ctrl+s", "save") + k("ctrl+c", "quit")
		m.cachedHintsWidth = m.width
	}
	return m.cachedHints
}

func (m Model) layoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.Width = m.width
	if opts.Width <= 0 {
		opts.Width = 80
	}
	switch m.cfg.WrapMode {
	case "char":
		opts.WrapMode = layout.WrapChar
	case "none":
		opts.WrapMode = layout.WrapNone
	default:
		opts.WrapMode = layout.WrapWord
	}
	return opts
}
