// Package text is the facade spec.md §6 describes: it wires the B-tree
// (internal/btree), the tag system (internal/tag), the index grammar
// (internal/index), display-line layout (internal/layout), the style table
// (internal/style), the async pixel-height updater (internal/async), and
// the viewport (internal/viewport) behind the single external interface an
// embedding program drives. Per §5 ("single-threaded cooperative... no lock
// is required"), Tree is not safe for concurrent use from multiple
// goroutines — every call, including the async updater's Tick, must come
// from the same event loop (cmd/linotuidemo drives Tick from bubbletea's
// own tea.Tick command for exactly this reason).
package text

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/mobanhawi/linotype/internal/async"
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/segtype"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
	"github.com/mobanhawi/linotype/internal/viewport"
)

// Viewer identifies one registered view onto a Tree (§6
// "add_viewer(default_line_height) -> slot"). It wraps a UUID rather than a
// raw int so embedding code can't accidentally hand a slot from one Tree to
// another.
type Viewer uuid.UUID

func (v Viewer) String() string { return uuid.UUID(v).String() }

type viewerState struct {
	slot int
	vp   *viewport.Viewport
	opts layout.Options

	// startLine/endLine restrict this viewer to a window of logical lines
	// (SPEC_FULL.md §4's "-startline/-endline peer view restriction",
	// grounded on tkTextBTree.c's per-peer pixelReference windowing).
	// endLine == -1 means unrestricted.
	startLine int
	endLine   int
}

// markEntry is a mark's live position, tracked as a segment identity plus
// the gravity it was created with (§4.1): the segment itself migrates with
// every insert/delete via the ordinary B-tree machinery, so Lookup only
// needs to re-locate it, never recompute it.
type markEntry struct {
	seg     *segtype.Segment
	gravity segtype.Gravity
}

type binding struct {
	event   string
	command func(tags []string)
}

// Tree is one persistent in-memory text buffer plus every viewer, mark,
// tag, and binding layered over it.
type Tree struct {
	tree   *btree.Tree
	tags   *tag.Registry
	styles *style.Table
	upd    *async.Updater

	viewers      map[Viewer]*viewerState
	slotToViewer map[int]Viewer
	marks        map[string]*markEntry
	bindings     map[string][]binding
	onSync       []func(Viewer, bool)

	errs chan error
}

// New creates an empty tree: one logical line, the permanent dummy trailer,
// no viewers, no tags but the built-in "sel" (§6 "create()").
func New() *Tree {
	bt := btree.New()
	styles := style.NewTable()
	tr := &Tree{
		tree:         bt,
		tags:         tag.NewRegistry(),
		styles:       styles,
		viewers:      map[Viewer]*viewerState{},
		slotToViewer: map[int]Viewer{},
		marks:        map[string]*markEntry{},
		bindings:     map[string][]binding{},
		errs:         make(chan error, 64),
	}
	tr.upd = async.New(bt, styles, tr.activeTagsAt)
	tr.upd.OnSync(tr.handleSync)
	bt.OnSegmentDeleted(tr.handleSegmentDeleted)
	return tr
}

// handleSegmentDeleted keeps tag bookkeeping correct when a toggle is
// dropped by an ordinary btree.Delete (e.g. deleting a range that happens to
// contain a tag boundary), a path that never goes through tag.Remove.
func (tr *Tree) handleSegmentDeleted(seg *segtype.Segment) {
	if seg.Kind != segtype.KindToggleOn && seg.Kind != segtype.KindToggleOff {
		return
	}
	t, ok := tr.tags.Lookup(seg.Tag)
	if !ok {
		return
	}
	tag.NotifyToggleRemoved(tr.tree, t)
}

// Errors exposes the background-error channel (§7: "failures from bindings
// or after-sync commands are reported via a background-error channel; they
// do not abort the edit that triggered them"). The channel is buffered and
// never blocks a caller; when the channel is full the new report is
// silently dropped rather than stalling the event loop.
func (tr *Tree) Errors() <-chan error { return tr.errs }

func (tr *Tree) reportError(err error) {
	select {
	case tr.errs <- err:
	default:
	}
}

// runGuarded recovers a panicking callback (a tag binding or after-sync
// hook) and reports it as AfterSyncFailed instead of crashing the event
// loop (§7).
func (tr *Tree) runGuarded(source string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			tr.reportError(&AfterSyncFailed{Source: source, Backtrace: fmt.Sprintf("%v\n%s", r, debug.Stack())})
		}
	}()
	fn()
}

func (tr *Tree) activeTagsAt(idx btree.Index) []*tag.Tag {
	return tag.TagsAt(tr.tags, tr.tree, idx)
}

func (tr *Tree) handleSync(ev async.SyncEvent) {
	v, ok := tr.slotToViewer[ev.Viewer]
	if !ok {
		return
	}
	for _, fn := range tr.onSync {
		tr.runGuarded(fmt.Sprintf("sync-event:%s", v), func() { fn(v, ev.InSync) })
	}
}

// OnSync registers a listener invoked for every viewer transition into or
// out of the in-sync state (§6 "a sync-event emitter").
func (tr *Tree) OnSync(fn func(Viewer, bool)) {
	tr.onSync = append(tr.onSync, fn)
}

// AddViewer registers a new viewer and begins tracking its pixel heights
// asynchronously (§6 "add_viewer(default_line_height) -> slot").
func (tr *Tree) AddViewer(defaultLineHeight, width, height int) Viewer {
	slot := tr.tree.AddViewer(defaultLineHeight)
	opts := layout.DefaultOptions()
	opts.Width = width
	opts.MinHeight = defaultLineHeight
	vp := viewport.New(tr.tree, tr.styles, tr.activeTagsAt, slot, opts, height, width)

	id := Viewer(uuid.New())
	tr.viewers[id] = &viewerState{slot: slot, vp: vp, opts: opts, endLine: -1}
	tr.slotToViewer[slot] = id
	tr.upd.RegisterViewer(slot, opts)
	return id
}

// RemoveViewer releases a viewer's slot and stops tracking its pixel
// heights (§6 "remove_viewer(slot)").
func (tr *Tree) RemoveViewer(v Viewer) {
	vs, ok := tr.viewers[v]
	if !ok {
		return
	}
	tr.upd.UnregisterViewer(vs.slot)
	tr.tree.RemoveViewer(vs.slot)
	delete(tr.slotToViewer, vs.slot)
	delete(tr.viewers, v)
}

// Destroy stops the async updater's self-rescheduling timer, if it was
// started (§6 "destroy()"; §5 "cancelled on widget destruction").
func (tr *Tree) Destroy() error {
	return tr.upd.Stop()
}

// Configure updates a viewer's layout options (wrap mode, width, tabs,
// justify) and viewport dimensions, invalidating its cached pixel heights
// since every one was computed under the old options.
func (tr *Tree) Configure(v Viewer, opts layout.Options, height int) {
	vs, ok := tr.viewers[v]
	if !ok {
		return
	}
	vs.opts = opts
	vs.vp.SetOptions(opts)
	vs.vp.Height = height
	vs.vp.Width = opts.Width
	tr.upd.SetOptions(vs.slot, opts)
}

// Updater exposes the async updater so an embedding program can drive Tick
// itself (the recommended use under §5's single-threaded model) or call
// Start for a self-rescheduling background timer.
func (tr *Tree) Updater() *async.Updater { return tr.upd }

// InSync reports whether v's cached pixel heights are fully caught up.
func (tr *Tree) InSync(v Viewer) bool {
	vs, ok := tr.viewers[v]
	return ok && tr.upd.InSync(vs.slot)
}

// AfterSync runs fn once, the next time v becomes in-sync, recovering any
// panic into Errors() rather than letting it escape the updater (§7).
func (tr *Tree) AfterSync(v Viewer, fn func()) {
	vs, ok := tr.viewers[v]
	if !ok {
		return
	}
	source := fmt.Sprintf("after-sync:%s", v)
	tr.upd.AfterSync(vs.slot, func() { tr.runGuarded(source, fn) })
}

// Insert splices s into the tree at idx (§6 "insert(index, string)").
func (tr *Tree) Insert(idx btree.Index, s string) btree.Index {
	return tr.tree.Insert(idx, s)
}

// Delete removes [i1, i2) from the tree (§6 "delete(index1, index2)").
func (tr *Tree) Delete(i1, i2 btree.Index) {
	tr.tree.Delete(i1, i2)
}

// Begin returns the index at the very start of the tree's content.
func (tr *Tree) Begin() btree.Index { return tr.tree.Begin() }

// End returns the sentinel index representing "end" in the index grammar.
func (tr *Tree) End() btree.Index { return tr.tree.End() }

// BTree exposes the underlying tree for callers that need low-level access
// (index parsing, search iteration) the facade does not itself wrap.
func (tr *Tree) BTree() *btree.Tree { return tr.tree }

// Tags exposes the tag registry for callers building their own queries on
// top of internal/tag or internal/search.
func (tr *Tree) Tags() *tag.Registry { return tr.tags }

// Lookup implements index.Marks, resolving a named mark to its current
// position. It is also the primitive ParseIndex calls directly; use
// MarkIndex from outside the package.
func (tr *Tree) Lookup(name string) (btree.Index, bool) {
	e, ok := tr.marks[name]
	if !ok {
		return btree.Index{}, false
	}
	return tr.locateSegment(e.seg)
}

// MarkIndex is the public equivalent of Lookup, for callers that want a
// mark's position without going through ParseIndex.
func (tr *Tree) MarkIndex(name string) (btree.Index, bool) { return tr.Lookup(name) }

// SetMark creates or repositions a named mark (§4.1 gravity rule governs
// which side of a same-offset insertion the mark clings to).
func (tr *Tree) SetMark(name string, idx btree.Index, gravity segtype.Gravity) {
	if old, ok := tr.marks[name]; ok {
		tr.removeSegment(old.seg)
	}
	seg := segtype.NewMark(name, gravity)
	tr.tree.InsertSegment(idx, seg)
	tr.marks[name] = &markEntry{seg: seg, gravity: gravity}
}

// MarkGravity sets a mark's gravity to changeTo and returns the resulting
// gravity. When changeTo differs from the current gravity, the mark's
// segment is removed and reinserted at the same position with the new
// gravity.
func (tr *Tree) MarkGravity(name string, changeTo segtype.Gravity) (segtype.Gravity, error) {
	e, ok := tr.marks[name]
	if !ok {
		return 0, fmt.Errorf("text: unknown mark %q", name)
	}
	if changeTo == e.gravity {
		return e.gravity, nil
	}
	at, found := tr.locateSegment(e.seg)
	if !found {
		return 0, fmt.Errorf("text: mark %q lost its anchor", name)
	}
	tr.removeSegment(e.seg)
	newSeg := segtype.NewMark(name, changeTo)
	tr.tree.InsertSegment(at, newSeg)
	e.seg = newSeg
	e.gravity = changeTo
	return changeTo, nil
}

// MarkNames returns every currently-set mark's name, in no particular order
// (SPEC_FULL.md §4's mark_names operation).
func (tr *Tree) MarkNames() []string {
	names := make([]string, 0, len(tr.marks))
	for name := range tr.marks {
		names = append(names, name)
	}
	return names
}

// UnsetMark removes a named mark entirely.
func (tr *Tree) UnsetMark(name string) {
	e, ok := tr.marks[name]
	if !ok {
		return
	}
	tr.removeSegment(e.seg)
	delete(tr.marks, name)
}

// locateSegment scans every line for seg by identity, returning its current
// byte offset. Marks are rare relative to characters, so a linear scan
// across lines (not bytes within a line, beyond the one it's found on) is
// an accepted simplification rather than maintaining a live back-pointer
// that every line split/merge would otherwise have to keep in sync.
func (tr *Tree) locateSegment(seg *segtype.Segment) (btree.Index, bool) {
	n := tr.tree.LineCount()
	for i := 0; i < n; i++ {
		line := tr.tree.FindLine(i)
		pos := 0
		for _, s := range line.Segments {
			if s == seg {
				return btree.Index{Tree: tr.tree, Line: line, Offset: pos}, true
			}
			pos += s.Size()
		}
	}
	return btree.Index{}, false
}

func (tr *Tree) removeSegment(seg *segtype.Segment) {
	n := tr.tree.LineCount()
	for i := 0; i < n; i++ {
		line := tr.tree.FindLine(i)
		for j, s := range line.Segments {
			if s == seg {
				kept := make([]*segtype.Segment, 0, len(line.Segments)-1)
				kept = append(kept, line.Segments[:j]...)
				kept = append(kept, line.Segments[j+1:]...)
				line.Segments = kept
				tr.tree.ClimbFrom(line)
				return
			}
		}
	}
}
