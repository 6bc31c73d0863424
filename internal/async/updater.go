// Package async implements the cooperative pixel-height updater (spec.md
// §4.7, component C7): a self-rescheduling timer task that lays out stale
// logical lines a little at a time and reports, per viewer, when the
// cached pixel heights have fully caught up with the tree's contents.
package async

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

const (
	// quantumUnits is the work budget one tick spends across every
	// out-of-sync viewer before yielding (§4.7 "≈256 work units").
	quantumUnits = 256
	// layoutUnitCost is how many units laying out one display line costs.
	layoutUnitCost = 8
	// tickInterval is the updater's self-rescheduling delay.
	tickInterval = time.Millisecond
)

// SyncEvent is emitted whenever a viewer transitions into or out of the
// in-sync state (GLOSSARY "ViewSync").
type SyncEvent struct {
	Viewer int
	InSync bool
}

// Updater owns one tree's per-viewer pixel-height windows and the
// scheduler ticking them forward.
type Updater struct {
	tree       *btree.Tree
	styles     *style.Table
	activeTags func(btree.Index) []*tag.Tag

	mu      sync.Mutex
	windows map[int]*window
	onSync  []func(SyncEvent)

	sched gocron.Scheduler
}

// window is the per-viewer update state §4.7 names:
// (currentMetricUpdateLine, lastMetricUpdateLine, lineMetricUpdateEpoch,
// metricEpoch, metricIndex, metricPixelHeight). Unlike btree.Line's
// PartialMetric* fields (which assume a single shared in-flight
// computation), this state is kept per viewer here, since two viewers can
// lay the same logical line out differently (different widths) and the
// cooperative scheduler may interleave their ticks.
type window struct {
	slot int
	opts layout.Options

	currentLine int // next logical line at or after which work is due
	lastLine    int // highest real logical line index (-1 when empty)
	epoch       uint64
	inSync      bool

	active        bool // a partial in-progress logical-line layout exists
	partialLine   *btree.Line
	partialOffset int
	partialHeight int
	partialMerged int

	afterSync []func()
}

// New builds an updater for tree, resolving active tags for layout and
// elision via activeTags (ordinarily tag.TagsAt bound to tree's registry).
func New(tree *btree.Tree, styles *style.Table, activeTags func(btree.Index) []*tag.Tag) *Updater {
	u := &Updater{
		tree:       tree,
		styles:     styles,
		activeTags: activeTags,
		windows:    map[int]*window{},
	}
	tree.OnEdit(u.handleEdit)
	return u
}

// OnSync registers a listener invoked for every SyncEvent.
func (u *Updater) OnSync(fn func(SyncEvent)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onSync = append(u.onSync, fn)
}

// RegisterViewer begins tracking a viewer slot (already added via
// tree.AddViewer) with the given layout options.
func (u *Updater) RegisterViewer(slot int, opts layout.Options) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.windows[slot] = &window{
		slot:        slot,
		opts:        opts,
		currentLine: 0,
		lastLine:    realLastLineIndex(u.tree),
		epoch:       1,
	}
}

// UnregisterViewer stops tracking a viewer (its tree slot is expected to
// be released separately via tree.RemoveViewer).
func (u *Updater) UnregisterViewer(slot int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.windows, slot)
}

// SetOptions updates a viewer's layout options (e.g. a width/wrap change)
// and forces its window back out of sync, since every cached height under
// the old options is now meaningless.
func (u *Updater) SetOptions(slot int, opts layout.Options) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w, ok := u.windows[slot]
	if !ok {
		return
	}
	w.opts = opts
	u.invalidateAllLocked(w)
}

// InSync reports whether slot's cached pixel heights are fully caught up.
func (u *Updater) InSync(slot int) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	w, ok := u.windows[slot]
	return ok && w.inSync
}

// AfterSync runs fn once, the next time slot becomes in-sync (immediately,
// if it already is) — §4.7's "one-shot after-sync user callback".
func (u *Updater) AfterSync(slot int, fn func()) {
	u.mu.Lock()
	w, ok := u.windows[slot]
	if !ok {
		u.mu.Unlock()
		return
	}
	if w.inSync {
		u.mu.Unlock()
		fn()
		return
	}
	w.afterSync = append(w.afterSync, fn)
	u.mu.Unlock()
}

// InvalidateAll marks every cached pixel height across every viewer stale
// (§4.7 "bump lineMetricUpdateEpoch"), without touching per-line records.
func (u *Updater) InvalidateAll() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, w := range u.windows {
		u.invalidateAllLocked(w)
	}
}

func (u *Updater) invalidateAllLocked(w *window) {
	w.epoch++
	w.currentLine = 0
	w.lastLine = realLastLineIndex(u.tree)
	w.active = false
	u.markDirtyLocked(w)
}

// handleEdit is the btree.OnEdit listener: it keeps every viewer's window
// consistent with the tree's shape immediately, synchronously at edit time
// (§4.7 "Ordering guarantee": edits made during a tick are always visible
// to subsequent ticks).
func (u *Updater) handleEdit(ev btree.EditEvent) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, w := range u.windows {
		switch ev.Kind {
		case btree.EditInsertLines:
			w.lastLine += ev.Count
			u.rewindIfPast(w, ev.FromLine)
		case btree.EditDeleteLines:
			w.lastLine -= ev.Count
			if w.lastLine < -1 {
				w.lastLine = -1
			}
			u.rewindIfPast(w, ev.FromLine)
		case btree.EditInvalidate:
			if ev.AllStale {
				u.invalidateAllLocked(w)
				continue
			}
			u.rewindIfPast(w, ev.FromLine)
		}
		u.markDirtyLocked(w)
	}
}

func (u *Updater) rewindIfPast(w *window, fromLine int) {
	if w.currentLine > fromLine {
		w.currentLine = fromLine
		w.active = false
	}
}

func (u *Updater) markDirtyLocked(w *window) {
	if w.inSync {
		w.inSync = false
		u.emitLocked(SyncEvent{Viewer: w.slot, InSync: false})
	}
}

func (u *Updater) markSynced(w *window) {
	if w.inSync {
		return
	}
	w.inSync = true
	u.emitLocked(SyncEvent{Viewer: w.slot, InSync: true})
	cbs := w.afterSync
	w.afterSync = nil
	for _, cb := range cbs {
		cb()
	}
}

func (u *Updater) emitLocked(ev SyncEvent) {
	for _, fn := range u.onSync {
		fn(ev)
	}
}

// Tick runs one quantum's worth of layout work across every out-of-sync
// viewer (§4.7 steps 1-5). It is safe to call directly in tests without a
// scheduler running.
func (u *Updater) Tick() {
	u.mu.Lock()
	defer u.mu.Unlock()

	budget := quantumUnits
	for _, w := range u.windows {
		if budget <= 0 {
			break
		}
		budget = u.tickWindow(w, budget)
	}
}

// tickWindow advances w by laying out logical lines (possibly resuming a
// partially laid-out one) until either w catches up or budget is spent.
func (u *Updater) tickWindow(w *window, budget int) int {
	for budget > 0 {
		if !w.active {
			if w.currentLine > w.lastLine {
				u.markSynced(w)
				return budget
			}
			w.partialLine = u.tree.FindLine(w.currentLine)
			w.partialOffset = 0
			w.partialHeight = 0
			w.partialMerged = 0
			w.active = true
		}

		start := btree.Index{Tree: u.tree, Line: w.partialLine, Offset: w.partialOffset}
		dl := layout.Layout(u.tree, u.styles, w.opts, start, u.activeTags)
		w.partialHeight += dl.Height
		w.partialMerged += dl.LogicalLinesMerged
		budget -= layoutUnitCost

		if dl.NextOffset == 0 {
			u.commitHeight(w, w.currentLine, w.partialHeight)
			w.currentLine += 1 + w.partialMerged
			w.active = false
			continue
		}
		w.partialLine, w.partialOffset = dl.NextLine, dl.NextOffset
	}
	return budget
}

// commitHeight writes the freshly computed pixel height through to the
// line's per-viewer slot and climbs ancestor counters (§4.7 step 3,
// "adjust_pixel_height... walks ancestor node counters").
func (u *Updater) commitHeight(w *window, lineNum, height int) {
	line := u.tree.FindLine(lineNum)
	line.Pixels[w.slot] = btree.PixelEntry{Height: height, Epoch: w.epoch}
	u.tree.ClimbFrom(line)
}

func realLastLineIndex(tree *btree.Tree) int {
	return tree.LineCount() - 2
}

// Start launches the 1ms self-rescheduling tick job on its own gocron
// scheduler (§4.7, §5 "timed: async updater at 1 ms").
func (u *Updater) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := s.NewJob(gocron.DurationJob(tickInterval), gocron.NewTask(u.Tick)); err != nil {
		return err
	}
	u.sched = s
	s.Start()
	return nil
}

// Stop shuts the scheduler down.
func (u *Updater) Stop() error {
	if u.sched == nil {
		return nil
	}
	return u.sched.Shutdown()
}
