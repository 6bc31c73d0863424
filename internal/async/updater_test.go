package async

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

func newFixture(t *testing.T) (*btree.Tree, *Updater, int) {
	t.Helper()
	tr := btree.New()
	slot := tr.AddViewer(0)
	reg := tag.NewRegistry()
	styles := style.NewTable()

	u := New(tr, styles, func(idx btree.Index) []*tag.Tag { return tag.TagsAt(reg, tr, idx) })
	opts := layout.DefaultOptions()
	opts.Width = 80
	u.RegisterViewer(slot, opts)
	return tr, u, slot
}

func TestEmptyTreeSyncsOnFirstTick(t *testing.T) {
	_, u, slot := newFixture(t)

	var events []SyncEvent
	u.OnSync(func(ev SyncEvent) { events = append(events, ev) })

	u.Tick()

	require.True(t, u.InSync(slot))
	require.Len(t, events, 1)
	require.Equal(t, SyncEvent{Viewer: slot, InSync: true}, events[0])

	// a further tick with nothing to do must not re-emit.
	u.Tick()
	require.Len(t, events, 1)
}

func TestInsertGoesOutOfSyncThenCatchesUp(t *testing.T) {
	tr, u, slot := newFixture(t)
	u.Tick()
	require.True(t, u.InSync(slot))

	tr.Insert(tr.Begin(), "hello\nworld\n")

	require.False(t, u.InSync(slot))

	for i := 0; i < 10 && !u.InSync(slot); i++ {
		u.Tick()
	}
	require.True(t, u.InSync(slot))
	require.Positive(t, tr.TotalPixels(slot))
}

func TestManyLinesNeedsMultipleTicks(t *testing.T) {
	tr, u, slot := newFixture(t)
	u.Tick()

	var text strings.Builder
	for i := 0; i < 200; i++ {
		text.WriteString("line of text\n")
	}
	tr.Insert(tr.Begin(), text.String())

	u.Tick()
	require.False(t, u.InSync(slot), "256 work units at 8/line cannot lay out 200 lines in one tick")

	ticks := 0
	for !u.InSync(slot) && ticks < 50 {
		u.Tick()
		ticks++
	}
	require.True(t, u.InSync(slot))
	require.Greater(t, ticks, 1)
}

func TestAfterSyncCallback(t *testing.T) {
	tr, u, slot := newFixture(t)
	u.Tick()

	tr.Insert(tr.Begin(), "abc\n")

	called := false
	u.AfterSync(slot, func() { called = true })
	require.False(t, called)

	for i := 0; i < 10 && !u.InSync(slot); i++ {
		u.Tick()
	}
	require.True(t, called)
}

func TestInvalidateAllForcesRelayout(t *testing.T) {
	tr, u, slot := newFixture(t)
	tr.Insert(tr.Begin(), "abc\n")
	for i := 0; i < 10 && !u.InSync(slot); i++ {
		u.Tick()
	}
	require.True(t, u.InSync(slot))

	u.InvalidateAll()
	require.False(t, u.InSync(slot))

	for i := 0; i < 10 && !u.InSync(slot); i++ {
		u.Tick()
	}
	require.True(t, u.InSync(slot))
}
