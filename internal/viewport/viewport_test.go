package viewport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/async"
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

func fixture(t *testing.T, lines int) (*btree.Tree, *Viewport, int) {
	t.Helper()
	tr := btree.New()
	slot := tr.AddViewer(1)
	reg := tag.NewRegistry()
	styles := style.NewTable()
	activeTags := func(idx btree.Index) []*tag.Tag { return tag.TagsAt(reg, tr, idx) }

	var text strings.Builder
	for i := 0; i < lines; i++ {
		text.WriteString("a line of text\n")
	}
	tr.Insert(tr.Begin(), text.String())

	u := async.New(tr, styles, activeTags)
	u.RegisterViewer(slot, layout.DefaultOptions())
	for i := 0; i < 200 && !u.InSync(slot); i++ {
		u.Tick()
	}
	require.True(t, u.InSync(slot))

	opts := layout.DefaultOptions()
	opts.Width = 80
	vp := New(tr, styles, activeTags, slot, opts, 5, 80)
	return tr, vp, slot
}

func TestYFractionStartsAtZero(t *testing.T) {
	_, vp, _ := fixture(t, 50)
	require.Zero(t, vp.YFraction())
}

func TestYViewMovetoMidpoint(t *testing.T) {
	tr, vp, slot := fixture(t, 100)
	vp.YViewMoveto(0.5)
	total := tr.TotalPixels(slot)
	above := tr.PixelsTo(vp.Top().Line, slot)
	require.InDelta(t, float64(total)/2, float64(above), float64(total)*0.05)
}

func TestYViewScrollUnitsAdvancesTop(t *testing.T) {
	_, vp, _ := fixture(t, 50)
	start := vp.Top()
	vp.YViewScroll(3, ScrollUnits)
	require.NotEqual(t, start.Line, vp.Top().Line)
}

func TestSeeScrollsOffscreenIndexIntoView(t *testing.T) {
	tr, vp, _ := fixture(t, 200)
	farLine := tr.FindLine(150)
	vp.See(btree.Index{Tree: tr, Line: farLine, Offset: 0})
	require.NotEqual(t, tr.Begin().Line, vp.Top().Line)
}

func TestPixelToIndexFindsFirstChunk(t *testing.T) {
	tr, vp, _ := fixture(t, 10)
	idx, nearby := vp.PixelToIndex(0, 0)
	require.True(t, nearby)
	require.Equal(t, tr.Begin().Line, idx.Line)
	require.Equal(t, 0, idx.Offset)
}

func TestBboxFindsFirstCharAtOrigin(t *testing.T) {
	tr, vp, _ := fixture(t, 10)
	x, y, w, h, ok := vp.Bbox(tr.Begin())
	require.True(t, ok)
	require.Equal(t, 0, x)
	require.Equal(t, 0, y)
	require.Greater(t, w, 0)
	require.Greater(t, h, 0)
}

func TestBboxReportsNotOkAboveTop(t *testing.T) {
	tr, vp, _ := fixture(t, 200)
	vp.SetTop(btree.Index{Tree: tr, Line: tr.FindLine(100), Offset: 0})
	_, _, _, _, ok := vp.Bbox(btree.Index{Tree: tr, Line: tr.FindLine(5), Offset: 0})
	require.False(t, ok)
}

func TestDlineInfoIncludesBaseline(t *testing.T) {
	tr, vp, _ := fixture(t, 10)
	_, _, _, h, baseline, ok := vp.DlineInfo(tr.Begin())
	require.True(t, ok)
	require.GreaterOrEqual(t, baseline, 0)
	require.LessOrEqual(t, baseline, h)
}

func TestXViewScrollAdvancesThenClampsAtZero(t *testing.T) {
	_, vp, _ := fixture(t, 5)
	vp.XViewScroll(10, ScrollUnits)
	require.Equal(t, 0, vp.xOffset) // maxLineWidth is 0 until a layout pass notes a width
	vp.NoteLineWidth(40)
	vp.XViewScroll(10, ScrollUnits)
	require.LessOrEqual(t, vp.xOffset, 40)
	vp.XViewScroll(-1000, ScrollUnits)
	require.Equal(t, 0, vp.xOffset)
}

func TestXViewMovetoMidpoint(t *testing.T) {
	_, vp, _ := fixture(t, 5)
	vp.NoteLineWidth(100)
	vp.XViewMoveto(0.5)
	require.Equal(t, 50, vp.xOffset)
}
