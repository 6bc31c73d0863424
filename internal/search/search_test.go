package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/segtype"
)

func TestForwardFindsToggles(t *testing.T) {
	tr := btree.New()
	tr.AddViewer(10)
	tr.Insert(tr.Begin(), "hello world\n")
	l0 := tr.FindLine(0)
	on := btree.Index{Tree: tr, Line: l0, Offset: 0}
	tr.InsertSegment(on, segtype.NewToggleOn("bold"))
	off := btree.Index{Tree: tr, Line: l0, Offset: 5}
	tr.InsertSegment(off, segtype.NewToggleOff("bold"))

	it := Start(tr, tr.Begin(), tr.End(), "bold", Forward)
	idx, seg, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, segtype.KindToggleOn, seg.Kind)
	require.Equal(t, 0, idx.Offset)

	idx, seg, ok = it.Next()
	require.True(t, ok)
	require.Equal(t, segtype.KindToggleOff, seg.Kind)
	require.Equal(t, 5, idx.Offset)

	_, _, ok = it.Next()
	require.False(t, ok)
}

func TestBackwardFindsToggles(t *testing.T) {
	tr := btree.New()
	tr.AddViewer(10)
	tr.Insert(tr.Begin(), "hello world\n")
	l0 := tr.FindLine(0)
	tr.InsertSegment(btree.Index{Tree: tr, Line: l0, Offset: 0}, segtype.NewToggleOn("bold"))
	tr.InsertSegment(btree.Index{Tree: tr, Line: l0, Offset: 5}, segtype.NewToggleOff("bold"))

	it := Start(tr, tr.Begin(), tr.End(), "bold", Backward)
	_, seg, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, segtype.KindToggleOff, seg.Kind)

	_, seg, ok = it.Next()
	require.True(t, ok)
	require.Equal(t, segtype.KindToggleOn, seg.Kind)
}
