package tag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/btree"
)

func newTree(t *testing.T, text string) *btree.Tree {
	t.Helper()
	tr := btree.New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), text)
	return tr
}

func TestAddAndIsTagged(t *testing.T) {
	tr := newTree(t, "hello world\n")
	reg := NewRegistry()
	bold := reg.Create("bold")

	l0 := tr.FindLine(0)
	i1 := btree.Index{Tree: tr, Line: l0, Offset: 0}
	i2 := btree.Index{Tree: tr, Line: l0, Offset: 5}
	Add(tr, bold, i1, i2)
	require.NoError(t, tr.Check())

	require.True(t, IsTagged(tr, bold, btree.Index{Tree: tr, Line: l0, Offset: 0}))
	require.True(t, IsTagged(tr, bold, btree.Index{Tree: tr, Line: l0, Offset: 4}))
	require.False(t, IsTagged(tr, bold, btree.Index{Tree: tr, Line: l0, Offset: 5}))
}

func TestNextRange(t *testing.T) {
	tr := newTree(t, "hello world\n")
	reg := NewRegistry()
	bold := reg.Create("bold")
	l0 := tr.FindLine(0)
	Add(tr, bold, btree.Index{Tree: tr, Line: l0, Offset: 0}, btree.Index{Tree: tr, Line: l0, Offset: 5})

	s, e, ok := NextRange(tr, bold, tr.Begin(), tr.End())
	require.True(t, ok)
	require.Equal(t, 0, s.Offset)
	require.Equal(t, 5, e.Offset)

	_, _, ok = NextRange(tr, bold, e, tr.End())
	require.False(t, ok)
}

func TestRemoveStripsToggles(t *testing.T) {
	tr := newTree(t, "hello world\n")
	reg := NewRegistry()
	bold := reg.Create("bold")
	l0 := tr.FindLine(0)
	i1 := btree.Index{Tree: tr, Line: l0, Offset: 0}
	i2 := btree.Index{Tree: tr, Line: l0, Offset: 11}
	Add(tr, bold, i1, i2)
	require.Equal(t, 2, bold.ToggleCount)

	Remove(tr, bold, i1, i2)
	require.Equal(t, 0, bold.ToggleCount)
	require.Nil(t, bold.TagRootPtr)
	require.NoError(t, tr.Check())
}

func TestPriorityRaiseToTop(t *testing.T) {
	reg := NewRegistry()
	a := reg.Create("a")
	b := reg.Create("b")
	c := reg.Create("c")
	require.Equal(t, 1, a.Priority)
	require.Equal(t, 2, b.Priority)
	require.Equal(t, 3, c.Priority)

	require.NoError(t, reg.Raise("a", ""))
	require.Equal(t, 3, a.Priority)
	require.Equal(t, 2, c.Priority)
	require.Equal(t, 1, b.Priority)
}

func TestResolvePriority(t *testing.T) {
	reg := NewRegistry()
	low := reg.Create("low")
	high := reg.Create("high")
	red := "red"
	blue := "blue"
	low.Attrs.Foreground = red
	high.Attrs.Foreground = blue

	out := Resolve([]*Tag{low, high})
	require.Equal(t, blue, out.Foreground)
}
