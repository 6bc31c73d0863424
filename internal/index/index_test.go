package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/tag"
)

type noMarks struct{}

func (noMarks) Lookup(string) (btree.Index, bool) { return btree.Index{}, false }

func newTree(t *testing.T, text string) *btree.Tree {
	t.Helper()
	tr := btree.New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), text)
	return tr
}

func TestParseLineChar(t *testing.T) {
	tr := newTree(t, "abc\ndef\n")
	reg := tag.NewRegistry()
	r, err := Parse(tr, reg, noMarks{}, "2.1")
	require.NoError(t, err)
	require.Equal(t, "e", string(r.Index.Line.Bytes()[r.Index.Offset:r.Index.Offset+1]))
}

func TestParseEnd(t *testing.T) {
	tr := newTree(t, "abc\ndef\nghi")
	reg := tag.NewRegistry()
	r, err := Parse(tr, reg, noMarks{}, "end")
	require.NoError(t, err)
	require.Equal(t, "4.0", Format(tr, r.Index))
}

func TestFormatRoundTrip(t *testing.T) {
	tr := newTree(t, "abc\ndef\n")
	reg := tag.NewRegistry()
	r, err := Parse(tr, reg, noMarks{}, "1.2")
	require.NoError(t, err)
	require.Equal(t, "1.2", Format(tr, r.Index))
}

func TestPlusCharsModifier(t *testing.T) {
	tr := newTree(t, "abc\ndef\n")
	reg := tag.NewRegistry()
	r, err := Parse(tr, reg, noMarks{}, "1.0 +2 chars")
	require.NoError(t, err)
	require.Equal(t, "1.2", Format(tr, r.Index))
}

func TestLineEndModifier(t *testing.T) {
	tr := newTree(t, "abc\ndef\n")
	reg := tag.NewRegistry()
	r, err := Parse(tr, reg, noMarks{}, "1.0 lineend")
	require.NoError(t, err)
	require.Equal(t, "1.3", Format(tr, r.Index))
}

func TestCountCharsAdditive(t *testing.T) {
	tr := newTree(t, "abcdef\n")
	l0 := tr.FindLine(0)
	i1 := btree.Index{Tree: tr, Line: l0, Offset: 0}
	i2 := btree.Index{Tree: tr, Line: l0, Offset: 3}
	i3 := btree.Index{Tree: tr, Line: l0, Offset: 6}
	require.Equal(t, CountChars(tr, i1, i3), CountChars(tr, i1, i2)+CountChars(tr, i2, i3))
}

func TestTagFirstLast(t *testing.T) {
	tr := newTree(t, "hello world\n")
	reg := tag.NewRegistry()
	bold := reg.Create("bold")
	l0 := tr.FindLine(0)
	tag.Add(tr, bold, btree.Index{Tree: tr, Line: l0, Offset: 2}, btree.Index{Tree: tr, Line: l0, Offset: 5})

	r, err := Parse(tr, reg, noMarks{}, "bold.first")
	require.NoError(t, err)
	require.Equal(t, "1.2", Format(tr, r.Index))

	r, err = Parse(tr, reg, noMarks{}, "bold.last")
	require.NoError(t, err)
	require.Equal(t, "1.5", Format(tr, r.Index))
}

func TestTagFirstNoRange(t *testing.T) {
	tr := newTree(t, "hello\n")
	reg := tag.NewRegistry()
	reg.Create("empty")
	_, err := Parse(tr, reg, noMarks{}, "empty.first")
	require.Error(t, err)
	var nsr *ErrNoSuchRange
	require.ErrorAs(t, err, &nsr)
}
