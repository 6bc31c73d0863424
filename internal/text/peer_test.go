package text

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/segtype"
)

func TestSetRangeRestrictsVisibleLines(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "one\ntwo\nthree\nfour\nfive\n")
	v := tr.AddViewer(1, 80, 24)
	for i := 0; i < 200 && !tr.InSync(v); i++ {
		tr.upd.Tick()
	}

	require.NoError(t, tr.SetRange(v, 1, 2))

	lines := tr.VisibleLines(v, 10)
	require.NotEmpty(t, lines)
	for _, dl := range lines {
		ln := tr.BTree().LineNumber(dl.Start.Line)
		require.GreaterOrEqual(t, ln, 1)
		require.LessOrEqual(t, ln, 2)
	}
}

func TestSetRangeRejectsInvalidBounds(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "one\ntwo\nthree\n")
	v := tr.AddViewer(1, 80, 24)

	require.Error(t, tr.SetRange(v, -1, 2))
	require.Error(t, tr.SetRange(v, 3, 1))
	require.Error(t, tr.SetRange(Viewer{}, 0, -1))
}

func TestSetRangeUnrestrictedByDefault(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "one\ntwo\nthree\n")
	v := tr.AddViewer(1, 80, 24)

	require.Equal(t, tr.Begin().Line, tr.ViewBegin(v).Line)
	require.True(t, tr.BTree().IsDummy(tr.ViewEnd(v).Line))
}

func TestViewBeginViewEndReflectRange(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "one\ntwo\nthree\nfour\n")
	v := tr.AddViewer(1, 80, 24)
	require.NoError(t, tr.SetRange(v, 1, 2))

	require.Equal(t, 1, tr.BTree().LineNumber(tr.ViewBegin(v).Line))
	require.Equal(t, 3, tr.BTree().LineNumber(tr.ViewEnd(v).Line))
}

func TestMarkNamesReflectsSetAndUnset(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello\n")

	require.Empty(t, tr.MarkNames())

	tr.SetMark("insert", tr.Begin(), segtype.GravityRight)
	tr.SetMark("anchor", tr.Begin(), segtype.GravityLeft)
	require.ElementsMatch(t, []string{"insert", "anchor"}, tr.MarkNames())

	tr.UnsetMark("anchor")
	require.Equal(t, []string{"insert"}, tr.MarkNames())
}
