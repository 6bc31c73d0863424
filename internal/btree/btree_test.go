package btree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertAcrossLines(t *testing.T) {
	tr := New()
	tr.AddViewer(20)
	start := tr.Begin()
	tr.Insert(start, "abc\ndef\nghi")

	require.Equal(t, 4, tr.LineCount()) // 3 text lines + dummy
	require.NoError(t, tr.Check())

	got := tr.GetString(tr.Begin(), tr.End())
	require.Equal(t, "abc\ndef\nghi\n", got)
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	tr := New()
	tr.AddViewer(20)
	start := tr.Begin()
	end := tr.Insert(start, "hello world")
	require.NoError(t, tr.Check())

	tr.Delete(start, end)
	require.NoError(t, tr.Check())
	after := tr.GetString(tr.Begin(), tr.End())
	require.Equal(t, "\n", after)
}

func TestDeletionJoinsLines(t *testing.T) {
	tr := New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), "abc\ndef\nghi")
	require.Equal(t, 4, tr.LineCount())

	line1 := tr.FindLine(0)
	i1 := Index{Tree: tr, Line: line1, Offset: 3}
	line2 := tr.FindLine(1)
	i2 := Index{Tree: tr, Line: line2, Offset: 0}
	tr.Delete(i1, i2)

	require.NoError(t, tr.Check())
	require.Equal(t, 3, tr.LineCount())
	require.Equal(t, "abcdef\n", string(tr.FindLine(0).Bytes()))
}

func TestManyLinesRebalance(t *testing.T) {
	tr := New()
	tr.AddViewer(20)
	var sb []byte
	for i := 0; i < 500; i++ {
		sb = append(sb, []byte("line\n")...)
	}
	tr.Insert(tr.Begin(), string(sb))
	require.NoError(t, tr.Check())
	require.Equal(t, 502, tr.LineCount()) // 500 text lines + empty line after the final "\n" + dummy
}

func TestDeleteAcrossManyLines(t *testing.T) {
	tr := New()
	tr.AddViewer(20)
	var sb []byte
	for i := 0; i < 200; i++ {
		sb = append(sb, []byte("line\n")...)
	}
	tr.Insert(tr.Begin(), string(sb))
	require.NoError(t, tr.Check())

	l0 := tr.FindLine(0)
	l100 := tr.FindLine(100)
	tr.Delete(Index{Tree: tr, Line: l0, Offset: 0}, Index{Tree: tr, Line: l100, Offset: 0})
	require.NoError(t, tr.Check())
	require.Equal(t, 102, tr.LineCount()) // 202 lines before, 100 removed
}
