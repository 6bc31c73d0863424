package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

func noTags(btree.Index) []*tag.Tag { return nil }

func TestLayoutSingleShortLine(t *testing.T) {
	tr := btree.New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), "hello\n")
	styles := style.NewTable()

	opts := DefaultOptions()
	opts.Width = 80
	dl := Layout(tr, styles, opts, tr.Begin(), noTags)

	require.Len(t, dl.Chunks, 1)
	require.Equal(t, "hello", dl.Chunks[0].Text)
	require.Equal(t, 6, dl.ByteCount)
}

func TestLayoutWordWrap(t *testing.T) {
	tr := btree.New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), "the quick brown fox\n")
	styles := style.NewTable()

	opts := DefaultOptions()
	opts.Width = 10
	opts.WrapMode = WrapWord
	dl := Layout(tr, styles, opts, tr.Begin(), noTags)

	var out string
	for _, c := range dl.Chunks {
		out += c.Text
	}
	require.LessOrEqual(t, len(out), 10)
	require.Contains(t, out, "the")
}

func TestLayoutWordWrapContinuesOnSameLine(t *testing.T) {
	tr := btree.New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), "the quick brown fox\n")
	styles := style.NewTable()

	opts := DefaultOptions()
	opts.Width = 10
	opts.WrapMode = WrapWord

	first := Layout(tr, styles, opts, tr.Begin(), noTags)
	require.NotZero(t, first.NextOffset, "a mid-line wrap must not reset to offset 0")
	require.Equal(t, tr.Begin().Line, first.NextLine)

	second := Layout(tr, styles, opts, btree.Index{Tree: tr, Line: first.NextLine, Offset: first.NextOffset}, noTags)
	require.NotEmpty(t, second.Chunks)
}

func TestLayoutSingleLineAdvancesToDummy(t *testing.T) {
	tr := btree.New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), "hello\n")
	styles := style.NewTable()

	opts := DefaultOptions()
	opts.Width = 80
	dl := Layout(tr, styles, opts, tr.Begin(), noTags)

	require.Equal(t, 0, dl.NextOffset)
	require.True(t, tr.IsDummy(dl.NextLine))
}

func TestLayoutElisionMergesLines(t *testing.T) {
	tr := btree.New()
	tr.AddViewer(20)
	tr.Insert(tr.Begin(), "abc\ndef\n")
	reg := tag.NewRegistry()
	hidden := reg.Create("hidden")
	elideVal := true
	hidden.Attrs.Elide = &elideVal

	l0 := tr.FindLine(0)
	tag.Add(tr, hidden, btree.Index{Tree: tr, Line: l0, Offset: 0}, btree.Index{Tree: tr, Line: l0, Offset: 4})

	styles := style.NewTable()
	opts := DefaultOptions()
	opts.Width = 80

	activeTags := func(idx btree.Index) []*tag.Tag { return tag.TagsAt(reg, tr, idx) }
	dl := Layout(tr, styles, opts, tr.Begin(), activeTags)

	require.Equal(t, 1, dl.LogicalLinesMerged)
	var out string
	for _, c := range dl.Chunks {
		out += c.Text
	}
	require.Equal(t, "def", out)
}
