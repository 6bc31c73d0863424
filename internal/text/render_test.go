package text

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/tag"
)

func TestVisibleLinesCoversSeededContent(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "one\ntwo\nthree\n")
	v := tr.AddViewer(1, 80, 24)
	for i := 0; i < 200 && !tr.InSync(v); i++ {
		tr.upd.Tick()
	}

	lines := tr.VisibleLines(v, 10)
	require.NotEmpty(t, lines)

	var joined string
	for _, dl := range lines {
		for _, c := range dl.Chunks {
			joined += c.Text
		}
	}
	require.Equal(t, "onetwothree", joined) // chunks never carry the line's trailing "\n"
}

func TestVisibleLinesUnknownViewerReturnsNil(t *testing.T) {
	tr := New()
	require.Nil(t, tr.VisibleLines(Viewer{}, 10))
}

func TestLayoutResolvesChunkStylesThroughStylesTable(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello\n")
	tr.TagCreate("em")
	boldTrue := true
	require.NoError(t, tr.TagConfigure("em", tag.Attrs{Bold: &boldTrue}))
	require.NoError(t, tr.TagAdd("em", at(tr, "1.0"), at(tr, "1.5")))

	v := tr.AddViewer(1, 80, 24)
	dl, ok := tr.Layout(v, tr.Begin())
	require.True(t, ok)
	require.NotEmpty(t, dl.Chunks)

	values, found := tr.Styles().Lookup(dl.Chunks[0].Style)
	require.True(t, found)
	require.True(t, values.Bold)

	require.NotEmpty(t, tr.ActiveTagsAt(at(tr, "1.0")))
}
