package style

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/tag"
)

func TestGetStyleInterns(t *testing.T) {
	tbl := NewTable()
	reg := tag.NewRegistry()
	bold := reg.Create("bold")
	boldVal := true
	bold.Attrs.Bold = &boldVal

	h1, v1 := tbl.GetStyle([]*tag.Tag{bold})
	h2, v2 := tbl.GetStyle([]*tag.Tag{bold})
	require.Equal(t, h1, h2)
	require.Equal(t, v1, v2)
	require.Equal(t, 1, tbl.Len())
}

func TestFreeStyleEvicts(t *testing.T) {
	tbl := NewTable()
	reg := tag.NewRegistry()
	italic := reg.Create("italic")
	v := true
	italic.Attrs.Italic = &v

	h, _ := tbl.GetStyle([]*tag.Tag{italic})
	tbl.FreeStyle(h)
	_, ok := tbl.Lookup(h)
	require.False(t, ok)
}

func TestDistinctAttrsDistinctHandles(t *testing.T) {
	tbl := NewTable()
	reg := tag.NewRegistry()
	a := reg.Create("a")
	a.Attrs.Foreground = "red"
	b := reg.Create("b")
	b.Attrs.Foreground = "blue"

	h1, _ := tbl.GetStyle([]*tag.Tag{a})
	h2, _ := tbl.GetStyle([]*tag.Tag{b})
	require.NotEqual(t, h1, h2)
}
