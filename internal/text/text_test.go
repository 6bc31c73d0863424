package text

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/segtype"
	"github.com/mobanhawi/linotype/internal/tag"
)

func at(tr *Tree, s string) btree.Index {
	idx, _, err := tr.ParseIndex(s)
	if err != nil {
		panic(err)
	}
	return idx
}

func boolPtr(b bool) *bool { return &b }

// TestInsertAcrossLines is scenario 1 of §8.
func TestInsertAcrossLines(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "abc\ndef\nghi")

	require.Equal(t, 4, tr.BTree().LineCount())
	require.Equal(t, "4.0", tr.FormatIndex(tr.End()))
	require.Equal(t, "abc\ndef\nghi", tr.GetString(at(tr, "1.0"), at(tr, "end -1 chars")))
}

// TestTagRangeAndPriority is scenario 2 of §8.
func TestTagRangeAndPriority(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "abc\ndef\nghi")

	t1 := tr.TagCreate("t1")
	t2 := tr.TagCreate("t2")
	require.Equal(t, 1, t1.Priority) // priority 0 is the built-in "sel" tag
	require.Equal(t, 2, t2.Priority)

	require.NoError(t, tr.TagAdd("t1", at(tr, "1.0"), at(tr, "2.3")))
	require.NoError(t, tr.TagAdd("t2", at(tr, "1.2"), at(tr, "3.0")))

	require.Equal(t, []string{"t1", "t2"}, tr.TagsAt(at(tr, "2.0")))

	ranges, err := tr.TagRanges("t1")
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	require.Equal(t, "1.0", tr.FormatIndex(ranges[0][0]))
	require.Equal(t, "2.3", tr.FormatIndex(ranges[0][1]))

	s, e, ok, err := tr.TagNextRange("t2", at(tr, "1.0"), tr.End())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1.2", tr.FormatIndex(s))
	require.Equal(t, "3.0", tr.FormatIndex(e))
}

// TestDeletionJoinsLines is scenario 3 of §8.
func TestDeletionJoinsLines(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "abc\ndef\nghi")
	tr.TagCreate("t1")
	tr.TagCreate("t2")
	require.NoError(t, tr.TagAdd("t1", at(tr, "1.0"), at(tr, "2.3")))
	require.NoError(t, tr.TagAdd("t2", at(tr, "1.2"), at(tr, "3.0")))

	epochBefore := tr.BTree().StateEpoch
	tr.Delete(at(tr, "1.3"), at(tr, "2.0"))

	require.Equal(t, 3, tr.BTree().LineCount())
	require.Equal(t, "abcdef\n", tr.GetString(at(tr, "1.0"), at(tr, "2.0")))
	require.Greater(t, tr.BTree().StateEpoch, epochBefore)

	r1, err := tr.TagRanges("t1")
	require.NoError(t, err)
	require.Equal(t, "1.0", tr.FormatIndex(r1[0][0]))
	require.Equal(t, "1.6", tr.FormatIndex(r1[0][1]))

	r2, err := tr.TagRanges("t2")
	require.NoError(t, err)
	require.Equal(t, "1.5", tr.FormatIndex(r2[0][0]))
	require.Equal(t, "2.0", tr.FormatIndex(r2[0][1]))
}

// TestDeleteAcrossToggleKeepsTagAccountingConsistent covers an ordinary
// delete whose range swallows a tag's toggle segment entirely, rather than
// going through TagRemove — e.g. deleting a word that happens to sit at a
// tagged range's boundary. ToggleCount and TagRootPtr must stay consistent
// with what's actually left in the tree (§8 I2/I3).
func TestDeleteAcrossToggleKeepsTagAccountingConsistent(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello world\n")

	t1 := tr.TagCreate("t1")
	require.NoError(t, tr.TagAdd("t1", at(tr, "1.0"), at(tr, "1.5")))
	require.Equal(t, 2, t1.ToggleCount)
	require.NotNil(t, t1.TagRootPtr)

	// "1.3" to "2.0" removes "lo world\n", taking the ToggleOff at byte 5
	// with it while leaving the ToggleOn at byte 0 standing.
	tr.Delete(at(tr, "1.3"), at(tr, "2.0"))

	require.Equal(t, 1, t1.ToggleCount)
	ranges, err := tr.TagRanges("t1")
	require.NoError(t, err)
	require.Empty(t, ranges, "an unterminated toggle must not report a closed range")
	// The surviving ToggleOn has nothing left to close it, so t1 reads as
	// in effect from there to the end of the document (§4.3 parity rule).
	require.Contains(t, tr.TagsAt(at(tr, "1.1")), "t1")
}

// TestElisionSkipsElidedChars is scenario 4 of §8: an elided tag covering a
// logical line's content up to, but not including, its newline makes
// display-unit movement skip straight over the elided chars, landing on the
// newline at 1.3.
func TestElisionSkipsElidedChars(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "one\ntwo\n")
	tr.TagCreate("t1")
	require.NoError(t, tr.TagConfigure("t1", tag.Attrs{Elide: boolPtr(true)}))
	require.NoError(t, tr.TagAdd("t1", at(tr, "1.0"), at(tr, "1.end")))

	require.True(t, tr.IsElided(at(tr, "1.1")))
	require.False(t, tr.IsElided(at(tr, "1.3"))) // the newline itself sits outside 1.end

	next := tr.ForwardDisplayChars(at(tr, "1.0"), 1)
	require.Equal(t, "1.3", tr.FormatIndex(next))

	v := tr.AddViewer(1, 80, 24)
	for i := 0; i < 200 && !tr.InSync(v); i++ {
		tr.upd.Tick()
	}
	require.True(t, tr.InSync(v))
}

// TestAsyncSync is scenario 5 of §8.
func TestAsyncSync(t *testing.T) {
	tr := New()
	var block string
	for i := 0; i < 10000; i++ {
		block += "x\n"
	}
	tr.Insert(tr.Begin(), "seed\n")

	v := tr.AddViewer(1, 80, 24)
	for i := 0; i < 200 && !tr.InSync(v); i++ {
		tr.upd.Tick()
	}
	require.True(t, tr.InSync(v))

	var syncEvents []bool
	tr.OnSync(func(got Viewer, inSync bool) {
		if got == v {
			syncEvents = append(syncEvents, inSync)
		}
	})

	tr.Insert(at(tr, "end"), block)
	require.False(t, tr.InSync(v))

	for i := 0; i < 100000 && !tr.InSync(v); i++ {
		tr.upd.Tick()
	}
	require.True(t, tr.InSync(v))

	trueCount := 0
	for _, e := range syncEvents {
		if e {
			trueCount++
		}
	}
	require.Equal(t, 1, trueCount)

	total := tr.BTree().TotalPixels(0)
	require.Greater(t, total, 0)
}

// TestTagToggleCancellation is scenario 6 of §8.
func TestTagToggleCancellation(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "abcdefgh\n")
	tr.TagCreate("t1")

	require.NoError(t, tr.TagAdd("t1", at(tr, "1.0"), at(tr, "1.5")))
	require.NoError(t, tr.TagAdd("t1", at(tr, "1.3"), at(tr, "1.8")))

	t1, _ := tr.tags.Lookup("t1")
	require.Equal(t, 2, t1.ToggleCount)

	ranges, err := tr.TagRanges("t1")
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	require.Equal(t, "1.0", tr.FormatIndex(ranges[0][0]))
	require.Equal(t, "1.8", tr.FormatIndex(ranges[0][1]))
}

func TestMarksMoveWithEdits(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello world\n")
	tr.SetMark("cursor", at(tr, "1.5"), segtype.GravityLeft)

	tr.Insert(at(tr, "1.0"), "XXX")

	idx, ok := tr.MarkIndex("cursor")
	require.True(t, ok)
	require.Equal(t, "1.8", tr.FormatIndex(idx))
}

func TestMarkGravityChange(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello\n")
	tr.SetMark("m", at(tr, "1.2"), segtype.GravityLeft)

	g, err := tr.MarkGravity("m", segtype.GravityRight)
	require.NoError(t, err)
	require.Equal(t, segtype.GravityRight, g)

	idx, ok := tr.MarkIndex("m")
	require.True(t, ok)
	require.Equal(t, "1.2", tr.FormatIndex(idx))
}

func TestUnknownTagErrors(t *testing.T) {
	tr := New()
	_, err := tr.TagRanges("nope")
	require.Error(t, err)
}

func TestTagBindDispatchesOnActiveTags(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello\n")
	tr.TagCreate("link")
	require.NoError(t, tr.TagAdd("link", at(tr, "1.0"), at(tr, "1.5")))

	var got []string
	require.NoError(t, tr.TagBind("link", "click", func(tags []string) { got = tags }))

	tr.DispatchEvent("click", at(tr, "1.2"))
	require.Contains(t, got, "link")
}

func TestTagBindPanicSurfacesOnErrors(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello\n")
	tr.TagCreate("boom")
	require.NoError(t, tr.TagAdd("boom", at(tr, "1.0"), at(tr, "1.5")))
	require.NoError(t, tr.TagBind("boom", "click", func(tags []string) { panic("kaboom") }))

	tr.DispatchEvent("click", at(tr, "1.2"))

	select {
	case err := <-tr.Errors():
		afterSyncFailed, ok := err.(*AfterSyncFailed)
		require.True(t, ok)
		require.Contains(t, afterSyncFailed.Source, "binding:click")
	default:
		t.Fatal("expected a reported error")
	}
}

func TestBboxFindsVisibleIndex(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello world\n")
	v := tr.AddViewer(1, 80, 24)
	for i := 0; i < 200 && !tr.InSync(v); i++ {
		tr.upd.Tick()
	}

	_, y, w, h, ok := tr.Bbox(v, at(tr, "1.0"))
	require.True(t, ok)
	require.Equal(t, 0, y)
	require.Greater(t, w, 0)
	require.Greater(t, h, 0)
}

func TestPixelToIndexRoundTrips(t *testing.T) {
	tr := New()
	tr.Insert(tr.Begin(), "hello world\n")
	v := tr.AddViewer(1, 80, 24)
	for i := 0; i < 200 && !tr.InSync(v); i++ {
		tr.upd.Tick()
	}

	idx, nearby := tr.PixelToIndex(v, 0, 0)
	require.True(t, nearby)
	require.Equal(t, "1.0", tr.FormatIndex(idx))
}
