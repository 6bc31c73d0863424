package segtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCharSegment(t *testing.T) {
	s := NewChar([]byte("hello\n"))
	left, right := s.Split(2)
	require.Equal(t, "he", string(left.Bytes))
	require.Equal(t, "llo\n", string(right.Bytes))
}

func TestSplitPanicsOnNonChar(t *testing.T) {
	s := NewToggleOn("bold")
	require.Panics(t, func() { s.Split(0) })
}

func TestCleanupMergesAdjacentChars(t *testing.T) {
	segs := []*Segment{NewChar([]byte("ab")), NewChar([]byte("cd\n"))}
	out := Cleanup(segs)
	require.Len(t, out, 1)
	require.Equal(t, "abcd\n", string(out[0].Bytes))
}

func TestCleanupAnnihilatesAdjacentToggles(t *testing.T) {
	segs := []*Segment{
		NewToggleOn("bold"),
		NewToggleOff("bold"),
		NewChar([]byte("x\n")),
	}
	out := Cleanup(segs)
	require.Len(t, out, 1)
	require.Equal(t, KindChar, out[0].Kind)
}

func TestCheckRequiresTrailingNewline(t *testing.T) {
	require.NoError(t, Check([]*Segment{NewChar([]byte("x\n"))}))
	require.Error(t, Check([]*Segment{NewChar([]byte("x"))}))
}

func TestGravity(t *testing.T) {
	require.Equal(t, GravityLeft, NewToggleOn("t").Gravity())
	require.Equal(t, GravityRight, NewToggleOff("t").Gravity())
	require.Equal(t, GravityLeft, NewMark("m", GravityLeft).Gravity())
	require.Equal(t, GravityRight, NewMark("m", GravityRight).Gravity())
}
