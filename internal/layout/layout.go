// Package layout turns a starting Index into a sequence of DisplayLine
// records, honouring wrap mode, tabs, justification, and elision (spec.md
// §4.6, component C6).
package layout

import (
	"github.com/clipperhouse/displaywidth"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/segtype"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

// WrapMode selects how a display line breaks when it would overflow the
// viewport width (§4.6 step 4).
type WrapMode int

const (
	WrapChar WrapMode = iota
	WrapWord
	WrapNone
)

// Justify selects horizontal alignment within the viewport width.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyRight
	JustifyCenter
)

// TabAlign selects how text is aligned to a tab stop (§4.6 step 5).
type TabAlign int

const (
	TabLeft TabAlign = iota
	TabRight
	TabCenter
	TabNumeric
)

// Options governs one tree's layout behaviour; it is the viewer-facing
// analogue of Tk's wrap/tabs/justify widget options.
type Options struct {
	WrapMode    WrapMode
	Justify     Justify
	Width       int   // viewport width in columns
	TabStops    []int // column positions of tab stops
	TabAlign    TabAlign
	MinHeight   int
	LineSpacing int
}

// DefaultOptions mirrors Tk's text widget defaults: word-wrap, left
// justify, tab stops every 8 columns.
func DefaultOptions() Options {
	return Options{
		WrapMode:  WrapWord,
		Justify:   JustifyLeft,
		Width:     80,
		TabStops:  nil, // nil means "every 8 columns", computed lazily
		MinHeight: 1,
	}
}

// Chunk is one contiguous run within a display line sharing a style and a
// segment source (GLOSSARY "Chunk").
type Chunk struct {
	Text    string
	Style   style.Handle
	XOffset int
	Width   int
	Segment *segtype.Segment
	Start   btree.Index // index of the chunk's first byte, for pixel→index mapping
}

// DisplayLine is the ephemeral record §3 describes.
type DisplayLine struct {
	Start              btree.Index
	ByteCount          int
	Height             int
	Baseline           int
	SpaceAbove         int
	SpaceBelow         int
	XOffset            int
	Chunks             []Chunk
	LogicalLinesMerged int

	// NextLine/NextOffset is where the following DisplayLine (if any)
	// begins: NextOffset == 0 means this DisplayLine ended cleanly at a
	// logical newline, so a caller walking a whole logical line's pixel
	// height (internal/async) knows the run is complete; a nonzero
	// offset means this is a mid-line wrap and the same logical line
	// continues.
	NextLine   *btree.Line
	NextOffset int
}

// activeTagsFn is supplied by the caller (internal/text) so this package
// never needs to import the tag registry directly for membership tests —
// only for Resolve/priority ordering via style.Table.GetStyle.
type activeTagsFn func(idx btree.Index) []*tag.Tag

// Layout produces the display line starting at start, stopping once width
// columns are consumed (per opts.Width) or a logical line ends (§4.6).
// activeTags resolves the tags in effect at a given index so elision and
// style resolution can run per chunk.
func Layout(tree *btree.Tree, styles *style.Table, opts Options, start btree.Index, activeTags activeTagsFn) DisplayLine {
	return layoutFrom(tree, styles, opts, start, activeTags)
}

// columnWidth measures the display width of s in terminal columns, used to
// decide wrap points and tab-stop alignment (§4.6 step 5's "tab stop is
// known" needs a column measure, not a byte count).
func columnWidth(s string) int {
	return displaywidth.String(s)
}
