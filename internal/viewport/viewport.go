// Package viewport implements the per-viewer scroll window (spec.md §4.8,
// component C8): a top-of-view anchor, sub-line pixel offset for smooth
// scrolling, horizontal offset, and pixel-fraction/coordinate queries.
package viewport

import (
	"unicode/utf8"

	"github.com/clipperhouse/displaywidth"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

// ScrollUnit distinguishes the three `yview scroll` granularities (§4.8).
type ScrollUnit int

const (
	ScrollUnits ScrollUnit = iota // display lines
	ScrollPages
	ScrollPixels
)

// Viewport tracks one viewer's scroll position against a shared tree.
type Viewport struct {
	tree       *btree.Tree
	styles     *style.Table
	activeTags func(btree.Index) []*tag.Tag
	slot       int
	opts       layout.Options

	Height int // viewport height, in pixels
	Width  int // viewport width, in columns (matches opts.Width's unit)

	top          btree.Index
	topSubOffset int // pixels into top's display line already scrolled past
	maxLineWidth int
	xOffset      int // columns of horizontal scroll applied (meaningful under WrapNone only)
}

// New builds a viewport anchored at the tree's start.
func New(tree *btree.Tree, styles *style.Table, activeTags func(btree.Index) []*tag.Tag, slot int, opts layout.Options, height, width int) *Viewport {
	return &Viewport{
		tree:       tree,
		styles:     styles,
		activeTags: activeTags,
		slot:       slot,
		opts:       opts,
		Height:     height,
		Width:      width,
		top:        tree.Begin(),
	}
}

// Top returns the index currently anchoring the top of the view.
func (v *Viewport) Top() btree.Index { return v.top }

// SetOptions updates the layout options this viewport renders against (e.g.
// a width or wrap-mode change); the caller is responsible for also calling
// the async updater's SetOptions so cached pixel heights stay consistent.
func (v *Viewport) SetOptions(opts layout.Options) { v.opts = opts }

// SetTop pins the view to idx's line, clearing any sub-line pixel offset.
func (v *Viewport) SetTop(idx btree.Index) {
	v.top = btree.Index{Tree: v.tree, Line: idx.Line, Offset: 0}
	v.topSubOffset = 0
}

// NoteLineWidth folds an observed display-line width into the running
// maximum XFraction reports against; the redraw loop calls this per
// display line it lays out, since the viewport itself does not scan the
// whole tree up front.
func (v *Viewport) NoteLineWidth(w int) {
	if w > v.maxLineWidth {
		v.maxLineWidth = w
	}
}

// YFraction is pixels_above_top / total_pixels (§4.8), clamped to at most
// 1 since the async updater may be behind and under-report total_pixels.
func (v *Viewport) YFraction() float64 {
	total := v.tree.TotalPixels(v.slot)
	if total <= 0 {
		return 0
	}
	above := v.tree.PixelsTo(v.top.Line, v.slot) + v.topSubOffset
	return clamp01(float64(above) / float64(total))
}

// XFraction is maxLineWidth / viewport_width (§4.8).
func (v *Viewport) XFraction() float64 {
	if v.Width <= 0 {
		return 0
	}
	return clamp01(float64(v.maxLineWidth) / float64(v.Width))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// See scrolls minimally so idx is visible: if idx already falls within the
// viewport it is left alone (a "just inside the margin" adjustment would
// nudge it in by one display line; here the viewport has no margin
// configured so it nudges to the nearest edge), otherwise the view
// re-centres on idx (§4.8 "centred if currently far off-screen").
func (v *Viewport) See(idx btree.Index) {
	above := v.tree.PixelsTo(idx.Line, v.slot)
	topAbove := v.tree.PixelsTo(v.top.Line, v.slot) + v.topSubOffset
	lineHeight := pixelHeightOf(v.tree, idx.Line, v.slot)

	if above >= topAbove && above+lineHeight <= topAbove+v.Height {
		return // already visible
	}

	far := above < topAbove-v.Height || above > topAbove+2*v.Height
	if far {
		target := above - v.Height/2
		if target < 0 {
			target = 0
		}
		v.scrollToPixel(target)
		return
	}

	if above < topAbove {
		v.scrollToPixel(above)
		return
	}
	v.scrollToPixel(above + lineHeight - v.Height)
}

func pixelHeightOf(tree *btree.Tree, line *btree.Line, slot int) int {
	next := tree.FindLine(tree.LineNumber(line) + 1)
	if next == nil {
		return tree.TotalPixels(slot) - tree.PixelsTo(line, slot)
	}
	return tree.PixelsTo(next, slot) - tree.PixelsTo(line, slot)
}

// YViewMoveto sets top to the line containing pixel ⌊f·totalPixels⌋ (§4.8).
func (v *Viewport) YViewMoveto(f float64) {
	total := v.tree.TotalPixels(v.slot)
	v.scrollToPixel(int(clamp01(f) * float64(total)))
}

// YViewScroll moves the top by n units of the given kind (§4.8).
func (v *Viewport) YViewScroll(n int, unit ScrollUnit) {
	switch unit {
	case ScrollPixels:
		v.scrollByPixels(n)
	case ScrollPages:
		v.scrollByPixels(n * v.Height)
	default:
		v.scrollByDisplayLines(n)
	}
}

func (v *Viewport) scrollToPixel(target int) {
	total := v.tree.TotalPixels(v.slot)
	if target < 0 {
		target = 0
	}
	if target > total {
		target = total
	}
	line := v.tree.FindPixelLine(target, v.slot)
	before := v.tree.PixelsTo(line, v.slot)
	v.top = btree.Index{Tree: v.tree, Line: line, Offset: 0}
	v.topSubOffset = target - before
	if v.topSubOffset < 0 {
		v.topSubOffset = 0
	}
}

func (v *Viewport) scrollByPixels(delta int) {
	before := v.tree.PixelsTo(v.top.Line, v.slot) + v.topSubOffset
	v.scrollToPixel(before + delta)
}

// scrollByDisplayLines walks n display lines forward (n>0) or backward
// (n<0) from top via the layout engine — "units" in §4.8.
func (v *Viewport) scrollByDisplayLines(n int) {
	if n >= 0 {
		idx := v.top
		for i := 0; i < n; i++ {
			dl := layout.Layout(v.tree, v.styles, v.opts, idx, v.activeTags)
			if v.tree.IsDummy(dl.NextLine) {
				idx = btree.Index{Tree: v.tree, Line: dl.NextLine, Offset: 0}
				break
			}
			idx = btree.Index{Tree: v.tree, Line: dl.NextLine, Offset: dl.NextOffset}
		}
		v.top = btree.Index{Tree: v.tree, Line: idx.Line, Offset: 0}
		v.topSubOffset = 0
		return
	}

	// Backward: segments carry no pointer to the previous display line,
	// so unlike the forward walk this re-derives position by stepping
	// back one logical line at a time and counting how many display
	// lines it occupies on its own — the same "collect then reverse"
	// workaround internal/tag uses for PrevRange. This undercounts
	// when an elided tag merges that logical line into its predecessor's
	// display line; treated as an accepted approximation, not exactness,
	// since §4.8 does not specify a backward-wrap algorithm.
	remaining := -n
	lineNum := v.tree.LineNumber(v.top.Line)
	for lineNum > 0 && remaining > 0 {
		lineNum--
		remaining -= displayLinesIn(v.tree, v.styles, v.opts, v.tree.FindLine(lineNum), v.activeTags)
	}
	if lineNum < 0 {
		lineNum = 0
	}
	v.top = btree.Index{Tree: v.tree, Line: v.tree.FindLine(lineNum), Offset: 0}
	v.topSubOffset = 0
}

func displayLinesIn(tree *btree.Tree, styles *style.Table, opts layout.Options, line *btree.Line, activeTags func(btree.Index) []*tag.Tag) int {
	idx := btree.Index{Tree: tree, Line: line, Offset: 0}
	n := 0
	for {
		dl := layout.Layout(tree, styles, opts, idx, activeTags)
		n++
		if dl.NextOffset == 0 {
			return n
		}
		idx = btree.Index{Tree: tree, Line: dl.NextLine, Offset: dl.NextOffset}
	}
}

// PixelToIndex finds the display line at pixel row y then the chunk whose
// x-span contains pixel column x (§4.8 "ask its bboxProc"). The boolean
// result reports whether (x,y) landed inside an actual chunk; when it
// falls past the last chunk or on a line with no chunks, the nearest index
// is returned with isNearby == false.
func (v *Viewport) PixelToIndex(x, y int) (idx btree.Index, isNearby bool) {
	if y < 0 {
		y = 0
	}
	remaining := y + v.topSubOffset
	cursor := v.top
	var dl layout.DisplayLine
	for {
		dl = layout.Layout(v.tree, v.styles, v.opts, cursor, v.activeTags)
		if remaining < dl.Height || v.tree.IsDummy(dl.NextLine) {
			break
		}
		remaining -= dl.Height
		cursor = btree.Index{Tree: v.tree, Line: dl.NextLine, Offset: dl.NextOffset}
	}

	effX := x + v.xOffset
	if len(dl.Chunks) == 0 {
		return dl.Start, false
	}
	if effX < dl.Chunks[0].XOffset {
		return dl.Chunks[0].Start, false
	}
	for _, c := range dl.Chunks {
		if effX >= c.XOffset && effX < c.XOffset+c.Width {
			return c.Start, true
		}
	}
	last := dl.Chunks[len(dl.Chunks)-1]
	return btree.Index{Tree: v.tree, Line: dl.Start.Line, Offset: dl.Start.Offset + dl.ByteCount}, effX < last.XOffset+last.Width
}

// XViewMoveto sets the horizontal scroll position to fraction f of the
// widest display line observed so far (§4.8 xview, meaningful only under
// WrapNone — a wrapped viewport never grows wider than its own width).
func (v *Viewport) XViewMoveto(f float64) {
	v.xOffset = int(clamp01(f) * float64(v.maxLineWidth))
}

// XViewScroll moves the horizontal scroll position by n units of the given
// kind: ScrollPixels moves n columns, ScrollPages moves n viewport widths,
// and ScrollUnits (the default) moves n columns, matching the column-grained
// nature of this model (there is no sub-column horizontal position).
func (v *Viewport) XViewScroll(n int, unit ScrollUnit) {
	switch unit {
	case ScrollPages:
		v.xOffset += n * v.Width
	default:
		v.xOffset += n
	}
	if v.xOffset < 0 {
		v.xOffset = 0
	}
	if v.xOffset > v.maxLineWidth {
		v.xOffset = v.maxLineWidth
	}
}

// locate finds the display line covering idx, walking forward from the
// current top, plus idx's y coordinate relative to the viewport's own top
// (possibly negative, when top is scrolled mid-line). It returns ok==false
// when idx lies above top (scrolled out of view) or past the tree's end,
// mirroring Tk's bbox/dline_info returning nothing for a non-displayed
// index; an idx whose line precedes top's line is rejected up front, without
// any layout, to avoid scanning the entire tree backward.
func (v *Viewport) locate(idx btree.Index) (dl layout.DisplayLine, y int, ok bool) {
	if v.tree.LineNumber(idx.Line) < v.tree.LineNumber(v.top.Line) {
		return layout.DisplayLine{}, 0, false
	}
	cursor := v.top
	y = -v.topSubOffset
	idxNum := v.tree.LineNumber(idx.Line)
	for i := 0; i < v.tree.LineCount()+1; i++ {
		d := layout.Layout(v.tree, v.styles, v.opts, cursor, v.activeTags)
		startNum := v.tree.LineNumber(d.Start.Line)
		endNum := startNum + d.LogicalLinesMerged
		if idxNum >= startNum && idxNum <= endNum && (idxNum > startNum || idx.Offset >= d.Start.Offset) {
			return d, y, true
		}
		if v.tree.IsDummy(d.NextLine) {
			return layout.DisplayLine{}, 0, false
		}
		y += d.Height
		cursor = btree.Index{Tree: v.tree, Line: d.NextLine, Offset: d.NextOffset}
	}
	return layout.DisplayLine{}, 0, false
}

// Bbox locates idx's bounding box in viewport-relative pixels (§6
// "bbox(index) -> option<(x,y,w,h)>"); ok is false when idx is not
// currently displayed.
func (v *Viewport) Bbox(idx btree.Index) (x, y, w, h int, ok bool) {
	dl, top, found := v.locate(idx)
	if !found {
		return 0, 0, 0, 0, false
	}
	for _, c := range dl.Chunks {
		if c.Start.Line != idx.Line {
			continue
		}
		end := c.Start.Offset + len(c.Text)
		if idx.Offset >= c.Start.Offset && idx.Offset < end {
			within := idx.Offset - c.Start.Offset
			cx := c.XOffset + displaywidth.String(c.Text[:within]) - v.xOffset
			_, size := utf8.DecodeRuneInString(c.Text[within:])
			cw := displaywidth.String(c.Text[within : within+size])
			if cw == 0 {
				cw = 1
			}
			return cx, top, cw, dl.Height, true
		}
	}
	if len(dl.Chunks) > 0 {
		last := dl.Chunks[len(dl.Chunks)-1]
		return last.XOffset + last.Width - v.xOffset, top, 1, dl.Height, true
	}
	return dl.XOffset - v.xOffset, top, 1, dl.Height, true
}

// DlineInfo is Bbox extended with the display line's baseline offset (§6
// "dline_info(index) -> option<(x,y,w,h,baseline)>").
func (v *Viewport) DlineInfo(idx btree.Index) (x, y, w, h, baseline int, ok bool) {
	dl, _, found := v.locate(idx)
	if !found {
		return 0, 0, 0, 0, 0, false
	}
	x, y, w, h, ok = v.Bbox(idx)
	return x, y, w, h, dl.Baseline, ok
}
