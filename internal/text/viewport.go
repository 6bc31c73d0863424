package text

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/viewport"
)

// SetTop pins v's viewport to idx's line (§6 "set_top(index)").
func (tr *Tree) SetTop(v Viewer, idx btree.Index) {
	if vs, ok := tr.viewers[v]; ok {
		vs.vp.SetTop(idx)
	}
}

// See scrolls v's viewport minimally so idx is visible (§6 "see(index)").
func (tr *Tree) See(v Viewer, idx btree.Index) {
	if vs, ok := tr.viewers[v]; ok {
		vs.vp.See(idx)
	}
}

// YViewMoveto sets v's vertical scroll position to fraction f of the total
// content height (§6 "yview").
func (tr *Tree) YViewMoveto(v Viewer, f float64) {
	if vs, ok := tr.viewers[v]; ok {
		vs.vp.YViewMoveto(f)
	}
}

// YViewScroll moves v's vertical scroll position by n units of the given
// kind (§6 "yview").
func (tr *Tree) YViewScroll(v Viewer, n int, unit viewport.ScrollUnit) {
	if vs, ok := tr.viewers[v]; ok {
		vs.vp.YViewScroll(n, unit)
	}
}

// YFraction reports v's current vertical scroll fraction, for driving a
// scrollbar.
func (tr *Tree) YFraction(v Viewer) float64 {
	vs, ok := tr.viewers[v]
	if !ok {
		return 0
	}
	return vs.vp.YFraction()
}

// XViewMoveto sets v's horizontal scroll position to fraction f (§6
// "xview").
func (tr *Tree) XViewMoveto(v Viewer, f float64) {
	if vs, ok := tr.viewers[v]; ok {
		vs.vp.XViewMoveto(f)
	}
}

// XViewScroll moves v's horizontal scroll position by n units of the given
// kind (§6 "xview").
func (tr *Tree) XViewScroll(v Viewer, n int, unit viewport.ScrollUnit) {
	if vs, ok := tr.viewers[v]; ok {
		vs.vp.XViewScroll(n, unit)
	}
}

// XFraction reports v's current horizontal content-width fraction.
func (tr *Tree) XFraction(v Viewer) float64 {
	vs, ok := tr.viewers[v]
	if !ok {
		return 0
	}
	return vs.vp.XFraction()
}

// PixelToIndex maps a pixel coordinate within v's viewport to the nearest
// index (§6 "pixel_to_index(x,y) -> (index, is_nearby)").
func (tr *Tree) PixelToIndex(v Viewer, x, y int) (btree.Index, bool) {
	vs, ok := tr.viewers[v]
	if !ok {
		return btree.Index{}, false
	}
	return vs.vp.PixelToIndex(x, y)
}

// Top returns the index currently anchoring the top of v's viewport.
func (tr *Tree) Top(v Viewer) btree.Index {
	vs, ok := tr.viewers[v]
	if !ok {
		return btree.Index{}
	}
	return vs.vp.Top()
}
