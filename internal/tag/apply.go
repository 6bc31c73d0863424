package tag

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/segtype"
)

// Add applies t over the half-open range [i1, i2), merging with any overlap
// already present (§4.3: "Add/Remove over a range"): after Remove clears the
// range, a ToggleOn goes in at i1 and a ToggleOff at i2 only where t's state
// there would otherwise be wrong, so overlapping adds leave a single pair.
// ToggleCount is re-read from the root's TagSummary, because Cleanup may
// annihilate an inserted toggle against an adjacent opposite one. No-op on
// an empty range.
func Add(tree *btree.Tree, t *Tag, i1, i2 btree.Index) {
	if btree.Compare(i1, i2) >= 0 {
		return
	}
	after := IsTagged(tree, t, i2) // t's state at i2 before this edit
	Remove(tree, t, i1, i2)        // strip any existing toggles of t in-range first
	if !IsTagged(tree, t, i1) {
		insertToggle(tree, t, i1, true)
		t.ToggleCount = tree.RootNode().SubtreeToggleCount(t.Name)
		refreshTagRoot(tree, t)
	}
	if IsTagged(tree, t, i2) != after {
		insertToggle(tree, t, i2, false)
	}
	t.ToggleCount = tree.RootNode().SubtreeToggleCount(t.Name)
	refreshTagRoot(tree, t)
}

// Remove clears t over [i1, i2). It strips every toggle of t within
// [i1, i2), including a toggle sitting exactly at i1, and runs
// segtype.Cleanup on every line it scans; it then inserts a ToggleOff at i1
// if t is still in effect there, and a toggle at i2 if t's state at i2 would
// otherwise change, so Remove after Add over the same range leaves no
// toggles of t behind.
func Remove(tree *btree.Tree, t *Tag, i1, i2 btree.Index) {
	if btree.Compare(i1, i2) >= 0 {
		return
	}
	after := IsTagged(tree, t, i2) // t's state at i2 before this edit
	removed := 0
	cur := i1.Line
	for {
		startOff := 0
		if cur == i1.Line {
			startOff = i1.Offset
		}
		pos := 0
		kept := cur.Segments[:0:0]
		for _, seg := range cur.Segments {
			sz := seg.Size()
			inRange := pos >= startOff && (cur != i2.Line || pos < i2.Offset)
			if cur == i2.Line && pos >= i2.Offset {
				inRange = false
			}
			if inRange && (seg.Kind == segtype.KindToggleOn || seg.Kind == segtype.KindToggleOff) && seg.Tag == t.Name {
				removed++
				pos += sz
				continue
			}
			kept = append(kept, seg)
			pos += sz
		}
		cur.Segments = segtype.Cleanup(kept)
		climbFrom(cur)
		if cur == i2.Line {
			break
		}
		cur = nextLine(tree, cur)
		if cur == nil {
			break
		}
	}
	if removed > 0 {
		t.ToggleCount -= removed
		if t.ToggleCount < 0 {
			t.ToggleCount = 0
		}
		climbFrom(i1.Line)
		if i1.Line != i2.Line {
			climbFrom(i2.Line)
		}
		refreshTagRoot(tree, t)
	}
	if IsTagged(tree, t, i1) {
		insertToggle(tree, t, i1, false)
		t.ToggleCount = tree.RootNode().SubtreeToggleCount(t.Name)
		refreshTagRoot(tree, t)
	}
	if IsTagged(tree, t, i2) != after {
		insertToggle(tree, t, i2, true)
		t.ToggleCount = tree.RootNode().SubtreeToggleCount(t.Name)
		refreshTagRoot(tree, t)
	}
}

// NotifyToggleRemoved updates t's bookkeeping after one of its toggle
// segments was dropped outside Add/Remove — concretely, by a btree.Delete
// whose range swallowed the toggle along with ordinary text. It performs the
// same accounting Remove does per toggle it strips: decrement ToggleCount
// (floored at 0) and refresh TagRootPtr, so an edit that merely happens to
// cross a tag boundary can never leave I2/I3 (§8) violated.
func NotifyToggleRemoved(tree *btree.Tree, t *Tag) {
	if t.ToggleCount > 0 {
		t.ToggleCount--
	}
	refreshTagRoot(tree, t)
}

func insertToggle(tree *btree.Tree, t *Tag, idx btree.Index, on bool) {
	var seg *segtype.Segment
	if on {
		seg = segtype.NewToggleOn(t.Name)
	} else {
		seg = segtype.NewToggleOff(t.Name)
	}
	tree.InsertSegment(idx, seg)
}

func nextLine(tree *btree.Tree, l *btree.Line) *btree.Line {
	n := tree.LineNumber(l)
	if n+1 >= tree.LineCount() {
		return nil
	}
	return tree.FindLine(n + 1)
}

func climbFrom(l *btree.Line) {
	l.Tree().ClimbFrom(l)
}

// refreshTagRoot recomputes t.TagRootPtr as the deepest node whose subtree
// contains every toggle of t (§3 "tagRootPtr", §8 amortized-range-query
// invariant). Because recomputeCounts (internal/btree) keeps a full running
// TagSummary total at each node rather than the optimized "only list nodes
// that don't already contain every toggle" structure, this is a plain
// upward scan stopping at the first node whose own total matches; it is a
// documented simplification, not the fully incremental pointer maintenance
// the original module performs on every single toggle edit.
func refreshTagRoot(tree *btree.Tree, t *Tag) {
	if t.ToggleCount == 0 {
		t.TagRootPtr = nil
		return
	}
	root := tree.RootNode()
	t.TagRootPtr = findTagRoot(root, t.Name, t.ToggleCount)
}

func findTagRoot(n *btree.Node, tagName string, total int) *btree.Node {
	if n.SubtreeToggleCount(tagName) != total {
		return n
	}
	if n.IsLeaf() {
		return n
	}
	for _, c := range n.Children {
		if c.SubtreeToggleCount(tagName) == total {
			return findTagRoot(c, tagName, total)
		}
	}
	return n
}
