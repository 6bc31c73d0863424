package btree

import "github.com/mobanhawi/linotype/internal/segtype"

// recomputeCounts rebuilds n's NumChildren/NumLines/NumPixels/TagSummary
// from its immediate children (or, for a leaf, from its lines directly),
// per §4.2's "after every structural move, recompute_counts(node)".
func recomputeCounts(n *Node) {
	n.TagSummary = map[string]int{}
	if n.IsLeaf() {
		n.NumChildren = len(n.Lines)
		n.NumLines = len(n.Lines)
		n.NumPixels = make([]int, len(n.NumPixels))
		for _, l := range n.Lines {
			for slot, p := range l.Pixels {
				n.ensureWidth(slot + 1)
				n.NumPixels[slot] += p.Height
			}
			for _, seg := range l.Segments {
				if seg.Kind == segtype.KindToggleOn || seg.Kind == segtype.KindToggleOff {
					n.TagSummary[seg.Tag]++
				}
			}
		}
		return
	}
	n.NumChildren = len(n.Children)
	n.NumLines = 0
	n.NumPixels = nil
	for _, c := range n.Children {
		n.NumLines += c.NumLines
		n.ensureWidth(len(c.NumPixels))
		for slot, v := range c.NumPixels {
			n.NumPixels[slot] += v
		}
		for tag, cnt := range c.TagSummary {
			n.TagSummary[tag] += cnt
		}
	}
}

// climb calls recomputeCounts on n and every ancestor up to and including
// the root.
func climb(n *Node) {
	for cur := n; cur != nil; cur = cur.Parent {
		recomputeCounts(cur)
	}
}

// SubtreeToggleCount returns how many toggles of tag exist in node's
// subtree (0 if none), reading the maintained TagSummary.
func (n *Node) SubtreeToggleCount(tag string) int {
	if n.TagSummary == nil {
		return 0
	}
	return n.TagSummary[tag]
}

// RootNode returns the tree's current root node (it may change across edits as
// the root splits, collapses, or grows a new level).
func (t *Tree) RootNode() *Node { return t.Root }

// TogglesBefore counts toggles of tagName strictly before idx (§4.3
// "membership test"), climbing from idx's line up through its ancestors
// instead of scanning every preceding line. scope bounds the climb: pass
// RootNode() to count across the whole tree, or a tag's TagRootPtr to stop
// as soon as every toggle is guaranteed accounted for (every subtree above
// a tag's root but outside its ancestor chain holds zero of that tag's
// toggles, by definition of TagRootPtr, so stopping there is always safe —
// and when idx's line isn't under scope at all, the climb simply reaches
// the real root instead, still giving the exact count).
func (t *Tree) TogglesBefore(idx Index, scope *Node, tagName string) int {
	leaf := idx.Line.leaf
	total := 0
	for _, l := range leaf.Lines {
		if l == idx.Line {
			break
		}
		total += lineToggleCount(l, tagName, -1)
	}
	total += lineToggleCount(idx.Line, tagName, idx.Offset)

	cur := leaf
	for cur != scope && cur.Parent != nil {
		childIdx := cur.Parent.childIndex(cur)
		for i := 0; i < childIdx; i++ {
			total += cur.Parent.Children[i].SubtreeToggleCount(tagName)
		}
		cur = cur.Parent
	}
	return total
}

// WalkToggles visits, in document order, every line within scope's subtree
// that can hold a toggle of tagName, descending only into children whose
// SubtreeToggleCount(tagName) is nonzero — an entire subtree proven empty
// of the tag is never touched (§4.4). visit returning false stops the walk.
func WalkToggles(scope *Node, tagName string, visit func(*Line) bool) {
	walkToggles(scope, tagName, visit)
}

func walkToggles(n *Node, tagName string, visit func(*Line) bool) bool {
	if n.SubtreeToggleCount(tagName) == 0 {
		return true
	}
	if n.IsLeaf() {
		for _, l := range n.Lines {
			if !visit(l) {
				return false
			}
		}
		return true
	}
	for _, c := range n.Children {
		if !walkToggles(c, tagName, visit) {
			return false
		}
	}
	return true
}

// WalkTogglesReverse is WalkToggles in reverse document order, for backward
// range searches (PrevRange).
func WalkTogglesReverse(scope *Node, tagName string, visit func(*Line) bool) {
	walkTogglesReverse(scope, tagName, visit)
}

func walkTogglesReverse(n *Node, tagName string, visit func(*Line) bool) bool {
	if n.SubtreeToggleCount(tagName) == 0 {
		return true
	}
	if n.IsLeaf() {
		for i := len(n.Lines) - 1; i >= 0; i-- {
			if !visit(n.Lines[i]) {
				return false
			}
		}
		return true
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if !walkTogglesReverse(n.Children[i], tagName, visit) {
			return false
		}
	}
	return true
}

// lineToggleCount counts toggles of tagName in l's segments, stopping once
// the running byte position passes upto (-1 means the whole line).
func lineToggleCount(l *Line, tagName string, upto int) int {
	pos := 0
	n := 0
	for _, seg := range l.Segments {
		if upto >= 0 && pos > upto {
			break
		}
		if (seg.Kind == segtype.KindToggleOn || seg.Kind == segtype.KindToggleOff) && seg.Tag == tagName {
			n++
		}
		pos += seg.Size()
	}
	return n
}
