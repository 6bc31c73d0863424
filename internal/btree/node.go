// Package btree implements the balanced tree of logical lines that backs
// the text store (spec.md §4.2, component C2). Interior nodes own child
// nodes; leaves own logical lines. Every node carries subtree-wide counters
// (line count, per-viewer pixel totals, per-tag toggle totals) so positional
// and pixel queries cost O(log N).
package btree

// MinChildren and MaxChildren bound a non-root node's child count
// (spec.md §3; values match the B-tree the spec was distilled from).
const (
	MinChildren = 6
	MaxChildren = 2 * MinChildren
)

// Node is either interior (Children populated, Lines nil) or a leaf
// (Lines populated, Children nil).
type Node struct {
	Parent *Node
	tree   *Tree

	Children []*Node
	Lines    []*Line

	NumChildren int
	NumLines    int
	// NumPixels holds the subtree's total pixel height per viewer slot.
	NumPixels []int
	// TagSummary records, for each tag with at least one toggle in this
	// subtree, how many toggles of that tag the subtree holds (§4.3). Every
	// node keeps the full count; entries are not dropped above a tag's root.
	TagSummary map[string]int
}

func newLeaf() *Node {
	return &Node{Lines: []*Line{}, TagSummary: map[string]int{}}
}

func newInterior() *Node {
	return &Node{Children: []*Node{}, TagSummary: map[string]int{}}
}

// withTree sets n's owning tree (and recursively its descendants') and
// returns n, for chaining at construction time.
func (n *Node) withTree(t *Tree) *Node {
	n.tree = t
	for _, c := range n.Children {
		c.withTree(t)
	}
	return n
}

// IsLeaf reports whether n owns lines directly.
func (n *Node) IsLeaf() bool { return n.Children == nil }

// firstLeaf descends to the leftmost leaf under n.
func (n *Node) firstLeaf() *Node {
	cur := n
	for !cur.IsLeaf() {
		cur = cur.Children[0]
	}
	return cur
}

// lastLeaf descends to the rightmost leaf under n.
func (n *Node) lastLeaf() *Node {
	cur := n
	for !cur.IsLeaf() {
		cur = cur.Children[len(cur.Children)-1]
	}
	return cur
}

// firstLine returns the first logical line under n.
func (n *Node) firstLine() *Line {
	leaf := n.firstLeaf()
	if len(leaf.Lines) == 0 {
		return nil
	}
	return leaf.Lines[0]
}

// childIndex returns the index of child among n's children, or -1.
func (n *Node) childIndex(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// lineIndex returns the index of line among n's lines, or -1.
func (n *Node) lineIndex(line *Line) int {
	for i, l := range n.Lines {
		if l == line {
			return i
		}
	}
	return -1
}

// ensureWidth grows NumPixels to at least width slots (new viewer slots
// default to zero and are filled in lazily by the caller).
func (n *Node) ensureWidth(width int) {
	for len(n.NumPixels) < width {
		n.NumPixels = append(n.NumPixels, 0)
	}
}
