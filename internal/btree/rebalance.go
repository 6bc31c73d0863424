package btree

// numItems returns a node's child count, whether it is an interior node's
// children or a leaf's lines.
func numItems(n *Node) int {
	if n.IsLeaf() {
		return len(n.Lines)
	}
	return len(n.Children)
}

// fixOverflow enforces the MaxChildren bound on node and every ancestor
// affected by a split, creating a new root if the existing root itself
// overflows (§4.2 "Rebalance after under/overflow", overflow case). track,
// if non-nil, is a line whose owning leaf the caller wants to recover after
// any splits; fixOverflow returns that leaf.
func fixOverflow(node *Node, track *Line) *Node {
	cur := node
	for {
		if numItems(cur) <= MaxChildren {
			climb(cur)
			break
		}
		sibling := splitNode(cur)
		parent := cur.Parent
		if parent == nil {
			newRoot := newInterior().withTree(cur.tree)
			newRoot.Children = []*Node{cur, sibling}
			cur.Parent = newRoot
			sibling.Parent = newRoot
			cur.tree.Root = newRoot
			recomputeCounts(cur)
			recomputeCounts(sibling)
			recomputeCounts(newRoot)
			break
		}
		idx := parent.childIndex(cur)
		children := make([]*Node, 0, len(parent.Children)+1)
		children = append(children, parent.Children[:idx+1]...)
		children = append(children, sibling)
		children = append(children, parent.Children[idx+1:]...)
		parent.Children = children
		recomputeCounts(cur)
		recomputeCounts(sibling)
		cur = parent
	}
	if track == nil {
		return node
	}
	return track.leaf
}

// splitNode divides an overflowing node in two, keeping MinChildren items
// on the left and moving the rest into a freshly linked right sibling
// (§4.2: "split the node, keeping MIN_CHILDREN on the left").
func splitNode(n *Node) *Node {
	sib := (&Node{}).withTree(n.tree)
	sib.Parent = n.Parent
	sib.TagSummary = map[string]int{}
	if n.IsLeaf() {
		sib.Lines = append([]*Line{}, n.Lines[MinChildren:]...)
		n.Lines = n.Lines[:MinChildren]
		for _, l := range sib.Lines {
			l.leaf = sib
		}
	} else {
		sib.Children = append([]*Node{}, n.Children[MinChildren:]...)
		n.Children = n.Children[:MinChildren]
		for _, c := range sib.Children {
			c.Parent = sib
		}
	}
	return sib
}

// fixUnderflow enforces the MinChildren bound on node and its ancestors
// after a deletion, merging with or redistributing from a sibling, and
// collapsing a root that is left with a single interior child (§4.2
// underflow case).
func fixUnderflow(node *Node) {
	cur := node
	for cur != nil {
		if cur.Parent == nil {
			// Root: collapse a lone interior child, otherwise nothing to do.
			for !cur.IsLeaf() && len(cur.Children) == 1 {
				only := cur.Children[0]
				*cur = *only
				cur.Parent = nil
				for _, c := range cur.Children {
					c.Parent = cur
				}
				for _, l := range cur.Lines {
					l.leaf = cur
				}
			}
			recomputeCounts(cur)
			return
		}
		if numItems(cur) >= MinChildren || numItems(cur) == 0 {
			recomputeCounts(cur)
			cur = cur.Parent
			continue
		}
		parent := cur.Parent
		idx := parent.childIndex(cur)
		var sib *Node
		mergeIntoLeft := false
		if idx > 0 {
			sib = parent.Children[idx-1]
			mergeIntoLeft = true
		} else {
			sib = parent.Children[idx+1]
		}

		if numItems(sib)+numItems(cur) <= MaxChildren {
			mergeNodes(parent, idx, sib, cur, mergeIntoLeft)
		} else {
			redistribute(sib, cur, mergeIntoLeft)
			recomputeCounts(sib)
			recomputeCounts(cur)
		}
		cur = parent
	}
}

// mergeNodes folds cur into sib (or vice versa) and removes the now-empty
// slot from parent's children.
func mergeNodes(parent *Node, curIdx int, sib, cur *Node, sibIsLeft bool) {
	left, right := sib, cur
	leftIdx := curIdx - 1
	if !sibIsLeft {
		left, right = cur, sib
		leftIdx = curIdx
	}
	if left.IsLeaf() {
		left.Lines = append(left.Lines, right.Lines...)
		for _, l := range right.Lines {
			l.leaf = left
		}
	} else {
		left.Children = append(left.Children, right.Children...)
		for _, c := range right.Children {
			c.Parent = left
		}
	}
	children := make([]*Node, 0, len(parent.Children)-1)
	children = append(children, parent.Children[:leftIdx+1]...)
	children = append(children, parent.Children[leftIdx+2:]...)
	parent.Children = children
	recomputeCounts(left)
}

// redistribute moves items from the larger sibling sib into the
// underflowing node cur, placing the midpoint as the new boundary (§4.2).
func redistribute(sib, cur *Node, sibIsLeft bool) {
	if sib.IsLeaf() {
		var total []*Line
		if sibIsLeft {
			total = append(append([]*Line{}, sib.Lines...), cur.Lines...)
			mid := len(total) / 2
			sib.Lines, cur.Lines = total[:mid], total[mid:]
		} else {
			total = append(append([]*Line{}, cur.Lines...), sib.Lines...)
			mid := len(total) / 2
			cur.Lines, sib.Lines = total[:mid], total[mid:]
		}
		for _, l := range sib.Lines {
			l.leaf = sib
		}
		for _, l := range cur.Lines {
			l.leaf = cur
		}
		return
	}

	var total []*Node
	if sibIsLeft {
		total = append(append([]*Node{}, sib.Children...), cur.Children...)
		mid := len(total) / 2
		sib.Children, cur.Children = total[:mid], total[mid:]
	} else {
		total = append(append([]*Node{}, cur.Children...), sib.Children...)
		mid := len(total) / 2
		cur.Children, sib.Children = total[:mid], total[mid:]
	}
	for _, c := range sib.Children {
		c.Parent = sib
	}
	for _, c := range cur.Children {
		c.Parent = cur
	}
}
