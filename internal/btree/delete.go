package btree

import "github.com/mobanhawi/linotype/internal/segtype"

// Delete removes the half-open byte range [i1, i2) (§4.2 "Delete byte
// range"). Segments whose delete hook refuses (durable marks) are relocated
// to the surviving boundary, on the side their gravity prefers.
func (t *Tree) Delete(i1, i2 Index) {
	i1, i2 = i1.Clamp(), i2.Clamp()
	if Compare(i1, i2) >= 0 {
		return
	}

	startLineNum := t.LineNumber(i1.Line)
	endLineNum := t.LineNumber(i2.Line)
	startLine := i1.Line
	endLine := i2.Line

	startIdx := splitPoint(startLine, i1.Offset)
	endIdx := splitPoint(endLine, i2.Offset)

	var left, right []*segtype.Segment
	collect := func(seg *segtype.Segment) {
		if !seg.DeleteHook(false) {
			t.emitSegmentDeleted(seg)
			return
		}
		if seg.Gravity() == segtype.GravityLeft {
			left = append(left, seg)
		} else {
			right = append(right, seg)
		}
	}

	if startLine == endLine {
		for _, seg := range startLine.Segments[startIdx:endIdx] {
			collect(seg)
		}
		merged := make([]*segtype.Segment, 0, len(startLine.Segments))
		merged = append(merged, startLine.Segments[:startIdx]...)
		merged = append(merged, left...)
		merged = append(merged, right...)
		merged = append(merged, startLine.Segments[endIdx:]...)
		startLine.Segments = segtype.Cleanup(merged)
		climb(startLine.leaf)
		t.StateEpoch++
		t.emit(EditEvent{Kind: EditInvalidate, FromLine: startLineNum, Count: 1})
		return
	}

	for _, seg := range startLine.Segments[startIdx:] {
		collect(seg)
	}

	var removed []*Line
	cur := t.FindLine(startLineNum + 1)
	for cur != endLine {
		next := t.FindLine(t.LineNumber(cur) + 1)
		for _, seg := range cur.Segments {
			collect(seg)
		}
		removed = append(removed, cur)
		cur = next
	}
	endIsDummy := t.IsDummy(endLine)
	if !endIsDummy {
		for _, seg := range endLine.Segments[:endIdx] {
			collect(seg)
		}
	}

	merged := make([]*segtype.Segment, 0, startIdx+len(left)+len(right)+(len(endLine.Segments)-endIdx))
	merged = append(merged, startLine.Segments[:startIdx]...)
	merged = append(merged, left...)
	merged = append(merged, right...)
	if !endIsDummy {
		// The permanent trailing line (§3, §9) is never folded into the
		// survivor and never unlinked — deleting "up to end" always leaves
		// it standing, empty, as the tree's last line.
		merged = append(merged, endLine.Segments[endIdx:]...)
		removed = append(removed, endLine)
	}
	startLine.Segments = segtype.Cleanup(merged)

	affected := map[*Node]bool{startLine.leaf: true}
	for _, l := range removed {
		leaf := l.leaf
		idx := leaf.lineIndex(l)
		leaf.Lines = append(leaf.Lines[:idx], leaf.Lines[idx+1:]...)
		l.leaf = nil
		affected[leaf] = true
	}

	for leaf := range affected {
		recomputeCounts(leaf)
	}
	for leaf := range affected {
		if leaf == startLine.leaf {
			fixUnderflow(leaf)
			continue
		}
		if numItems(leaf) == 0 {
			removeEmptyLeaf(leaf)
		} else {
			fixUnderflow(leaf)
		}
	}

	t.StateEpoch++
	t.emit(EditEvent{Kind: EditDeleteLines, FromLine: startLineNum, Count: endLineNum - startLineNum})
}

// removeEmptyLeaf unlinks a leaf (and any ancestor left with zero children)
// from the tree, then rebalances from the lowest surviving ancestor (§4.2:
// "While any ancestor node reaches zero children, remove it and recurse
// upward").
func removeEmptyLeaf(leaf *Node) {
	parent := leaf.Parent
	if parent == nil {
		return
	}
	idx := parent.childIndex(leaf)
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	cur := parent
	for cur.Parent != nil && numItems(cur) == 0 {
		p := cur.Parent
		pidx := p.childIndex(cur)
		p.Children = append(p.Children[:pidx], p.Children[pidx+1:]...)
		cur = p
	}
	fixUnderflow(cur)
}
