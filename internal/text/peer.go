package text

import (
	"strconv"

	"github.com/mobanhawi/linotype/internal/btree"
)

// SetRange restricts a viewer to the logical-line window
// [startLine, endLine], the same way a tkText peer can be created with
// -startline/-endline to show only a slice of the shared B-tree (SPEC_FULL.md
// §4, grounded on tkTextBTree.c's per-peer pixelReference windowing). Pass
// endLine = -1 to lift the restriction. If the viewer's current top falls
// outside the new window, it is clamped to startLine.
func (tr *Tree) SetRange(v Viewer, startLine, endLine int) error {
	vs, ok := tr.viewers[v]
	if !ok {
		return &InvalidOption{Name: "viewer", Value: "unknown"}
	}
	if startLine < 0 {
		return &InvalidOption{Name: "startline", Value: strconv.Itoa(startLine)}
	}
	if endLine != -1 && endLine < startLine {
		return &InvalidOption{Name: "endline", Value: strconv.Itoa(endLine)}
	}

	vs.startLine = startLine
	vs.endLine = endLine

	top := tr.tree.LineNumber(vs.vp.Top().Line)
	if top < startLine || (endLine != -1 && top > endLine) {
		vs.vp.SetTop(btree.Index{Tree: tr.tree, Line: tr.tree.FindLine(startLine), Offset: 0})
	}
	return nil
}

// ViewBegin returns the first index this viewer is allowed to display: the
// real start of the buffer for an unrestricted viewer, or the start of its
// -startline window.
func (tr *Tree) ViewBegin(v Viewer) btree.Index {
	vs, ok := tr.viewers[v]
	if !ok || vs.startLine == 0 {
		return tr.Begin()
	}
	return btree.Index{Tree: tr.tree, Line: tr.tree.FindLine(vs.startLine), Offset: 0}
}

// ViewEnd returns the first index past this viewer's window: the real end
// of the buffer (the dummy last line) for an unrestricted viewer, or the
// start of the line immediately past its -endline window.
func (tr *Tree) ViewEnd(v Viewer) btree.Index {
	vs, ok := tr.viewers[v]
	if !ok || vs.endLine == -1 {
		return tr.End()
	}
	next := vs.endLine + 1
	if next >= tr.tree.LineCount() {
		return tr.End()
	}
	return btree.Index{Tree: tr.tree, Line: tr.tree.FindLine(next), Offset: 0}
}
