package btree

import "github.com/mobanhawi/linotype/internal/segtype"

// Tree returns the tree a line belongs to.
func (l *Line) Tree() *Tree { return l.leaf.tree }

// ClimbFrom recomputes subtree counters from l's leaf up to the root. Call
// after mutating a line's Segments directly (e.g. splicing in a tag toggle)
// without going through Insert/Delete.
func (t *Tree) ClimbFrom(l *Line) { climb(l.leaf) }

// InsertSegment splices a single zero-size segment (a tag toggle or mark;
// never a char segment — use Insert for text) at idx, honouring the same
// gravity-landing and dummy-detach rules as Insert (§4.1, §4.3, §9). It
// returns the index immediately past the inserted segment.
func (t *Tree) InsertSegment(idx Index, seg *segtype.Segment) Index {
	idx = idx.Clamp()
	line := idx.Line
	at := splitPoint(line, idx.Offset)

	if t.Dummy == line {
		newDummy := newTerminalLine()
		newDummy.ensurePixelWidth(t.NumViewerSlots, 0)
		insertLineAfter(line.leaf, line, newDummy, line)
		t.Dummy = newDummy
	}

	segs := make([]*segtype.Segment, 0, len(line.Segments)+1)
	segs = append(segs, line.Segments[:at]...)
	segs = append(segs, seg)
	segs = append(segs, line.Segments[at:]...)
	line.Segments = segtype.Cleanup(segs)

	climb(line.leaf)
	t.StateEpoch++
	t.emit(EditEvent{Kind: EditInvalidate, FromLine: t.LineNumber(line), Count: 1})

	return Index{Tree: t, Line: line, Offset: idx.Offset}
}
