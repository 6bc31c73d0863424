package btree

import (
	"strings"

	"github.com/mobanhawi/linotype/internal/segtype"
)

// splitPoint locates the segment-slice index at which new content should be
// spliced for an insertion at byte offset within line, splitting whatever
// char segment straddles the offset and honouring zero-size segment gravity
// at exact boundaries (§4.2 step 1, §4.1 gravity rule).
func splitPoint(line *Line, offset int) int {
	pos := 0
	for i, seg := range line.Segments {
		sz := seg.Size()
		if offset < pos+sz {
			// offset falls inside this char segment or at its start (where
			// Split(0) leaves an empty left piece).
			left, right := seg.Split(offset - pos)
			newSegs := make([]*segtype.Segment, 0, len(line.Segments)+1)
			newSegs = append(newSegs, line.Segments[:i]...)
			newSegs = append(newSegs, left, right)
			newSegs = append(newSegs, line.Segments[i+1:]...)
			line.Segments = newSegs
			return i + 1
		}
		if offset == pos {
			return landingIndex(line, i)
		}
		pos += sz
	}
	return landingIndex(line, len(line.Segments))
}

// landingIndex refines a boundary index i (where accumulated byte offset
// equals the target) by advancing past zero-size left-gravity segments,
// which must remain attached to their left neighbour.
func landingIndex(line *Line, i int) int {
	for i < len(line.Segments) {
		seg := line.Segments[i]
		if seg.Size() != 0 {
			break
		}
		if seg.Gravity() != segtype.GravityLeft {
			break
		}
		i++
	}
	return i
}

type piece struct {
	text    string
	newline bool
}

// splitOnNewline cuts s into per-line pieces, each piece but possibly the
// last ending in '\n'.
func splitOnNewline(s string) []piece {
	var out []piece
	for len(s) > 0 {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			out = append(out, piece{text: s})
			break
		}
		out = append(out, piece{text: s[:idx+1], newline: true})
		s = s[idx+1:]
	}
	return out
}

// Insert splices string s into the tree at idx (§4.2). It returns the index
// immediately past the inserted text.
func (t *Tree) Insert(idx Index, s string) Index {
	if s == "" {
		return idx
	}
	idx = idx.Clamp()
	startLine := idx.Line
	startLineNum := t.LineNumber(startLine)

	curLine := startLine
	curIdx := splitPoint(curLine, idx.Offset)

	pieces := splitOnNewline(s)
	created := 0
	leaf := curLine.leaf

	if t.Dummy == curLine {
		// The permanent trailing line (§3, §9) is never written into
		// directly: detach a fresh empty dummy to trail whatever gets
		// spliced in, and let curLine carry the dummy's former content
		// (just "\n") forward as an ordinary line.
		newDummy := newTerminalLine()
		newDummy.ensurePixelWidth(t.NumViewerSlots, 0)
		leaf = insertLineAfter(leaf, curLine, newDummy, curLine)
		t.Dummy = newDummy
	}

	for _, p := range pieces {
		seg := segtype.NewChar([]byte(p.text))
		segs := make([]*segtype.Segment, 0, len(curLine.Segments)+1)
		segs = append(segs, curLine.Segments[:curIdx]...)
		segs = append(segs, seg)
		segs = append(segs, curLine.Segments[curIdx:]...)
		curLine.Segments = segs
		curIdx++

		if p.newline {
			tail := append([]*segtype.Segment{}, curLine.Segments[curIdx:]...)
			curLine.Segments = curLine.Segments[:curIdx]
			newLine := &Line{Segments: tail}
			newLine.ensurePixelWidth(t.NumViewerSlots, 0)
			for slot := range newLine.Pixels {
				newLine.Pixels[slot] = PixelEntry{Height: t.defaultHeightFor(slot)}
			}
			leaf = insertLineAfter(leaf, curLine, newLine, newLine)
			created++
			curLine = newLine
			curIdx = 0
		}
	}

	// Capture the end-of-insert byte offset before Cleanup, which may merge
	// segments and invalidate curIdx as a segment-slice index (merging never
	// changes cumulative byte content, so the offset itself stays valid).
	endOffset := byteOffsetOfSegment(curLine, curIdx)

	startLine.Segments = segtype.Cleanup(startLine.Segments)
	curLine.Segments = segtype.Cleanup(curLine.Segments)

	climb(curLine.leaf)
	if startLine.leaf != curLine.leaf {
		climb(startLine.leaf)
	}

	t.StateEpoch++
	if created > 0 {
		t.emit(EditEvent{Kind: EditInsertLines, FromLine: startLineNum, Count: created})
	} else {
		t.emit(EditEvent{Kind: EditInvalidate, FromLine: startLineNum, Count: 1})
	}

	return Index{Tree: t, Line: curLine, Offset: endOffset}
}

// byteOffsetOfSegment returns the byte offset at which segment index segIdx
// begins within line.
func byteOffsetOfSegment(line *Line, segIdx int) int {
	pos := 0
	for i := 0; i < segIdx && i < len(line.Segments); i++ {
		pos += line.Segments[i].Size()
	}
	return pos
}

// insertLineAfter splices newLine into after's leaf immediately following
// after, then fixes any resulting overflow. It returns the leaf track now
// lives in (after a split, the lines involved may end up in different
// leaves); track is usually newLine, except when the caller needs to keep
// following the line that stayed behind (e.g. detaching a fresh dummy).
func insertLineAfter(leaf *Node, after *Line, newLine *Line, track *Line) *Node {
	pos := leaf.lineIndex(after)
	lines := make([]*Line, 0, len(leaf.Lines)+1)
	lines = append(lines, leaf.Lines[:pos+1]...)
	lines = append(lines, newLine)
	lines = append(lines, leaf.Lines[pos+1:]...)
	leaf.Lines = lines
	newLine.leaf = leaf

	recomputeCounts(leaf)
	return fixOverflow(leaf, track)
}
