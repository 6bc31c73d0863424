// Package search implements ordered iteration over tag-toggle transitions
// (spec.md §4.4, component C5): "start_search(I1, I2, tag, dir)".
package search

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/segtype"
)

// Dir selects iteration direction.
type Dir int

const (
	Forward Dir = iota
	Backward
)

// Search is a one-shot iterator over toggle transitions in [from, to). It
// is invalidated by any structural edit to the tree; callers must re-issue
// Start after an insert or delete (§4.4: "not valid across structural
// edits").
type Search struct {
	tree *btree.Tree
	tag  string // "" matches every tag
	dir  Dir

	fromNum, toNum int

	// candidates holds, when tag != "", every line within [fromNum,toNum]
	// that can hold a toggle of tag, in dir order, pre-pruned via
	// btree.WalkToggles/WalkTogglesReverse so lines the tag never touches
	// are never visited (§4.4). No single tag's summary can prune an any-tag
	// search, so that case (tag == "") walks every line instead via
	// lineNum/limitNum.
	candidates []*btree.Line
	candIdx    int

	lineNum, limitNum int
	line              *btree.Line
	from, to          btree.Index
	hits              []hit
	pos               int
}

type hit struct {
	seg *segtype.Segment
	off int
}

// Start builds an iterator over every toggle of tag (or, if tag=="", every
// toggle of every tag) in the half-open range [from, to), walking in dir
// order (§4.4). In both directions a toggle sitting exactly at to's position
// is not reported and one exactly at from's position is; a Backward search
// starts at to, so the toggle it skips is the one at its starting position.
func Start(tree *btree.Tree, from, to btree.Index, tagName string, dir Dir) *Search {
	s := &Search{tree: tree, tag: tagName, dir: dir, from: from, to: to}
	s.fromNum = tree.LineNumber(from.Line)
	s.toNum = tree.LineNumber(to.Line)

	if dir == Forward {
		s.lineNum = s.fromNum
		s.limitNum = s.toNum
	} else {
		s.lineNum = s.toNum
		s.limitNum = s.fromNum
	}

	if tagName != "" {
		s.candidates = candidateLines(tree, tagName, s.fromNum, s.toNum, dir)
		if len(s.candidates) == 0 {
			return s
		}
		s.line = s.candidates[0]
		s.lineNum = tree.LineNumber(s.line)
		s.loadCurrent()
		return s
	}

	if dir == Forward {
		s.line = from.Line
	} else {
		s.line = to.Line
	}
	s.loadCurrent()
	return s
}

// candidateLines collects, in dir order, every line in [fromNum,toNum]
// whose subtree TagSummary proves can hold a toggle of tagName — skipping
// whole subtrees TagSummary proves hold none, rather than visiting every
// line in the range.
func candidateLines(tree *btree.Tree, tagName string, fromNum, toNum int, dir Dir) []*btree.Line {
	var out []*btree.Line
	visit := func(l *btree.Line) bool {
		n := tree.LineNumber(l)
		below, above := n < fromNum, n > toNum
		if dir == Forward {
			if below {
				return true
			}
			if above {
				return false
			}
		} else {
			if above {
				return true
			}
			if below {
				return false
			}
		}
		out = append(out, l)
		return true
	}
	if dir == Forward {
		btree.WalkToggles(tree.RootNode(), tagName, visit)
	} else {
		btree.WalkTogglesReverse(tree.RootNode(), tagName, visit)
	}
	return out
}

func (s *Search) matches(seg *segtype.Segment) bool {
	if seg.Kind != segtype.KindToggleOn && seg.Kind != segtype.KindToggleOff {
		return false
	}
	return s.tag == "" || seg.Tag == s.tag
}

// loadCurrent loads s.line's matching hits, honouring the from/to byte
// bounds whenever s.line is the range's first or last line.
func (s *Search) loadCurrent() {
	if s.dir == Forward {
		lowOff := 0
		if s.lineNum == s.fromNum {
			lowOff = s.from.Offset
		}
		s.loadLineForward(lowOff)
	} else {
		highOff := lineByteLen(s.line)
		if s.lineNum == s.toNum {
			highOff = s.to.Offset
		}
		s.loadLineBackward(highOff)
	}
}

func (s *Search) loadLineForward(lowOff int) {
	s.hits = s.hits[:0]
	pos := 0
	highOff := -1
	if s.lineNum == s.limitNum {
		highOff = s.to.Offset
	}
	for _, seg := range s.line.Segments {
		if highOff >= 0 && pos >= highOff {
			break
		}
		if pos >= lowOff && s.matches(seg) {
			s.hits = append(s.hits, hit{seg, pos})
		}
		pos += seg.Size()
	}
	s.pos = 0
}

func (s *Search) loadLineBackward(highOff int) {
	s.hits = s.hits[:0]
	pos := 0
	lowOff := 0
	if s.lineNum == s.limitNum {
		lowOff = s.from.Offset
	}
	var fwd []hit
	for _, seg := range s.line.Segments {
		if pos >= highOff {
			break
		}
		if pos >= lowOff && s.matches(seg) {
			fwd = append(fwd, hit{seg, pos})
		}
		pos += seg.Size()
	}
	for i := len(fwd) - 1; i >= 0; i-- {
		s.hits = append(s.hits, fwd[i])
	}
	s.pos = 0
}

// Next returns the next matching toggle and its index, or ok=false when the
// range is exhausted.
func (s *Search) Next() (idx btree.Index, seg *segtype.Segment, ok bool) {
	for {
		if s.pos < len(s.hits) {
			h := s.hits[s.pos]
			s.pos++
			return btree.Index{Tree: s.tree, Line: s.line, Offset: h.off}, h.seg, true
		}
		if s.tag != "" {
			s.candIdx++
			if s.candIdx >= len(s.candidates) {
				return btree.Index{}, nil, false
			}
			s.line = s.candidates[s.candIdx]
			s.lineNum = s.tree.LineNumber(s.line)
			s.loadCurrent()
			continue
		}
		if s.dir == Forward {
			if s.lineNum >= s.limitNum {
				return btree.Index{}, nil, false
			}
			s.lineNum++
			s.line = s.tree.FindLine(s.lineNum)
			s.loadLineForward(0)
		} else {
			if s.lineNum <= s.limitNum {
				return btree.Index{}, nil, false
			}
			s.lineNum--
			s.line = s.tree.FindLine(s.lineNum)
			s.loadLineBackward(lineByteLen(s.line))
		}
	}
}

func lineByteLen(l *btree.Line) int {
	return l.ByteLen()
}
