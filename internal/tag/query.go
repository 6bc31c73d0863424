package tag

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/segtype"
)

// IsTagged reports whether t is in effect at idx, by walking from idx's
// line toward t's tag root, summing toggles of t strictly before idx via
// the subtree counters TagSummary maintains (§4.3 "membership test": an
// odd toggle count means t is on). This costs O(log N) — a climb bounded
// by TagRootPtr — rather than a scan of every preceding line.
func IsTagged(tree *btree.Tree, t *Tag, idx btree.Index) bool {
	if t.ToggleCount == 0 {
		return false
	}
	count := tree.TogglesBefore(idx, tagRootOrFull(tree, t), t.Name)
	return count%2 == 1
}

// TagsAt returns every tag active at idx, lowest priority first, suitable
// for passing straight to Resolve (§3 "tag lookup at an index").
func TagsAt(reg *Registry, tree *btree.Tree, idx btree.Index) []*Tag {
	var active []*Tag
	for _, t := range reg.Ordered() {
		if IsTagged(tree, t, idx) {
			active = append(active, t)
		}
	}
	return active
}

// tagRootOrFull returns t's TagRootPtr, the narrowest subtree guaranteed to
// hold every one of t's toggles, falling back to the whole tree for a tag
// whose root hasn't been computed yet (e.g. zero toggles).
func tagRootOrFull(tree *btree.Tree, t *Tag) *btree.Node {
	if t.TagRootPtr != nil {
		return t.TagRootPtr
	}
	return tree.RootNode()
}

// NextRange finds the next [start,end) range tagged with t starting at or
// after "from" and before "limit". The bool is false when no such range
// exists in-bounds (SPEC_FULL.md §4's supplemented not-found contract). It
// walks via WalkToggles (§4.4), which descends from t's tag root and skips
// every subtree TagSummary proves holds none of t's toggles, rather than
// visiting every line between "from" and "limit".
func NextRange(tree *btree.Tree, t *Tag, from, limit btree.Index) (btree.Index, btree.Index, bool) {
	if t.ToggleCount == 0 {
		return btree.Index{}, btree.Index{}, false
	}
	lineNum := tree.LineNumber(from.Line)
	limitLineNum := tree.LineNumber(limit.Line)

	var start *btree.Index
	var rs, re btree.Index
	ok := false
	btree.WalkToggles(tagRootOrFull(tree, t), t.Name, func(line *btree.Line) bool {
		n := tree.LineNumber(line)
		if n < lineNum {
			return true
		}
		if n > limitLineNum {
			return false
		}
		lowOff := 0
		if n == lineNum {
			lowOff = from.Offset
		}
		highOff := -1
		if n == limitLineNum {
			highOff = limit.Offset
		}
		pos := 0
		for _, seg := range line.Segments {
			if highOff >= 0 && pos >= highOff {
				break
			}
			if pos >= lowOff && (seg.Kind == segtype.KindToggleOn || seg.Kind == segtype.KindToggleOff) && seg.Tag == t.Name {
				idx := btree.Index{Tree: tree, Line: line, Offset: pos}
				if start == nil {
					if seg.Kind == segtype.KindToggleOn {
						start = &idx
					}
					// a stray ToggleOff before any ToggleOn in range is ignored
				} else if seg.Kind == segtype.KindToggleOff {
					rs, re, ok = *start, idx, true
					return false
				}
			}
			pos += seg.Size()
		}
		return true
	})
	return rs, re, ok
}

// PrevRange finds the tagged range whose end lies before "from" (a toggle
// exactly at from's offset is not considered), searching backward to
// "limit". Bool is false on no match. It walks via WalkTogglesReverse for
// the same subtree-pruning reason as NextRange.
func PrevRange(tree *btree.Tree, t *Tag, from, limit btree.Index) (btree.Index, btree.Index, bool) {
	if t.ToggleCount == 0 {
		return btree.Index{}, btree.Index{}, false
	}
	lineNum := tree.LineNumber(from.Line)
	limitLineNum := tree.LineNumber(limit.Line)

	var end *btree.Index
	var rs, re btree.Index
	ok := false
	btree.WalkTogglesReverse(tagRootOrFull(tree, t), t.Name, func(line *btree.Line) bool {
		n := tree.LineNumber(line)
		if n > lineNum {
			return true
		}
		if n < limitLineNum {
			return false
		}
		highOff := -1
		if n == lineNum {
			highOff = from.Offset
		}
		lowOff := 0
		if n == limitLineNum {
			lowOff = limit.Offset
		}
		// walk the line backward by scanning forward and recording offsets,
		// then iterate that list in reverse (segments carry no back-links).
		type hit struct {
			seg *segtype.Segment
			pos int
		}
		var hits []hit
		pos := 0
		for _, seg := range line.Segments {
			if highOff >= 0 && pos >= highOff {
				break
			}
			if pos >= lowOff && (seg.Kind == segtype.KindToggleOn || seg.Kind == segtype.KindToggleOff) && seg.Tag == t.Name {
				hits = append(hits, hit{seg, pos})
			}
			pos += seg.Size()
		}
		for i := len(hits) - 1; i >= 0; i-- {
			h := hits[i]
			idx := btree.Index{Tree: tree, Line: line, Offset: h.pos}
			if end == nil {
				if h.seg.Kind == segtype.KindToggleOff {
					end = &idx
				}
			} else if h.seg.Kind == segtype.KindToggleOn {
				rs, re, ok = idx, *end, true
				return false
			}
		}
		return true
	})
	return rs, re, ok
}

// Ranges returns every [start,end) range tagged with t across the whole
// tree, in order.
func Ranges(tree *btree.Tree, t *Tag) [][2]btree.Index {
	var out [][2]btree.Index
	cur := tree.Begin()
	end := tree.End()
	for {
		s, e, ok := NextRange(tree, t, cur, end)
		if !ok {
			break
		}
		out = append(out, [2]btree.Index{s, e})
		cur = e
	}
	return out
}

// ClearAll removes every toggle of t from the tree, leaving the tag
// registered but unapplied anywhere (used by Registry.Delete's caller
// before the registry entry itself is dropped).
func ClearAll(tree *btree.Tree, t *Tag) {
	Remove(tree, t, tree.Begin(), tree.End())
}
