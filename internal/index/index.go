// Package index implements the symbolic index grammar and arithmetic of
// spec.md §4.5 (component C4): "BASE (±COUNT UNIT | MODIFIER)*" parsed
// against a live tree, plus forward/backward movement by chars, indices,
// and lines.
package index

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/tag"
)

// ErrBadIndex reports a string that does not match the index grammar, or a
// base that references an undefined mark/tag/embedded object (spec.md §7).
type ErrBadIndex struct{ Input string }

func (e *ErrBadIndex) Error() string { return fmt.Sprintf("index: bad index %q", e.Input) }

// ErrNoSuchRange reports tag.first/tag.last on a tag with no applied range.
type ErrNoSuchRange struct{ Tag string }

func (e *ErrNoSuchRange) Error() string { return fmt.Sprintf("index: tag %q has no range", e.Tag) }

// Marks resolves a named mark to its current tree position; it is supplied
// by the owning text.Tree facade so this package stays free of a direct
// dependency on mark storage.
type Marks interface {
	Lookup(name string) (btree.Index, bool)
}

// Resolved is a parsed index plus its cacheability (§4.5: "cacheable iff
// resolution did not depend on @x,y, a mark, or an embedded-object name").
type Resolved struct {
	Index     btree.Index
	Cacheable bool
}

// Parse resolves a symbolic index string against tree, using reg for
// tag.first/.last bases and marks for named-mark bases. Modifiers apply
// left-to-right (§4.5).
func Parse(tree *btree.Tree, reg *tag.Registry, marks Marks, s string) (Resolved, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Resolved{}, &ErrBadIndex{Input: s}
	}
	fields := strings.Fields(s)
	base := fields[0]
	mods := fields[1:]

	idx, cacheable, err := parseBase(tree, reg, marks, base)
	if err != nil {
		return Resolved{}, err
	}

	for i := 0; i < len(mods); i++ {
		tok := mods[i]
		switch {
		case tok == "linestart":
			idx = btree.Index{Tree: tree, Line: idx.Line, Offset: 0}
		case tok == "lineend":
			idx = btree.Index{Tree: tree, Line: idx.Line, Offset: idx.Line.ByteLen() - 1}
		case tok == "wordstart":
			idx = wordBoundary(tree, idx, true)
		case tok == "wordend":
			idx = wordBoundary(tree, idx, false)
		case tok == "display" || tok == "any":
			// Parse resolves one index against a tree shared by every viewer
			// (§6 add_viewer/peer model); a display line only exists relative
			// to one viewer's wrap width/tabs/justify (internal/layout.Options),
			// so there is no single "the display" to wrap linestart/lineend or
			// a count of display lines against at this viewer-agnostic layer
			// the way a single-widget tkText can. The qualifier is accepted and
			// consumed here (so "display -1 lines" still parses and a count
			// still applies) but folds back to logical-unit movement — a
			// deliberate simplification recorded in DESIGN.md's "display/any
			// qualifiers" entry, not an oversight.
		case strings.HasPrefix(tok, "+") || strings.HasPrefix(tok, "-"):
			n, unit, consumed, err := parseCountModifier(mods, i)
			if err != nil {
				return Resolved{}, err
			}
			idx = applyCount(tree, idx, n, unit)
			i += consumed - 1
		default:
			return Resolved{}, &ErrBadIndex{Input: tok}
		}
	}
	return Resolved{Index: idx.Clamp(), Cacheable: cacheable}, nil
}

// parseCountModifier reads "+N" and its following "unit" field (two
// whitespace-separated tokens, per §4.5's grammar), returning how many mod
// tokens it consumed (1 if the count has no trailing unit, 2 otherwise).
func parseCountModifier(mods []string, i int) (n int, unit string, consumed int, err error) {
	tok := mods[i]
	sign := 1
	if strings.HasPrefix(tok, "-") {
		sign = -1
	}
	count, err := strconv.Atoi(tok[1:])
	if err != nil {
		return 0, "", 0, &ErrBadIndex{Input: tok}
	}
	count *= sign
	if i+1 < len(mods) {
		switch mods[i+1] {
		case "chars", "indices", "lines":
			return count, mods[i+1], 2, nil
		}
	}
	return count, "chars", 1, nil
}

func applyCount(tree *btree.Tree, idx btree.Index, n int, unit string) btree.Index {
	switch unit {
	case "lines":
		return moveLines(tree, idx, n)
	default: // chars and indices are not distinguished (marks/embeds are rare)
		return walkChars(tree, idx, n)
	}
}

func moveLines(tree *btree.Tree, idx btree.Index, n int) btree.Index {
	lineNum := tree.LineNumber(idx.Line) + n
	if lineNum < 0 {
		lineNum = 0
	}
	if lineNum >= tree.LineCount() {
		lineNum = tree.LineCount() - 1
	}
	line := tree.FindLine(lineNum)
	off := idx.Offset
	if off > line.ByteLen()-1 {
		off = line.ByteLen() - 1
	}
	return btree.Index{Tree: tree, Line: line, Offset: off}
}

func parseBase(tree *btree.Tree, reg *tag.Registry, marks Marks, base string) (btree.Index, bool, error) {
	switch {
	case base == "end":
		return tree.End(), true, nil
	case strings.Contains(base, "."):
		parts := strings.SplitN(base, ".", 2)
		lineStr, charStr := parts[0], parts[1]

		if strings.HasSuffix(base, ".first") || strings.HasSuffix(base, ".last") {
			tagName := strings.TrimSuffix(strings.TrimSuffix(base, ".first"), ".last")
			t, ok := reg.Lookup(tagName)
			if !ok {
				return btree.Index{}, false, &ErrBadIndex{Input: base}
			}
			ranges := tag.Ranges(tree, t)
			if len(ranges) == 0 {
				return btree.Index{}, false, &ErrNoSuchRange{Tag: tagName}
			}
			if strings.HasSuffix(base, ".first") {
				return ranges[0][0], true, nil
			}
			return ranges[len(ranges)-1][1], true, nil
		}

		lineNum, err := strconv.Atoi(lineStr)
		if err != nil {
			return btree.Index{}, false, &ErrBadIndex{Input: base}
		}
		line := tree.FindLine(clampLine(tree, lineNum-1)) // 1-based per §6
		if charStr == "end" {
			return btree.Index{Tree: tree, Line: line, Offset: line.ByteLen() - 1}, true, nil
		}
		charNum, err := strconv.Atoi(charStr)
		if err != nil {
			return btree.Index{}, false, &ErrBadIndex{Input: base}
		}
		off := charOffsetToByteOffset(line, charNum)
		return btree.Index{Tree: tree, Line: line, Offset: off}, true, nil
	default:
		if m, ok := marks.Lookup(base); ok {
			return m, false, nil
		}
		return btree.Index{}, false, &ErrBadIndex{Input: base}
	}
}

func clampLine(tree *btree.Tree, n int) int {
	if n < 0 {
		return 0
	}
	if n >= tree.LineCount() {
		return tree.LineCount() - 1
	}
	return n
}

// charOffsetToByteOffset converts a 0-based user-visible character count
// into a byte offset within line, saturating at the line length.
func charOffsetToByteOffset(line *btree.Line, charNum int) int {
	if charNum <= 0 {
		return 0
	}
	b := line.Bytes()
	n := 0
	for i := range string(b) {
		if n == charNum {
			return i
		}
		n++
	}
	return len(b)
}

func byteOffsetToCharOffset(line *btree.Line, byteOff int) int {
	b := line.Bytes()
	n := 0
	for i := range string(b) {
		if i >= byteOff {
			break
		}
		n++
	}
	return n
}

// Format renders idx in the bit-exact "L.C" form (§6): L is 1-based, C is
// 0-based and counts characters, not bytes.
func Format(tree *btree.Tree, idx btree.Index) string {
	lineNum := tree.LineNumber(idx.Line)
	charNum := byteOffsetToCharOffset(idx.Line, idx.Offset)
	return fmt.Sprintf("%d.%d", lineNum+1, charNum)
}

// Compare orders two indices (§6 "compare").
func Compare(a, b btree.Index) int { return btree.Compare(a, b) }

// wordBoundary locates the uax29 word-segment boundary containing idx,
// using the clipperhouse/uax29/v2 word segmenter (grounded on the "display
// wordstart/wordend" modifier of §4.5, which defines a word the way a
// Unicode-aware editor would rather than by ASCII whitespace).
func wordBoundary(tree *btree.Tree, idx btree.Index, start bool) btree.Index {
	b := idx.Line.Bytes()
	seg := words.NewSegmenter(b)
	bestStart, bestEnd := 0, len(b)
	pos := 0
	for seg.Next() {
		tok := seg.Value()
		s, e := pos, pos+len(tok)
		if idx.Offset >= s && idx.Offset < e {
			bestStart, bestEnd = s, e
			break
		}
		pos = e
	}
	if start {
		return btree.Index{Tree: tree, Line: idx.Line, Offset: bestStart}
	}
	return btree.Index{Tree: tree, Line: idx.Line, Offset: bestEnd}
}

// ForwardChars advances idx by n user-visible characters (rune count),
// crossing logical lines, saturating at end-of-tree (§6 "forward_chars").
func ForwardChars(tree *btree.Tree, idx btree.Index, n int) btree.Index {
	return walkChars(tree, idx, n)
}

// BackwardChars retreats idx by n user-visible characters.
func BackwardChars(tree *btree.Tree, idx btree.Index, n int) btree.Index {
	return walkChars(tree, idx, -n)
}

func walkChars(tree *btree.Tree, idx btree.Index, n int) btree.Index {
	cur := idx
	for n > 0 {
		if tree.IsDummy(cur.Line) {
			return cur
		}
		b := cur.Line.Bytes()
		if cur.Offset >= len(b)-1 {
			// stepping past the line's trailing '\n' counts as one char and
			// lands at the start of the next line.
			nextNum := tree.LineNumber(cur.Line) + 1
			if nextNum >= tree.LineCount() {
				return tree.End()
			}
			cur = btree.Index{Tree: tree, Line: tree.FindLine(nextNum), Offset: 0}
			n--
			continue
		}
		_, size := utf8.DecodeRune(b[cur.Offset:])
		if size == 0 {
			return cur
		}
		cur.Offset += size
		n--
	}
	for n < 0 {
		if cur.Offset == 0 {
			lineNum := tree.LineNumber(cur.Line)
			if lineNum == 0 {
				return cur
			}
			prev := tree.FindLine(lineNum - 1)
			cur = btree.Index{Tree: tree, Line: prev, Offset: prev.ByteLen() - 1}
			n++
			continue
		}
		_, size := utf8.DecodeLastRune(cur.Line.Bytes()[:cur.Offset])
		cur.Offset -= size
		n++
	}
	return cur
}

// CountChars counts user-visible characters in [i1, i2) (§6 "count_chars",
// law L3: additive over a chain of indices).
func CountChars(tree *btree.Tree, i1, i2 btree.Index) int {
	if btree.Compare(i1, i2) >= 0 {
		return 0
	}
	n := 0
	cur := i1
	for btree.Compare(cur, i2) < 0 {
		next := walkChars(tree, cur, 1)
		if btree.Compare(next, cur) <= 0 {
			break
		}
		cur = next
		n++
	}
	return n
}
