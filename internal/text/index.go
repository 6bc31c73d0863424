package text

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/index"
)

// ParseIndex resolves a symbolic index string (§4.5's "BASE (±COUNT UNIT |
// MODIFIER)*" grammar) against the tree, returning whether the result is
// cacheable (§6 "parse_index(string) -> index").
func (tr *Tree) ParseIndex(s string) (btree.Index, bool, error) {
	res, err := index.Parse(tr.tree, tr.tags, tr, s)
	if err != nil {
		return btree.Index{}, false, err
	}
	return res.Index, res.Cacheable, nil
}

// FormatIndex renders idx in the bit-exact "L.C" form (§6
// "format_index(index) -> string").
func (tr *Tree) FormatIndex(idx btree.Index) string { return index.Format(tr.tree, idx) }

// CompareIndex orders two indices (§6 "compare(i1, i2) -> Ordering").
func (tr *Tree) CompareIndex(a, b btree.Index) int { return index.Compare(a, b) }

// ForwardChars advances idx by n user-visible characters, crossing logical
// lines, saturating at end-of-tree (§6 "forward_chars").
func (tr *Tree) ForwardChars(idx btree.Index, n int) btree.Index {
	return index.ForwardChars(tr.tree, idx, n)
}

// BackwardChars retreats idx by n user-visible characters (§6
// "backward_chars").
func (tr *Tree) BackwardChars(idx btree.Index, n int) btree.Index {
	return index.BackwardChars(tr.tree, idx, n)
}

// CountChars counts user-visible characters in [i1, i2) (§6 "count_chars";
// law L3 requires this be additive over a chain of indices).
func (tr *Tree) CountChars(i1, i2 btree.Index) int { return index.CountChars(tr.tree, i1, i2) }

// ForwardIndices/BackwardIndices/CountIndices mirror the Chars family: the
// "indices" unit (raw position, as opposed to a user-visible character
// count) is not distinguished from "chars" here since marks and embedded
// objects are rare enough that the difference between the two units is not
// exercised by any component built on top of this package (see
// internal/index's own doc comment on the same simplification).
func (tr *Tree) ForwardIndices(idx btree.Index, n int) btree.Index { return tr.ForwardChars(idx, n) }
func (tr *Tree) BackwardIndices(idx btree.Index, n int) btree.Index {
	return tr.BackwardChars(idx, n)
}
func (tr *Tree) CountIndices(i1, i2 btree.Index) int { return tr.CountChars(i1, i2) }

// ForwardBytes advances idx by n raw bytes, crossing logical lines (§6
// "forward_bytes").
func (tr *Tree) ForwardBytes(idx btree.Index, n int) btree.Index {
	cur := idx
	for i := 0; i < n; i++ {
		if tr.tree.IsDummy(cur.Line) {
			return cur
		}
		if cur.Offset+1 >= cur.Line.ByteLen() {
			nextNum := tr.tree.LineNumber(cur.Line) + 1
			if nextNum >= tr.tree.LineCount() {
				return tr.tree.End()
			}
			cur = btree.Index{Tree: tr.tree, Line: tr.tree.FindLine(nextNum), Offset: 0}
			continue
		}
		cur.Offset++
	}
	return cur
}

// BackwardBytes retreats idx by n raw bytes (§6 "backward_bytes").
func (tr *Tree) BackwardBytes(idx btree.Index, n int) btree.Index {
	cur := idx
	for i := 0; i < n; i++ {
		if cur.Offset == 0 {
			lineNum := tr.tree.LineNumber(cur.Line)
			if lineNum == 0 {
				return cur
			}
			prev := tr.tree.FindLine(lineNum - 1)
			cur = btree.Index{Tree: tr.tree, Line: prev, Offset: prev.ByteLen() - 1}
			continue
		}
		cur.Offset--
	}
	return cur
}

// CountBytes counts raw bytes in [i1, i2) (§6 "count_bytes").
func (tr *Tree) CountBytes(i1, i2 btree.Index) int {
	if btree.Compare(i1, i2) >= 0 {
		return 0
	}
	n := 0
	cur := i1
	for btree.Compare(cur, i2) < 0 {
		next := tr.ForwardBytes(cur, 1)
		if btree.Compare(next, cur) <= 0 {
			break
		}
		cur = next
		n++
	}
	return n
}

// ForwardDisplayChars advances idx by n user-visible, non-elided
// characters, skipping over any elided run entirely (§6's "display-chars"
// unit; law L4 notes forward/backward only round-trip "whenever no elided
// region is crossed" — this is the variant that does cross them by
// design).
func (tr *Tree) ForwardDisplayChars(idx btree.Index, n int) btree.Index {
	cur := idx
	for i := 0; i < n; {
		next := tr.ForwardChars(cur, 1)
		if btree.Compare(next, cur) <= 0 {
			return cur
		}
		cur = next
		if !tr.IsElided(cur) {
			i++
		}
	}
	return cur
}

// BackwardDisplayChars retreats idx by n non-elided characters (§6
// "display-chars" unit, backward direction).
func (tr *Tree) BackwardDisplayChars(idx btree.Index, n int) btree.Index {
	cur := idx
	for i := 0; i < n; {
		prev := tr.BackwardChars(cur, 1)
		if btree.Compare(prev, cur) >= 0 {
			return cur
		}
		cur = prev
		if !tr.IsElided(cur) {
			i++
		}
	}
	return cur
}

// CountDisplayChars counts non-elided characters in [i1, i2) (§6
// "display-chars" unit, count direction).
func (tr *Tree) CountDisplayChars(i1, i2 btree.Index) int {
	if btree.Compare(i1, i2) >= 0 {
		return 0
	}
	n := 0
	cur := i1
	for btree.Compare(cur, i2) < 0 {
		next := tr.ForwardChars(cur, 1)
		if btree.Compare(next, cur) <= 0 {
			break
		}
		if !tr.IsElided(cur) {
			n++
		}
		cur = next
	}
	return n
}

// ForwardDisplayIndices/BackwardDisplayIndices/CountDisplayIndices mirror
// the DisplayChars family under the same indices-vs-chars simplification
// ForwardIndices documents.
func (tr *Tree) ForwardDisplayIndices(idx btree.Index, n int) btree.Index {
	return tr.ForwardDisplayChars(idx, n)
}
func (tr *Tree) BackwardDisplayIndices(idx btree.Index, n int) btree.Index {
	return tr.BackwardDisplayChars(idx, n)
}
func (tr *Tree) CountDisplayIndices(i1, i2 btree.Index) int { return tr.CountDisplayChars(i1, i2) }
