// Package style hash-conses resolved display attributes so that display
// lines sharing the same active tags share one allocation (spec.md §4.6,
// §5: "Style: hash-consed resolved display attributes... get_style interns,
// free_style releases").
package style

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/mobanhawi/linotype/internal/tag"
)

// Values is the resolved, display-ready attribute set a chunk points to.
type Values struct {
	Foreground string
	Background string
	Bold       bool
	Italic     bool
	Underline  bool
	Elide      bool
}

type entry struct {
	values   Values
	refCount int
}

// Table interns Values by content hash, so repeated resolutions of the
// same tag combination (the common case across a long run of uniformly
// tagged text) share one Values allocation and refcount rather than
// allocating per chunk.
type Table struct {
	entries map[uint64]*entry
}

// NewTable builds an empty style table, one per tree (shared by every peer
// viewer, §5: "the style table is shared across all peer viewers").
func NewTable() *Table {
	return &Table{entries: map[uint64]*entry{}}
}

// digest produces a stable hash of v's fields; field order is fixed so the
// same resolved attributes always hash identically.
func digest(v Values) uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte(v.Foreground))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(v.Background))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(strconv.FormatBool(v.Bold)))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(strconv.FormatBool(v.Italic)))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(strconv.FormatBool(v.Underline)))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(strconv.FormatBool(v.Elide)))
	return h.Sum64()
}

// Handle identifies an interned Values entry within its owning Table.
type Handle uint64

// GetStyle resolves active (lowest-to-highest priority) into a hash-consed
// Values entry, interning it on first use and bumping its refcount
// otherwise (§4.6 "get_style interns").
func (t *Table) GetStyle(active []*tag.Tag) (Handle, Values) {
	attrs := tag.Resolve(active)
	v := Values{Foreground: attrs.Foreground, Background: attrs.Background}
	if attrs.Bold != nil {
		v.Bold = *attrs.Bold
	}
	if attrs.Italic != nil {
		v.Italic = *attrs.Italic
	}
	if attrs.Underline != nil {
		v.Underline = *attrs.Underline
	}
	if attrs.Elide != nil {
		v.Elide = *attrs.Elide
	}

	h := Handle(digest(v))
	e, ok := t.entries[uint64(h)]
	if !ok {
		e = &entry{values: v}
		t.entries[uint64(h)] = e
	}
	e.refCount++
	return h, e.values
}

// FreeStyle releases a reference acquired by GetStyle, evicting the entry
// once its refcount reaches zero (§4.6 "free_style releases").
func (t *Table) FreeStyle(h Handle) {
	e, ok := t.entries[uint64(h)]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(t.entries, uint64(h))
	}
}

// Lookup returns the Values for a handle still resident in the table.
func (t *Table) Lookup(h Handle) (Values, bool) {
	e, ok := t.entries[uint64(h)]
	if !ok {
		return Values{}, false
	}
	return e.values, true
}

// Len reports how many distinct styles are currently interned (test/debug
// introspection).
func (t *Table) Len() int { return len(t.entries) }
