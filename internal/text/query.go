package text

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/tag"
)

// GetString returns the text in [i1, i2) (§6 "get_string(index1, index2)").
func (tr *Tree) GetString(i1, i2 btree.Index) string {
	return tr.tree.GetString(i1, i2)
}

// TagsAt returns every tag name active at idx, lowest priority first (§6
// "tags_at(index) -> [tag]").
func (tr *Tree) TagsAt(idx btree.Index) []string {
	active := tag.TagsAt(tr.tags, tr.tree, idx)
	names := make([]string, len(active))
	for i, t := range active {
		names[i] = t.Name
	}
	return names
}

// IsElided reports whether idx falls under an elide-true tag, the
// elide-attribute-setting tag of highest priority winning (§6
// "is_elided(index) -> bool").
func (tr *Tree) IsElided(idx btree.Index) bool {
	active := tag.TagsAt(tr.tags, tr.tree, idx)
	for i := len(active) - 1; i >= 0; i-- {
		if active[i].Attrs.Elide != nil {
			return *active[i].Attrs.Elide
		}
	}
	return false
}

// Bbox returns idx's bounding box in v's viewport-relative pixels (§6
// "bbox(index) -> option<(x,y,w,h)>").
func (tr *Tree) Bbox(v Viewer, idx btree.Index) (x, y, w, h int, ok bool) {
	vs, exists := tr.viewers[v]
	if !exists {
		return 0, 0, 0, 0, false
	}
	return vs.vp.Bbox(idx)
}

// DlineInfo is Bbox extended with the display line's baseline (§6
// "dline_info(index) -> option<(x,y,w,h,baseline)>").
func (tr *Tree) DlineInfo(v Viewer, idx btree.Index) (x, y, w, h, baseline int, ok bool) {
	vs, exists := tr.viewers[v]
	if !exists {
		return 0, 0, 0, 0, 0, false
	}
	return vs.vp.DlineInfo(idx)
}
