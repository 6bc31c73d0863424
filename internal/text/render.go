package text

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/layout"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

// Styles exposes the shared style table so a renderer can resolve a
// Chunk.Style handle into concrete Values without internal/text having to
// re-export its own copy of every attribute.
func (tr *Tree) Styles() *style.Table { return tr.styles }

// ActiveTagsAt is the exported form of activeTagsAt, for renderers that lay
// out chunks themselves rather than going through Layout below.
func (tr *Tree) ActiveTagsAt(idx btree.Index) []*tag.Tag { return tr.activeTagsAt(idx) }

// Layout lays out the single display line beginning at start under v's
// current options (§6 is silent on exposing C6 directly, but a renderer
// needs it to paint anything; viewport only tracks position, not pixels).
// ok is false if v is not a registered viewer.
func (tr *Tree) Layout(v Viewer, start btree.Index) (layout.DisplayLine, bool) {
	vs, ok := tr.viewers[v]
	if !ok {
		return layout.DisplayLine{}, false
	}
	return layout.Layout(tr.tree, tr.styles, vs.opts, start, tr.activeTagsAt), true
}

// VisibleLines lays out up to maxLines consecutive display lines starting
// at v's current viewport top, the sequence a terminal or widget renderer
// paints top-to-bottom for one frame.
func (tr *Tree) VisibleLines(v Viewer, maxLines int) []layout.DisplayLine {
	vs, ok := tr.viewers[v]
	if !ok {
		return nil
	}
	lines := make([]layout.DisplayLine, 0, maxLines)
	cursor := vs.vp.Top()
	for i := 0; i < maxLines; i++ {
		if vs.endLine != -1 && tr.tree.LineNumber(cursor.Line) > vs.endLine {
			break
		}
		dl := layout.Layout(tr.tree, tr.styles, vs.opts, cursor, tr.activeTagsAt)
		lines = append(lines, dl)
		if tr.tree.IsDummy(dl.NextLine) {
			break
		}
		cursor = btree.Index{Tree: tr.tree, Line: dl.NextLine, Offset: dl.NextOffset}
	}
	return lines
}
