package text

import (
	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/tag"
)

// TagCreate returns the named tag, creating it at the top priority if it
// does not exist yet (§6 "tag_create(name)").
func (tr *Tree) TagCreate(name string) *tag.Tag {
	return tr.tags.Create(name)
}

// TagConfigure sets a tag's display attributes (§6 "tag_configure(name,
// attributes)"). Every viewer's cached pixel heights are invalidated since
// an attribute change (elide in particular) can change every viewer's
// layout.
func (tr *Tree) TagConfigure(name string, attrs tag.Attrs) error {
	t, err := tr.tags.MustLookup(name)
	if err != nil {
		return err
	}
	t.Attrs = attrs
	tr.upd.InvalidateAll()
	return nil
}

// TagAdd applies name over [i1, i2) (§6 "tag_add(name, i1, i2)").
func (tr *Tree) TagAdd(name string, i1, i2 btree.Index) error {
	t, err := tr.tags.MustLookup(name)
	if err != nil {
		return err
	}
	tag.Add(tr.tree, t, i1, i2)
	tr.upd.InvalidateAll()
	return nil
}

// TagRemove strips name from [i1, i2) (§6 "tag_remove(name, i1, i2)").
func (tr *Tree) TagRemove(name string, i1, i2 btree.Index) error {
	t, err := tr.tags.MustLookup(name)
	if err != nil {
		return err
	}
	tag.Remove(tr.tree, t, i1, i2)
	tr.upd.InvalidateAll()
	return nil
}

// TagDelete removes every toggle of name and its registry entry (§6
// "tag_delete(name)").
func (tr *Tree) TagDelete(name string) error {
	t, err := tr.tags.MustLookup(name)
	if err != nil {
		return err
	}
	tag.ClearAll(tr.tree, t)
	tr.tags.Delete(name)
	delete(tr.bindings, name)
	tr.upd.InvalidateAll()
	return nil
}

// TagRanges returns every [start,end) range tagged with name (§6
// "tag_ranges(name) -> [(i,i)]").
func (tr *Tree) TagRanges(name string) ([][2]btree.Index, error) {
	t, err := tr.tags.MustLookup(name)
	if err != nil {
		return nil, err
	}
	return tag.Ranges(tr.tree, t), nil
}

// TagNextRange finds the next range of name at or after from, before limit
// (§6 "tag_nextrange(name, from, to)").
func (tr *Tree) TagNextRange(name string, from, limit btree.Index) (btree.Index, btree.Index, bool, error) {
	t, err := tr.tags.MustLookup(name)
	if err != nil {
		return btree.Index{}, btree.Index{}, false, err
	}
	s, e, ok := tag.NextRange(tr.tree, t, from, limit)
	return s, e, ok, nil
}

// TagPrevRange finds the range of name ending at or before from, searching
// back to limit (§6 "tag_prevrange(...)").
func (tr *Tree) TagPrevRange(name string, from, limit btree.Index) (btree.Index, btree.Index, bool, error) {
	t, err := tr.tags.MustLookup(name)
	if err != nil {
		return btree.Index{}, btree.Index{}, false, err
	}
	s, e, ok := tag.PrevRange(tr.tree, t, from, limit)
	return s, e, ok, nil
}

// TagRaise moves name's priority just above "above" (§6 "tag_raise(name,
// ?above)").
func (tr *Tree) TagRaise(name, above string) error { return tr.tags.Raise(name, above) }

// TagLower moves name's priority just below "below" (§6 "tag_lower(name,
// ?below)").
func (tr *Tree) TagLower(name, below string) error { return tr.tags.Lower(name, below) }

// TagBind registers command to fire on event for every char tagged with
// name (§6 "tag_bind(name, event_spec, command)").
func (tr *Tree) TagBind(name, event string, command func(tags []string)) error {
	if _, err := tr.tags.MustLookup(name); err != nil {
		return err
	}
	tr.bindings[name] = append(tr.bindings[name], binding{event: event, command: command})
	return nil
}

// DispatchEvent fires every binding registered for event on a tag active at
// idx, passing the full list of active tag names the way a real binding
// dispatch does (§6 "invoked... with a list of tag names"). A panicking
// command is recovered and surfaced on Errors() rather than propagating
// into the caller that triggered the event (§7).
func (tr *Tree) DispatchEvent(event string, idx btree.Index) {
	active := tag.TagsAt(tr.tags, tr.tree, idx)
	names := make([]string, len(active))
	for i, t := range active {
		names[i] = t.Name
	}

	for _, t := range active {
		for _, b := range tr.bindings[t.Name] {
			if b.event != event {
				continue
			}
			cmd := b.command
			tr.runGuarded("binding:"+event, func() { cmd(names) })
		}
	}
}
