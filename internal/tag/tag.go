// Package tag implements the named-attribute overlay: a dense priority
// order over tags, toggle segments embedded in the B-tree, and a
// subtree-root cache per tag for fast range queries (spec.md §4.3,
// component C3).
package tag

import (
	"fmt"

	"github.com/mobanhawi/linotype/internal/btree"
)

// Attrs is the resolved set of display attributes a tag can override. An
// empty string or nil pointer field means "not set by this tag", so priority
// resolution (§3) can fall through to a lower-priority tag or the
// per-attribute default.
type Attrs struct {
	Foreground string
	Background string
	Bold       *bool
	Italic     *bool
	Underline  *bool
	Elide      *bool
}

// Tag is a named attribute set applied over byte ranges (spec.md §3).
type Tag struct {
	Name        string
	Priority    int
	ToggleCount int
	TagRootPtr  *btree.Node
	Attrs       Attrs
}

// Registry owns every tag of one tree, in priority order (index ==
// priority, spec.md §3's "dense total order 0..N-1").
type Registry struct {
	byName   map[string]*Tag
	byPriori []*Tag
}

// NewRegistry builds an empty tag registry, plus the built-in "sel"
// selection tag every widget carries (§3: "a per-widget 'sel' tag").
func NewRegistry() *Registry {
	r := &Registry{byName: map[string]*Tag{}}
	r.Create("sel")
	return r
}

// Create returns the named tag, creating it at the top priority if it does
// not exist yet (§3: "Tags are created lazily").
func (r *Registry) Create(name string) *Tag {
	if t, ok := r.byName[name]; ok {
		return t
	}
	t := &Tag{Name: name, Priority: len(r.byPriori)}
	r.byName[name] = t
	r.byPriori = append(r.byPriori, t)
	return t
}

// Lookup returns the named tag, or (nil, false) if it has never been
// created.
func (r *Registry) Lookup(name string) (*Tag, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// ErrUnknownTag is returned when a tag lookup fails and creation was not
// requested (§7).
type ErrUnknownTag struct{ Name string }

func (e *ErrUnknownTag) Error() string { return fmt.Sprintf("tag: unknown tag %q", e.Name) }

// MustLookup resolves name or returns ErrUnknownTag.
func (r *Registry) MustLookup(name string) (*Tag, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, &ErrUnknownTag{Name: name}
	}
	return t, nil
}

// Delete removes a tag's registry entry and renumbers priorities densely.
// Callers are responsible for first stripping its toggles from the tree
// (see Remove over the tag's full range, or ClearAll in apply.go).
func (r *Registry) Delete(name string) {
	t, ok := r.byName[name]
	if !ok {
		return
	}
	delete(r.byName, name)
	idx := t.Priority
	r.byPriori = append(r.byPriori[:idx], r.byPriori[idx+1:]...)
	for i := idx; i < len(r.byPriori); i++ {
		r.byPriori[i].Priority = i
	}
}

// Raise moves tag's priority just above "above" (or to the very top if
// above is empty), shifting every tag in between (§4.3 "Priority updates").
func (r *Registry) Raise(name, above string) error {
	t, ok := r.byName[name]
	if !ok {
		return &ErrUnknownTag{Name: name}
	}
	target := len(r.byPriori) - 1
	if above != "" {
		a, ok := r.byName[above]
		if !ok {
			return &ErrUnknownTag{Name: above}
		}
		target = a.Priority
		if target < t.Priority {
			target++
		}
	}
	r.move(t, target)
	return nil
}

// Lower moves tag's priority just below "below" (or to the very bottom if
// below is empty).
func (r *Registry) Lower(name, below string) error {
	t, ok := r.byName[name]
	if !ok {
		return &ErrUnknownTag{Name: name}
	}
	target := 0
	if below != "" {
		b, ok := r.byName[below]
		if !ok {
			return &ErrUnknownTag{Name: below}
		}
		target = b.Priority
		if target > t.Priority {
			target--
		}
	}
	r.move(t, target)
	return nil
}

func (r *Registry) move(t *Tag, target int) {
	if target < 0 {
		target = 0
	}
	if target > len(r.byPriori)-1 {
		target = len(r.byPriori) - 1
	}
	if target == t.Priority {
		return
	}
	old := t.Priority
	r.byPriori = append(r.byPriori[:old], r.byPriori[old+1:]...)
	tail := append([]*Tag{t}, r.byPriori[target:]...)
	r.byPriori = append(r.byPriori[:target], tail...)
	for i, tg := range r.byPriori {
		tg.Priority = i
	}
}

// Ordered returns tags from lowest to highest priority.
func (r *Registry) Ordered() []*Tag {
	return r.byPriori
}

// Resolve combines every active tag's attributes at priority order (lowest
// first, higher overrides), producing the final effective Attrs (§3:
// "higher priority wins per attribute, per-attribute default if no tag
// overrides").
func Resolve(active []*Tag) Attrs {
	var out Attrs
	for _, t := range active { // already lowest-to-highest by caller contract
		a := t.Attrs
		if a.Foreground != "" {
			out.Foreground = a.Foreground
		}
		if a.Background != "" {
			out.Background = a.Background
		}
		if a.Bold != nil {
			out.Bold = a.Bold
		}
		if a.Italic != nil {
			out.Italic = a.Italic
		}
		if a.Underline != nil {
			out.Underline = a.Underline
		}
		if a.Elide != nil {
			out.Elide = a.Elide
		}
	}
	return out
}
