// Package segtype defines the segment types that make up a logical line:
// characters, tag toggles, marks, and embedded objects. Each kind carries a
// small, fixed behaviour set (split, delete, cleanup, gravity) instead of a
// C-style union-plus-vtable; the layout and line-migration hooks, which need
// wider tree/style context, live in the packages that consume them
// (internal/layout, internal/btree) as type switches over Kind rather than
// methods here, to keep this package free of import cycles back into them.
package segtype

import "unicode/utf8"

// Gravity decides which side of an insertion point a zero-size segment
// clings to: a character inserted exactly at the segment's offset lands on
// the side gravity does not claim.
type Gravity int

const (
	GravityLeft Gravity = iota
	GravityRight
)

// Kind selects a segment's behaviour set.
type Kind int

const (
	KindChar Kind = iota
	KindToggleOn
	KindToggleOff
	KindLeftMark
	KindRightMark
	KindEmbedWindow
	KindEmbedImage
)

func (k Kind) String() string {
	switch k {
	case KindChar:
		return "char"
	case KindToggleOn:
		return "toggleOn"
	case KindToggleOff:
		return "toggleOff"
	case KindLeftMark:
		return "leftMark"
	case KindRightMark:
		return "rightMark"
	case KindEmbedWindow:
		return "embedWindow"
	case KindEmbedImage:
		return "embedImage"
	default:
		return "unknown"
	}
}

// Segment is one typed, variable-size piece of a logical line.
type Segment struct {
	Kind Kind

	// Bytes holds the UTF-8 payload of a KindChar segment.
	Bytes []byte

	// Tag names the tag a KindToggleOn/KindToggleOff segment flips.
	Tag string

	// Mark names a KindLeftMark/KindRightMark segment.
	Mark string

	// Name identifies a KindEmbedWindow/KindEmbedImage segment.
	Name string

	// Attrs carries alignment/padding style for embedded objects; see
	// SPEC_FULL.md §4 on the reduced embed hook surface.
	Attrs map[string]string
}

// NewChar builds a character segment from raw UTF-8 bytes.
func NewChar(b []byte) *Segment {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Segment{Kind: KindChar, Bytes: cp}
}

// NewToggleOn builds an on-toggle for tag.
func NewToggleOn(tag string) *Segment { return &Segment{Kind: KindToggleOn, Tag: tag} }

// NewToggleOff builds an off-toggle for tag.
func NewToggleOff(tag string) *Segment { return &Segment{Kind: KindToggleOff, Tag: tag} }

// NewMark builds a named mark segment with the given gravity.
func NewMark(name string, gravity Gravity) *Segment {
	if gravity == GravityLeft {
		return &Segment{Kind: KindLeftMark, Mark: name}
	}
	return &Segment{Kind: KindRightMark, Mark: name}
}

// NewEmbedWindow builds an embedded-window segment.
func NewEmbedWindow(name string, attrs map[string]string) *Segment {
	return &Segment{Kind: KindEmbedWindow, Name: name, Attrs: attrs}
}

// NewEmbedImage builds an embedded-image segment.
func NewEmbedImage(name string, attrs map[string]string) *Segment {
	return &Segment{Kind: KindEmbedImage, Name: name, Attrs: attrs}
}

// Size returns the segment's byte footprint in the line (0 for every kind
// except KindChar).
func (s *Segment) Size() int {
	if s.Kind == KindChar {
		return len(s.Bytes)
	}
	return 0
}

// Gravity reports which side of its own (possibly zero-size) position this
// segment adheres to. Toggle-on segments lean left so a character inserted
// at the toggle point picks up the tag being turned on; toggle-off segments
// lean right so the same insertion keeps the tag until the toggle fires.
func (s *Segment) Gravity() Gravity {
	switch s.Kind {
	case KindToggleOn, KindLeftMark, KindEmbedWindow, KindEmbedImage:
		return GravityLeft
	case KindToggleOff, KindRightMark:
		return GravityRight
	default:
		return GravityLeft
	}
}

// Splittable reports whether this segment type supports Split. Zero-size
// segments are never split (§4.1: "a zero-size segment's split must be
// absent").
func (s *Segment) Splittable() bool { return s.Kind == KindChar }

// Split divides a KindChar segment at a byte offset that must fall on a
// UTF-8 code-point boundary. It panics if called on a non-char segment or an
// out-of-range/boundary-violating offset; callers are expected to validate
// via Splittable and utf8.RuneStart first.
func (s *Segment) Split(byteOffset int) (left, right *Segment) {
	if s.Kind != KindChar {
		panic("segtype: Split called on non-char segment")
	}
	if byteOffset < 0 || byteOffset > len(s.Bytes) {
		panic("segtype: Split offset out of range")
	}
	if byteOffset != len(s.Bytes) && !utf8.RuneStart(s.Bytes[byteOffset]) {
		panic("segtype: Split offset crosses a UTF-8 code point")
	}
	return NewChar(s.Bytes[:byteOffset]), NewChar(s.Bytes[byteOffset:])
}

// DeleteHook attempts to free the segment; it returns true when the segment
// refuses deletion (durable marks refuse unless the whole tree is going
// away) and must instead be relinked at the surviving endpoint.
func (s *Segment) DeleteHook(treeGone bool) bool {
	switch s.Kind {
	case KindLeftMark, KindRightMark:
		return !treeGone
	default:
		return false
	}
}

// EndsLine reports whether this char segment's payload ends with a newline.
func (s *Segment) EndsLine() bool {
	return s.Kind == KindChar && len(s.Bytes) > 0 && s.Bytes[len(s.Bytes)-1] == '\n'
}
