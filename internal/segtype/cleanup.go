package segtype

// Cleanup folds a line's segment list to a fixed point: adjacent Char
// segments merge into one, and adjacent ToggleOn/ToggleOff pairs for the
// same tag annihilate each other (§4.1, invariant I5). It returns a new,
// possibly shorter slice; the surviving segments keep their order.
func Cleanup(segs []*Segment) []*Segment {
	changed := true
	for changed {
		changed = false
		out := segs[:0:0]
		for i := 0; i < len(segs); i++ {
			cur := segs[i]
			if i+1 < len(segs) {
				next := segs[i+1]
				if cur.Kind == KindChar && next.Kind == KindChar {
					merged := NewChar(append(append([]byte{}, cur.Bytes...), next.Bytes...))
					out = append(out, merged)
					i++
					changed = true
					continue
				}
				if annihilates(cur, next) {
					i++
					changed = true
					continue
				}
			}
			out = append(out, cur)
		}
		segs = out
	}
	return segs
}

// annihilates reports whether cur/next are a ToggleOn immediately followed
// by a ToggleOff (or vice versa) of the same tag, which cancel to a no-op.
func annihilates(cur, next *Segment) bool {
	if cur.Tag == "" || cur.Tag != next.Tag {
		return false
	}
	return (cur.Kind == KindToggleOn && next.Kind == KindToggleOff) ||
		(cur.Kind == KindToggleOff && next.Kind == KindToggleOn)
}

// Check runs debug-time consistency assertions over one line's segments
// (§4.1's check hook, §7's "never meant to fire in production" check mode).
// It returns the first invariant violation found, or nil.
func Check(segs []*Segment) error {
	for i, s := range segs {
		if i+1 < len(segs) && s.Kind == KindChar && segs[i+1].Kind == KindChar {
			return errAdjacentChars
		}
		if i+1 < len(segs) {
			next := segs[i+1]
			if s.Size() == 0 && next.Size() == 0 && s.Gravity() == GravityLeft && next.Gravity() == GravityRight {
				return errGravityOrder
			}
		}
	}
	if len(segs) == 0 {
		return errEmptyLine
	}
	last := segs[len(segs)-1]
	if last.Kind != KindChar || !last.EndsLine() {
		return errMissingNewline
	}
	return nil
}
