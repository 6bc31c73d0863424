package btree

import "github.com/mobanhawi/linotype/internal/segtype"

// PixelEntry is a per-viewer cached pixel height and the epoch it was
// computed at (§3, §4.7). Epoch lets the async updater tell a stale cache
// entry from a fresh one without re-laying-out every line on every tick.
type PixelEntry struct {
	Height int
	Epoch  uint64
}

// Line is an ordered list of segments, owned by exactly one leaf. It also
// carries async-updater scratch state for a long line whose layout spans
// more than one tick's quantum (§4.7: metricIndex/metricPixelHeight/
// metricEpoch), kept here because it must survive across ticks and the
// updater has no other stable per-line storage to put it in.
type Line struct {
	Segments []*segtype.Segment
	Pixels   []PixelEntry

	leaf *Node

	// PartialMetricOffset/PartialMetricHeight/PartialMetricEpoch describe a
	// long line's in-progress pixel-height computation (0 value = no
	// partial computation in progress). internal/async does not read or
	// write them; it keeps partial progress per viewer in its own window.
	PartialMetricOffset int
	PartialMetricHeight int
	PartialMetricEpoch  uint64
}

// newTerminalLine builds a line containing only the mandatory trailing
// newline char segment (used both for the tree's permanent dummy line and
// for any newly split-off line before content is appended).
func newTerminalLine() *Line {
	return &Line{Segments: []*segtype.Segment{segtype.NewChar([]byte("\n"))}}
}

// Bytes concatenates every char segment's payload; this is the line's
// visible text content including its trailing newline.
func (l *Line) Bytes() []byte {
	var out []byte
	for _, s := range l.Segments {
		if s.Kind == segtype.KindChar {
			out = append(out, s.Bytes...)
		}
	}
	return out
}

// ByteLen is the total byte length of the line's char content.
func (l *Line) ByteLen() int {
	n := 0
	for _, s := range l.Segments {
		n += s.Size()
	}
	return n
}

// ensurePixelWidth grows Pixels to width entries, new slots starting at
// defaultHeight with epoch 0 (always stale against a nonzero tree epoch).
func (l *Line) ensurePixelWidth(width int, defaultHeight int) {
	for len(l.Pixels) < width {
		l.Pixels = append(l.Pixels, PixelEntry{Height: defaultHeight})
	}
}
