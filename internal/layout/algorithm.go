package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/mobanhawi/linotype/internal/btree"
	"github.com/mobanhawi/linotype/internal/segtype"
	"github.com/mobanhawi/linotype/internal/style"
	"github.com/mobanhawi/linotype/internal/tag"
)

// layoutFrom implements the §4.6 algorithm sketch: scan segments from
// start, tracking elision, producing chunks, and breaking according to
// opts.WrapMode. It stops at the first logical newline it emits, or when
// the viewport width is exhausted and a break point is chosen.
func layoutFrom(tree *btree.Tree, styles *style.Table, opts Options, start btree.Index, activeTags activeTagsFn) DisplayLine {
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	dl := DisplayLine{Start: start, Height: opts.MinHeight, SpaceBelow: opts.LineSpacing}

	xUsed := 0
	bytesConsumed := 0
	// breakByte/breakX remember the last word-boundary chunk end, for
	// WrapWord's "break there if the next chunk overflows" rule (step 3).
	breakByte, breakX, breakLineOffset := -1, 0, -1

	line := start.Line
	offset := start.Offset

	for !tree.IsDummy(line) {
		advanced := false

		for i, seg := range line.Segments {
			segStart := segByteOffset(line.Segments, i)
			segEnd := segStart + seg.Size()
			if segEnd <= offset {
				continue
			}

			sliceStart := 0
			if segStart < offset {
				sliceStart = offset - segStart
			}

			switch seg.Kind {
			case segtype.KindChar:
				relStart := sliceStart

			charRun:
				for {
					text := string(seg.Bytes[relStart:])
					at := btree.Index{Tree: tree, Line: line, Offset: segStart + relStart}
					active := activeTags(at)
					if isElided(active) {
						bytesConsumed += len(text)
						offset = segEnd
						advanced = true
						break charRun
					}

					h, _ := styles.GetStyle(active)
					hasNL := strings.HasSuffix(text, "\n")

					// a tab always precedes any trailing newline within a
					// char segment (segments never span a line boundary
					// mid-string), so finding one routes through tab-stop
					// placement (§4.6 step 5) instead of the plain-text path.
					if tabIdx := strings.IndexByte(text, '\t'); tabIdx >= 0 {
						prefix := text[:tabIdx]
						fits, placed, brokeAtWord := fitText(prefix, width-xUsed, opts.WrapMode)
						if fits != "" {
							dl.Chunks = append(dl.Chunks, Chunk{Text: fits, Style: h, XOffset: xUsed, Width: columnWidth(fits), Segment: seg, Start: at})
							xUsed += columnWidth(fits)
							bytesConsumed += len(fits)
							if opts.WrapMode == WrapWord && !brokeAtWord && strings.HasSuffix(fits, " ") {
								breakByte = bytesConsumed
								breakX = xUsed
								breakLineOffset = segStart + relStart + len(fits)
							}
						}
						if placed < len(prefix) {
							nextOffset := segStart + relStart + placed
							if opts.WrapMode == WrapWord && breakByte > 0 && breakByte < bytesConsumed {
								rewind := bytesConsumed - breakByte
								bytesConsumed = breakByte
								xUsed = breakX
								trimChunks(&dl, rewind)
								nextOffset = breakLineOffset
							}
							return finish(dl, opts, bytesConsumed, line, nextOffset)
						}

						stop := nextTabStop(xUsed, opts)
						runWidth, runBytes := tabRunWidth(text[tabIdx+1:])
						start := stop
						switch opts.TabAlign {
						case TabRight:
							start = stop - runWidth
						case TabCenter:
							start = stop - runWidth/2
						case TabNumeric:
							start = stop - decimalOffset(text[tabIdx+1:], runBytes)
						}
						if start < xUsed {
							start = xUsed
						}
						if padWidth := start - xUsed; padWidth > 0 {
							dl.Chunks = append(dl.Chunks, Chunk{Text: strings.Repeat(" ", padWidth), Style: h, XOffset: xUsed, Width: padWidth, Segment: seg, Start: at})
						}
						xUsed = start
						bytesConsumed++
						relStart += tabIdx + 1

						if xUsed >= width && opts.WrapMode != WrapNone {
							offset = segStart + relStart
							advanced = true
							return finish(dl, opts, bytesConsumed, line, offset)
						}
						continue charRun
					}

					visible := text
					if hasNL {
						visible = text[:len(text)-1]
					}

					fits, placed, brokeAtWord := fitText(visible, width-xUsed, opts.WrapMode)
					if fits != "" {
						dl.Chunks = append(dl.Chunks, Chunk{Text: fits, Style: h, XOffset: xUsed, Width: columnWidth(fits), Segment: seg, Start: at})
						xUsed += columnWidth(fits)
						bytesConsumed += len(fits)
						if opts.WrapMode == WrapWord && !brokeAtWord && strings.HasSuffix(fits, " ") {
							breakByte = bytesConsumed
							breakX = xUsed
							breakLineOffset = segStart + relStart + len(fits)
						}
					}

					if placed < len(visible) {
						// overflow: wrap here (word-wrap rewinds to the last
						// recorded break point when one exists).
						nextOffset := segStart + relStart + placed
						if opts.WrapMode == WrapWord && breakByte > 0 && breakByte < bytesConsumed {
							rewind := bytesConsumed - breakByte
							bytesConsumed = breakByte
							xUsed = breakX
							trimChunks(&dl, rewind)
							nextOffset = breakLineOffset
						}
						return finish(dl, opts, bytesConsumed, line, nextOffset)
					}
					if hasNL {
						bytesConsumed++
						nextNum := tree.LineNumber(line) + 1
						nextLine, nextOffset := line, segEnd
						if nextNum < tree.LineCount() {
							nextLine, nextOffset = tree.FindLine(nextNum), 0
						}
						return finish(dl, opts, bytesConsumed, nextLine, nextOffset)
					}
					offset = segEnd
					advanced = true
					break charRun
				}

			case segtype.KindEmbedWindow, segtype.KindEmbedImage:
				at := btree.Index{Tree: tree, Line: line, Offset: segStart}
				active := activeTags(at)
				if isElided(active) {
					offset = segEnd
					advanced = true
					continue
				}
				h, _ := styles.GetStyle(active)
				placeholder := "[" + seg.Name + "]"
				dl.Chunks = append(dl.Chunks, Chunk{Text: placeholder, Style: h, XOffset: xUsed, Width: 1, Segment: seg, Start: at})
				xUsed++
				offset = segEnd
				advanced = true

			default:
				// zero-size segments (toggles, marks) contribute no chunk
				// (§4.1: layout returns negative for most marks).
				offset = segEnd
				advanced = true
			}

			if xUsed >= width && opts.WrapMode != WrapNone {
				return finish(dl, opts, bytesConsumed, line, offset)
			}
		}

		if !advanced {
			break
		}

		nextNum := tree.LineNumber(line) + 1
		if nextNum >= tree.LineCount() {
			break
		}
		tailActive := activeTags(btree.Index{Tree: tree, Line: line, Offset: line.ByteLen() - 1})
		if !isElided(tailActive) {
			break
		}
		dl.LogicalLinesMerged++
		line = tree.FindLine(nextNum)
		offset = 0
	}

	return finish(dl, opts, bytesConsumed, line, offset)
}

func finish(dl DisplayLine, opts Options, bytesConsumed int, nextLine *btree.Line, nextOffset int) DisplayLine {
	dl.ByteCount = bytesConsumed
	dl.NextLine = nextLine
	dl.NextOffset = nextOffset
	if dl.Height < opts.MinHeight {
		dl.Height = opts.MinHeight
	}
	dl.Baseline = dl.Height - opts.LineSpacing
	applyJustify(&dl, opts)
	return dl
}

func trimChunks(dl *DisplayLine, rewindBytes int) {
	for rewindBytes > 0 && len(dl.Chunks) > 0 {
		last := &dl.Chunks[len(dl.Chunks)-1]
		if len(last.Text) <= rewindBytes {
			rewindBytes -= len(last.Text)
			dl.Chunks = dl.Chunks[:len(dl.Chunks)-1]
			continue
		}
		keep := len(last.Text) - rewindBytes
		last.Text = last.Text[:keep]
		last.Width = columnWidth(last.Text)
		rewindBytes = 0
	}
}

// fitText returns the prefix of s that fits within budget columns under
// mode, how many bytes of s that prefix consumes, and whether the cut
// point already lands on a word boundary (so the caller need not rewind).
func fitText(s string, budget int, mode WrapMode) (fitted string, placed int, atWordBoundary bool) {
	if budget <= 0 {
		return "", 0, true
	}
	w := columnWidth(s)
	if mode == WrapNone || w <= budget {
		return s, len(s), true
	}

	switch mode {
	case WrapChar:
		// char wrap breaks at grapheme-cluster boundaries, not raw runes,
		// so combining marks and other multi-rune clusters never split
		// (GLOSSARY "Elide" sibling concern — §1 Non-goals excludes full
		// grapheme shaping but not boundary-respecting wrap).
		cut := 0
		used := 0
		gr := uniseg.NewGraphemes(s)
		for gr.Next() {
			cluster := gr.Str()
			cw := columnWidth(cluster)
			if used+cw > budget {
				break
			}
			used += cw
			cut += len(cluster)
		}
		return s[:cut], cut, true
	default: // WrapWord
		cut := 0
		used := 0
		lastSpace := -1
		for i, r := range s {
			rw := columnWidth(string(r))
			if used+rw > budget {
				break
			}
			used += rw
			cut = i + len(string(r))
			if r == ' ' {
				lastSpace = cut
			}
		}
		if cut == len(s) {
			return s, cut, true
		}
		if lastSpace > 0 {
			return s[:lastSpace], lastSpace, true
		}
		return s[:cut], cut, false
	}
}

// nextTabStop returns the first tab stop strictly greater than x. With
// explicit TabStops configured, stops beyond the last one repeat at the
// spacing between the final two entries (Tk's own "stops run out, keep
// the last interval" behaviour); with none configured, stops fall every
// 8 columns, Tk's default tab width.
func nextTabStop(x int, opts Options) int {
	const defaultTabWidth = 8
	if len(opts.TabStops) == 0 {
		return ((x / defaultTabWidth) + 1) * defaultTabWidth
	}
	for _, stop := range opts.TabStops {
		if stop > x {
			return stop
		}
	}
	width := defaultTabWidth
	if n := len(opts.TabStops); n > 1 {
		width = opts.TabStops[n-1] - opts.TabStops[n-2]
	}
	if width <= 0 {
		width = defaultTabWidth
	}
	stop := opts.TabStops[len(opts.TabStops)-1]
	for stop <= x {
		stop += width
	}
	return stop
}

// tabRunWidth measures, rune by rune, the display width of the text that
// follows a tab up to the next tab or newline — the run a right/center/
// numeric tab stop aligns against. It uses go-runewidth's per-rune table
// rather than a whole-string grapheme scan: the run is walked incrementally
// anyway to find the cut point, the same "count as you go" shape the
// teacher used for its simpler status-line fields.
func tabRunWidth(s string) (width, byteLen int) {
	for _, r := range s {
		if r == '\t' || r == '\n' {
			break
		}
		width += runewidth.RuneWidth(r)
		byteLen += utf8.RuneLen(r)
	}
	return width, byteLen
}

// decimalOffset returns the display-column offset of the first '.' within
// the first runLen bytes of s, or the run's full width when it has none
// (a numeric tab with no decimal point aligns like a right tab).
func decimalOffset(s string, runLen int) int {
	width := 0
	consumed := 0
	for _, r := range s {
		if consumed >= runLen {
			break
		}
		if r == '.' {
			return width
		}
		width += runewidth.RuneWidth(r)
		consumed += utf8.RuneLen(r)
	}
	return width
}

func isElided(active []*tag.Tag) bool {
	// the elide-priority-highest tag whose elide attribute is true wins
	// (§4.6 step 1); active is already ordered lowest-to-highest priority.
	for i := len(active) - 1; i >= 0; i-- {
		if active[i].Attrs.Elide != nil {
			return *active[i].Attrs.Elide
		}
	}
	return false
}

func segByteOffset(segs []*segtype.Segment, idx int) int {
	pos := 0
	for i := 0; i < idx && i < len(segs); i++ {
		pos += segs[i].Size()
	}
	return pos
}

func applyJustify(dl *DisplayLine, opts Options) {
	if opts.Justify == JustifyLeft || len(dl.Chunks) == 0 {
		return
	}
	used := 0
	for _, c := range dl.Chunks {
		used += c.Width
	}
	slack := opts.Width - used
	if slack <= 0 {
		return
	}
	var shift int
	switch opts.Justify {
	case JustifyRight:
		shift = slack
	case JustifyCenter:
		shift = slack / 2
	}
	dl.XOffset = shift
	for i := range dl.Chunks {
		dl.Chunks[i].XOffset += shift
	}
}
