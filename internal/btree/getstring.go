package btree

import "strings"

// GetString returns the visible text between [i1, i2), concatenating char
// payloads across as many lines as the range spans.
func (t *Tree) GetString(i1, i2 Index) string {
	i1, i2 = i1.Clamp(), i2.Clamp()
	if Compare(i1, i2) >= 0 {
		return ""
	}

	var b strings.Builder
	if i1.Line == i2.Line {
		bytes := i1.Line.Bytes()
		b.Write(bytes[i1.Offset:i2.Offset])
		return b.String()
	}

	b.Write(i1.Line.Bytes()[i1.Offset:])
	lineNum := t.LineNumber(i1.Line) + 1
	line := t.FindLine(lineNum)
	for line != i2.Line {
		b.Write(line.Bytes())
		lineNum++
		line = t.FindLine(lineNum)
	}
	b.Write(i2.Line.Bytes()[:i2.Offset])
	return b.String()
}
