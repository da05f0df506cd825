// Package location maps byte offsets in shader source to human-readable
// line and column positions.
package location

import (
	"fmt"
	"sort"
)

// Position is a 1-based line and column. Columns count bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether p points somewhere.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Index pre-computes the start offset of every line so lookups are a
// binary search.
type Index struct {
	source     string
	lineStarts []int
}

// NewIndex builds an index over source. LF, CRLF and lone CR all end a line.
func NewIndex(source string) *Index {
	idx := &Index{source: source, lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			idx.lineStarts = append(idx.lineStarts, i+1)
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			idx.lineStarts = append(idx.lineStarts, i+1)
		}
	}
	return idx
}

// Source returns the indexed text.
func (idx *Index) Source() string {
	return idx.source
}

// LineCount returns the number of lines, counting a trailing empty line.
func (idx *Index) LineCount() int {
	return len(idx.lineStarts)
}

// Position converts a byte offset. Offsets outside the source are clamped.
func (idx *Index) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(idx.source) {
		offset = len(idx.source)
	}
	line := sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - idx.lineStarts[line] + 1}
}

// Offset converts a 1-based position back to a byte offset.
func (idx *Index) Offset(pos Position) int {
	line := pos.Line - 1
	if line < 0 {
		line = 0
	}
	if line >= len(idx.lineStarts) {
		line = len(idx.lineStarts) - 1
	}
	offset := idx.lineStarts[line] + pos.Column - 1
	if offset < 0 {
		return 0
	}
	if offset > len(idx.source) {
		return len(idx.source)
	}
	return offset
}

// Line returns the text of a 1-based line without its terminator.
func (idx *Index) Line(line int) string {
	if line < 1 || line > len(idx.lineStarts) {
		return ""
	}
	start := idx.lineStarts[line-1]
	end := len(idx.source)
	if line < len(idx.lineStarts) {
		end = idx.lineStarts[line]
	}
	for end > start && (idx.source[end-1] == '\n' || idx.source[end-1] == '\r') {
		end--
	}
	return idx.source[start:end]
}
