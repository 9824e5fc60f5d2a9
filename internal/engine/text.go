package engine

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultTabWidth is the indentation width used when expanding tabs in code.
const DefaultTabWidth = 4

// NormalizeTarget prepares raw text for typing. Line endings become "\n" and
// text is NFC-composed so precomposed and decomposed input compare equal. Code
// additionally has tabs expanded and trailing blanks removed.
func NormalizeTarget(mode Mode, raw string, tabWidth int) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = norm.NFC.String(s)
	if mode != ModeCode {
		return s
	}
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(expandTabs(line, tabWidth), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func expandTabs(line string, width int) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			pad := width - col%width
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// Text is an immutable target text indexed by rune, with line offsets for
// line-aware modes.
type Text struct {
	runes  []rune
	starts []int
}

// NewText indexes s.
func NewText(s string) Text {
	runes := []rune(s)
	starts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Text{runes: runes, starts: starts}
}

// Len returns the number of runes.
func (t Text) Len() int {
	return len(t.runes)
}

// String returns the text.
func (t Text) String() string {
	return string(t.runes)
}

// At returns the rune at index i; ok is false outside the text.
func (t Text) At(i int) (rune, bool) {
	if i < 0 || i >= len(t.runes) {
		return 0, false
	}
	return t.runes[i], true
}

// LineCount returns the number of lines, zero for an empty text.
func (t Text) LineCount() int {
	if len(t.runes) == 0 {
		return 0
	}
	return len(t.starts)
}

// LineStartIndex returns the absolute index of the first rune of line: the
// lengths of all prior lines plus their newlines.
func (t Text) LineStartIndex(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(t.starts) {
		return len(t.runes)
	}
	return t.starts[line]
}

// Position converts an absolute index to a line and column.
func (t Text) Position(index int) (line, col int) {
	if index < 0 {
		index = 0
	}
	if index > len(t.runes) {
		index = len(t.runes)
	}
	line = sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > index }) - 1
	return line, index - t.starts[line]
}

// Index converts a line and column to an absolute index, clamped to the text.
func (t Text) Index(line, col int) int {
	idx := t.LineStartIndex(line) + col
	if idx < 0 {
		return 0
	}
	if idx > len(t.runes) {
		return len(t.runes)
	}
	return idx
}

// SpaceRunAt counts consecutive spaces starting at index.
func (t Text) SpaceRunAt(index int) int {
	n := 0
	for {
		r, ok := t.At(index + n)
		if !ok || r != ' ' {
			return n
		}
		n++
	}
}
