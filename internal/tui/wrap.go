package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keyflash/internal/engine"
)

const (
	wrongSpaceGlyph  = '•'
	newlineGlyph     = '↵'
	tabGlyph         = '→'
	extraInputGlyph  = '·'
	maxExtraRendered = 16
)

type styledRune struct {
	s         string
	width     int
	isSpace   bool
	isNewline bool
	isCursor  bool
}

// buildStyledRunes renders a classification. The cursor is drawn only when
// showCursor is set so the caller can blink it.
func buildStyledRunes(cls engine.Classification, showCursor bool) []styledRune {
	words := findWords(cls.Classes)
	currentWord := wordForCursor(words, cls.Cursor)

	out := make([]styledRune, 0, len(cls.Classes)+min(cls.Extra, maxExtraRendered))
	for _, c := range cls.Classes {
		displayed := c.Expected
		style := pendingStyle
		switch c.Status {
		case engine.StatusCorrect:
			style = correctStyle
		case engine.StatusIncorrect:
			style = incorrectStyle
			switch c.Expected {
			case ' ':
				displayed = wrongSpaceGlyph
			case '\n':
				displayed = newlineGlyph
			}
		default:
			if currentWord != nil && c.Index >= currentWord.start && c.Index < currentWord.end {
				style = currentWordStyle
			}
		}
		if c.IsCursor {
			if c.Expected == '\n' {
				displayed = newlineGlyph
			}
			if showCursor {
				style = style.Underline(true)
			}
		}
		item := styledRune{
			isSpace:   c.Expected == ' ',
			isNewline: c.Expected == '\n',
			isCursor:  c.IsCursor,
		}
		if displayed == '\t' {
			displayed = tabGlyph
		}
		if displayed != '\n' {
			item.s = style.Render(string(displayed))
			item.width = runewidth.RuneWidth(displayed)
		}
		out = append(out, item)
	}
	for i := 0; i < min(cls.Extra, maxExtraRendered); i++ {
		out = append(out, styledRune{
			s:     incorrectStyle.Render(string(extraInputGlyph)),
			width: 1,
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func isWordBreak(r rune) bool {
	return r == ' ' || r == '\n'
}

func findWords(classes []engine.CharClass) []wordRange {
	words := []wordRange{}
	start := -1
	for i, c := range classes {
		if isWordBreak(c.Expected) {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(classes)})
	}
	return words
}

func wordForCursor(words []wordRange, cursorIndex int) *wordRange {
	for i, w := range words {
		if cursorIndex < w.end {
			return &words[i]
		}
	}
	return nil
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks runes into lines of at most width cells, preferring
// to break after a space. Target newlines always end a line. It returns the
// lines and the index of the line holding the cursor, or -1.
func wrapStyledRunes(runes []styledRune, width int) ([]string, int) {
	var lines []string
	cursorLine := -1
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	flush := func(items []styledRune) {
		for _, item := range items {
			if item.isCursor {
				cursorLine = len(lines)
			}
		}
		lines = append(lines, renderStyledRunes(items))
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if width > 0 && lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				flush(line[:lastSpaceIdx+1])
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
			} else {
				flush(line)
				line = line[:0]
			}
			lineWidth = lineWidthOf(line)
			lastSpaceIdx = lastSpaceIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
		if item.isNewline {
			flush(line)
			line = line[:0]
			lineWidth = 0
			lastSpaceIdx = -1
		}
	}
	if len(line) > 0 || len(lines) == 0 || runes[len(runes)-1].isNewline {
		flush(line)
	}
	return lines, cursorLine
}

// visibleLines keeps at most height lines, scrolled so the cursor line stays
// in view with a line of context above it.
func visibleLines(lines []string, cursorLine, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := 0
	if cursorLine > 0 {
		start = cursorLine - 1
	}
	start = min(start, len(lines)-height)
	return lines[start : start+height]
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
