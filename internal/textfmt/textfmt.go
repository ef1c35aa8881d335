// Package textfmt prepares model output for the PDF layout: it drops glyphs the
// embedded font cannot draw and wraps paragraphs to a fixed column width.
package textfmt

import (
	"strings"
	"unicode"
)

const (
	hangulFirst = 0xAC00
	hangulLast  = 0xD7A3
)

// Supported reports whether r is printable ASCII or a Hangul syllable.
func Supported(r rune) bool {
	return (r >= 0x20 && r <= 0x7E) || (r >= hangulFirst && r <= hangulLast)
}

// Clean removes every rune Supported rejects, control characters included.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if Supported(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Wrap treats each line of s as a paragraph and greedily wraps it to width runes.
// Blank lines stay blank, words longer than width are split, and whitespace
// inside a line is kept as written.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	var out []string
	for _, paragraph := range strings.Split(s, "\n") {
		paragraph = strings.TrimSpace(expandTabs(paragraph))
		if paragraph == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapParagraph(paragraph, width)...)
	}
	return strings.Join(out, "\n")
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// chunks splits a paragraph into alternating word and whitespace runs.
func chunks(paragraph string) [][]rune {
	var out [][]rune
	var cur []rune
	curSpace := false
	for _, r := range paragraph {
		space := unicode.IsSpace(r)
		if len(cur) > 0 && space != curSpace {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, r)
		curSpace = space
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func isSpaceChunk(c []rune) bool {
	return len(c) > 0 && unicode.IsSpace(c[0])
}

func wrapParagraph(paragraph string, width int) []string {
	var lines []string
	var line []rune

	flush := func() {
		lines = append(lines, strings.TrimRightFunc(string(line), unicode.IsSpace))
		line = line[:0]
	}

	for _, c := range chunks(paragraph) {
		if isSpaceChunk(c) {
			// whitespace never starts a line
			if len(line) == 0 {
				continue
			}
			if len(line)+len(c) > width {
				flush()
				continue
			}
			line = append(line, c...)
			continue
		}

		if len(line)+len(c) <= width {
			line = append(line, c...)
			continue
		}
		if len(line) > 0 {
			flush()
		}
		for len(c) > width {
			line = append(line, c[:width]...)
			flush()
			c = c[width:]
		}
		line = append(line, c...)
	}
	if len(line) > 0 {
		flush()
	}
	return lines
}
