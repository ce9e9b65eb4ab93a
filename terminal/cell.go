package terminal

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Cell represents a single terminal cell
// The zero Cell (empty glyph) is transparent: compositing skips it and the
// renderer draws it as a blank
type Cell struct {
	Glyph string
	Style Style
}

// NewCell builds a cell holding the first character of glyph
func NewCell(glyph string, style Style) Cell {
	return Cell{Glyph: firstChar(glyph), Style: style}
}

// Transparent reports whether the cell is the transparent sentinel
func (c Cell) Transparent() bool {
	return c.Glyph == ""
}

// Width returns the display width in columns, 1 or 2
func (c Cell) Width() int {
	return GlyphWidth(c.Glyph)
}

// GlyphWidth classifies a glyph as single or double width
// Zero-width and control glyphs count as one column so the cursor always advances
func GlyphWidth(glyph string) int {
	if len(glyph) == 1 {
		return 1
	}
	r, _ := utf8.DecodeRuneInString(glyph)
	if r == utf8.RuneError {
		return 1
	}
	if runewidth.RuneWidth(r) == 2 {
		return 2
	}
	return 1
}

// firstChar truncates s to its first UTF-8 character
func firstChar(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
