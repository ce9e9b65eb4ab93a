package terminal

// Attr represents text attributes (bitmask)
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
)

// Style is the visual state applied to a glyph
type Style struct {
	Fg    RGB
	Bg    RGB
	Attrs Attr
}

// WithFg returns a copy with the foreground replaced
func (s Style) WithFg(fg RGB) Style {
	s.Fg = fg
	return s
}

// WithBg returns a copy with the background replaced
func (s Style) WithBg(bg RGB) Style {
	s.Bg = bg
	return s
}

// WithAttrs returns a copy with the attribute set replaced
func (s Style) WithAttrs(a Attr) Style {
	s.Attrs = a
	return s
}
