package vt

// Attr is a bitset of the SGR attributes this core tracks per glyph,
// grounded on aprilsh's terminal/renditions.go charAttribute enum,
// narrowed to the five attributes this specification names.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
)

// Has reports whether every bit set in want is also set in a.
func (a Attr) Has(want Attr) bool { return a&want == want }

// Glyph is one occupied grid cell: a codepoint plus the rendition state
// that was active when it was written. The zero Glyph is a blank cell
// with the terminal's default colors.
type Glyph struct {
	Rune  rune
	Fg    Color
	Bg    Color
	Attrs Attr
}

// Cell is the unit of grid storage: a Glyph plus a wrap-continuation bit
// used by the grid to know whether a logical line spans this row and the
// next, mirrored on aprilsh's terminal/cell.go + row.go split between
// per-cell rendition state and the row-level wrap flag.
type Cell struct {
	Glyph Glyph
	Wrap  bool
}

// Reset restores a cell to a blank glyph carrying the given background,
// the way aprilsh's Cell.Reset/Row.Reset seed a freshly scrolled-in row.
func (c *Cell) Reset(bg Color) {
	c.Glyph = Glyph{Rune: ' ', Bg: bg}
	c.Wrap = false
}

// blankGlyph returns the glyph a newly allocated or cleared cell should
// carry given the emulator's current default foreground/background.
func blankGlyph(fg, bg Color) Glyph {
	return Glyph{Rune: ' ', Fg: fg, Bg: bg}
}
