package vt

// SGR attribute application, grounded on aprilsh's terminal/renditions.go
// buildRendition switch: the same code-range dispatch (0 reset, 1/3/4/5/6/7
// set attribute, 22-25/27 clear attribute, 30-37/40-47 standard colors, 38/48
// extended colors, 39/49 defaults, 90-97/100-107 bright colors) applied
// to this package's leaner Attr/Color pair instead of aprilsh's
// Renditions struct.

// Rendition is the mutable graphic-rendition state the SGR dispatch table
// mutates in place; the Grid keeps one as its "current pen".
type Rendition struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// Reset returns the rendition to the terminal's power-on default: no
// attributes, default colors.
func (r *Rendition) Reset() {
	r.Fg = ColorDefault
	r.Bg = ColorDefault
	r.Attrs = 0
}

// ApplySGR walks a list of already-split CSI parameters (as produced by
// Parser's parameter collector) and mutates r according to each one,
// consuming extended-color parameter groups (38/48 followed by 5;N or
// 2;R;G;B) as it goes. An empty params list is treated as a single
// implicit 0 (reset), matching "CSI m" == "CSI 0 m".
func (r *Rendition) ApplySGR(params []int) {
	if len(params) == 0 {
		r.Reset()
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			r.Reset()
		case p == 1:
			r.Attrs |= AttrBold
		case p == 3:
			r.Attrs |= AttrItalic
		case p == 4:
			r.Attrs |= AttrUnderline
		case p == 5 || p == 6:
			r.Attrs |= AttrBlink
		case p == 7:
			r.Attrs |= AttrInverse
		case p == 22:
			r.Attrs &^= AttrBold
		case p == 23:
			r.Attrs &^= AttrItalic
		case p == 24:
			r.Attrs &^= AttrUnderline
		case p == 25:
			r.Attrs &^= AttrBlink
		case p == 27:
			r.Attrs &^= AttrInverse
		case p >= 30 && p <= 37:
			r.Fg = PaletteColor(p - 30)
		case p == 38:
			c, consumed := parseExtendedColor(params[i+1:])
			if consumed > 0 {
				r.Fg = c
				i += consumed
			}
		case p == 39:
			r.Fg = ColorDefault
		case p >= 40 && p <= 47:
			r.Bg = PaletteColor(p - 40)
		case p == 48:
			c, consumed := parseExtendedColor(params[i+1:])
			if consumed > 0 {
				r.Bg = c
				i += consumed
			}
		case p == 49:
			r.Bg = ColorDefault
		case p >= 90 && p <= 97:
			r.Fg = PaletteColor(p - 90 + 8)
		case p >= 100 && p <= 107:
			r.Bg = PaletteColor(p - 100 + 8)
		}
	}
}

// parseExtendedColor reads "5;N" (256-color palette) or "2;R;G;B" (direct
// color) from the tail of a parameter list, returning the resulting Color
// and the number of parameters consumed after the leading 38/48.
func parseExtendedColor(rest []int) (Color, int) {
	if len(rest) == 0 {
		return ColorDefault, 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return ColorDefault, 0
		}
		return PaletteColor(rest[1]), 2
	case 2:
		if len(rest) < 4 {
			return ColorDefault, 0
		}
		return NewRGBColor(int32(rest[1]), int32(rest[2]), int32(rest[3])), 4
	}
	return ColorDefault, 0
}
