package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Stanley00/vaixterm/internal/vt"
)

// render draws every dirty line of the grid to w using cursor-addressed
// writes plus the minimum SGR needed to reproduce each cell's
// rendition, then clears the dirty set and repositions the real cursor.
// Rendering itself is explicitly out of this module's scope (spec §4.D
// "rendering is out of scope"); this exists only so cmd/deckterm has
// something on screen to prove the Grid/Parser pair it drives is
// actually tracking the host's output, the same minimal role aprilsh's
// own demo commands give their display path versus the full overlay
// renderer in frontend/client.
func render(w io.Writer, g *vt.Grid) {
	start, end := g.DirtyLines()
	if end <= start {
		g.ClearDirty()
		return
	}
	var b strings.Builder
	for y := start; y < end; y++ {
		row := g.ViewportLine(y)
		if row == nil {
			continue
		}
		fmt.Fprintf(&b, "\x1b[%d;1H\x1b[2K", y+1)
		var lastSGR string
		for x := 0; x < len(row.Cells); x++ {
			gl := row.Cells[x].Glyph
			sgr := sgrFor(gl)
			if sgr != lastSGR {
				b.WriteString(sgr)
				lastSGR = sgr
			}
			r := gl.Rune
			if r == 0 {
				r = ' '
			}
			b.WriteRune(r)
		}
		b.WriteString("\x1b[0m")
	}
	cx, cy := g.Cursor()
	fmt.Fprintf(&b, "\x1b[%d;%dH", cy+1, cx+1)
	io.WriteString(w, b.String())
	g.ClearDirty()
}

// sgrFor builds the SGR sequence reproducing one glyph's rendition,
// following the same attribute/color encoding §4.B's SGR dispatch table
// describes in reverse.
func sgrFor(gl vt.Glyph) string {
	var codes []string
	if gl.Attrs.Has(vt.AttrBold) {
		codes = append(codes, "1")
	}
	if gl.Attrs.Has(vt.AttrItalic) {
		codes = append(codes, "3")
	}
	if gl.Attrs.Has(vt.AttrUnderline) {
		codes = append(codes, "4")
	}
	if gl.Attrs.Has(vt.AttrBlink) {
		codes = append(codes, "5")
	}
	if gl.Attrs.Has(vt.AttrInverse) {
		codes = append(codes, "7")
	}
	codes = append(codes, colorSGR(gl.Fg, true)...)
	codes = append(codes, colorSGR(gl.Bg, false)...)
	if len(codes) == 0 {
		return "\x1b[0m"
	}
	return "\x1b[0;" + strings.Join(codes, ";") + "m"
}

func colorSGR(c vt.Color, fg bool) []string {
	if !c.Valid() {
		return nil
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		base := "38"
		if !fg {
			base = "48"
		}
		return []string{base, "2", fmt.Sprint(r), fmt.Sprint(g), fmt.Sprint(b)}
	}
	idx := c.Index()
	base := "38"
	if !fg {
		base = "48"
	}
	return []string{base, "5", fmt.Sprint(idx)}
}
