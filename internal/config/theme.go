// Theme loading: the "color-scheme file" spec §3/§6 names, grounded on
// original_source/src/terminal.c's terminal_load_colorscheme and
// parse_color_string. The file is a flat `key = value` list — colorN
// (0-15) override the base ANSI palette slots, foreground/background/
// cursor set the three named colors a renderer (out of this module's
// scope) would use for the default pen and cursor glyph.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Stanley00/vaixterm/internal/vt"
)

// Theme holds the palette a color-scheme file describes: up to 16 ANSI
// base-color overrides plus the three named colors original_source's
// Terminal struct keeps outside the indexed palette.
type Theme struct {
	Colors      [16]vt.Color
	HasColor    [16]bool
	DefaultFg   vt.Color
	DefaultBg   vt.Color
	CursorColor vt.Color
	HasCursor   bool
}

// DefaultTheme reproduces terminal_create's built-in palette: the
// Tango-derived 16-color set, default_fg = colors[2] (green),
// default_bg = colors[0] (black). The cursor color is left unset
// (HasCursor false) so it resolves to DefaultFg at Apply time unless a
// theme file names one explicitly — matching terminal_create's
// fallback-to-foreground check once the file has had a chance to
// override "cursor=".
func DefaultTheme() *Theme {
	palette := [16]int32{
		0x2e3436, 0xcc0000, 0x4e9a06, 0xc4a000,
		0x3465a4, 0x75507b, 0x06989a, 0xd3d7cf,
		0x555753, 0xef2929, 0x8ae234, 0xfce94f,
		0x729fcf, 0xad7fb8, 0x34e2e2, 0xeeeeec,
	}
	t := &Theme{}
	for i, hex := range palette {
		t.Colors[i] = vt.NewRGBColor((hex>>16)&0xff, (hex>>8)&0xff, hex&0xff)
		t.HasColor[i] = true
	}
	t.DefaultFg = t.Colors[2]
	t.DefaultBg = t.Colors[0]
	return t
}

// LoadTheme opens path and parses it as a color-scheme file, starting
// from the built-in default so a partial file only overrides what it
// names — matching terminal_create always seeding term->colors from
// default_palette before calling terminal_load_colorscheme over it.
func LoadTheme(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open theme %q: %w", path, err)
	}
	defer f.Close()
	t := DefaultTheme()
	if err := t.parse(f); err != nil {
		return nil, fmt.Errorf("parse theme %q: %w", path, err)
	}
	return t, nil
}

func (t *Theme) parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		// sscanf(" %63[^= \t] = %63s", ...) also stops value at the first
		// run of whitespace; Fields()[0] reproduces that truncation.
		if fields := strings.Fields(value); len(fields) > 0 {
			value = fields[0]
		}
		c, perr := parseColorString(value)
		if perr != nil {
			continue
		}
		switch {
		case strings.HasPrefix(key, "color"):
			idx, aerr := strconv.Atoi(key[len("color"):])
			if aerr == nil && idx >= 0 && idx < 16 {
				t.Colors[idx] = c
				t.HasColor[idx] = true
			}
		case key == "foreground":
			t.DefaultFg = c
		case key == "background":
			t.DefaultBg = c
		case key == "cursor":
			t.CursorColor = c
			t.HasCursor = true
		}
	}
	return sc.Err()
}

// parseColorString accepts "#RRGGBB"/"RRGGBB" and "#AARRGGBB"/"AARRGGBB",
// matching parse_color_string's two sscanf branches; the alpha byte is
// parsed but dropped since vt.Color carries no alpha channel.
func parseColorString(s string) (vt.Color, error) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 6:
		v, err := strconv.ParseInt(s, 16, 32)
		if err != nil {
			return 0, err
		}
		return vt.NewRGBColor((int32(v)>>16)&0xff, (int32(v)>>8)&0xff, int32(v)&0xff), nil
	case 8:
		v, err := strconv.ParseInt(s, 16, 64)
		if err != nil {
			return 0, err
		}
		r := (v >> 16) & 0xff
		g := (v >> 8) & 0xff
		b := v & 0xff
		return vt.NewRGBColor(int32(r), int32(g), int32(b)), nil
	default:
		return 0, fmt.Errorf("malformed color %q", s)
	}
}

// Apply overwrites the vt package's shared xterm-256 palette slots 0-15
// with this theme's colors, the Go equivalent of terminal_create's
// memcpy into term->colors, and returns the resolved default
// foreground/background/cursor colors for the caller (a renderer, out
// of this module's scope) to use as the pen's starting values.
func (t *Theme) Apply() (defaultFg, defaultBg, cursor vt.Color) {
	for i, c := range t.Colors {
		if !t.HasColor[i] {
			continue
		}
		r, g, b := c.RGB()
		vt.SetPaletteEntry(i, r<<16|g<<8|b)
	}
	fg, bg, cur := t.DefaultFg, t.DefaultBg, t.CursorColor
	if !t.HasCursor {
		cur = fg
	}
	return fg, bg, cur
}
