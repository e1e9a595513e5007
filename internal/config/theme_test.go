package config

import (
	"strings"
	"testing"
)

func TestParseColorString(t *testing.T) {
	c, err := parseColorString("#ff8000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, g, b := c.RGB()
	if r != 0xff || g != 0x80 || b != 0x00 {
		t.Fatalf("got rgb(%d,%d,%d)", r, g, b)
	}
}

func TestParseColorStringNoHash(t *testing.T) {
	c, err := parseColorString("00ff00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, g, b := c.RGB()
	if r != 0 || g != 0xff || b != 0 {
		t.Fatalf("got rgb(%d,%d,%d)", r, g, b)
	}
}

func TestParseColorStringWithAlpha(t *testing.T) {
	c, err := parseColorString("#ff112233")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, g, b := c.RGB()
	if r != 0x11 || g != 0x22 || b != 0x33 {
		t.Fatalf("got rgb(%d,%d,%d), want 11/22/33 (alpha byte dropped)", r, g, b)
	}
}

func TestParseColorStringMalformed(t *testing.T) {
	if _, err := parseColorString("not-a-color"); err == nil {
		t.Fatal("expected error for malformed color string")
	}
}

func TestThemeParseOverridesOnlyNamedKeys(t *testing.T) {
	t0 := DefaultTheme()
	content := "# comment\ncolor1 = #ff0000\nforeground = #00ff00\n\ncolor9=#112233 extra-ignored\n"
	if err := t0.parse(strings.NewReader(content)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r, g, b := t0.Colors[1].RGB(); r != 0xff || g != 0 || b != 0 {
		t.Fatalf("color1 override = rgb(%d,%d,%d)", r, g, b)
	}
	if r, g, b := t0.DefaultFg.RGB(); r != 0 || g != 0xff || b != 0 {
		t.Fatalf("foreground override = rgb(%d,%d,%d)", r, g, b)
	}
	if r, g, b := t0.Colors[9].RGB(); r != 0x11 || g != 0x22 || b != 0x33 {
		t.Fatalf("color9 with trailing garbage = rgb(%d,%d,%d)", r, g, b)
	}
	// color0 (black) was never named in the file, so it must survive
	// untouched from the built-in default palette.
	if r, g, b := t0.Colors[0].RGB(); r != 0x2e || g != 0x34 || b != 0x36 {
		t.Fatalf("untouched color0 = rgb(%d,%d,%d), want default", r, g, b)
	}
}

func TestThemeCursorDefaultsToForegroundWhenUnset(t *testing.T) {
	t0 := DefaultTheme()
	content := "foreground = #abcdef\n"
	if err := t0.parse(strings.NewReader(content)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, _, cursor := t0.Apply()
	if r, g, b := cursor.RGB(); r != 0xab || g != 0xcd || b != 0xef {
		t.Fatalf("cursor = rgb(%d,%d,%d), want it to fall back to foreground", r, g, b)
	}
}

func TestThemeCursorExplicitOverride(t *testing.T) {
	t0 := DefaultTheme()
	content := "foreground = #abcdef\ncursor = #112233\n"
	if err := t0.parse(strings.NewReader(content)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, _, cursor := t0.Apply()
	if r, g, b := cursor.RGB(); r != 0x11 || g != 0x22 || b != 0x33 {
		t.Fatalf("cursor = rgb(%d,%d,%d), want explicit override to survive", r, g, b)
	}
}

func TestLoadThemeMissingFile(t *testing.T) {
	if _, err := LoadTheme("/nonexistent/path.theme"); err == nil {
		t.Fatal("expected error for missing theme file")
	}
}
