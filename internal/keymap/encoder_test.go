package keymap

import "testing"

func TestEncode_CtrlLetter(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Rune: 'a'}, ModCtrl, Mode{})
	if string(got) != "\x01" {
		t.Fatalf("Ctrl+a = %q, want \\x01", got)
	}
}

func TestEncode_CtrlSpace(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Rune: ' '}, ModCtrl, Mode{})
	if string(got) != "\x00" {
		t.Fatalf("Ctrl+Space = %q, want NUL", got)
	}
}

func TestEncode_ArrowApplicationCursorMode(t *testing.T) {
	enc := NewEncoder()
	normal := enc.Encode(Key{Code: KeyUp}, 0, Mode{ApplicationCursor: false})
	app := enc.Encode(Key{Code: KeyUp}, 0, Mode{ApplicationCursor: true})
	if string(normal) != "\x1b[A" {
		t.Fatalf("normal-mode Up = %q, want ESC [ A", normal)
	}
	if string(app) != "\x1bOA" {
		t.Fatalf("app-mode Up = %q, want SS3 A", app)
	}
}

func TestEncode_AltPrefixesEscape(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Rune: 'x'}, ModAlt, Mode{})
	if string(got) != "\x1bx" {
		t.Fatalf("Alt+x = %q, want ESC x", got)
	}
}

func TestEncode_Backspace(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Code: KeyBackspace}, 0, Mode{})
	if string(got) != "\x7f" {
		t.Fatalf("Backspace = %q, want DEL", got)
	}
}

func TestEncode_AltBackspace(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Code: KeyBackspace}, ModAlt, Mode{})
	if string(got) != "\x1b\x7f" {
		t.Fatalf("Alt+Backspace = %q, want ESC DEL", got)
	}
}

func TestEncode_CtrlArrow(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Code: KeyLeft}, ModCtrl, Mode{})
	if string(got) != "\x1b[1;5D" {
		t.Fatalf("Ctrl+Left = %q, want ESC [1;5D", got)
	}
}

func TestEncode_AltArrowNoEscapePrefix(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Code: KeyUp}, ModAlt, Mode{})
	if string(got) != "\x1b[A" {
		t.Fatalf("Alt+Up = %q, want plain Up sequence (no ESC prefix)", got)
	}
}

func TestEncode_AltShiftUppercases(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Rune: 'x'}, ModAlt|ModShift, Mode{})
	if string(got) != "\x1bX" {
		t.Fatalf("Alt+Shift+x = %q, want ESC X", got)
	}
}

func TestEncode_PrintableFallback(t *testing.T) {
	enc := NewEncoder()
	got := enc.Encode(Key{Rune: 'Z'}, 0, Mode{})
	if string(got) != "Z" {
		t.Fatalf("printable Z = %q", got)
	}
}
