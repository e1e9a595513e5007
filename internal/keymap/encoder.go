// Package keymap implements component C: translating an abstract key
// press (a keycode plus an active modifier set) into the exact byte
// sequence a real keyboard attached to this terminal would have sent to
// the shell. The precedence table and every literal sequence below are
// grounded on original_source/input.c's send_key_event (the C
// implementation this was distilled from) and on the SS3-vs-CSI
// application-cursor-mode switch in aprilsh's terminal/input.go
// UserInput.parse, generalized from that function's 2-state lookahead
// into a direct table lookup since this encoder is handed a fully formed
// keycode rather than a raw byte stream to disambiguate.
package keymap

import "strconv"

// Modifier is a bitmask of held modifier keys, ordered to match
// original_source/terminal_state.h's OSK_MOD_* bit layout so the OSK
// package's modifier mask can be passed straight through.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModGui
)

func (m Modifier) has(want Modifier) bool { return m&want == want }

// Keycode enumerates the non-printable keys this encoder knows how to
// translate. Printable keys are carried through Key.Rune instead.
type Keycode int

const (
	KeyNone Keycode = iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyBackspace
	KeyTab
	KeyEnter
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Key is one physical key: either a printable rune (Code left at
// KeyNone) or a named non-printable Code (Rune left at 0).
type Key struct {
	Rune rune
	Code Keycode
}

// Mode carries the subset of terminal state that changes how a key
// encodes: DECCKM (application cursor keys).
type Mode struct {
	ApplicationCursor bool
}

// Encoder turns (Key, Modifier, Mode) triples into PTY-bound bytes. It
// holds no mutable state; one Encoder can be shared across a session.
type Encoder struct{}

// NewEncoder returns a ready-to-use Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// ctrlArrow is the fixed Ctrl+arrow literal table, matching input.c's
// Ctrl-combo map entries for the four arrow keys.
var ctrlArrow = map[Keycode]string{
	KeyLeft:  "\x1b[1;5D",
	KeyRight: "\x1b[1;5C",
	KeyUp:    "\x1b[1;5A",
	KeyDown:  "\x1b[1;5B",
}

// specialSeq gives the default (non-application-cursor, non-SS3) escape
// sequence for a non-arrow/home/end special key, matching the
// KEY_SEQ_* literal table in original_source/terminal_state.h.
var specialSeq = map[Keycode]string{
	KeyPageUp:   "\x1b[5~",
	KeyPageDown: "\x1b[6~",
	KeyInsert:   "\x1b[2~",
	KeyDelete:   "\x1b[3~",
	KeyF1:       "\x1bOP",
	KeyF2:       "\x1bOQ",
	KeyF3:       "\x1bOR",
	KeyF4:       "\x1bOS",
	KeyF5:       "\x1b[15~",
	KeyF6:       "\x1b[17~",
	KeyF7:       "\x1b[18~",
	KeyF8:       "\x1b[19~",
	KeyF9:       "\x1b[20~",
	KeyF10:      "\x1b[21~",
	KeyF11:      "\x1b[23~",
	KeyF12:      "\x1b[24~",
}

// cursorLetter gives the CSI/SS3 final letter for the four keys whose
// encoding depends on DECCKM.
var cursorLetter = map[Keycode]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
	KeyHome:  'H',
	KeyEnd:   'F',
}

// Encode returns the byte sequence to send to the PTY for the given key
// press, following the same priority ordering as
// original_source/input.c's send_key_event:
//
//  1. Ctrl+letter (a-z, case-insensitive) collapses to a C0 control byte.
//  2. Ctrl+Space sends NUL.
//  3. Ctrl+arrow sends its fixed CSI ...;5 literal.
//  4. Alt+printable/digit sends ESC then the character, uppercased if
//     Shift is also held.
//  5. Alt+Backspace/f/b send their fixed ESC literal.
//  6. Arrow/Home/End switch between the CSI and SS3 final forms
//     depending on Mode.ApplicationCursor.
//  7. Every other named key falls back to its fixed xterm sequence.
//  8. Printable ASCII is sent as-is, uppercased if Shift is held.
func (enc *Encoder) Encode(k Key, mods Modifier, mode Mode) []byte {
	if mods.has(ModCtrl) {
		if k.Rune != 0 {
			r := k.Rune
			if r >= 'a' && r <= 'z' {
				return []byte{byte(r) &^ 0x60}
			}
			if r >= 'A' && r <= 'Z' {
				return []byte{byte(r) &^ 0x60}
			}
			if r == ' ' {
				return []byte{0x00}
			}
		}
		if seq, ok := ctrlArrow[k.Code]; ok {
			return []byte(seq)
		}
	}

	if mods.has(ModAlt) {
		if k.Code == KeyNone && isAltPrintable(k.Rune) {
			r := k.Rune
			if mods.has(ModShift) && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			return []byte{0x1B, byte(r)}
		}
		switch k.Code {
		case KeyBackspace:
			return []byte{0x1B, 0x7F}
		case KeyNone:
			if k.Rune == 'f' || k.Rune == 'b' {
				return []byte{0x1B, byte(k.Rune)}
			}
		}
	}

	if letter, ok := cursorLetter[k.Code]; ok {
		if mode.ApplicationCursor {
			return []byte{0x1B, 'O', letter}
		}
		return []byte{0x1B, '[', letter}
	}

	if seq, ok := specialSeq[k.Code]; ok {
		return []byte(seq)
	}

	switch k.Code {
	case KeyEnter:
		return []byte{'\r'}
	case KeyBackspace:
		return []byte{0x7F}
	case KeyTab:
		return []byte{'\t'}
	case KeyEscape:
		return []byte{0x1B}
	}

	if k.Rune >= ' ' && k.Rune <= '~' {
		r := k.Rune
		if mods.has(ModShift) && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		return []byte(string(r))
	}
	return nil
}

// isAltPrintable reports whether r falls in the Alt+printable/digit range
// input.c checks before falling back to its named Alt-combo map (SPACE
// through lowercase z, plus 0-9).
func isAltPrintable(r rune) bool {
	return (r >= ' ' && r <= 'z') || (r >= '0' && r <= '9')
}

// FunctionKeySequence exposes the fixed Fn escape sequence table for
// callers (the OSK's Sequence key descriptor) that address function keys
// by number rather than by Keycode constant.
func FunctionKeySequence(n int) (string, bool) {
	code := KeyF1 + Keycode(n-1)
	seq, ok := specialSeq[code]
	if !ok {
		return "", false
	}
	return seq, true
}

// ParseKeycodeName maps the `.kb`/`.keys` file grammar's bareword key
// names (e.g. "Up", "F5") onto a Keycode, used by the osk package's
// layout loader.
func ParseKeycodeName(name string) (Keycode, bool) {
	switch name {
	case "Up":
		return KeyUp, true
	case "Down":
		return KeyDown, true
	case "Left":
		return KeyLeft, true
	case "Right":
		return KeyRight, true
	case "Home":
		return KeyHome, true
	case "End":
		return KeyEnd, true
	case "PageUp":
		return KeyPageUp, true
	case "PageDown":
		return KeyPageDown, true
	case "Insert":
		return KeyInsert, true
	case "Delete":
		return KeyDelete, true
	case "Backspace":
		return KeyBackspace, true
	case "Tab":
		return KeyTab, true
	case "Enter":
		return KeyEnter, true
	case "Escape":
		return KeyEscape, true
	default:
		if len(name) >= 2 && name[0] == 'F' {
			if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 12 {
				return KeyF1 + Keycode(n-1), true
			}
		}
	}
	return KeyNone, false
}
