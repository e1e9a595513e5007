package main

import (
	"github.com/Stanley00/vaixterm/internal/dispatch"
	"github.com/Stanley00/vaixterm/internal/keymap"
)

// decodedInput is what one read chunk of raw host-keyboard bytes
// resolves to: either a dispatch.Action (for the gesture set that
// doubles as OSK navigation, per spec §4.E) or a raw keymap.Key bound
// for the encoder directly. Exactly one of act/isAction or key is set.
type decodedInput struct {
	isAction bool
	act      dispatch.Action
	key      keymap.Key
	mods     keymap.Modifier
}

// toggleOSKByte is the demo's hotkey for cycling the on-screen keyboard
// (Ctrl-T): the real input device this spec was distilled from drives
// ActionToggleOSK from a controller button with no keyboard analog, so
// a host-keyboard demo needs to pick something; Ctrl-T is free in every
// shell's own binding table.
const toggleOSKByte = 0x14

// decodeStdin walks one read() chunk from the host keyboard and returns
// each decoded input in order plus the number of bytes consumed from
// buf for the last item it could fully decode (a trailing partial
// escape sequence is left for the next read). This is the reverse
// direction of internal/vt.Parser: that package turns host-bound PTY
// bytes into Grid mutations, this turns keyboard-bound stdin bytes into
// the same Action/Key vocabulary internal/dispatch and internal/keymap
// already consume, so cmd/deckterm never hand-encodes a PTY write.
func decodeStdin(buf []byte) ([]decodedInput, int) {
	var out []decodedInput
	i := 0
	for i < len(buf) {
		b := buf[i]
		switch {
		case b == 0x1b && i+1 < len(buf) && buf[i+1] == '[':
			n, act, key, ok := decodeCSI(buf[i:])
			if !ok {
				return out, i // incomplete sequence; wait for more bytes
			}
			if act != dispatch.ActionNone {
				out = append(out, decodedInput{isAction: true, act: act})
			} else {
				out = append(out, decodedInput{key: key})
			}
			i += n
		case b == toggleOSKByte:
			out = append(out, decodedInput{isAction: true, act: dispatch.ActionToggleOSK})
			i++
		case b == '\r' || b == '\n':
			out = append(out, decodedInput{isAction: true, act: dispatch.ActionEnter})
			i++
		case b == 0x7f || b == 0x08:
			out = append(out, decodedInput{isAction: true, act: dispatch.ActionBack})
			i++
		case b == '\t':
			out = append(out, decodedInput{isAction: true, act: dispatch.ActionTab})
			i++
		case b == ' ':
			out = append(out, decodedInput{isAction: true, act: dispatch.ActionSpace})
			i++
		case b == 0x1b:
			out = append(out, decodedInput{key: keymap.Key{Code: keymap.KeyEscape}})
			i++
		case b == 0x00:
			out = append(out, decodedInput{key: keymap.Key{Rune: ' '}, mods: keymap.ModCtrl})
			i++
		case b < 0x20:
			r := rune(b) + 'a' - 1
			out = append(out, decodedInput{key: keymap.Key{Rune: r}, mods: keymap.ModCtrl})
			i++
		default:
			r, size := decodeUTF8(buf[i:])
			out = append(out, decodedInput{key: keymap.Key{Rune: r}})
			i += size
		}
	}
	return out, i
}

// decodeCSI parses one `ESC [ ... final` sequence starting at buf[0],
// returning the bytes consumed and either a dispatch.Action (arrows,
// PageUp/Down map onto the shared navigation/scroll gesture set) or a
// keymap.Key for the remaining named keys xterm's CSI table defines.
// ok is false when buf doesn't yet contain a complete sequence.
func decodeCSI(buf []byte) (n int, act dispatch.Action, key keymap.Key, ok bool) {
	j := 2 // skip ESC [
	for j < len(buf) {
		c := buf[j]
		if c >= '0' && c <= '9' || c == ';' {
			j++
			continue
		}
		break
	}
	if j >= len(buf) {
		return 0, dispatch.ActionNone, keymap.Key{}, false
	}
	final := buf[j]
	params := string(buf[2:j])
	n = j + 1
	switch final {
	case 'A':
		return n, dispatch.ActionUp, keymap.Key{}, true
	case 'B':
		return n, dispatch.ActionDown, keymap.Key{}, true
	case 'C':
		return n, dispatch.ActionRight, keymap.Key{}, true
	case 'D':
		return n, dispatch.ActionLeft, keymap.Key{}, true
	case 'H':
		return n, dispatch.ActionNone, keymap.Key{Code: keymap.KeyHome}, true
	case 'F':
		return n, dispatch.ActionNone, keymap.Key{Code: keymap.KeyEnd}, true
	case '~':
		switch params {
		case "1":
			return n, dispatch.ActionNone, keymap.Key{Code: keymap.KeyHome}, true
		case "2":
			return n, dispatch.ActionNone, keymap.Key{Code: keymap.KeyInsert}, true
		case "3":
			return n, dispatch.ActionNone, keymap.Key{Code: keymap.KeyDelete}, true
		case "4":
			return n, dispatch.ActionNone, keymap.Key{Code: keymap.KeyEnd}, true
		case "5":
			return n, dispatch.ActionScrollUp, keymap.Key{}, true
		case "6":
			return n, dispatch.ActionScrollDown, keymap.Key{}, true
		}
	}
	return n, dispatch.ActionNone, keymap.Key{Code: keymap.KeyEscape}, true
}

// decodeUTF8 decodes the single rune at the start of buf, matching the
// minimal continuation-byte-counting internal/vt.Parser's UTF-8 decoder
// already does for the inbound PTY stream.
func decodeUTF8(buf []byte) (rune, int) {
	b0 := buf[0]
	var n int
	switch {
	case b0&0x80 == 0:
		return rune(b0), 1
	case b0&0xE0 == 0xC0:
		n = 2
	case b0&0xF0 == 0xE0:
		n = 3
	case b0&0xF8 == 0xF0:
		n = 4
	default:
		return rune(b0), 1
	}
	if len(buf) < n {
		return rune(b0), 1
	}
	r := rune(b0 & (0xFF >> (n + 1)))
	for i := 1; i < n; i++ {
		r = r<<6 | rune(buf[i]&0x3F)
	}
	return r, n
}
