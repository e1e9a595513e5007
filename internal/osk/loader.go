package osk

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Stanley00/vaixterm/internal/keymap"
)

// This file parses the two on-disk formats named in
// original_source/terminal_state.h and implemented by osk.c's
// parse_layout_content / process_layout_line (`.kb`) and
// parse_key_set_line (`.keys`).
//
// `.kb`: `[section]` headers introduce one layer each, where `section`
// is `default`/`normal` or a `+`/`,`-separated list of `shift`, `ctrl`,
// `alt`, `gui` naming the mask that makes the layer active, optionally
// followed by `:` and a second such list naming the mask the layer's
// keys carry when emitted. Every following line up to the next header
// is one row, scanned character by character: a `{TOKEN}` from the
// fixed table below, a `\`-escaped literal character, or any other
// UTF-8 character taken literally. A row that is exactly `{DEFAULT}`
// is a whole-row fallback marker; `{N/A}` inside a row is a per-key
// fallback marker.
//
// `.keys`: one key per line, `display:value[:extra]` with `:`
// escapable as `\:`. `value` is a quoted Literal/Macro, a `LOAD_FILE`/
// `UNLOAD_FILE` directive (path/name taken from `extra`), a `CMD_*`
// internal-command name, or a keycode name (`extra` then holds a
// comma-separated modifier list).

// layoutToken is one entry of the `.kb` row grammar's fixed token
// table, ordered longest-token-first so a prefix match (e.g. {F1}
// against {F10}) never shadows the longer token.
type layoutToken struct {
	token string
	build func() KeyDescriptor
}

var layoutTokens = []layoutToken{
	{"{DEFAULT}", func() KeyDescriptor { return nil }},
	{"{ENTER}", func() KeyDescriptor { return Sequence{Code: keymap.KeyEnter} }},
	{"{SPACE}", func() KeyDescriptor { return Sequence{Rune: ' '} }},
	{"{SHIFT}", func() KeyDescriptor { return ModToggle{Mod: keymap.ModShift} }},
	{"{RIGHT}", func() KeyDescriptor { return Sequence{Code: keymap.KeyRight} }},
	{"{PGUP}", func() KeyDescriptor { return Sequence{Code: keymap.KeyPageUp} }},
	{"{PGDN}", func() KeyDescriptor { return Sequence{Code: keymap.KeyPageDown} }},
	{"{CTRL}", func() KeyDescriptor { return ModToggle{Mod: keymap.ModCtrl} }},
	{"{LEFT}", func() KeyDescriptor { return Sequence{Code: keymap.KeyLeft} }},
	{"{HOME}", func() KeyDescriptor { return Sequence{Code: keymap.KeyHome} }},
	{"{DOWN}", func() KeyDescriptor { return Sequence{Code: keymap.KeyDown} }},
	{"{F10}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF10} }},
	{"{F11}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF11} }},
	{"{F12}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF12} }},
	{"{N/A}", func() KeyDescriptor { return nil }},
	{"{ESC}", func() KeyDescriptor { return Sequence{Code: keymap.KeyEscape} }},
	{"{TAB}", func() KeyDescriptor { return Sequence{Code: keymap.KeyTab} }},
	{"{END}", func() KeyDescriptor { return Sequence{Code: keymap.KeyEnd} }},
	{"{INS}", func() KeyDescriptor { return Sequence{Code: keymap.KeyInsert} }},
	{"{DEL}", func() KeyDescriptor { return Sequence{Code: keymap.KeyDelete} }},
	{"{ALT}", func() KeyDescriptor { return ModToggle{Mod: keymap.ModAlt} }},
	{"{GUI}", func() KeyDescriptor { return ModToggle{Mod: keymap.ModGui} }},
	{"{UP}", func() KeyDescriptor { return Sequence{Code: keymap.KeyUp} }},
	{"{BS}", func() KeyDescriptor { return Sequence{Code: keymap.KeyBackspace} }},
	{"{F1}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF1} }},
	{"{F2}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF2} }},
	{"{F3}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF3} }},
	{"{F4}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF4} }},
	{"{F5}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF5} }},
	{"{F6}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF6} }},
	{"{F7}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF7} }},
	{"{F8}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF8} }},
	{"{F9}", func() KeyDescriptor { return Sequence{Code: keymap.KeyF9} }},
}

func matchLayoutToken(s string) *layoutToken {
	for i := range layoutTokens {
		if strings.HasPrefix(s, layoutTokens[i].token) {
			return &layoutTokens[i]
		}
	}
	return nil
}

// literalOrSequence mirrors process_layout_line's rule for an
// unrecognized character: a single printable-ASCII rune becomes a
// Sequence on its own rune (so modifier handling stays uniform with
// named keys), anything else becomes a Literal.
func literalOrSequence(r rune) KeyDescriptor {
	if r >= 0x20 && r <= 0x7E {
		return Sequence{Rune: r}
	}
	return Literal{Text: string(r)}
}

// tokenizeRow splits one `.kb` row line into its key descriptors.
func tokenizeRow(line string) []KeyDescriptor {
	var keys []KeyDescriptor
	for len(line) > 0 {
		if line[0] == '{' {
			if tok := matchLayoutToken(line); tok != nil {
				keys = append(keys, tok.build())
				line = line[len(tok.token):]
				continue
			}
		}
		if line[0] == '\\' && len(line) > 1 {
			line = line[1:]
		}
		r, size := utf8.DecodeRuneInString(line)
		keys = append(keys, literalOrSequence(r))
		line = line[size:]
	}
	return keys
}

// parseModMaskName parses a `+`/`,`-separated list of modifier words
// into a mask, case-insensitively, matching osk.c's
// get_modifier_mask_from_name_part.
func parseModMaskName(s string) (uint8, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	var mask uint8
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' }) {
		switch strings.TrimSpace(tok) {
		case "", "default", "normal":
		case "shift":
			mask |= uint8(keymap.ModShift)
		case "ctrl", "ctl":
			mask |= uint8(keymap.ModCtrl)
		case "alt":
			mask |= uint8(keymap.ModAlt)
		case "gui", "win", "super":
			mask |= uint8(keymap.ModGui)
		default:
			return 0, fmt.Errorf("osk: unknown modifier %q", tok)
		}
	}
	return mask, nil
}

// parseSectionHeader splits a `.kb` section name on the first `:` into
// its show-mask and active-mask parts, matching
// osk.c's parse_section_header_masks.
func parseSectionHeader(name string) (showMask, activeMask uint8, err error) {
	showPart, activePart, hasActive := strings.Cut(name, ":")
	showMask, err = parseModMaskName(showPart)
	if err != nil {
		return 0, 0, err
	}
	if hasActive {
		activeMask, err = parseModMaskName(activePart)
		if err != nil {
			return 0, 0, err
		}
	}
	return showMask, activeMask, nil
}

// parseLayoutContent turns a whole `.kb` file's text into one Layer
// per declared section, matching osk.c's parse_layout_content.
func parseLayoutContent(content string) (map[uint8]*Layer, error) {
	layers := map[uint8]*Layer{}
	var curMask uint8
	inSection := false

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			showMask, activeMask, err := parseSectionHeader(line[1 : len(line)-1])
			if err != nil {
				return nil, fmt.Errorf("osk: invalid section header %q: %w", line, err)
			}
			curMask = showMask
			inSection = true
			layer := layers[curMask]
			if layer == nil {
				layers[curMask] = &Layer{ActiveModMask: activeMask}
			} else {
				layer.ActiveModMask = activeMask
			}
			continue
		}
		if !inSection {
			continue
		}
		layer := layers[curMask]
		if line == "{DEFAULT}" {
			layer.Rows = append(layer.Rows, Row{IsDefault: true})
			continue
		}
		layer.Rows = append(layer.Rows, Row{Keys: tokenizeRow(line)})
	}
	if _, ok := layers[0]; !ok {
		return nil, fmt.Errorf("osk: layout has no [default] section")
	}
	return layers, nil
}

// LoadLayoutFile parses a `.kb` file and installs one Layer per
// declared section into m via SetLayer.
func LoadLayoutFile(m *Model, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	layers, err := parseLayoutContent(string(data))
	if err != nil {
		return err
	}
	for mask, layer := range layers {
		m.SetLayer(mask, layer)
	}
	return nil
}

// splitKeysLine splits a `.keys` line into its display/value/extra
// fields on the first two unescaped `:` characters, matching
// osk.c's parse_key_set_line three-buffer state machine: a `\`
// escapes the character that follows it, and colons inside the third
// field (extra) are no longer treated as separators.
func splitKeysLine(line string) (display, value, extra string) {
	var bufs [3]strings.Builder
	idx := 0
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\\' && i+1 < len(runes):
			i++
			bufs[idx].WriteRune(runes[i])
		case r == ':' && idx < 2:
			idx++
		default:
			bufs[idx].WriteRune(r)
		}
	}
	return bufs[0].String(), bufs[1].String(), bufs[2].String()
}

func parseCmdName(s string) (InternalCommand, bool) {
	switch strings.ToUpper(s) {
	case "CMD_FONT_INC":
		return CmdFontIncrease, true
	case "CMD_FONT_DEC":
		return CmdFontDecrease, true
	case "CMD_CURSOR_TOGGLE_VISIBILITY":
		return CmdCursorToggleVisibility, true
	case "CMD_CURSOR_TOGGLE_BLINK":
		return CmdCursorToggleBlink, true
	case "CMD_CURSOR_CYCLE_STYLE":
		return CmdCursorCycleStyle, true
	case "CMD_TERMINAL_RESET":
		return CmdTerminalReset, true
	case "CMD_TERMINAL_CLEAR":
		return CmdTerminalClear, true
	case "CMD_OSK_TOGGLE_POSITION":
		return CmdOSKTogglePosition, true
	default:
		return CmdNone, false
	}
}

// parseKeysKeycodeAlias resolves a `.keys` value field to a keycode,
// trying the short aliases osk.c's parse_key_set_line special-cases
// before falling back to the full keycode name table.
func parseKeysKeycodeAlias(value string) (keymap.Keycode, bool) {
	switch strings.ToUpper(value) {
	case "ESC":
		return keymap.KeyEscape, true
	case "ENTER":
		return keymap.KeyEnter, true
	case "BS", "BACKSPACE":
		return keymap.KeyBackspace, true
	case "DEL", "DELETE":
		return keymap.KeyDelete, true
	case "PGUP", "PAGEUP":
		return keymap.KeyPageUp, true
	case "PGDN", "PAGEDOWN":
		return keymap.KeyPageDown, true
	case "TAB":
		return keymap.KeyTab, true
	}
	return keymap.ParseKeycodeName(value)
}

func parseExtraMods(extra string) (keymap.Modifier, error) {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return 0, nil
	}
	var mods keymap.Modifier
	for _, tok := range strings.Split(extra, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "":
		case "ctrl":
			mods |= keymap.ModCtrl
		case "alt":
			mods |= keymap.ModAlt
		case "shift":
			mods |= keymap.ModShift
		case "gui", "win", "super":
			mods |= keymap.ModGui
		default:
			return 0, fmt.Errorf("osk: unknown modifier %q", tok)
		}
	}
	return mods, nil
}

// hasMacroToken reports whether s contains an unescaped '{', the
// signal osk.c's parse_key_set_line uses to distinguish a plain
// Literal from a Macro template.
func hasMacroToken(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '{' {
			return true
		}
	}
	return false
}

// parseKeysValue resolves a `.keys` line's value/extra fields into a
// KeyDescriptor, matching osk.c's parse_key_set_line dispatch order:
// LOAD_FILE/UNLOAD_FILE, then CMD_* names, then a quoted
// Literal/Macro, then a keycode name with extra as its modifier list.
func parseKeysValue(value, extra string) (KeyDescriptor, error) {
	switch strings.ToUpper(value) {
	case "LOAD_FILE":
		return LoadSet{Path: extra}, nil
	case "UNLOAD_FILE":
		return UnloadSet{Name: extra}, nil
	}
	if cmd, ok := parseCmdName(value); ok {
		return InternalCommandKey{Cmd: cmd}, nil
	}
	if n := len(value); n >= 2 && value[0] == '"' && value[n-1] == '"' {
		content := value[1 : n-1]
		if hasMacroToken(content) {
			return Macro{Template: content}, nil
		}
		return Literal{Text: strings.ReplaceAll(content, `\{`, "{")}, nil
	}
	if code, ok := parseKeysKeycodeAlias(value); ok {
		mods, err := parseExtraMods(extra)
		if err != nil {
			return nil, err
		}
		return Sequence{Code: code, Mods: mods}, nil
	}
	if r := []rune(value); len(r) == 1 {
		mods, err := parseExtraMods(extra)
		if err != nil {
			return nil, err
		}
		return Sequence{Rune: r[0], Mods: mods}, nil
	}
	return nil, fmt.Errorf("osk: unknown key value %q", value)
}

// baseNameWithoutExt strips a directory and the given suffix from
// path, matching osk.c's add_to_available_list basename-minus-
// extension derivation of a dynamic set's display name.
func baseNameWithoutExt(path, ext string) string {
	name := path
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ext)
}

// loadKeysFile parses a `.keys` file into its set name and flat key
// list. Sets loaded from a file always carry a zero ActiveModMask,
// matching osk.c's osk_add_custom_set (only a statically seeded set,
// via Model.LoadKeySet, can declare one).
func loadKeysFile(path string, log *slog.Logger) (string, []KeyDescriptor, uint8, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, 0, err
	}

	var keys []KeyDescriptor
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		display, value, extra := splitKeysLine(line)
		if display == "" || value == "" {
			continue
		}
		desc, err := parseKeysValue(value, extra)
		if err != nil {
			if log != nil {
				log.Debug("osk: skipping malformed .keys line", "path", path, "line", i+1, "err", err)
			}
			continue
		}
		keys = append(keys, desc)
	}
	return baseNameWithoutExt(path, ".keys"), keys, 0, nil
}
