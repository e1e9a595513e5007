package osk

import "github.com/Stanley00/vaixterm/internal/keymap"

// KeyDescriptor is the tagged union of everything a single OSK key can
// do when selected, grounded on original_source/terminal_state.h's
// SpecialKeyType enum and SpecialKey struct, expressed as a Go sum type
// (an unexported marker method) in the idiom of aprilsh's
// parser.Action/terminal.Action interface hierarchies rather than as a
// C tagged struct.
type KeyDescriptor interface {
	isKeyDescriptor()
}

// Literal sends a fixed byte string to the PTY untranslated — the
// SK_STRING variant.
type Literal struct {
	Text string
}

func (Literal) isKeyDescriptor() {}

// Sequence synthesizes a keyboard event through the keymap encoder,
// combining this key's own modifiers with whatever one-shot/held
// modifiers are active at selection time — the SK_SEQUENCE variant.
type Sequence struct {
	Code keymap.Keycode
	Rune rune
	Mods keymap.Modifier
}

func (Sequence) isKeyDescriptor() {}

// Macro expands a template containing literal text interspersed with
// "{TOKEN}" key-name or modifier-name interpolations and "\{"/"\}"
// escapes for literal braces. original_source/terminal_state.h's enum has no
// separate SK_MACRO tag distinct from SK_STRING; per this module's
// Open Question resolution (see DESIGN.md) that distinction is carried
// here instead, as the Literal/Macro split in this sum type, rather than
// as a runtime tag check.
type Macro struct {
	Template string
}

func (Macro) isKeyDescriptor() {}

// ModToggle arms a one-shot modifier: the next non-modifier key
// selection consumes it, then it clears automatically (a Macro clears
// it only if the macro fired a key token) — the
// SK_MOD_CTRL/ALT/SHIFT/GUI variants collapsed into one type
// parameterized by which bit it arms.
type ModToggle struct {
	Mod keymap.Modifier
}

func (ModToggle) isKeyDescriptor() {}

// InternalCommandKey hands control back to the embedding application —
// the SK_INTERNAL_CMD variant. This package never interprets the
// command itself (fonts, cursor rendering, and terminal reset all live
// outside this module's scope); Model.TakeCommand lets an embedder pull
// and act on it.
type InternalCommandKey struct {
	Cmd InternalCommand
}

func (InternalCommandKey) isKeyDescriptor() {}

// LoadSet attaches the special-key set found at Path — the SK_LOAD_FILE
// variant.
type LoadSet struct {
	Path string
}

func (LoadSet) isKeyDescriptor() {}

// UnloadSet detaches the named special-key set — the SK_UNLOAD_FILE
// variant.
type UnloadSet struct {
	Name string
}

func (UnloadSet) isKeyDescriptor() {}

// InternalCommand enumerates the embedder-facing commands an
// InternalCommandKey can carry, matching original_source/
// terminal_state.h's InternalCommand enum.
type InternalCommand int

const (
	CmdNone InternalCommand = iota
	CmdFontIncrease
	CmdFontDecrease
	CmdCursorToggleVisibility
	CmdCursorToggleBlink
	CmdCursorCycleStyle
	CmdTerminalReset
	CmdTerminalClear
	CmdOSKTogglePosition
)
