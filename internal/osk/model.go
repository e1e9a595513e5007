// Package osk implements component D: the on-screen keyboard's logical
// model — layout selection, modifier bookkeeping, macro expansion, and
// key selection — independent of how any of it gets drawn. Rendering,
// hit-testing, and font metrics are this module's explicit non-goals;
// Model exposes only what a renderer needs to query (NumRows, KeyAt,
// EffectiveModifiers, ModifierIndicatorBits) and what input handling
// needs to drive (Move*, Select, TakeCommand).
//
// Grounded throughout on original_source/osk.c and
// original_source/terminal_state.h's OSKLayout/OSKRow/SpecialKey
// structs, reworked from that file's pointer-heavy C layout into a
// value-oriented Go model in the idiom of aprilsh's terminal state
// types (terminal/terminal.go's Framebuffer holding plain slices rather
// than linked structures).
package osk

import (
	"log/slog"

	"github.com/Stanley00/vaixterm/internal/keymap"
)

// Row is one row of a layer's layout. A nil Keys slice (IsDefault true)
// means "fall back to the next layer down for this row index" — the
// OSKLayout DEFAULT-row sentinel.
type Row struct {
	Keys      []KeyDescriptor
	IsDefault bool
}

// Layer is the full set of rows shown while a particular modifier-mask
// combination is held, one of the 16 entries in Model.layers. A key
// slot of nil within Keys is the per-key N/A sentinel: the bit-descent
// fallback in effectiveKey tries the same row/column in the next layer
// down, and Select is a no-op only if no layer supplies a key there.
type Layer struct {
	Rows []Row

	// ActiveModMask is the modifier mask this layer's keys carry when
	// emitted, declared by a `.kb` section header's `:active_mods`
	// suffix — distinct from the mask that selects the layer itself.
	ActiveModMask uint8
}

// Mode distinguishes the two OSK presentation modes named in the
// original's osk_mode, mirrored here even though this package does no
// drawing: Chars mode shows the layered character layout, Special mode
// shows the active SpecialKeySet page.
type Mode int

const (
	ModeChars Mode = iota
	ModeSpecial
)

// PositionMode records which screen edge the OSK is docked to, toggled
// by CmdOSKTogglePosition; purely informational for this package's
// purposes since layout/geometry belongs to the renderer.
type PositionMode int

const (
	PositionBottom PositionMode = iota
	PositionTop
)

// Model is the on-screen keyboard's full logical state.
type Model struct {
	Active       bool
	OSKMode      Mode
	PositionMode PositionMode

	layers [16]*Layer

	rowIdx  int
	charIdx int

	setIdx     int
	setCharIdx int

	heldMods    keymap.Modifier
	oneShotMods keymap.Modifier

	sets              []*SpecialKeySet
	available         []dynamicSetRef
	staticControlKeys []KeyDescriptor

	pendingCmd InternalCommand

	generation uint64

	encoder  *keymap.Encoder
	writePTY func([]byte)
	termMode keymap.Mode

	log *slog.Logger
}

// NewModel builds an OSK model with an empty Chars layout (callers
// install layers via SetLayer) and a CONTROL special-key set seeded
// from staticKeys — the fixed entries original_source/osk.c wires in
// before any dynamic set is discovered, e.g. mode-switch and
// font-size keys.
func NewModel(staticControlKeys []KeyDescriptor, writePTY func([]byte), termMode keymap.Mode, log *slog.Logger) *Model {
	m := &Model{
		staticControlKeys: staticControlKeys,
		encoder:           keymap.NewEncoder(),
		writePTY:          writePTY,
		termMode:          termMode,
		log:               log,
	}
	m.sets = []*SpecialKeySet{{Name: controlSetName, Keys: append([]KeyDescriptor{}, staticControlKeys...)}}
	return m
}

// SetLayer installs the layout shown for the given modifier mask
// (0-15, matching keymap.Modifier's bit layout over Shift/Ctrl/Alt/Gui).
func (m *Model) SetLayer(mask uint8, layer *Layer) {
	if mask > 15 {
		return
	}
	m.layers[mask] = layer
	m.generation++
}

// Generation returns a counter bumped on every state change that could
// invalidate a cached render, replacing original_source/osk.c's direct
// "mark dirty" render-cache call with a value a renderer can poll and
// compare, per this module's render-cache Open Question decision.
func (m *Model) Generation() uint64 { return m.generation }

// currentMask is the modifier mask driving Chars-mode layer selection:
// held and one-shot modifiers both select a layer, matching
// original_source/osk.c's treatment of either kind of active modifier
// as equally layout-affecting.
func (m *Model) currentMask() uint8 {
	return uint8(m.heldMods | m.oneShotMods)
}

// effectiveRow resolves row i for a given mask by repeatedly clearing
// the mask's lowest set bit until a layer defines a concrete (non-
// DEFAULT, in-range) row at that index or the mask reaches 0, matching
// original_source/osk.c's layer-fallback descent for whole rows.
func (m *Model) effectiveRow(mask uint8, i int) (Row, bool) {
	for {
		if layer := m.layers[mask]; layer != nil && i < len(layer.Rows) {
			row := layer.Rows[i]
			if !row.IsDefault {
				return row, true
			}
		}
		if mask == 0 {
			return Row{}, false
		}
		mask &= mask - 1
	}
}

// effectiveKey resolves key j of row i the same way, but per-key: a
// present row with a nil slot at j still falls through to the next
// layer down rather than stopping at the row level, matching
// original_source/osk.c's N/A-key sentinel.
func (m *Model) effectiveKey(mask uint8, i, j int) KeyDescriptor {
	for {
		if row, ok := m.effectiveRow(mask, i); ok && j < len(row.Keys) && row.Keys[j] != nil {
			return row.Keys[j]
		}
		if mask == 0 {
			return nil
		}
		mask &= mask - 1
	}
}

// NumRows returns the row count of the layout currently on screen: the
// base (mask-0) Chars layer's row count, or the active special set's
// key count collapsed to a single row, matching how original_source's
// renderer sizes its grid before asking for individual cells.
func (m *Model) NumRows() int {
	if m.OSKMode == ModeSpecial {
		return 1
	}
	if layer := m.layers[0]; layer != nil {
		return len(layer.Rows)
	}
	return 0
}

// RowLen returns how many key slots row i has, after bit-descent
// fallback resolves which layer actually supplies it.
func (m *Model) RowLen(i int) int {
	if m.OSKMode == ModeSpecial {
		if m.setIdx < len(m.sets) {
			return len(m.sets[m.setIdx].Keys)
		}
		return 0
	}
	row, ok := m.effectiveRow(m.currentMask(), i)
	if !ok {
		return 0
	}
	return len(row.Keys)
}

// KeyAt returns the resolved descriptor for row i, column j of whatever
// is currently displayed (Chars layer or Special set), for a renderer
// to label without duplicating the fallback logic.
func (m *Model) KeyAt(i, j int) KeyDescriptor {
	if m.OSKMode == ModeSpecial {
		if m.setIdx >= len(m.sets) {
			return nil
		}
		keys := m.sets[m.setIdx].Keys
		if j < 0 || j >= len(keys) {
			return nil
		}
		return keys[j]
	}
	return m.effectiveKey(m.currentMask(), i, j)
}

// consumedMods reports which bits of the held/one-shot mask are already
// visually represented by a dedicated populated layer, and so should
// not also be forwarded to the keymap encoder — matching
// original_source/osk.c's distinction between a modifier that switched
// the displayed layout and one that didn't (e.g. Gui with no Gui-layer
// defined still needs to reach the encoder).
func (m *Model) consumedMods(mask uint8) keymap.Modifier {
	var consumed keymap.Modifier
	for bit := keymap.Modifier(1); bit <= keymap.ModGui; bit <<= 1 {
		if mask&uint8(bit) == 0 {
			continue
		}
		if layer := m.layers[uint8(bit)]; layer != nil && len(layer.Rows) > 0 {
			consumed |= bit
		}
	}
	return consumed
}

// EffectiveModifiers is the modifier set a Sequence/Macro selection
// should carry to the keymap encoder: every held or one-shot modifier,
// minus whichever bits a dedicated layer already spent on layout
// selection.
func (m *Model) EffectiveModifiers() keymap.Modifier {
	all := m.heldMods | m.oneShotMods
	return all &^ m.consumedMods(m.currentMask())
}

// ModifierIndicatorBits ORs together the held mask, the one-shot mask,
// and the active set or layer's declared ActiveModMask, for a renderer
// to light up modifier indicator glyphs — grounded on
// original_source/osk.c's render_modifier_indicators three-way OR
// (which reads row->active_mod_mask in Chars mode and
// set->active_mod_mask in Special mode).
func (m *Model) ModifierIndicatorBits() keymap.Modifier {
	bits := m.heldMods | m.oneShotMods
	if m.OSKMode == ModeSpecial {
		if m.setIdx < len(m.sets) {
			bits |= keymap.Modifier(m.sets[m.setIdx].ActiveModMask)
		}
	} else {
		bits |= keymap.Modifier(m.effectiveLayerActiveMask(m.currentMask()))
	}
	return bits
}

// effectiveLayerActiveMask descends the same bit-clearing chain as
// effectiveRow, at layer granularity, to find the declared
// ActiveModMask of whichever layer is actually supplying the display.
func (m *Model) effectiveLayerActiveMask(mask uint8) uint8 {
	for {
		if layer := m.layers[mask]; layer != nil {
			return layer.ActiveModMask
		}
		if mask == 0 {
			return 0
		}
		mask &= mask - 1
	}
}

// HasOneShotModifiers reports whether any one-shot modifier is
// currently armed, the condition ActionToggleOSK's three-state cycle
// checks to decide whether leaving Special mode lands back in Chars
// (so the armed modifier can still be combined with a character) or
// turns the OSK off outright.
func (m *Model) HasOneShotModifiers() bool { return m.oneShotMods != 0 }

// HoldModifier toggles a held (sticky-until-toggled-off) modifier.
func (m *Model) HoldModifier(mod keymap.Modifier) {
	m.heldMods ^= mod
	m.generation++
}

// ArmOneShot sets a modifier that is consumed by the very next
// Sequence or Macro selection and then cleared, regardless of whether
// that selection actually used it.
func (m *Model) ArmOneShot(mod keymap.Modifier) {
	m.oneShotMods |= mod
	m.generation++
}

// ClearOneShotModifiers clears any armed one-shot modifier, exported
// for the dispatcher's Back/Space/Tab/Enter synthesis (spec's Chars-
// mode navigation rule) which must clear one-shots itself rather than
// through a Sequence/Macro/Literal selection.
func (m *Model) ClearOneShotModifiers() { m.clearOneShot() }

func (m *Model) clearOneShot() {
	if m.oneShotMods != 0 {
		m.oneShotMods = 0
		m.generation++
	}
}

// ToggleOneShot flips a one-shot modifier on or off, the ModToggle key
// descriptor's action — distinct from HoldModifier, which tracks a
// physically-held modifier button rather than an OSK toggle key.
func (m *Model) ToggleOneShot(mod keymap.Modifier) {
	m.oneShotMods ^= mod
	m.generation++
}

// MoveRow / MoveCol move the Chars-mode cursor, clamping to the
// resolved layout's current bounds.
func (m *Model) MoveRow(delta int) {
	n := m.NumRows()
	if n == 0 {
		return
	}
	m.rowIdx = clampInt(m.rowIdx+delta, 0, n-1)
	m.charIdx = clampInt(m.charIdx, 0, maxInt(m.RowLen(m.rowIdx)-1, 0))
	m.generation++
}

func (m *Model) MoveCol(delta int) {
	n := m.RowLen(m.rowIdx)
	if n == 0 {
		return
	}
	m.charIdx = clampInt(m.charIdx+delta, 0, n-1)
	m.generation++
}

// MoveSpecial moves the single-row cursor used in Special mode.
func (m *Model) MoveSpecial(delta int) {
	if m.setIdx >= len(m.sets) {
		return
	}
	n := len(m.sets[m.setIdx].Keys)
	if n == 0 {
		return
	}
	m.setCharIdx = clampInt(m.setCharIdx+delta, 0, n-1)
	m.generation++
}

// CycleSpecialSet switches the active page within Special mode.
func (m *Model) CycleSpecialSet(delta int) {
	if len(m.sets) == 0 {
		return
	}
	m.setIdx = ((m.setIdx+delta)%len(m.sets) + len(m.sets)) % len(m.sets)
	m.setCharIdx = 0
	m.generation++
}

// SetOSKMode switches between Chars and Special presentation.
func (m *Model) SetOSKMode(mode Mode) {
	m.OSKMode = mode
	m.generation++
}

// TakeCommand returns and clears any InternalCommand produced by the
// most recent Select, the pull-based handoff an embedder polls after
// driving input — matching this package's refusal to import anything
// that would let it act on the command itself.
func (m *Model) TakeCommand() (InternalCommand, bool) {
	cmd := m.pendingCmd
	m.pendingCmd = CmdNone
	if cmd == CmdNone {
		return CmdNone, false
	}
	return cmd, true
}

// Select activates whichever key is under the cursor in the current
// mode, dispatching on the resolved KeyDescriptor's concrete type.
func (m *Model) Select() {
	var desc KeyDescriptor
	if m.OSKMode == ModeSpecial {
		desc = m.KeyAt(0, m.setCharIdx)
	} else {
		desc = m.KeyAt(m.rowIdx, m.charIdx)
	}
	if desc == nil {
		return
	}
	m.selectDescriptor(desc)
}

func (m *Model) selectDescriptor(desc KeyDescriptor) {
	switch k := desc.(type) {
	case Literal:
		m.send([]byte(k.Text))
		m.clearOneShot()
	case Sequence:
		mods := m.EffectiveModifiers() | k.Mods
		m.send(m.encoder.Encode(keymap.Key{Rune: k.Rune, Code: k.Code}, mods, m.termMode))
		m.clearOneShot()
	case Macro:
		m.expandMacro(k.Template)
	case ModToggle:
		m.ToggleOneShot(k.Mod)
	case InternalCommandKey:
		m.pendingCmd = k.Cmd
		m.generation++
		m.clearOneShot()
	case LoadSet:
		if err := m.loadSetByPath(k.Path); err != nil && m.log != nil {
			m.log.Warn("osk: failed to load key set", "path", k.Path, "err", err)
		}
		m.clearOneShot()
	case UnloadSet:
		m.UnloadSetByName(k.Name)
		m.clearOneShot()
	}
}

func (m *Model) send(b []byte) {
	if len(b) > 0 && m.writePTY != nil {
		m.writePTY(b)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
