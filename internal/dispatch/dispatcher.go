package dispatch

import (
	"log/slog"
	"time"

	"github.com/Stanley00/vaixterm/internal/keymap"
	"github.com/Stanley00/vaixterm/internal/osk"
	"github.com/Stanley00/vaixterm/internal/vt"
)

// ExitRequested is returned by Press when the controller's physical
// Back+Start exit combo fires, letting an embedder tear down without
// this package importing anything that could do so itself — the same
// pull-based handoff osk.Model.TakeCommand uses for InternalCommand.
type ExitRequested struct{}

// Dispatcher routes Actions to the keymap encoder (when the OSK is
// inactive, an Action drives terminal scrolling/cursor directly) or to
// the OSK model (when active, the same Actions drive OSK navigation),
// and owns the button-repeat timer and exit-combo tracking that sit
// above both — grounded on original_source/input.c's
// event_handle_terminal_action / event_process_and_repeat_action and
// event_handler.c's check_exit_event, which keys the exit gesture off
// ACTION_BUTTON_TAB/ACTION_BUTTON_ENTER (the controller's physical
// Back/Start buttons, resolved to the abstract ActionTab/ActionEnter —
// distinct from the abstract ActionBack, which is the face B button).
type Dispatcher struct {
	grid    *vt.Grid
	osk     *osk.Model
	encoder *keymap.Encoder
	mode    keymap.Mode

	writePTY func([]byte)

	repeat repeatState

	heldTab   bool
	heldEnter bool

	log *slog.Logger
}

// NewDispatcher wires a Dispatcher to the terminal grid it scrolls
// directly and the OSK model it drives when active.
func NewDispatcher(grid *vt.Grid, model *osk.Model, writePTY func([]byte), mode keymap.Mode, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		grid:     grid,
		osk:      model,
		encoder:  keymap.NewEncoder(),
		mode:     mode,
		writePTY: writePTY,
		log:      log,
	}
}

// Press handles a newly pressed action: it runs the action once
// immediately, arms the repeat timer if the action repeats, and tracks
// combo state for the Tab+Enter exit gesture (the controller's physical
// Back+Start buttons). now should be the caller's current time.Time
// (injected so tests don't depend on the wall clock).
func (d *Dispatcher) Press(a Action, now time.Time) *ExitRequested {
	switch a {
	case ActionTab:
		d.heldTab = true
	case ActionEnter:
		d.heldEnter = true
	}
	if d.heldTab && d.heldEnter {
		return &ExitRequested{}
	}

	d.run(a)
	if a.Repeatable() {
		d.repeat.press(a, now)
	}
	return nil
}

// Release clears combo and repeat tracking for a released action.
func (d *Dispatcher) Release(a Action) {
	switch a {
	case ActionTab:
		d.heldTab = false
	case ActionEnter:
		d.heldEnter = false
	}
	d.repeat.release(a)
}

// Tick re-fires the currently held repeatable action if its repeat
// timer has elapsed; call this once per event-loop iteration with the
// current time.
func (d *Dispatcher) Tick(now time.Time) {
	if a, ok := d.repeat.due(now); ok {
		d.run(a)
	}
}

func (d *Dispatcher) run(a Action) {
	if d.osk != nil && d.osk.Active {
		d.runOSK(a)
		return
	}
	d.runTerminal(a)
}

// runOSK maps navigation/select actions onto OSK.Model's cursor and
// selection API, matching the original's dual use of the same
// controller buttons for OSK navigation once the keyboard is shown.
func (d *Dispatcher) runOSK(a Action) {
	switch a {
	case ActionUp:
		d.osk.MoveRow(-1)
	case ActionDown:
		d.osk.MoveRow(1)
	case ActionLeft:
		d.osk.MoveCol(-1)
	case ActionRight:
		d.osk.MoveCol(1)
	case ActionSelect:
		d.osk.Select()
	case ActionBack:
		d.sendOSKKey(keymap.Key{Code: keymap.KeyBackspace})
	case ActionSpace:
		d.sendOSKKey(keymap.Key{Rune: ' '})
	case ActionTab:
		d.sendOSKKey(keymap.Key{Code: keymap.KeyTab})
	case ActionScrollUp:
		d.grid.ScrollView(maxInt(1, d.grid.Rows()/2))
	case ActionScrollDown:
		d.grid.ScrollView(-3)
	case ActionToggleOSK:
		d.toggleOSK()
	case ActionEnter:
		d.sendOSKKey(keymap.Key{Code: keymap.KeyEnter})
	}
}

// sendOSKKey synthesizes the keyboard event for Back/Space/Tab/Enter
// while the OSK is active: the combined held-or-one-shot modifier set
// applies, held modifiers survive, and one-shots clear after use,
// matching spec's Chars-mode navigation rule.
func (d *Dispatcher) sendOSKKey(k keymap.Key) {
	mods := d.osk.EffectiveModifiers()
	d.send(d.encoder.Encode(k, mods, d.mode))
	d.osk.ClearOneShotModifiers()
}

// toggleOSK implements the ToggleOsk action's three-state cycle:
// off brings up Chars mode, Chars advances to Special, and Special
// either drops back to Chars (an armed one-shot modifier is still
// waiting to be combined with a character) or turns the OSK off.
func (d *Dispatcher) toggleOSK() {
	if d.osk == nil {
		return
	}
	switch {
	case !d.osk.Active:
		d.osk.Active = true
		d.osk.SetOSKMode(osk.ModeChars)
	case d.osk.OSKMode == osk.ModeChars:
		d.osk.SetOSKMode(osk.ModeSpecial)
	case d.osk.HasOneShotModifiers():
		d.osk.SetOSKMode(osk.ModeChars)
	default:
		d.osk.Active = false
	}
}

// runTerminal maps the same actions onto direct terminal input when the
// OSK isn't showing: arrows become cursor keys, Select/Back/Space/Tab
// become their literal keypresses honoring whatever modifier the OSK
// model still has armed (its held/one-shot state persists even while
// hidden), and the shoulder actions scroll the scrollback view in
// place, matching original_source/input.c's non-OSK action handling.
func (d *Dispatcher) runTerminal(a Action) {
	switch a {
	case ActionUp:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyUp})
	case ActionDown:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyDown})
	case ActionLeft:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyLeft})
	case ActionRight:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyRight})
	case ActionSelect:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyEnter})
	case ActionBack:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyBackspace})
	case ActionSpace:
		d.sendTerminalKey(keymap.Key{Rune: ' '})
	case ActionTab:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyTab})
	case ActionScrollUp:
		d.grid.ScrollView(maxInt(1, d.grid.Rows()/2))
	case ActionScrollDown:
		d.grid.ScrollView(-3)
	case ActionToggleOSK:
		d.toggleOSK()
	case ActionEnter:
		d.sendTerminalKey(keymap.Key{Code: keymap.KeyEnter})
	}
}

// sendTerminalKey synthesizes a keyboard event for direct terminal
// input, carrying the OSK model's combined modifier set (if a model
// is wired) even though the OSK itself isn't visible right now.
func (d *Dispatcher) sendTerminalKey(k keymap.Key) {
	var mods keymap.Modifier
	if d.osk != nil {
		mods = d.osk.EffectiveModifiers()
	}
	d.send(d.encoder.Encode(k, mods, d.mode))
	if d.osk != nil {
		d.osk.ClearOneShotModifiers()
	}
}

func (d *Dispatcher) send(b []byte) {
	if len(b) > 0 && d.writePTY != nil {
		d.writePTY(b)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
