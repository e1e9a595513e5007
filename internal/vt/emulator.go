// Package vt implements the two coupled pieces of a VT100/xterm-class
// terminal core: the Grid (component A: scrollback, alternate screen,
// scroll regions, dirty tracking) and the Parser (component B: the
// byte-stream state machine that turns a mixed UTF-8/escape-sequence feed
// into Grid mutations). Both are grounded on aprilsh's terminal package,
// which combines the same two concerns in one package for the same
// reason: the parser's dispatch table and the grid it mutates are too
// tightly coupled to separate into different packages without a large
// interface surface neither side needs.
package vt

import (
	"log/slog"
)

// Emulator owns a Grid and the Parser that feeds it, plus the mode and
// charset state a VT stream can mutate outside of cell content. It is
// the single entry point embedders drive: FeedPTY pushes host bytes in,
// WritePTY (supplied at construction) receives bytes the core must send
// back (device reports, DSR/DA responses), matching aprilsh's
// Emulator.writePty/ReadOctetsToHost split between inbound stream
// processing and outbound terminal-to-host replies.
type Emulator struct {
	Grid   *Grid
	parser *Parser

	Modes Modes

	g          [2]Charset // G0, G1 slots
	activeSlot int

	windowTitle string
	iconName    string
	bellCount   int

	writePTY func([]byte)
	log      *slog.Logger
}

// NewEmulator constructs an Emulator with a freshly allocated Grid of the
// given size and scrollback depth. writePTY receives any bytes the core
// needs to send back to the host (e.g. a cursor-position report); it may
// be nil, in which case such responses are silently dropped. logger may
// be nil, in which case slog.Default() is used, matching this module's
// ambient-logging convention (see internal/termlog).
func NewEmulator(cols, rows, scrollback int, writePTY func([]byte), logger *slog.Logger) *Emulator {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Emulator{
		Grid:     NewGrid(cols, rows, scrollback),
		Modes:    defaultModes(),
		writePTY: writePTY,
		log:      logger,
	}
	e.parser = newParser(e)
	return e
}

// FeedPTY processes a chunk of bytes received from the host, mutating
// the Grid and Modes as the embedded VT grammar dictates. It never
// returns an error for malformed input — per this module's error policy,
// unhandled CSI finals are logged at debug level, and every unrecognized
// or truncated sequence is skipped, never fatal to the session.
func (e *Emulator) FeedPTY(data []byte) {
	e.parser.feed(data)
}

// Resize reallocates the Grid to the new size, discarding scrollback.
func (e *Emulator) Resize(cols, rows int) error {
	return e.Grid.Resize(cols, rows)
}

// WindowTitle and IconName report the most recent OSC 0/1/2 payloads.
func (e *Emulator) WindowTitle() string { return e.windowTitle }
func (e *Emulator) IconName() string    { return e.iconName }

// BellCount reports how many BEL (0x07) controls have been processed,
// for an embedder that wants to flash or beep without owning sound
// itself — mirrored on aprilsh's Framebuffer.bellCount.
func (e *Emulator) BellCount() int { return e.bellCount }

func (e *Emulator) reply(b []byte) {
	if e.writePTY != nil {
		e.writePTY(b)
	}
}

func (e *Emulator) setCharset(slot int, cs Charset) {
	if slot != 0 && slot != 1 {
		return
	}
	e.g[slot] = cs
}

func (e *Emulator) activeCharset() Charset { return e.g[e.activeSlot] }

// resetTerminal restores every mode, charset slot, and scroll region to
// power-on defaults, used by RIS (ESC c), mirroring aprilsh's
// Emulator.resetTerminal.
func (e *Emulator) resetTerminal() {
	e.Modes = defaultModes()
	e.g = [2]Charset{}
	e.activeSlot = 0
	e.Grid.pen.Reset()
	e.Grid.ResetScrollRegion()
	e.Grid.LeaveAltScreen()
	e.Grid.ClearVisibleScreen()
	e.Grid.SetCursor(0, 0)
	e.Grid.history = nil
	e.Grid.viewOffset = 0
	e.Grid.MarkFullRedraw()
}
