package vt

// CursorStyle mirrors aprilsh's terminal/cursor.go CursorStyle enum,
// driven here by DECSCUSR (CSI Ps SP q) and the OSK's internal
// cursor-style-cycle command.
type CursorStyle int

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorBar
)

// Modes holds the boolean terminal modes a VT stream can toggle via DEC
// private (CSI ? Pm h/l) or ANSI (CSI Pm h/l) set/reset sequences.
type Modes struct {
	ApplicationCursor bool // DECCKM, CSI ? 1 h/l
	ApplicationKeypad bool // DECKPAM/DECKPNM
	CursorVisible     bool
	AutoWrap          bool // DECAWM, CSI ? 7 h/l
	Insert            bool // IRM, CSI 4 h/l
	Origin            bool // DECOM, CSI ? 6 h/l
	CursorBlink       bool
	Style             CursorStyle
}

// defaultModes returns the power-on mode set: cursor visible, blinking,
// autowrap enabled, everything else off.
func defaultModes() Modes {
	return Modes{
		CursorVisible: true,
		AutoWrap:      true,
		CursorBlink:   true,
		Style:         CursorBlock,
	}
}
