package vt

import "testing"

func newTestEmulator(cols, rows, scrollback int) (*Emulator, *[][]byte) {
	var sent [][]byte
	writePTY := func(b []byte) {
		cp := append([]byte{}, b...)
		sent = append(sent, cp)
	}
	return NewEmulator(cols, rows, scrollback, writePTY, nil), &sent
}

func TestFeedPrintableASCII(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("hi"))
	row := e.Grid.ViewportLine(0)
	if row.Cells[0].Glyph.Rune != 'h' || row.Cells[1].Glyph.Rune != 'i' {
		t.Fatalf("got %q%q, want hi", row.Cells[0].Glyph.Rune, row.Cells[1].Glyph.Rune)
	}
	x, _ := e.Grid.Cursor()
	if x != 2 {
		t.Fatalf("cursor x = %d, want 2", x)
	}
}

func TestFeedPrintableUTF8SplitAcrossCalls(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	full := []byte("€") // 3-byte UTF-8 sequence
	e.FeedPTY(full[:1])
	e.FeedPTY(full[1:2])
	e.FeedPTY(full[2:3])
	row := e.Grid.ViewportLine(0)
	if row.Cells[0].Glyph.Rune != '€' {
		t.Fatalf("got %q, want €", row.Cells[0].Glyph.Rune)
	}
}

func TestCSICursorMovementDefaultsToOne(t *testing.T) {
	e, _ := newTestEmulator(10, 10, 0)
	e.Grid.SetCursor(5, 5)
	e.FeedPTY([]byte("\x1b[A")) // CUU with no param defaults to 1
	x, y := e.Grid.Cursor()
	if x != 5 || y != 4 {
		t.Fatalf("cursor = %d,%d, want 5,4", x, y)
	}
}

func TestCSICursorPositionIsOneBased(t *testing.T) {
	e, _ := newTestEmulator(10, 10, 0)
	e.FeedPTY([]byte("\x1b[3;4H"))
	x, y := e.Grid.Cursor()
	if x != 3 || y != 2 {
		t.Fatalf("cursor = %d,%d, want 3,2 (row 3 col 4, 1-based -> 0-based)", x, y)
	}
}

func TestCSIDeviceAttributesReply(t *testing.T) {
	e, sent := newTestEmulator(10, 10, 0)
	e.FeedPTY([]byte("\x1b[c"))
	if len(*sent) != 1 || string((*sent)[0]) != "\x1b[?1;2c" {
		t.Fatalf("DA reply = %q, want \\x1b[?1;2c", *sent)
	}
}

func TestCSIWindowManipulationSizeReport(t *testing.T) {
	e, sent := newTestEmulator(80, 24, 0)
	e.FeedPTY([]byte("\x1b[18t"))
	if len(*sent) != 1 || string((*sent)[0]) != "\x1b[8;24;80t" {
		t.Fatalf("CSI 18t reply = %q, want \\x1b[8;24;80t", *sent)
	}
}

func TestCSIWindowManipulationIgnoresUnsupportedParam(t *testing.T) {
	e, sent := newTestEmulator(80, 24, 0)
	e.FeedPTY([]byte("\x1b[19t"))
	if len(*sent) != 0 {
		t.Fatalf("unsupported window-manipulation param must not reply, got %q", *sent)
	}
}

func TestCSIDeviceStatusReportCursorPosition(t *testing.T) {
	e, sent := newTestEmulator(10, 10, 0)
	e.Grid.SetCursor(2, 1)
	e.FeedPTY([]byte("\x1b[6n"))
	if len(*sent) != 1 || string((*sent)[0]) != "\x1b[2;3R" {
		t.Fatalf("DSR cursor report = %q, want \\x1b[2;3R", *sent)
	}
}

func TestCSIModeApplicationCursor(t *testing.T) {
	e, _ := newTestEmulator(10, 10, 0)
	e.FeedPTY([]byte("\x1b[?1h"))
	if !e.Modes.ApplicationCursor {
		t.Fatal("expected ApplicationCursor set after CSI ?1h")
	}
	e.FeedPTY([]byte("\x1b[?1l"))
	if e.Modes.ApplicationCursor {
		t.Fatal("expected ApplicationCursor cleared after CSI ?1l")
	}
}

func TestCSIModeApplicationKeypadViaMode66(t *testing.T) {
	e, _ := newTestEmulator(10, 10, 0)
	e.FeedPTY([]byte("\x1b[?66h"))
	if !e.Modes.ApplicationKeypad {
		t.Fatal("expected ApplicationKeypad set after CSI ?66h (DECNKM)")
	}
	e.FeedPTY([]byte("\x1b[?66l"))
	if e.Modes.ApplicationKeypad {
		t.Fatal("expected ApplicationKeypad cleared after CSI ?66l")
	}
}

func TestEscapeApplicationKeypadSetReset(t *testing.T) {
	e, _ := newTestEmulator(10, 10, 0)
	e.FeedPTY([]byte("\x1b="))
	if !e.Modes.ApplicationKeypad {
		t.Fatal("expected ApplicationKeypad set after ESC =")
	}
	e.FeedPTY([]byte("\x1b>"))
	if e.Modes.ApplicationKeypad {
		t.Fatal("expected ApplicationKeypad cleared after ESC >")
	}
}

func TestCSIAltScreenModes47And1049(t *testing.T) {
	e, _ := newTestEmulator(5, 5, 10)
	e.FeedPTY([]byte("abc"))
	e.FeedPTY([]byte("\x1b[?47h"))
	if !e.Grid.AltScreenActive() {
		t.Fatal("expected alt screen active after CSI ?47h")
	}
	e.FeedPTY([]byte("\x1b[?47l"))
	if e.Grid.AltScreenActive() {
		t.Fatal("expected primary screen active after CSI ?47l")
	}
	row := e.Grid.ViewportLine(0)
	if row.Cells[0].Glyph.Rune != 'a' {
		t.Fatal("primary screen content must survive a 47h/47l round trip")
	}
}

func TestCSIMode1049SavesAndRestoresCursor(t *testing.T) {
	e, _ := newTestEmulator(5, 5, 10)
	e.Grid.SetCursor(3, 3)
	e.FeedPTY([]byte("\x1b[?1049h"))
	e.Grid.SetCursor(0, 0)
	e.FeedPTY([]byte("\x1b[?1049l"))
	x, y := e.Grid.Cursor()
	if x != 3 || y != 3 {
		t.Fatalf("cursor after 1049h/1049l round trip = %d,%d, want restored 3,3", x, y)
	}
}

func TestHorizontalTabStopsAndWrapsAtRightMargin(t *testing.T) {
	e, _ := newTestEmulator(20, 3, 0)
	e.FeedPTY([]byte("\t"))
	x, _ := e.Grid.Cursor()
	if x != 8 {
		t.Fatalf("first tab stop = %d, want 8", x)
	}

	e2, _ := newTestEmulator(10, 3, 0)
	e2.Grid.SetCursor(9, 0)
	e2.FeedPTY([]byte("\t"))
	x2, y2 := e2.Grid.Cursor()
	if x2 != 0 || y2 != 1 {
		t.Fatalf("tab past the right margin = %d,%d, want wrap to 0,1", x2, y2)
	}
}

func TestBackspaceMovesCursorLeftButNotPastColumnZero(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.Grid.SetCursor(0, 0)
	e.FeedPTY([]byte{0x08})
	x, _ := e.Grid.Cursor()
	if x != 0 {
		t.Fatalf("backspace at column 0 must clamp, got x=%d", x)
	}
	e.Grid.SetCursor(3, 0)
	e.FeedPTY([]byte{0x08})
	x, _ = e.Grid.Cursor()
	if x != 2 {
		t.Fatalf("backspace = %d, want 2", x)
	}
}

func TestShiftOutShiftInSwitchesCharsetSlotAndDECSpecialTranslates(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b)0")) // designate DEC Special Graphics into G1
	e.FeedPTY([]byte{0x0E})     // SO: switch to G1
	e.FeedPTY([]byte("q"))      // 'q' under DEC Special Graphics is a horizontal line
	row := e.Grid.ViewportLine(0)
	if row.Cells[0].Glyph.Rune != '─' {
		t.Fatalf("got %q, want horizontal line glyph under DEC Special Graphics", row.Cells[0].Glyph.Rune)
	}
	e.FeedPTY([]byte{0x0F}) // SI: switch back to G0 (ASCII)
	e.FeedPTY([]byte("q"))
	row = e.Grid.ViewportLine(0)
	if row.Cells[1].Glyph.Rune != 'q' {
		t.Fatalf("got %q, want literal 'q' after shifting back to G0", row.Cells[1].Glyph.Rune)
	}
}

func TestSGRAppliesAndResets(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b[1;31mA"))
	row := e.Grid.ViewportLine(0)
	gl := row.Cells[0].Glyph
	if !gl.Attrs.Has(AttrBold) {
		t.Fatal("expected bold attribute set")
	}
	if gl.Fg.Index() != 1 {
		t.Fatalf("fg index = %d, want 1 (red)", gl.Fg.Index())
	}
	e.FeedPTY([]byte("\x1b[0mB"))
	row = e.Grid.ViewportLine(0)
	gl = row.Cells[1].Glyph
	if gl.Attrs.Has(AttrBold) || gl.Fg.Valid() {
		t.Fatal("expected SGR 0 to reset attributes and colors")
	}
}

func TestSGRExtendedTrueColorForeground(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b[38;2;10;20;30mA"))
	gl := e.Grid.ViewportLine(0).Cells[0].Glyph
	r, g, b := gl.Fg.RGB()
	if r != 10 || g != 20 || b != 30 {
		t.Fatalf("fg rgb = %d,%d,%d, want 10,20,30", r, g, b)
	}
}

func TestSGRExtended256PaletteBackground(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b[48;5;200mA"))
	gl := e.Grid.ViewportLine(0).Cells[0].Glyph
	if gl.Bg.Index() != 200 {
		t.Fatalf("bg index = %d, want 200", gl.Bg.Index())
	}
}

func TestOSCWindowTitleTerminatedByBEL(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b]0;hello\x07"))
	if e.WindowTitle() != "hello" {
		t.Fatalf("window title = %q, want hello", e.WindowTitle())
	}
}

func TestOSCWindowTitleTerminatedByST(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b]2;world\x1b\\"))
	if e.WindowTitle() != "world" {
		t.Fatalf("window title = %q, want world", e.WindowTitle())
	}
}

func TestOSCPaletteSetAffectsSubsequentIndexedColor(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b]4;1;#010203\x07"))
	c := PaletteColor(1)
	r, g, b := c.RGB()
	if r != 1 || g != 2 || b != 3 {
		t.Fatalf("palette[1] = %d,%d,%d, want 1,2,3 after OSC 4 override", r, g, b)
	}
}

func TestEscapeCResetsModesCharsetAndHistory(t *testing.T) {
	e, _ := newTestEmulator(5, 3, 10)
	e.FeedPTY([]byte("\x1b[?1h"))    // set application cursor
	e.FeedPTY([]byte("\x1b)0\x0E")) // designate + switch to DEC Special G1
	e.FeedPTY([]byte("abc"))
	e.Grid.ScrollUp(1) // grow history
	if e.Grid.HistorySize() == 0 {
		t.Fatal("setup: expected nonzero history before reset")
	}

	e.FeedPTY([]byte("\x1bc"))

	if e.Modes.ApplicationCursor {
		t.Fatal("RIS must clear ApplicationCursor")
	}
	if e.Grid.HistorySize() != 0 {
		t.Fatal("RIS must clear scrollback history")
	}
	x, y := e.Grid.Cursor()
	if x != 0 || y != 0 {
		t.Fatalf("cursor after RIS = %d,%d, want 0,0", x, y)
	}
	e.FeedPTY([]byte("q"))
	if e.Grid.ViewportLine(0).Cells[0].Glyph.Rune != 'q' {
		t.Fatal("RIS must restore G0/ASCII so 'q' prints literally, not as a line-drawing glyph")
	}
}

func TestInsertModeShiftsExistingContentRight(t *testing.T) {
	e, _ := newTestEmulator(5, 1, 0)
	e.FeedPTY([]byte("abc"))
	e.Grid.SetCursor(0, 0)
	e.FeedPTY([]byte("\x1b[4h")) // IRM (ANSI, not DEC private)
	e.FeedPTY([]byte("X"))
	row := e.Grid.ViewportLine(0)
	got := string([]rune{row.Cells[0].Glyph.Rune, row.Cells[1].Glyph.Rune, row.Cells[2].Glyph.Rune, row.Cells[3].Glyph.Rune})
	if got != "Xabc" {
		t.Fatalf("got %q, want Xabc", got)
	}
}

func TestCANAbortsInProgressEscapeSequence(t *testing.T) {
	e, sent := newTestEmulator(10, 3, 0)
	e.FeedPTY([]byte("\x1b[31"))
	e.FeedPTY([]byte{0x18}) // CAN aborts the sequence
	e.FeedPTY([]byte("A"))
	row := e.Grid.ViewportLine(0)
	if row.Cells[0].Glyph.Rune != 'A' {
		t.Fatalf("got %q, want literal 'A' printed after the aborted CSI sequence", row.Cells[0].Glyph.Rune)
	}
	if len(*sent) != 0 {
		t.Fatal("an aborted sequence must not produce any reply")
	}
}

func TestCRLFSequence(t *testing.T) {
	e, _ := newTestEmulator(10, 3, 0)
	e.Grid.SetCursor(5, 0)
	e.FeedPTY([]byte("\r\n"))
	x, y := e.Grid.Cursor()
	if x != 0 || y != 1 {
		t.Fatalf("cursor after CRLF = %d,%d, want 0,1", x, y)
	}
}

func TestScrollRegionConstrainsIndex(t *testing.T) {
	e, _ := newTestEmulator(5, 5, 10)
	e.FeedPTY([]byte("\x1b[2;4r")) // scroll region rows 2-4 (1-based)
	e.Grid.SetCursor(0, 3)         // bottom margin, 0-based row 3
	e.FeedPTY([]byte("\x1bD"))     // IND: scroll the region, not grow history
	if e.Grid.HistorySize() != 0 {
		t.Fatal("a margin-restricted IND must not grow scrollback history")
	}
}
