package vt

import "fmt"

// Grid is the character-cell buffer a Parser mutates and a Renderer reads:
// a primary screen backed by scrollback history, plus a fixed-size
// alternate screen with no history of its own. This is a deliberate
// simplification of aprilsh's terminal/framebuffer.go, which backs both
// screens with one flat cell array indexed through getPhysicalRowIndex
// math; that design earns its complexity by sharing storage between the
// live screen and history in a single reallocation-free buffer, but it
// obscures the "line-ring of rows+scrollback lines, top_line pointer"
// picture this specification asks for. Grid instead keeps history as an
// ordinary capped slice of rows scrolled off the top and the live screen
// as its own slice, which is easier to reason about at the cost of a copy
// per scroll — acceptable since scrolling is not the hot path here.
type Grid struct {
	cols, rows, scrollback int

	history []*Row // oldest first, capped at scrollback
	screen  []*Row // exactly `rows` entries, the primary screen
	alt     []*Row // exactly `rows` entries, the alternate screen

	altActive  bool
	viewOffset int // scrollback lines above the bottom currently in view

	cursorX, cursorY        int
	scrollTop, scrollBottom int // 1-based, inclusive

	pen Rendition

	savedNormal, savedAlt SavedCursor

	dirty Damage
}

// SavedCursor is the DEC-save-cursor state kept separately per screen.
type SavedCursor struct {
	X, Y int
	Pen  Rendition
	Set  bool
}

// NewGrid allocates a Grid of the given size with the given scrollback
// capacity (in lines). It never fails: unlike aprilsh's NewFramebuffer3,
// which can return a nil buffer on a pathological size, Grid clamps cols
// and rows to a minimum of 1, matching this specification's "allocation
// failure only" error policy (§7) — a construction-time make() failure
// here is a Go runtime OOM, not a recoverable error this API surfaces.
func NewGrid(cols, rows, scrollback int) *Grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if scrollback < 0 {
		scrollback = 0
	}
	g := &Grid{
		cols:          cols,
		rows:          rows,
		scrollback:    scrollback,
		scrollTop:     1,
		scrollBottom:  rows,
		screen:        make([]*Row, rows),
		alt:           make([]*Row, rows),
		dirty:         newDamage(rows),
	}
	for i := range g.screen {
		g.screen[i] = NewRow(cols)
		g.alt[i] = NewRow(cols)
	}
	g.dirty.expose()
	return g
}

// Row is one line of cells plus a wrap-continuation flag on its final
// cell, mirroring aprilsh's terminal/row.go.
type Row struct {
	Cells []Cell
}

// NewRow allocates a blank row of the given width.
func NewRow(width int) *Row {
	r := &Row{Cells: make([]Cell, width)}
	for i := range r.Cells {
		r.Cells[i].Reset(ColorDefault)
	}
	return r
}

func (r *Row) clone(width int) *Row {
	n := NewRow(width)
	copy(n.Cells, r.Cells)
	return n
}

// Cols and Rows report the grid's fixed dimensions.
func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// Cursor returns the current cursor position, 0-based.
func (g *Grid) Cursor() (x, y int) { return g.cursorX, g.cursorY }

// SetCursor moves the cursor, clamping to the grid bounds per this
// specification's "clamp, never fatal" edge-case policy.
func (g *Grid) SetCursor(x, y int) {
	g.cursorX = clamp(x, 0, g.cols-1)
	g.cursorY = clamp(y, 0, g.rows-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// activeScreen returns the slice backing whichever screen is active.
func (g *Grid) activeScreen() []*Row {
	if g.altActive {
		return g.alt
	}
	return g.screen
}

// ViewportLine returns the row visible at viewport position row (0-based
// from the top), accounting for the current scrollback viewOffset. The
// alternate screen ignores viewOffset entirely, since it carries no
// history (§3 invariant).
func (g *Grid) ViewportLine(row int) *Row {
	if row < 0 || row >= g.rows {
		return nil
	}
	if g.altActive {
		return g.alt[row]
	}
	histLen := len(g.history)
	idx := histLen - g.viewOffset + row
	if idx < 0 {
		return nil
	}
	if idx < histLen {
		return g.history[idx]
	}
	si := idx - histLen
	if si < 0 || si >= len(g.screen) {
		return nil
	}
	return g.screen[si]
}

// HistorySize reports the number of lines currently retained in
// scrollback.
func (g *Grid) HistorySize() int { return len(g.history) }

// ScrollView moves the scrollback view by delta lines; positive scrolls
// back into history, negative scrolls toward the live screen. A no-op on
// the alternate screen, matching real terminal behavior for alt-screen
// applications (full-screen editors own their own paging).
func (g *Grid) ScrollView(delta int) {
	if g.altActive {
		return
	}
	g.viewOffset = clamp(g.viewOffset+delta, 0, len(g.history))
	g.dirty.expose()
}

// ResetView snaps the scrollback view back to the live screen.
func (g *Grid) ResetView() {
	if g.viewOffset != 0 {
		g.viewOffset = 0
		g.dirty.expose()
	}
}

// SetScrollRegion sets the 1-based, inclusive scroll margins, clamping
// out-of-range or inverted arguments to the full-screen region rather
// than erroring, per §7's edge-case policy.
func (g *Grid) SetScrollRegion(top, bottom int) {
	if top < 1 {
		top = 1
	}
	if bottom > g.rows {
		bottom = g.rows
	}
	if top >= bottom {
		top, bottom = 1, g.rows
	}
	g.scrollTop, g.scrollBottom = top, bottom
}

// ResetScrollRegion restores the default full-screen scroll region.
func (g *Grid) ResetScrollRegion() {
	g.scrollTop, g.scrollBottom = 1, g.rows
}

// PutChar writes r at the cursor with the current pen, advancing the
// cursor and wrapping/scrolling as needed when autoWrap is enabled; with
// autoWrap disabled the cursor stays on the last column. It is the single
// mutation point every printable-character path in the Parser funnels
// through.
func (g *Grid) PutChar(r rune, autoWrap bool) {
	screen := g.activeScreen()
	if g.cursorX >= g.cols {
		if autoWrap {
			screen[g.cursorY].Cells[g.cols-1].Wrap = true
			g.Newline()
			screen = g.activeScreen()
		} else {
			g.cursorX = g.cols - 1
		}
	}
	cell := &screen[g.cursorY].Cells[g.cursorX]
	cell.Glyph = Glyph{Rune: r, Fg: g.pen.Fg, Bg: g.pen.Bg, Attrs: g.pen.Attrs}
	cell.Wrap = false
	g.dirty.add(g.cursorY, g.cursorY+1)
	if autoWrap || g.cursorX < g.cols-1 {
		g.cursorX++
	}
}

// Newline moves the cursor to the start of the next line, scrolling the
// active region up by one when the cursor is already on the bottom
// margin — the point at which, on the primary screen with the default
// (full-screen) scroll region, a line is retired into history.
func (g *Grid) Newline() {
	g.cursorX = 0
	bottom0 := g.scrollBottom - 1
	if g.cursorY == bottom0 {
		g.ScrollUp(1)
		return
	}
	if g.cursorY < g.rows-1 {
		g.cursorY++
	}
}

// IndexDown moves the cursor down one line without touching its column,
// scrolling the active region when the cursor sits on the bottom margin
// — the ESC D / IND behavior, identical to Newline minus the
// carriage-return component.
func (g *Grid) IndexDown() {
	bottom0 := g.scrollBottom - 1
	if g.cursorY == bottom0 {
		g.ScrollUp(1)
		return
	}
	if g.cursorY < g.rows-1 {
		g.cursorY++
	}
}

// ReverseIndex moves the cursor up one line, scrolling the active region
// down when the cursor sits on the top margin — the ESC M / RI behavior.
func (g *Grid) ReverseIndex() {
	top0 := g.scrollTop - 1
	if g.cursorY == top0 {
		g.ScrollDown(1)
		return
	}
	if g.cursorY > 0 {
		g.cursorY--
	}
}

// ScrollUp scrolls the active scroll region up by n lines, discarding the
// top n lines of the region. On the primary screen, when the region spans
// the whole screen (the default margins), retired lines are appended to
// history instead of discarded, capped at the configured scrollback
// depth — mirroring how a real VT100 only grows history on a full-screen
// scroll, never on a margin-restricted one.
func (g *Grid) ScrollUp(n int) {
	if n <= 0 {
		return
	}
	top0, bottom0 := g.scrollTop-1, g.scrollBottom-1
	fullScreen := !g.altActive && top0 == 0 && bottom0 == g.rows-1
	screen := g.activeScreen()
	for i := 0; i < n; i++ {
		if fullScreen {
			g.history = append(g.history, g.screen[top0])
			if len(g.history) > g.scrollback {
				g.history = g.history[len(g.history)-g.scrollback:]
			}
		}
		copy(screen[top0:bottom0], screen[top0+1:bottom0+1])
		screen[bottom0] = NewRow(g.cols)
	}
	g.dirty.add(top0, bottom0+1)
}

// ScrollDown scrolls the active scroll region down by n lines, the
// counterpart used by CSI T / reverse index at the top margin. It never
// touches history: lines pushed off the bottom of the region are simply
// discarded, and lines pulled back from history on the way in would
// require re-attaching retired rows, which real terminals don't do either.
func (g *Grid) ScrollDown(n int) {
	if n <= 0 {
		return
	}
	top0, bottom0 := g.scrollTop-1, g.scrollBottom-1
	screen := g.activeScreen()
	for i := 0; i < n; i++ {
		copy(screen[top0+1:bottom0+1], screen[top0:bottom0])
		screen[top0] = NewRow(g.cols)
	}
	g.dirty.add(top0, bottom0+1)
}

// ClearLine erases the entire row y of the active screen.
func (g *Grid) ClearLine(y int) {
	screen := g.activeScreen()
	if y < 0 || y >= len(screen) {
		return
	}
	screen[y] = NewRow(g.cols)
	g.eraseFill(screen[y])
	g.dirty.add(y, y+1)
}

// ClearLineFromCursor erases from the cursor to the end of the line
// (inclusive), or from the start of the line to the cursor (inclusive)
// when before is true.
func (g *Grid) ClearLineFromCursor(before bool) {
	screen := g.activeScreen()
	row := screen[g.cursorY]
	lo, hi := g.cursorX, g.cols-1
	if before {
		lo, hi = 0, g.cursorX
	}
	for x := lo; x <= hi && x < g.cols; x++ {
		row.Cells[x].Glyph = blankGlyph(g.pen.Fg, g.pen.Bg)
		row.Cells[x].Wrap = false
	}
	g.dirty.add(g.cursorY, g.cursorY+1)
}

// ClearVisibleScreen erases the whole active screen without touching
// history, used by CSI 2 J.
func (g *Grid) ClearVisibleScreen() {
	screen := g.activeScreen()
	for i := range screen {
		screen[i] = NewRow(g.cols)
		g.eraseFill(screen[i])
	}
	g.dirty.expose()
}

// ClearScreenFromCursor erases from the cursor to the end of the screen
// (inclusive), or from the start of the screen to the cursor when before
// is true, used by CSI J / CSI 1 J.
func (g *Grid) ClearScreenFromCursor(before bool) {
	if before {
		for y := 0; y < g.cursorY; y++ {
			g.ClearLine(y)
		}
		g.ClearLineFromCursor(true)
		return
	}
	g.ClearLineFromCursor(false)
	for y := g.cursorY + 1; y < g.rows; y++ {
		g.ClearLine(y)
	}
}

func (g *Grid) eraseFill(r *Row) {
	for i := range r.Cells {
		r.Cells[i].Glyph = blankGlyph(g.pen.Fg, g.pen.Bg)
	}
}

// InsertChars shifts the cells from the cursor to the end of line right
// by n, discarding cells that fall off the right edge.
func (g *Grid) InsertChars(n int) {
	if n <= 0 {
		return
	}
	row := g.activeScreen()[g.cursorY]
	x := g.cursorX
	end := g.cols - n
	if end < x {
		end = x
	}
	copy(row.Cells[x+n:g.cols], row.Cells[x:end])
	for i := x; i < x+n && i < g.cols; i++ {
		row.Cells[i].Glyph = blankGlyph(g.pen.Fg, g.pen.Bg)
	}
	g.dirty.add(g.cursorY, g.cursorY+1)
}

// DeleteChars shifts the cells after the cursor left by n, filling the
// vacated tail with blanks.
func (g *Grid) DeleteChars(n int) {
	if n <= 0 {
		return
	}
	row := g.activeScreen()[g.cursorY]
	x := g.cursorX
	if x+n > g.cols {
		n = g.cols - x
	}
	copy(row.Cells[x:g.cols-n], row.Cells[x+n:g.cols])
	for i := g.cols - n; i < g.cols; i++ {
		row.Cells[i].Glyph = blankGlyph(g.pen.Fg, g.pen.Bg)
	}
	g.dirty.add(g.cursorY, g.cursorY+1)
}

// EraseChars overwrites n cells starting at the cursor with blanks,
// without shifting anything — the CSI X behavior, distinct from delete.
func (g *Grid) EraseChars(n int) {
	if n <= 0 {
		return
	}
	row := g.activeScreen()[g.cursorY]
	end := g.cursorX + n
	if end > g.cols {
		end = g.cols
	}
	for i := g.cursorX; i < end; i++ {
		row.Cells[i].Glyph = blankGlyph(g.pen.Fg, g.pen.Bg)
	}
	g.dirty.add(g.cursorY, g.cursorY+1)
}

// InsertLines inserts n blank lines at the cursor row within the current
// scroll region, shifting the region's remaining lines down.
func (g *Grid) InsertLines(n int) {
	if g.cursorY+1 < g.scrollTop || g.cursorY+1 > g.scrollBottom {
		return
	}
	saved := g.scrollTop
	g.scrollTop = g.cursorY + 1
	g.ScrollDown(n)
	g.scrollTop = saved
}

// DeleteLines deletes n lines at the cursor row within the current scroll
// region, shifting the region's remaining lines up.
func (g *Grid) DeleteLines(n int) {
	if g.cursorY+1 < g.scrollTop || g.cursorY+1 > g.scrollBottom {
		return
	}
	saved := g.scrollTop
	g.scrollTop = g.cursorY + 1
	// Deleting lines never grows history even when the region happens to
	// span the whole screen (unlike a bottom-margin newline scroll):
	// bypass ScrollUp and its history append by shifting the region's
	// rows directly.
	top0, bottom0 := g.cursorY, g.scrollBottom-1
	screen := g.activeScreen()
	for i := 0; i < n && top0 <= bottom0; i++ {
		copy(screen[top0:bottom0], screen[top0+1:bottom0+1])
		screen[bottom0] = NewRow(g.cols)
	}
	g.dirty.add(top0, bottom0+1)
	g.scrollTop = saved
}

// EnterAltScreen switches to the alternate screen, clearing it and
// resetting its saved-cursor slot, matching DECSET 1049.
func (g *Grid) EnterAltScreen() {
	if g.altActive {
		return
	}
	g.altActive = true
	g.savedAlt = SavedCursor{}
	for i := range g.alt {
		g.alt[i] = NewRow(g.cols)
	}
	g.viewOffset = 0
	g.dirty.expose()
}

// LeaveAltScreen switches back to the primary screen.
func (g *Grid) LeaveAltScreen() {
	if !g.altActive {
		return
	}
	g.altActive = false
	g.dirty.expose()
}

// AltScreenActive reports whether the alternate screen is current.
func (g *Grid) AltScreenActive() bool { return g.altActive }

// SaveCursor stashes the cursor position and pen for the active screen.
func (g *Grid) SaveCursor() {
	sc := SavedCursor{X: g.cursorX, Y: g.cursorY, Pen: g.pen, Set: true}
	if g.altActive {
		g.savedAlt = sc
	} else {
		g.savedNormal = sc
	}
}

// RestoreCursor restores a previously saved cursor position and pen for
// the active screen; a no-op if nothing was ever saved.
func (g *Grid) RestoreCursor() {
	sc := g.savedNormal
	if g.altActive {
		sc = g.savedAlt
	}
	if !sc.Set {
		return
	}
	g.cursorX, g.cursorY, g.pen = sc.X, sc.Y, sc.Pen
}

// Pen returns the current graphic rendition applied to newly written
// cells.
func (g *Grid) Pen() *Rendition { return &g.pen }

// Resize reallocates both screens to the new dimensions, discarding
// scrollback history — the destructive behavior this specification's
// design notes explicitly adopt over aprilsh's own much more elaborate
// content-preserving Framebuffer.resize.
func (g *Grid) Resize(cols, rows int) error {
	if cols < 1 || rows < 1 {
		return fmt.Errorf("vt: invalid grid size %dx%d", cols, rows)
	}
	g.cols, g.rows = cols, rows
	g.history = nil
	g.viewOffset = 0
	g.screen = make([]*Row, rows)
	g.alt = make([]*Row, rows)
	for i := range g.screen {
		g.screen[i] = NewRow(cols)
		g.alt[i] = NewRow(cols)
	}
	g.cursorX = clamp(g.cursorX, 0, cols-1)
	g.cursorY = clamp(g.cursorY, 0, rows-1)
	g.ResetScrollRegion()
	g.dirty = newDamage(rows)
	g.dirty.expose()
	return nil
}

// DirtyLines returns the half-open range of viewport lines touched since
// the last ClearDirty, for a Renderer to redraw incrementally.
func (g *Grid) DirtyLines() (start, end int) { return g.dirty.Lines() }

// ClearDirty marks the grid clean after a Renderer has redrawn the
// reported dirty range.
func (g *Grid) ClearDirty() { g.dirty.reset() }

// MarkFullRedraw forces the next DirtyLines call to report the whole
// viewport, used after operations (resize, alt-screen switch) too broad
// to express as a line range.
func (g *Grid) MarkFullRedraw() { g.dirty.expose() }
