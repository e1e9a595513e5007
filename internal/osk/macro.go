package osk

import (
	"strings"

	"github.com/Stanley00/vaixterm/internal/keymap"
)

// expandMacro walks a Macro's template left to right, splitting it into
// literal runs and "{TOKEN}" interpolations, with "\{" and "\}" as the
// literal-brace escapes — grounded on original_source/osk.c's macro expansion
// loop and its execute_macro's consumed_one_shot flag: a one-shot
// modifier armed by a {CTRL}/{ALT}/{SHIFT}/{GUI} token earlier in the
// same macro must still be in effect for every Sequence/bare-rune token
// later in the scan (e.g. "{CTRL}{ENTER}{ENTER}" sends Ctrl+Enter
// twice), so one-shots are cleared exactly once after the whole
// template has been scanned, never per-token.
func (m *Model) expandMacro(template string) {
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			m.send([]byte(literal.String()))
			literal.Reset()
		}
	}

	consumedOneShot := false
	i := 0
	for i < len(template) {
		c := template[i]
		switch {
		case c == '\\' && i+1 < len(template) && (template[i+1] == '{' || template[i+1] == '}'):
			literal.WriteByte(template[i+1])
			i += 2
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				literal.WriteByte(c)
				i++
				continue
			}
			token := template[i+1 : i+end]
			flush()
			if m.resolveMacroToken(token) {
				consumedOneShot = true
			}
			i += end + 1
		default:
			literal.WriteByte(c)
			i++
		}
	}
	flush()
	if consumedOneShot {
		m.clearOneShot()
	}
}

// resolveMacroToken handles one {TOKEN}: the four modifier-name tokens
// arm a one-shot modifier, everything else is looked up as a named key
// via keymap.ParseKeycodeName and encoded immediately. It reports
// whether the token fired a key (Sequence or bare rune) that would
// normally consume the one-shot modifiers, leaving the actual clearing
// to expandMacro's single deferred call.
func (m *Model) resolveMacroToken(token string) bool {
	switch token {
	case "CTRL":
		m.ArmOneShot(keymap.ModCtrl)
		return false
	case "ALT":
		m.ArmOneShot(keymap.ModAlt)
		return false
	case "SHIFT":
		m.ArmOneShot(keymap.ModShift)
		return false
	case "GUI":
		m.ArmOneShot(keymap.ModGui)
		return false
	}

	if code, ok := keymap.ParseKeycodeName(token); ok {
		mods := m.EffectiveModifiers()
		m.send(m.encoder.Encode(keymap.Key{Code: code}, mods, m.termMode))
		return true
	}

	if len([]rune(token)) == 1 {
		r := []rune(token)[0]
		mods := m.EffectiveModifiers()
		m.send(m.encoder.Encode(keymap.Key{Rune: r}, mods, m.termMode))
		return true
	}

	if m.log != nil {
		m.log.Debug("osk: unresolved macro token", "token", token)
	}
	return false
}
