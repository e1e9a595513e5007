package osk

import (
	"testing"

	"github.com/Stanley00/vaixterm/internal/keymap"
)

func newTestModel(t *testing.T) (*Model, *[]byte) {
	t.Helper()
	var sent []byte
	m := NewModel(nil, func(b []byte) { sent = append(sent, b...) }, keymap.Mode{}, nil)
	return m, &sent
}

func TestModel_SelectLiteral(t *testing.T) {
	m, sent := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Literal{Text: "hi"}}}}})
	m.Select()
	if string(*sent) != "hi" {
		t.Fatalf("got %q, want hi", *sent)
	}
}

func TestModel_RowFallbackToDefault(t *testing.T) {
	m, sent := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Literal{Text: "base"}}}}})
	m.SetLayer(uint8(keymap.ModShift), &Layer{Rows: []Row{{IsDefault: true}}})
	m.HoldModifier(keymap.ModShift)
	m.Select()
	if string(*sent) != "base" {
		t.Fatalf("default row should fall through to base layer, got %q", *sent)
	}
}

func TestModel_KeyFallbackSkipsNAEntry(t *testing.T) {
	m, sent := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Literal{Text: "base"}}}}})
	m.SetLayer(uint8(keymap.ModCtrl), &Layer{Rows: []Row{{Keys: []KeyDescriptor{nil}}}})
	m.HoldModifier(keymap.ModCtrl)
	m.Select()
	if string(*sent) != "base" {
		t.Fatalf("N/A key slot should fall through to base layer, got %q", *sent)
	}
}

func TestModel_SequenceUsesApplicationCursorMode(t *testing.T) {
	m, sent := newTestModel(t)
	m.termMode.ApplicationCursor = true
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Sequence{Code: keymap.KeyUp}}}}})
	m.Select()
	if string(*sent) != "\x1bOA" {
		t.Fatalf("got %q, want SS3 A", *sent)
	}
}

func TestModel_ConsumedModifierNotForwarded(t *testing.T) {
	m, sent := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Sequence{Rune: 'a'}}}}})
	m.SetLayer(uint8(keymap.ModCtrl), &Layer{Rows: []Row{{Keys: []KeyDescriptor{Sequence{Rune: 'a'}}}}})
	m.HoldModifier(keymap.ModCtrl)
	m.Select()
	if string(*sent) != "a" {
		t.Fatalf("Ctrl switched to a dedicated layer, should not also reach the encoder: got %q", *sent)
	}
}

func TestModel_UnconsumedModifierReachesEncoder(t *testing.T) {
	m, sent := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Sequence{Rune: 'a'}}}}})
	m.HoldModifier(keymap.ModCtrl)
	m.Select()
	if string(*sent) != "\x01" {
		t.Fatalf("no dedicated Ctrl layer defined, Ctrl should reach the encoder: got %q", *sent)
	}
}

func TestModel_MacroArmsOneShotAndClearsAfterUse(t *testing.T) {
	m, sent := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Macro{Template: "{CTRL}c"}}}}})
	m.Select()
	if string(*sent) != "\x03" {
		t.Fatalf("Ctrl+c macro = %q, want \\x03", *sent)
	}
	if m.oneShotMods != 0 {
		t.Fatalf("one-shot modifier should clear after use")
	}
}

func TestModel_MacroEscapedBrace(t *testing.T) {
	m, sent := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{Macro{Template: `\{literal\}`}}}}})
	m.Select()
	if string(*sent) != "{literal}" {
		t.Fatalf("got %q", *sent)
	}
}

func TestModel_InternalCommandPulledViaTakeCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m.SetLayer(0, &Layer{Rows: []Row{{Keys: []KeyDescriptor{InternalCommandKey{Cmd: CmdTerminalReset}}}}})
	m.Select()
	cmd, ok := m.TakeCommand()
	if !ok || cmd != CmdTerminalReset {
		t.Fatalf("got %v,%v want CmdTerminalReset,true", cmd, ok)
	}
	if _, ok := m.TakeCommand(); ok {
		t.Fatalf("TakeCommand should clear after one pull")
	}
}

func TestModel_LoadAndUnloadSet(t *testing.T) {
	m, _ := newTestModel(t)
	m.LoadKeySet("SYMBOLS", []KeyDescriptor{Literal{Text: "#"}}, 0)
	names := m.LoadedSetNames()
	if len(names) != 2 || names[1] != "SYMBOLS" {
		t.Fatalf("got %v", names)
	}
	m.UnloadSetByName("SYMBOLS")
	names = m.LoadedSetNames()
	if len(names) != 1 {
		t.Fatalf("expected SYMBOLS removed, got %v", names)
	}
}

func TestModel_ModifierIndicatorBitsIncludesActiveSet(t *testing.T) {
	m, _ := newTestModel(t)
	m.LoadKeySet("SYMBOLS", nil, uint8(keymap.ModAlt))
	m.SetOSKMode(ModeSpecial)
	m.CycleSpecialSet(1)
	if m.ModifierIndicatorBits()&keymap.ModAlt == 0 {
		t.Fatalf("expected ModAlt bit surfaced from active set's declared mask")
	}
}
