package control

import "github.com/windowpane-rc/core/internal/platform"
import "testing"

type fakeLayout struct {
	codes map[string]uint16
}

func (f *fakeLayout) Translate(keycode uint16, mods platform.ModifierMask) (string, bool) {
	return "", false
}
func (f *fakeLayout) GetCode(key string, mods platform.ModifierMask) (uint16, bool) {
	c, ok := f.codes[key]
	return c, ok
}
func (f *fakeLayout) HasChanged() bool                    { return false }
func (f *fakeLayout) IndependentCodes() map[string]uint16 { return nil }

type fakeKeySynth struct {
	codes    []uint16
	unicodes []rune
}

func (f *fakeKeySynth) SendKeyCode(code uint16, mods platform.ModifierMask, down bool) {
	f.codes = append(f.codes, code)
}
func (f *fakeKeySynth) SendUnicode(r rune, down bool) {
	f.unicodes = append(f.unicodes, r)
}

func TestKeyboardUnicodeOverrideForPlainChar(t *testing.T) {
	layout := &fakeLayout{codes: map[string]uint16{}}
	synth := &fakeKeySynth{}
	kb := NewKeyboard(layout, synth)

	kb.Simulate(Keystroke{Key: "a", Down: true})
	if len(synth.unicodes) != 1 || synth.unicodes[0] != 'a' {
		t.Fatalf("expected unicode path for plain char, got %+v", synth)
	}
	if len(synth.codes) != 0 {
		t.Fatalf("expected no keycode path taken, got %+v", synth.codes)
	}
}

func TestKeyboardExclusionListUsesKeycode(t *testing.T) {
	layout := &fakeLayout{codes: map[string]uint16{"Enter": 0x0D}}
	synth := &fakeKeySynth{}
	kb := NewKeyboard(layout, synth)

	kb.Simulate(Keystroke{Key: "Enter", Down: true})
	if len(synth.codes) != 1 || synth.codes[0] != 0x0D {
		t.Fatalf("expected Enter to use keycode path, got %+v", synth)
	}
}

func TestKeyboardModifiedCharUsesKeycode(t *testing.T) {
	layout := &fakeLayout{codes: map[string]uint16{"c": 0x43}}
	synth := &fakeKeySynth{}
	kb := NewKeyboard(layout, synth)

	kb.Simulate(Keystroke{Key: "c", Ctrl: true, Down: true})
	if len(synth.codes) != 1 {
		t.Fatalf("expected Ctrl+c to use keycode path, got %+v", synth)
	}
	if len(synth.unicodes) != 0 {
		t.Fatal("expected no unicode path for Ctrl-held key")
	}
}
