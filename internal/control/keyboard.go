package control

import (
	"sync/atomic"

	"github.com/windowpane-rc/core/internal/platform"
)

// Keystroke is a normalized remote keyboard event as received over the
// data channel.
type Keystroke struct {
	Key    string
	Ctrl   bool
	Meta   bool
	Shift  bool
	Option bool
	Down   bool
}

// keysExcludedFromUnicodeOverride lists the keys that must always be
// synthesized by virtual keycode rather than as a Unicode code point, even
// when they otherwise look like a single printable character arriving
// without modifiers. Editing and navigation keys need their VK identity
// preserved for applications that branch on WM_KEYDOWN rather than
// WM_CHAR.
var keysExcludedFromUnicodeOverride = map[string]bool{
	"Enter": true, "Tab": true, "Backspace": true, "Escape": true,
	"Delete": true, "ArrowLeft": true, "ArrowRight": true, "ArrowUp": true,
	"ArrowDown": true, "PageUp": true, "PageDown": true, "Control": true,
	"Shift": true,
}

// Keyboard translates remote Keystroke events into synthesized local key
// events via a platform KeyboardLayout reverse lookup.
type Keyboard struct {
	layout   platform.KeyboardLayout
	synth    platform.KeyboardSynthesizer
	disabled atomic.Bool
}

func NewKeyboard(layout platform.KeyboardLayout, synth platform.KeyboardSynthesizer) *Keyboard {
	return &Keyboard{layout: layout, synth: synth}
}

// SetEnabled gates Simulate on whether the shell currently permits remote
// keyboard replay for this session (the "cursor-enabled" flag it publishes
// to peers). Keyboards start enabled.
func (k *Keyboard) SetEnabled(enabled bool) {
	k.disabled.Store(!enabled)
}

func (k *Keyboard) modifierMask(ks Keystroke) platform.ModifierMask {
	var m platform.ModifierMask
	if ks.Ctrl {
		m |= platform.ModCtrl
	}
	if ks.Meta {
		m |= platform.ModCmd
	}
	if ks.Shift {
		m |= platform.ModShift
	}
	if ks.Option {
		m |= platform.ModOption
	}
	return m
}

// Simulate replays one remote keystroke. Steps, in order:
//  0. If remote control is currently disabled, no-op.
//  1. Refresh the reverse lookup table if the active layout changed since
//     the last keystroke.
//  2. A plain printable character with no Ctrl/Meta held, on key-down, and
//     not in the Unicode-override exclusion list is sent as a Unicode code
//     point — this sidesteps layout lookup entirely for the common case
//     and matches what the controller's browser already normalized.
//  3. Otherwise, resolve (key, modifiers) to a virtual keycode via the
//     layout's reverse lookup and send that keycode with the modifier
//     state applied.
func (k *Keyboard) Simulate(ks Keystroke) {
	if k.disabled.Load() {
		return
	}
	if k.layout.HasChanged() {
		log.Debug("keyboard layout changed, rebuilt reverse lookup")
	}

	mods := k.modifierMask(ks)

	if k.usesUnicodeOverride(ks) {
		r := []rune(ks.Key)
		if len(r) == 1 {
			k.synth.SendUnicode(r[0], ks.Down)
			return
		}
	}

	code, ok := k.layout.GetCode(ks.Key, mods)
	if !ok {
		log.Debug("no keycode for remote key", "key", ks.Key)
		return
	}
	k.synth.SendKeyCode(code, mods, ks.Down)
}

func (k *Keyboard) usesUnicodeOverride(ks Keystroke) bool {
	if ks.Key == "" {
		return false
	}
	if keysExcludedFromUnicodeOverride[ks.Key] {
		return false
	}
	if ks.Meta || ks.Ctrl {
		return false
	}
	return ks.Down
}
