//go:build windows

package windows

import (
	"syscall"
	"unsafe"

	"github.com/windowpane-rc/core/internal/platform"
)

var (
	procGetKeyboardLayout  = user32.NewProc("GetKeyboardLayout")
	procToUnicodeEx        = user32.NewProc("ToUnicodeEx")
	procMapVirtualKeyExW   = user32.NewProc("MapVirtualKeyExW")
)

const mapvkVkToVsc = 0

// modifierCombos enumerates the seven modifier states a keymap is built
// against: none, and each single named modifier, plus the two-modifier
// combinations that commonly shift a key's printed character.
var modifierCombos = []platform.ModifierMask{
	0,
	platform.ModShift,
	platform.ModOption,
	platform.ModCmd,
	platform.ModShift | platform.ModOption,
	platform.ModShift | platform.ModCmd,
	platform.ModOption | platform.ModCmd,
}

type keyMapEntry struct {
	keycode uint16
	key     string
	mods    platform.ModifierMask
}

// keyboardLayout builds a reverse lookup table (keycode, modifiers) -> key
// name by walking every virtual-key code under every relevant modifier
// combination and recording what ToUnicodeEx reports, so remote keystrokes
// received as logical key names can be translated back into the keycodes
// the active Windows keyboard layout expects.
type keyboardLayout struct {
	entries      []keyMapEntry
	independent  map[string]uint16
	builtHKL     uintptr
}

func newKeyboardLayout() *keyboardLayout {
	l := &keyboardLayout{independent: independentCodes()}
	l.rebuild()
	return l
}

func independentCodes() map[string]uint16 {
	return map[string]uint16{
		"Enter":      0x0D,
		"Tab":        0x09,
		"Backspace":  0x08,
		"Escape":     0x1B,
		"Delete":     0x2E,
		"ArrowLeft":  0x25,
		"ArrowUp":    0x26,
		"ArrowRight": 0x27,
		"ArrowDown":  0x28,
		"PageUp":     0x21,
		"PageDown":   0x22,
		"Control":    0x11,
		"Shift":      0x10,
	}
}

func currentHKL() uintptr {
	hkl, _, _ := procGetKeyboardLayout.Call(0)
	return hkl
}

func (l *keyboardLayout) rebuild() {
	hkl := currentHKL()
	l.builtHKL = hkl
	l.entries = l.entries[:0]
	for _, mods := range modifierCombos {
		for vk := uint16(0); vk < 128; vk++ {
			key, ok := translateVK(vk, mods, hkl)
			if !ok || key == "" {
				continue
			}
			l.entries = append(l.entries, keyMapEntry{keycode: vk, key: key, mods: mods})
		}
	}
}

// translateVK drives ToUnicodeEx with a synthetic key-state array to
// discover which character a virtual key produces under a modifier
// combination in the currently active layout.
func translateVK(vk uint16, mods platform.ModifierMask, hkl uintptr) (string, bool) {
	var keyState [256]byte
	if mods&platform.ModShift != 0 {
		keyState[0x10] = 0x80
	}
	if mods&platform.ModCtrl != 0 {
		keyState[0x11] = 0x80
	}
	if mods&platform.ModOption != 0 {
		keyState[0x12] = 0x80
	}
	scan, _, _ := procMapVirtualKeyExW.Call(uintptr(vk), mapvkVkToVsc, hkl)

	var buf [8]uint16
	ret, _, _ := procToUnicodeEx.Call(
		uintptr(vk), scan,
		uintptr(unsafe.Pointer(&keyState[0])),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)),
		0, hkl,
	)
	n := int32(ret)
	if n <= 0 {
		return "", false
	}
	return syscall.UTF16ToString(buf[:n]), true
}

func (l *keyboardLayout) HasChanged() bool {
	hkl := currentHKL()
	if hkl != l.builtHKL {
		l.rebuild()
		return true
	}
	return false
}

func (l *keyboardLayout) IndependentCodes() map[string]uint16 {
	return l.independent
}

// Translate is the forward direction (keycode -> key name); the
// session's remote-control path only needs the reverse, GetCode, but this
// satisfies platform.KeyboardLayout for completeness and tests.
func (l *keyboardLayout) Translate(keycode uint16, mods platform.ModifierMask) (string, bool) {
	for _, e := range l.entries {
		if e.keycode == keycode && e.mods == mods {
			return e.key, true
		}
	}
	return "", false
}

// GetCode is the reverse lookup used by the remote-control translator:
// given a logical key name and modifier mask, find the keycode the active
// layout maps it from. A set Ctrl bit is cleared before the linear search
// runs, matching how Windows reports Ctrl combinations independent of
// character shaping.
func (l *keyboardLayout) GetCode(key string, mods platform.ModifierMask) (uint16, bool) {
	if code, ok := l.independent[key]; ok {
		return code, true
	}
	search := mods &^ platform.ModCtrl
	for _, e := range l.entries {
		if e.key == key && e.mods == search {
			return e.keycode, true
		}
	}
	return 0, false
}
