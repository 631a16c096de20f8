//go:build linux

package linux

import "github.com/windowpane-rc/core/internal/platform"

type noopMouseSynth struct{}

func (noopMouseSynth) Move(x, y int32)                           {}
func (noopMouseSynth) Warp(x, y int32)                           {}
func (noopMouseSynth) Click(button platform.MouseButton, down bool) {}
func (noopMouseSynth) Scroll(horizontal bool, ticks int32)       {}

type noopKeyboardSynth struct{}

func (noopKeyboardSynth) SendKeyCode(code uint16, mods platform.ModifierMask, down bool) {}
func (noopKeyboardSynth) SendUnicode(r rune, down bool)                                  {}

type noopLayout struct{}

func (noopLayout) Translate(keycode uint16, mods platform.ModifierMask) (string, bool) {
	return "", false
}
func (noopLayout) GetCode(key string, mods platform.ModifierMask) (uint16, bool) { return 0, false }
func (noopLayout) HasChanged() bool                                             { return false }
func (noopLayout) IndependentCodes() map[string]uint16                          { return nil }
