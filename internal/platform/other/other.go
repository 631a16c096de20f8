//go:build !windows && !darwin && !linux

// Package other is the build-time fallback adapter for platforms this
// module has no dedicated backend for.
package other

import (
	"context"

	"github.com/windowpane-rc/core/internal/platform"
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) SupportsOverlay() bool { return false }

func (a *Adapter) EnumerateSources(ctx context.Context) ([]platform.CaptureContent, error) {
	return nil, platform.ErrNotSupported
}

func (a *Adapter) NewCapturer(cfg platform.CaptureConfig) (platform.ContinuousCapturer, error) {
	return nil, platform.ErrNotSupported
}

func (a *Adapter) NewMouseHook(sink platform.MouseEventSink) (platform.MouseHook, error) {
	return nil, platform.ErrNotSupported
}

func (a *Adapter) NewMouseSynthesizer() platform.MouseSynthesizer { return stub{} }

func (a *Adapter) NewKeyboardLayout() platform.KeyboardLayout { return stub{} }

func (a *Adapter) NewKeyboardSynthesizer(layout platform.KeyboardLayout) platform.KeyboardSynthesizer {
	return stub{}
}

func (a *Adapter) EnumerateDisplays() ([]platform.DisplayInfo, error) {
	return nil, platform.ErrNotSupported
}

type stub struct{}

func (stub) Move(x, y int32)                              {}
func (stub) Warp(x, y int32)                               {}
func (stub) Click(button platform.MouseButton, down bool) {}
func (stub) Scroll(horizontal bool, ticks int32)          {}
func (stub) SendKeyCode(code uint16, mods platform.ModifierMask, down bool) {}
func (stub) SendUnicode(r rune, down bool)                                  {}
func (stub) Translate(keycode uint16, mods platform.ModifierMask) (string, bool) {
	return "", false
}
func (stub) GetCode(key string, mods platform.ModifierMask) (uint16, bool) { return 0, false }
func (stub) HasChanged() bool                                              { return false }
func (stub) IndependentCodes() map[string]uint16                           { return nil }
