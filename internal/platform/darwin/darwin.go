//go:build darwin

// Package darwin is a minimal macOS platform.Adapter: enough to satisfy the
// interface on machines that build the binary but cannot yet exercise the
// ScreenCaptureKit/CGEvent-backed implementation, which is out of this
// release's scope (the reference implementation's macOS backend is a
// substantial cgo surface not mirrored here). Source enumeration, capture
// and hook calls report ErrNotSupported; the mouse/keyboard synthesizers and
// keyboard layout are silent no-ops; display enumeration returns one fixed
// 1920x1080 main display at scale 2 so the orchestrator can still start up
// and route control messages.
package darwin

import (
	"context"

	"github.com/windowpane-rc/core/internal/geometry"
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

func (a *Adapter) NewMouseSynthesizer() platform.MouseSynthesizer {
	return stubSynth{}
}

func (a *Adapter) NewKeyboardLayout() platform.KeyboardLayout {
	return stubLayout{}
}

func (a *Adapter) NewKeyboardSynthesizer(layout platform.KeyboardLayout) platform.KeyboardSynthesizer {
	return stubKeyboard{}
}

func (a *Adapter) EnumerateDisplays() ([]platform.DisplayInfo, error) {
	return []platform.DisplayInfo{{ID: "main", Extent: geometry.Extent{Width: 1920, Height: 1080}, ScaleFactor: 2, Primary: true, Scaled: true}}, nil
}

type stubSynth struct{}

func (stubSynth) Move(x, y int32)                              {}
func (stubSynth) Warp(x, y int32)                               {}
func (stubSynth) Click(button platform.MouseButton, down bool) {}
func (stubSynth) Scroll(horizontal bool, ticks int32)          {}

type stubKeyboard struct{}

func (stubKeyboard) SendKeyCode(code uint16, mods platform.ModifierMask, down bool) {}
func (stubKeyboard) SendUnicode(r rune, down bool)                                  {}

type stubLayout struct{}

func (stubLayout) Translate(keycode uint16, mods platform.ModifierMask) (string, bool) {
	return "", false
}
func (stubLayout) GetCode(key string, mods platform.ModifierMask) (uint16, bool) { return 0, false }
func (stubLayout) HasChanged() bool                                             { return false }
func (stubLayout) IndependentCodes() map[string]uint16                          { return nil }
