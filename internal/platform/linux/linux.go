//go:build linux

// Package linux provides the degraded-mode platform.Adapter for Linux: a
// single-source picker with no thumbnails, no overlay, and input hooking
// left unimplemented, matching the reduced Linux feature set the session
// orchestrator is expected to detect and route around.
package linux

import (
	"context"

	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/platform"
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) SupportsOverlay() bool { return false }

// EnumerateSources always returns exactly one source: Linux capture goes
// through a desktop portal picker at stream-start time, so there is
// nothing meaningful to enumerate or thumbnail ahead of that.
func (a *Adapter) EnumerateSources(ctx context.Context) ([]platform.CaptureContent, error) {
	return []platform.CaptureContent{{SourceID: 1, Title: "Screen"}}, nil
}

func (a *Adapter) NewCapturer(cfg platform.CaptureConfig) (platform.ContinuousCapturer, error) {
	return newPortalCapturer()
}

func (a *Adapter) NewMouseHook(sink platform.MouseEventSink) (platform.MouseHook, error) {
	return nil, platform.ErrNotSupported
}

func (a *Adapter) NewMouseSynthesizer() platform.MouseSynthesizer {
	return &noopMouseSynth{}
}

func (a *Adapter) NewKeyboardLayout() platform.KeyboardLayout {
	return &noopLayout{}
}

func (a *Adapter) NewKeyboardSynthesizer(layout platform.KeyboardLayout) platform.KeyboardSynthesizer {
	return &noopKeyboardSynth{}
}

func (a *Adapter) EnumerateDisplays() ([]platform.DisplayInfo, error) {
	return []platform.DisplayInfo{{
		ID:       "portal-0",
		Position: geometry.Position{},
		Extent:   geometry.Extent{Width: 0, Height: 0},
		Primary:  true,
	}}, nil
}
