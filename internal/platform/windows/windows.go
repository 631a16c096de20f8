//go:build windows

// Package windows adapts the Windows capture, input-synthesis and
// display-enumeration APIs to the platform.Adapter surface, following the
// SendInput/DXGI idiom used by the Windows desktop-control subsystem this
// package was generalized from: raw syscall.LazyDLL bindings into user32,
// shcore and mfplat rather than cgo.
package windows

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/windowpane-rc/core/internal/platform"
)

func init() {
	_ = ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
}

// Adapter implements platform.Adapter for Windows.
type Adapter struct {
	mu sync.Mutex
}

// New returns the Windows platform adapter.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) SupportsOverlay() bool { return true }

func (a *Adapter) EnumerateSources(ctx context.Context) ([]platform.CaptureContent, error) {
	displays, err := a.EnumerateDisplays()
	if err != nil {
		return nil, err
	}
	out := make([]platform.CaptureContent, 0, len(displays))
	for i, d := range displays {
		cap, err := newDXGICapturer()
		if err != nil {
			continue
		}
		thumb, terr := captureThumbnail(ctx, cap)
		cap.Close()
		if terr != nil {
			thumb = ""
		}
		out = append(out, platform.CaptureContent{
			SourceID:     uint32(i + 1),
			Title:        fmt.Sprintf("Display %d", i+1),
			ThumbnailB64: thumb,
		})
		_ = d
	}
	return out, nil
}

func (a *Adapter) NewCapturer(cfg platform.CaptureConfig) (platform.ContinuousCapturer, error) {
	return newDXGICapturer()
}

func (a *Adapter) NewMouseHook(sink platform.MouseEventSink) (platform.MouseHook, error) {
	return newMouseHook(sink)
}

func (a *Adapter) NewMouseSynthesizer() platform.MouseSynthesizer {
	return newMouseSynthesizer()
}

func (a *Adapter) NewKeyboardLayout() platform.KeyboardLayout {
	return newKeyboardLayout()
}

func (a *Adapter) NewKeyboardSynthesizer(layout platform.KeyboardLayout) platform.KeyboardSynthesizer {
	return newKeyboardSynthesizer(layout)
}

func (a *Adapter) EnumerateDisplays() ([]platform.DisplayInfo, error) {
	return listMonitors()
}
