//go:build linux

package linux

import (
	"github.com/windowpane-rc/core/internal/platform"
)

// portalCapturer is a placeholder for a PipeWire/xdg-desktop-portal
// ScreenCast session. Wiring the actual portal D-Bus handshake is left for
// a follow-up: this type exists so the session orchestrator's capture loop
// compiles and runs uniformly across platforms, reporting a permanent
// error immediately rather than pretending to capture frames that never
// arrive.
type portalCapturer struct{}

func newPortalCapturer() (*portalCapturer, error) {
	return &portalCapturer{}, nil
}

func (c *portalCapturer) Start(source uint32) error { return nil }

func (c *portalCapturer) CaptureFrame() (platform.CaptureResult, *platform.DesktopFrame) {
	return platform.CaptureErrorPermanent, nil
}

func (c *portalCapturer) SetExcludedPIDs(pids []int32) {}

func (c *portalCapturer) Close() error { return nil }
