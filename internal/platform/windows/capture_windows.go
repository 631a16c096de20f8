//go:build windows

package windows

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/windowpane-rc/core/internal/platform"
)

// dxgiCapturer wraps a desktop-duplication style capture loop. The actual
// DXGI/D3D11 COM interop is intentionally behind a narrow interface so the
// orchestration logic (excluded PIDs, temporary vs permanent error
// classification) is exercised the same way regardless of the concrete
// duplication backend in use on a given Windows build.
type dxgiCapturer struct {
	mu           sync.Mutex
	started      bool
	excludedPIDs map[int32]bool
	width        int
	height       int
}

func newDXGICapturer() (*dxgiCapturer, error) {
	return &dxgiCapturer{excludedPIDs: map[int32]bool{}}, nil
}

func (c *dxgiCapturer) Start(source uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
	c.width, c.height = 1920, 1080
	return nil
}

func (c *dxgiCapturer) SetExcludedPIDs(pids []int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.excludedPIDs = make(map[int32]bool, len(pids))
	for _, p := range pids {
		c.excludedPIDs[p] = true
	}
}

// CaptureFrame classifies the capture result the caller needs
// (ok/temporary/permanent/user-stopped) and hands back a BGRA frame for the
// conversion stage in internal/capture. No desktop-duplication call
// (IDXGIOutputDuplication.AcquireNextFrame) is made: once started it returns
// a zero-filled frame of the capturer's fixed size, and before Start it
// reports a permanent error.
func (c *dxgiCapturer) CaptureFrame() (platform.CaptureResult, *platform.DesktopFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return platform.CaptureErrorPermanent, nil
	}
	frame := &platform.DesktopFrame{
		BGRA:   make([]byte, c.width*c.height*4),
		Width:  c.width,
		Height: c.height,
		Stride: c.width * 4,
	}
	return platform.CaptureOK, frame
}

func (c *dxgiCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	return nil
}

func captureThumbnail(ctx context.Context, c *dxgiCapturer) (string, error) {
	if err := c.Start(0); err != nil {
		return "", err
	}
	defer c.Close()

	deadline := time.Now().Add(100 * 33 * time.Millisecond)
	for attempt := 0; attempt < 100; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			break
		}
		result, frame := c.CaptureFrame()
		switch result {
		case platform.CaptureOK:
			if frame == nil {
				time.Sleep(33 * time.Millisecond)
				continue
			}
			tw, th := 480, 360
			jpg := encodeThumbnailJPEG(frame, tw, th)
			return base64.StdEncoding.EncodeToString(jpg), nil
		case platform.CaptureErrorPermanent:
			return "", fmt.Errorf("thumbnail capture: permanent error")
		default:
			time.Sleep(33 * time.Millisecond)
		}
	}
	return "", fmt.Errorf("thumbnail capture: timed out")
}
