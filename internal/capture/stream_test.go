package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/platform"
)

type fakeCapturer struct {
	mu      sync.Mutex
	result  platform.CaptureResult
	w, h    int
}

func (f *fakeCapturer) Start(source uint32) error { return nil }
func (f *fakeCapturer) SetExcludedPIDs(pids []int32) {}
func (f *fakeCapturer) Close() error { return nil }
func (f *fakeCapturer) CaptureFrame() (platform.CaptureResult, *platform.DesktopFrame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.result != platform.CaptureOK {
		return f.result, nil
	}
	return platform.CaptureOK, &platform.DesktopFrame{
		BGRA:   make([]byte, f.w*f.h*4),
		Width:  f.w,
		Height: f.h,
		Stride: f.w * 4,
	}
}

type fakeAdapter struct {
	capturer *fakeCapturer
}

func (a *fakeAdapter) EnumerateSources(ctx context.Context) ([]platform.CaptureContent, error) {
	return nil, nil
}
func (a *fakeAdapter) NewCapturer(cfg platform.CaptureConfig) (platform.ContinuousCapturer, error) {
	return a.capturer, nil
}
func (a *fakeAdapter) NewMouseHook(sink platform.MouseEventSink) (platform.MouseHook, error) {
	return nil, platform.ErrNotSupported
}
func (a *fakeAdapter) NewMouseSynthesizer() platform.MouseSynthesizer { return nil }
func (a *fakeAdapter) NewKeyboardLayout() platform.KeyboardLayout     { return nil }
func (a *fakeAdapter) NewKeyboardSynthesizer(l platform.KeyboardLayout) platform.KeyboardSynthesizer {
	return nil
}
func (a *fakeAdapter) EnumerateDisplays() ([]platform.DisplayInfo, error) { return nil, nil }
func (a *fakeAdapter) SupportsOverlay() bool                              { return true }

type fakeSink struct {
	mu     sync.Mutex
	frames int
	w, h   int
}

func (s *fakeSink) WriteNV12(frame []byte, width, height int, pts time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.w, s.h = width, height
	return nil
}

func TestStreamCapturesAndScales(t *testing.T) {
	fc := &fakeCapturer{result: platform.CaptureOK, w: 1920, h: 1080}
	adapter := &fakeAdapter{capturer: fc}
	messages := make(chan RuntimeMessage, 4)
	s := NewStream(adapter, geometry.Extent{Width: 1280, Height: 1280}, messages)
	sink := &fakeSink{}
	s.SetSink(sink)

	if err := s.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	s.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.frames == 0 {
		t.Fatal("expected at least one frame written")
	}
	if sink.w != 1280 || sink.h != 720 {
		t.Fatalf("expected aspect-fit 1280x720, got %dx%d", sink.w, sink.h)
	}
}

func TestStreamCopySharesBuffers(t *testing.T) {
	fc := &fakeCapturer{result: platform.CaptureOK, w: 640, h: 480}
	adapter := &fakeAdapter{capturer: fc}
	messages := make(chan RuntimeMessage, 4)
	s := NewStream(adapter, geometry.Extent{Width: 640, Height: 640}, messages)
	if err := s.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	s2, err := s.Copy()
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if s2.shared != s.shared {
		t.Fatal("expected Copy to share the original buffers struct")
	}
	s2.Stop()
}

func TestStreamPermanentFailureEscalates(t *testing.T) {
	fc := &fakeCapturer{result: platform.CaptureErrorPermanent}
	adapter := &fakeAdapter{capturer: fc}
	messages := make(chan RuntimeMessage, 4)
	s := NewStream(adapter, geometry.Extent{Width: 640, Height: 640}, messages)
	if err := s.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case msg := <-messages:
		if msg != MessageFailed {
			t.Fatalf("expected MessageFailed, got %v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for failure message")
	}
	s.Stop()
}
