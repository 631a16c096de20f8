//go:build windows

package windows

import (
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/windowpane-rc/core/internal/platform"
)

// msllhookstruct mirrors the Win32 MSLLHOOKSTRUCT passed to a WH_MOUSE_LL
// hook procedure.
type msllhookstruct struct {
	pt          struct{ x, y int32 }
	mouseData   uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

const (
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMouseWheel  = 0x020A
)

// mouseHook runs a WH_MOUSE_LL hook on a dedicated OS thread with its own
// message pump, the only arrangement Windows allows for low-level hooks,
// and forwards decoded events to a sink that decides whether the hardware
// event should continue to the rest of the system.
type mouseHook struct {
	sink     platform.MouseEventSink
	hhook    uintptr
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	lastSynt bool
}

var activeHook *mouseHook // WH_MOUSE_LL callbacks carry no user pointer

func newMouseHook(sink platform.MouseEventSink) (*mouseHook, error) {
	h := &mouseHook{sink: sink, stopCh: make(chan struct{}), doneCh: make(chan struct{})}
	activeHook = h

	started := make(chan error, 1)
	go h.run(started)
	if err := <-started; err != nil {
		return nil, err
	}
	return h, nil
}

func (h *mouseHook) run(started chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cb := syscall.NewCallback(lowLevelMouseProc)
	hhook, _, _ := procSetHook.Call(whMouseLL, cb, 0, 0)
	if hhook == 0 {
		started <- errHookFailed
		return
	}
	h.hhook = hhook
	started <- nil

	// Message pump required to keep the hook alive. PeekMessage does not
	// block, so the pump runs on a ticker and Close() is seen via stopCh
	// rather than a posted WM_QUIT (simpler and avoids thread-id bookkeeping).
	procPeekMessage := user32.NewProc("PeekMessageW")
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	var msg struct {
		hwnd    uintptr
		message uint32
		wParam  uintptr
		lParam  uintptr
		time    uint32
		pt      struct{ x, y int32 }
	}
	for {
		select {
		case <-h.stopCh:
			procUnhook.Call(h.hhook)
			close(h.doneCh)
			return
		case <-ticker.C:
			procPeekMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, 1) // PM_REMOVE
		}
	}
}

func lowLevelMouseProc(nCode int32, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 && activeHook != nil {
		data := (*msllhookstruct)(unsafe.Pointer(lParam))
		ev := platform.MouseEvent{
			X: data.pt.x, Y: data.pt.y,
			Synthesized: data.dwExtraInfo == customMouseEvent,
			Time:        time.Now(),
		}
		switch wParam {
		case wmMouseMove:
			ev.Type = platform.MouseMove
		case wmLButtonDown:
			ev.Type = platform.MouseLeftDown
		case wmLButtonUp:
			ev.Type = platform.MouseLeftUp
		case wmRButtonDown:
			ev.Type = platform.MouseRightDown
		case wmRButtonUp:
			ev.Type = platform.MouseRightUp
		case wmMouseWheel:
			ev.Type = platform.MouseWheel
			ev.WheelDelta = float64(int16(data.mouseData >> 16))
		}
		if activeHook.sink.OnMouseEvent(ev) == platform.HookDrop {
			return 1
		}
	}
	ret, _, _ := procCallNextHook.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func (h *mouseHook) Close() error {
	close(h.stopCh)
	<-h.doneCh
	if activeHook == h {
		activeHook = nil
	}
	return nil
}

var errHookFailed = hookError("SetWindowsHookExW failed")

type hookError string

func (e hookError) Error() string { return string(e) }
