//go:build windows

package windows

import (
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"
)

var (
	procOpenInputDesktop          = user32.NewProc("OpenInputDesktop")
	procCloseDesktop              = user32.NewProc("CloseDesktop")
	procGetUserObjectInformationW = user32.NewProc("GetUserObjectInformationW")
)

const (
	desktopGenericAll = 0x10000000
	uoiName           = 2
)

// desktopSwitcher polls the name of the current input desktop (e.g.
// "Default" vs "Winlogon" during a UAC prompt or the lock screen) and
// reports a one-shot change flag. A secure-desktop transition invalidates
// any cached window/display geometry the overlay is holding, since the
// surface it was drawing over no longer exists.
type desktopSwitcher struct {
	mu          sync.Mutex
	lastName    string
	initialized bool
	changed     atomic.Bool
	secure      atomic.Bool
}

var switcher desktopSwitcher

// pollDesktopSwitch is called once per capture tick; it is intentionally
// cheap (three syscalls) since it runs on the capture cadence goroutine.
func pollDesktopSwitch() {
	name, ok := currentInputDesktopName()
	if !ok {
		return
	}
	switcher.mu.Lock()
	defer switcher.mu.Unlock()
	if !switcher.initialized {
		switcher.lastName = name
		switcher.initialized = true
		return
	}
	if name != switcher.lastName {
		switcher.lastName = name
		switcher.changed.Store(true)
		switcher.secure.Store(name != "Default")
	}
}

func currentInputDesktopName() (string, bool) {
	h, _, _ := procOpenInputDesktop.Call(0, 0, desktopGenericAll)
	if h == 0 {
		return "", false
	}
	defer procCloseDesktop.Call(h)

	var buf [64]uint16
	var needed uint32
	ret, _, _ := procGetUserObjectInformationW.Call(
		h, uoiName,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)*2),
		uintptr(unsafe.Pointer(&needed)),
	)
	if ret == 0 {
		return "", false
	}
	return syscall.UTF16ToString(buf[:]), true
}

// ConsumeDesktopSwitch reports whether the input desktop changed since the
// last call and clears the flag, satisfying platform.DesktopSwitchSource.
func (a *Adapter) ConsumeDesktopSwitch() bool {
	pollDesktopSwitch()
	return switcher.changed.Swap(false)
}
