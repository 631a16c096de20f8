//go:build windows

package windows

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/platform"
)

var (
	user32Monitor          = syscall.NewLazyDLL("user32.dll")
	procEnumDisplayMonitor = user32Monitor.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW    = user32Monitor.NewProc("GetMonitorInfoW")
	shcore                 = syscall.NewLazyDLL("shcore.dll")
	procGetDpiForMonitor   = shcore.NewProc("GetDpiForMonitor")
)

type rect struct{ left, top, right, bottom int32 }

type monitorInfoEx struct {
	cbSize    uint32
	rcMonitor rect
	rcWork    rect
	dwFlags   uint32
	szDevice  [32]uint16
}

const monitorinfofPrimary = 0x1

// listMonitors enumerates physical displays via EnumDisplayMonitors and
// reads each one's DPI scale through shcore's per-monitor API, the DXGI
// adapter-output enumeration's lighter-weight GDI-level equivalent.
func listMonitors() ([]platform.DisplayInfo, error) {
	var out []platform.DisplayInfo
	cb := syscall.NewCallback(func(hMonitor uintptr, hdc uintptr, lprc uintptr, lParam uintptr) uintptr {
		var mi monitorInfoEx
		mi.cbSize = uint32(unsafe.Sizeof(mi))
		ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&mi)))
		if ret == 0 {
			return 1
		}
		var dpiX, dpiY uint32
		procGetDpiForMonitor.Call(hMonitor, 0, uintptr(unsafe.Pointer(&dpiX)), uintptr(unsafe.Pointer(&dpiY)))
		scale := 1.0
		if dpiX > 0 {
			scale = float64(dpiX) / 96.0
		}
		out = append(out, platform.DisplayInfo{
			ID: syscall.UTF16ToString(mi.szDevice[:]),
			Position: geometry.Position{
				X: float64(mi.rcMonitor.left),
				Y: float64(mi.rcMonitor.top),
			},
			Extent: geometry.Extent{
				Width:  float64(mi.rcMonitor.right - mi.rcMonitor.left),
				Height: float64(mi.rcMonitor.bottom - mi.rcMonitor.top),
			},
			ScaleFactor: scale,
			Primary:     mi.dwFlags&monitorinfofPrimary != 0,
		})
		return 1
	})
	ret, _, _ := procEnumDisplayMonitor.Call(0, 0, cb, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed")
	}
	if len(out) == 0 {
		return nil, platform.ErrSourceNotFound
	}
	return out, nil
}
