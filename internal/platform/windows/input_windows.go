//go:build windows

package windows

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/windowpane-rc/core/internal/platform"
)

var (
	user32           = syscall.NewLazyDLL("user32.dll")
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetSysMetric = user32.NewProc("GetSystemMetrics")
	procSetHook      = user32.NewProc("SetWindowsHookExW")
	procUnhook       = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHook = user32.NewProc("CallNextHookEx")
	procGetMessage   = user32.NewProc("GetMessageW")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfMove       = 0x0001
	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfWheel      = 0x0800
	mouseeventfHWheel     = 0x1000
	mouseeventfAbsolute   = 0x8000
	mouseeventfVirtualDsk = 0x4000

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	keyeventfKeyUp       = 0x0002
	keyeventfUnicode     = 0x0004
	keyeventfExtendedKey = 0x0001

	whMouseLL = 14
	whKeyboardLL = 13

	// customMouseEvent tags SendInput-originated mouse events so the hook
	// callback can distinguish them from hardware input.
	customMouseEvent = 0x7F7F7F7F
)

type mouseInput struct {
	dx, dy      int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type rawInput struct {
	inputType uint32
	_         uint32 // padding on amd64 union alignment
	data      [24]byte
}

func sendMouseInput(mi mouseInput) {
	inp := rawInput{inputType: inputMouse}
	*(*mouseInput)(unsafe.Pointer(&inp.data[0])) = mi
	procSendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
}

func sendKeybdInput(ki keybdInput) {
	inp := rawInput{inputType: inputKeyboard}
	*(*keybdInput)(unsafe.Pointer(&inp.data[0])) = ki
	procSendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
}

func virtualScreenMetrics() (x, y, w, h int32) {
	vx, _, _ := procGetSysMetric.Call(smXVirtualScreen)
	vy, _, _ := procGetSysMetric.Call(smYVirtualScreen)
	cw, _, _ := procGetSysMetric.Call(smCXVirtualScreen)
	ch, _, _ := procGetSysMetric.Call(smCYVirtualScreen)
	return int32(vx), int32(vy), int32(cw), int32(ch)
}

func toVirtualDesktop(x, y int32) (int32, int32, bool) {
	vx, vy, cw, ch := virtualScreenMetrics()
	if cw <= 0 || ch <= 0 {
		return 0, 0, false
	}
	ax := int32((float64(x-vx) / float64(cw)) * 65535)
	ay := int32((float64(y-vy) / float64(ch)) * 65535)
	return ax, ay, true
}

// mouseSynthesizer implements platform.MouseSynthesizer using SendInput.
type mouseSynthesizer struct {
	mu sync.Mutex
}

func newMouseSynthesizer() *mouseSynthesizer {
	return &mouseSynthesizer{}
}

func (m *mouseSynthesizer) Move(x, y int32) {
	ax, ay, ok := toVirtualDesktop(x, y)
	if !ok {
		procSetCursorPos.Call(uintptr(x), uintptr(y))
		return
	}
	sendMouseInput(mouseInput{
		dx: ax, dy: ay,
		dwFlags:     mouseeventfMove | mouseeventfAbsolute | mouseeventfVirtualDsk,
		dwExtraInfo: customMouseEvent,
	})
}

// Warp repositions the hardware cursor without generating a drag-visible
// move, used by the sharer/controller arbiter to pull the local cursor
// back after it absorbs a remote delta.
func (m *mouseSynthesizer) Warp(x, y int32) {
	procSetCursorPos.Call(uintptr(x), uintptr(y))
}

func (m *mouseSynthesizer) Click(button platform.MouseButton, down bool) {
	var flag uint32
	switch button {
	case platform.ButtonLeft:
		if down {
			flag = mouseeventfLeftDown
		} else {
			flag = mouseeventfLeftUp
		}
	case platform.ButtonRight:
		if down {
			flag = mouseeventfRightDown
		} else {
			flag = mouseeventfRightUp
		}
	}
	sendMouseInput(mouseInput{dwFlags: flag, dwExtraInfo: customMouseEvent})
}

func (m *mouseSynthesizer) Scroll(horizontal bool, ticks int32) {
	flag := uint32(mouseeventfWheel)
	if horizontal {
		flag = mouseeventfHWheel
	}
	sendMouseInput(mouseInput{
		mouseData:   uint32(ticks),
		dwFlags:     flag,
		dwExtraInfo: customMouseEvent,
	})
}

// keyboardSynthesizer implements platform.KeyboardSynthesizer.
type keyboardSynthesizer struct {
	layout platform.KeyboardLayout
}

func newKeyboardSynthesizer(layout platform.KeyboardLayout) *keyboardSynthesizer {
	return &keyboardSynthesizer{layout: layout}
}

func (k *keyboardSynthesizer) SendKeyCode(code uint16, mods platform.ModifierMask, down bool) {
	flags := uint32(0)
	if !down {
		flags |= keyeventfKeyUp
	}
	sendKeybdInput(keybdInput{wVk: code, dwFlags: flags})
}

func (k *keyboardSynthesizer) SendUnicode(r rune, down bool) {
	flags := uint32(keyeventfUnicode)
	if !down {
		flags |= keyeventfKeyUp
	}
	sendKeybdInput(keybdInput{wScan: uint16(r), dwFlags: flags})
}
