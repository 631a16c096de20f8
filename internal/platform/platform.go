// Package platform defines the capability surface each operating system
// adapter implements: capture source enumeration, continuous frame capture,
// mouse/keyboard hooking and synthesis, and display enumeration. Concrete
// adapters live in the windows, darwin, linux and other subpackages; the
// cmd/windowpane-core entry point picks one through its build-tagged
// adapter_*.go files.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/windowpane-rc/core/internal/geometry"
)

var (
	ErrNotSupported    = errors.New("platform: operation not supported")
	ErrPermissionDenied = errors.New("platform: permission denied")
	ErrSourceNotFound  = errors.New("platform: capture source not found")
)

// CaptureContent describes one capturable source returned by source
// enumeration: one full display per entry (Windows lists one per monitor,
// Linux exactly one).
type CaptureContent struct {
	SourceID     uint32
	Title        string
	ThumbnailB64 string
}

// CaptureResult is the outcome of a single CaptureFrame call.
type CaptureResult int

const (
	CaptureOK CaptureResult = iota
	CaptureErrorTemporary
	CaptureErrorPermanent
	CaptureErrorUserStopped
)

// DesktopFrame is one captured BGRA frame together with its placement on
// the virtual desktop.
type DesktopFrame struct {
	BGRA     []byte
	Width    int
	Height   int
	Stride   int
	OriginX  int
	OriginY  int
}

// CaptureConfig parameterizes a continuous capturer.
type CaptureConfig struct {
	SourceID uint32
}

// ContinuousCapturer drives the 16ms capture cadence for one active stream.
type ContinuousCapturer interface {
	Start(source uint32) error
	CaptureFrame() (CaptureResult, *DesktopFrame)
	SetExcludedPIDs(pids []int32)
	Close() error
}

// MouseEvent is a hardware or synthesized mouse event observed by a
// platform-level hook.
type MouseEvent struct {
	Type        MouseEventType
	X, Y        int32
	WheelDelta  float64
	Synthesized bool
	Time        time.Time
}

type MouseEventType int

const (
	MouseMove MouseEventType = iota
	MouseLeftDown
	MouseLeftUp
	MouseRightDown
	MouseRightUp
	MouseWheel
)

// HookDecision tells the platform hook whether to let a hardware event
// continue to the rest of the system or to swallow it.
type HookDecision int

const (
	HookKeep HookDecision = iota
	HookDrop
)

// MouseEventSink receives hook events and decides whether to keep or drop
// them from the underlying OS event stream.
type MouseEventSink interface {
	OnMouseEvent(ev MouseEvent) HookDecision
}

// MouseHook is a running low-level mouse observer.
type MouseHook interface {
	Close() error
}

// MouseSynthesizer injects mouse input as if from hardware.
type MouseSynthesizer interface {
	Move(x, y int32)
	Warp(x, y int32)
	Click(button MouseButton, down bool)
	Scroll(horizontal bool, ticks int32)
}

type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// ModifierMask mirrors the bit layout used by the keyboard layout tables:
// bit assignments are fixed so serialized KeyMap entries stay stable.
type ModifierMask uint16

const (
	ModCmd ModifierMask = 1 << iota
	ModShift
	ModAlphaLock
	ModOption
	ModCtrl
	ModRightShift
	ModRightOption
	ModRightCtrl
)

// KeyboardLayout resolves virtual keycodes to logical key names under the
// currently active OS keyboard layout.
type KeyboardLayout interface {
	Translate(keycode uint16, mods ModifierMask) (key string, ok bool)
	// GetCode is the reverse lookup: given a logical key name and modifier
	// mask, return the keycode the active layout produces it from.
	GetCode(key string, mods ModifierMask) (code uint16, ok bool)
	HasChanged() bool
	IndependentCodes() map[string]uint16
}

// KeyboardSynthesizer injects keyboard input as if from hardware.
type KeyboardSynthesizer interface {
	SendKeyCode(code uint16, mods ModifierMask, down bool)
	SendUnicode(r rune, down bool)
}

// DisplayInfo describes one physical display.
type DisplayInfo struct {
	ID          string
	Position    geometry.Position
	Extent      geometry.Extent
	ScaleFactor float64
	Primary     bool
	// Scaled reports whether this OS expects percentage<->pixel conversions
	// to divide out ScaleFactor (macOS, which works in logical points) or
	// not (Windows, which reports raw pixels regardless of DPI).
	Scaled bool
}

// Adapter is the full capability set a platform package must implement.
type Adapter interface {
	EnumerateSources(ctx context.Context) ([]CaptureContent, error)
	NewCapturer(cfg CaptureConfig) (ContinuousCapturer, error)
	NewMouseHook(sink MouseEventSink) (MouseHook, error)
	NewMouseSynthesizer() MouseSynthesizer
	NewKeyboardLayout() KeyboardLayout
	NewKeyboardSynthesizer(layout KeyboardLayout) KeyboardSynthesizer
	EnumerateDisplays() ([]DisplayInfo, error)
	SupportsOverlay() bool
}

// DesktopSwitchSource is implemented by adapters that can detect a
// secure-desktop transition (UAC prompt, lock screen) that invalidates any
// cached window geometry. Not part of Adapter itself since most platforms
// have no such concept; callers use a type assertion.
type DesktopSwitchSource interface {
	// ConsumeDesktopSwitch reports whether the desktop changed since the
	// last call and clears the flag.
	ConsumeDesktopSwitch() bool
}
