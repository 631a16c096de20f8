// Package control implements the sharer/controller input arbitration
// state machine: translating remote cursor/click/keystroke events into
// synthesized local input, and deciding whether the local sharer or a
// remote controller currently owns the hardware cursor.
package control

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/logging"
	"github.com/windowpane-rc/core/internal/platform"
)

var log = logging.L("control")

// CursorState is the shared has-control flag and position bookkeeping
// between the hardware mouse hook and the remote-event replayer. It is
// guarded by its own mutex because it is read and written from both the
// OS-level hook goroutine and the orchestrator's event-loop goroutine.
type CursorState struct {
	mu               sync.Mutex
	hasControl       bool
	lastHardware     platform.MouseEvent
	globalPosition   geometry.Position
	ignoreNextLocal  bool
}

// Arbiter owns the CursorState and reacts to hardware mouse-hook callbacks,
// implementing the jump-avoidance and click-based control handoff rules.
type Arbiter struct {
	state  *CursorState
	synth  platform.MouseSynthesizer
	onMove func(geometry.Position)
}

func NewArbiter(synth platform.MouseSynthesizer, onMove func(geometry.Position)) *Arbiter {
	return &Arbiter{state: &CursorState{}, synth: synth, onMove: onMove}
}

// HasControl reports whether the local sharer currently owns hardware
// input (true) or a remote controller does (false).
func (a *Arbiter) HasControl() bool {
	a.state.mu.Lock()
	defer a.state.mu.Unlock()
	return a.state.hasControl
}

// SetControl is called when the orchestrator grants or revokes control,
// e.g. at session start (sharer always starts in control) or when a
// remote participant is promoted to controller.
func (a *Arbiter) SetControl(has bool) {
	a.state.mu.Lock()
	a.state.hasControl = has
	a.state.mu.Unlock()
}

// OnMouseEvent implements platform.MouseEventSink. It is called on the
// OS hook thread for every hardware or synthesized mouse event.
func (a *Arbiter) OnMouseEvent(ev platform.MouseEvent) platform.HookDecision {
	if ev.Synthesized {
		return platform.HookKeep
	}

	switch ev.Type {
	case platform.MouseMove:
		return a.onHardwareMove(ev)
	case platform.MouseLeftDown, platform.MouseRightDown:
		return a.onClick(ev)
	default:
		return platform.HookKeep
	}
}

func (a *Arbiter) onHardwareMove(ev platform.MouseEvent) platform.HookDecision {
	a.state.mu.Lock()
	defer a.state.mu.Unlock()

	if a.state.ignoreNextLocal {
		// The first hardware move notification after we warp the cursor
		// ourselves still carries the warp as a delta; absorb it once so
		// it isn't double-counted against the remote-driven position. This
		// only skips the delta/warp bookkeeping below — it has no say over
		// whether the event reaches the OS, which still depends solely on
		// who holds control.
		a.state.ignoreNextLocal = false
		a.state.lastHardware = ev
		if a.state.hasControl {
			return platform.HookKeep
		}
		return platform.HookDrop
	}

	if a.state.hasControl {
		a.state.lastHardware = ev
		return platform.HookKeep
	}

	dx := float64(ev.X - a.state.lastHardware.X)
	dy := float64(ev.Y - a.state.lastHardware.Y)
	a.state.lastHardware = ev
	a.state.globalPosition.X += dx
	a.state.globalPosition.Y += dy

	warpX, warpY := int32(a.state.globalPosition.X), int32(a.state.globalPosition.Y)
	a.state.ignoreNextLocal = true
	if a.synth != nil {
		a.synth.Warp(warpX, warpY)
	}
	if a.onMove != nil {
		a.onMove(a.state.globalPosition)
	}
	return platform.HookDrop
}

func (a *Arbiter) onClick(ev platform.MouseEvent) platform.HookDecision {
	a.state.mu.Lock()
	hadControl := a.state.hasControl
	a.state.hasControl = !a.state.hasControl
	nowHasControl := a.state.hasControl
	a.state.mu.Unlock()

	log.Info("control arbitration toggled by click", "hadControl", hadControl, "hasControl", nowHasControl)

	if hadControl {
		// Taking control away from the local sharer: let the click through
		// so the sharer sees its own click land normally.
		return platform.HookKeep
	}
	// A click while a remote controller held input is a local takeover:
	// drop it so it isn't also replayed as a stray local click during the
	// handoff.
	return platform.HookDrop
}

// Replayer turns normalized remote events into synthesized local input.
type Replayer struct {
	synth    platform.MouseSynthesizer
	arbiter  *Arbiter
	displays func() []geometry.Display
	disabled atomic.Bool

	mu           sync.Mutex
	lastScroll   time.Time
	skippedTicks int
}

func NewReplayer(synth platform.MouseSynthesizer, arbiter *Arbiter, displays func() []geometry.Display) *Replayer {
	return &Replayer{synth: synth, arbiter: arbiter, displays: displays}
}

// SetEnabled gates remote mouse replay on whether the shell currently
// permits it for this session. Replayers start enabled.
func (r *Replayer) SetEnabled(enabled bool) {
	r.disabled.Store(!enabled)
}

// CursorPosition moves the hardware cursor to a percentage position on the
// primary display, granting the arbiter's control flag to the remote
// controller if it does not already hold it.
func (r *Replayer) CursorPosition(x, y float64) {
	if r.disabled.Load() {
		return
	}
	displays := r.displays()
	if len(displays) == 0 {
		return
	}
	pos := geometry.PercentageToGlobal(x, y, displays[0], displays[0].Scaled)
	r.arbiter.SetControl(false)
	r.synth.Move(int32(pos.X), int32(pos.Y))
}

// MouseClick replays a remote click of the given button.
func (r *Replayer) MouseClick(button platform.MouseButton, down bool) {
	if r.disabled.Load() {
		return
	}
	r.synth.Click(button, down)
}

const (
	scrollThrottle   = 15 * time.Millisecond
	scrollSkipBudget = 50
)

// Scroll replays a remote wheel delta, throttling bursts the same way the
// hardware driver would: events closer together than 15ms are coalesced,
// up to 50 consecutive skips, after which one is let through regardless so
// a fast-scrolling controller never stalls completely.
func (r *Replayer) Scroll(horizontal bool, delta float64) {
	if r.disabled.Load() {
		return
	}
	r.mu.Lock()
	elapsed := time.Since(r.lastScroll)
	if elapsed < scrollThrottle && r.skippedTicks < scrollSkipBudget {
		r.skippedTicks++
		r.mu.Unlock()
		return
	}
	r.skippedTicks = 0
	r.lastScroll = time.Now()
	r.mu.Unlock()

	ticks := wheelTranslation(delta)
	r.synth.Scroll(horizontal, int32(ticks))
}

// wheelTranslation converts a continuous pixel-style wheel delta into the
// discrete 120-multiple tick values Windows (and the synthesized event
// model generally) expects, preserving sign.
func wheelTranslation(value float64) int {
	sign := 1
	if value < 0 {
		sign = -1
	}
	abs := value
	if abs < 0 {
		abs = -abs
	}

	var ret float64
	switch {
	case abs <= 40:
		if abs < 10 && abs > 0 {
			ret = 120
		} else {
			ret = 120 * (abs / 15)
		}
	case abs <= 100:
		ret = 120 * (abs / 20)
	case abs <= 200:
		ret = abs * 2
	default:
		ret = abs
	}
	return int(ret) * sign
}
