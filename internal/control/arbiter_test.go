package control

import (
	"testing"
	"time"

	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/platform"
)

type fakeSynth struct {
	moves  []platform.MouseEvent
	warps  []platform.MouseEvent
	clicks int
	scrolls []int32
}

func (f *fakeSynth) Move(x, y int32) {
	f.moves = append(f.moves, platform.MouseEvent{X: x, Y: y})
}
func (f *fakeSynth) Warp(x, y int32) {
	f.warps = append(f.warps, platform.MouseEvent{X: x, Y: y})
}
func (f *fakeSynth) Click(button platform.MouseButton, down bool) { f.clicks++ }
func (f *fakeSynth) Scroll(horizontal bool, ticks int32)          { f.scrolls = append(f.scrolls, ticks) }

func TestArbiterStartsWithControl(t *testing.T) {
	a := NewArbiter(&fakeSynth{}, nil)
	a.SetControl(true)
	if !a.HasControl() {
		t.Fatal("expected sharer to start with control")
	}
}

func TestArbiterClickTogglesControl(t *testing.T) {
	a := NewArbiter(&fakeSynth{}, nil)
	a.SetControl(true)
	decision := a.OnMouseEvent(platform.MouseEvent{Type: platform.MouseLeftDown})
	if a.HasControl() {
		t.Fatal("expected control to flip to remote after click")
	}
	if decision != platform.HookKeep {
		t.Fatal("click that surrenders control should pass through")
	}

	decision = a.OnMouseEvent(platform.MouseEvent{Type: platform.MouseLeftDown})
	if !a.HasControl() {
		t.Fatal("expected control to flip back to sharer")
	}
	if decision != platform.HookDrop {
		t.Fatal("click that takes control back should be dropped")
	}
}

func TestArbiterDropsLocalMoveWhileRemoteControls(t *testing.T) {
	synth := &fakeSynth{}
	var captured geometry.Position
	a := NewArbiter(synth, func(p geometry.Position) { captured = p })
	a.SetControl(false)

	a.state.lastHardware = platform.MouseEvent{X: 100, Y: 100}
	decision := a.OnMouseEvent(platform.MouseEvent{Type: platform.MouseMove, X: 110, Y: 105})
	if decision != platform.HookDrop {
		t.Fatal("local move while remote controls should be dropped")
	}
	if len(synth.warps) != 1 {
		t.Fatalf("expected one warp, got %d", len(synth.warps))
	}
	if captured.X != 10 || captured.Y != 5 {
		t.Fatalf("unexpected accumulated delta: %+v", captured)
	}
}

func TestArbiterIgnoresFirstMoveAfterWarp(t *testing.T) {
	synth := &fakeSynth{}
	a := NewArbiter(synth, nil)
	a.SetControl(false)
	a.state.lastHardware = platform.MouseEvent{X: 0, Y: 0}

	a.OnMouseEvent(platform.MouseEvent{Type: platform.MouseMove, X: 10, Y: 10})
	decision := a.OnMouseEvent(platform.MouseEvent{Type: platform.MouseMove, X: 10, Y: 10})
	if decision != platform.HookDrop {
		t.Fatal("move immediately after a warp should still be dropped while remote controls, only the bookkeeping is skipped")
	}
}

func TestArbiterKeepsSynthesizedEvents(t *testing.T) {
	a := NewArbiter(&fakeSynth{}, nil)
	decision := a.OnMouseEvent(platform.MouseEvent{Type: platform.MouseMove, Synthesized: true})
	if decision != platform.HookKeep {
		t.Fatal("synthesized events must always pass through")
	}
}

func TestWheelTranslationTable(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{5, 120},
		{-5, -120},
		{40, 120 * 40 / 15},
		{100, 120 * 100 / 20},
		{150, 300},
		{250, 250},
	}
	for _, c := range cases {
		got := wheelTranslation(c.in)
		if got != c.want {
			t.Errorf("wheelTranslation(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestReplayerScrollThrottles(t *testing.T) {
	synth := &fakeSynth{}
	a := NewArbiter(synth, nil)
	r := NewReplayer(synth, a, func() []geometry.Display { return nil })

	for i := 0; i < 5; i++ {
		r.Scroll(false, 50)
	}
	if len(synth.scrolls) != 1 {
		t.Fatalf("expected rapid scrolls to be throttled to 1, got %d", len(synth.scrolls))
	}

	time.Sleep(20 * time.Millisecond)
	r.Scroll(false, 50)
	if len(synth.scrolls) != 2 {
		t.Fatalf("expected a scroll after the throttle window to pass, got %d", len(synth.scrolls))
	}
}
