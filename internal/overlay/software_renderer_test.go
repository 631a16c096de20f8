package overlay

import (
	"testing"
	"time"

	"github.com/windowpane-rc/core/internal/geometry"
)

func newTestRenderer(t *testing.T) *SoftwareRenderer {
	t.Helper()
	r := NewSoftwareRenderer(t.TempDir())
	r.SetWindow(OverlayWindow{
		Extent:       geometry.Extent{Width: 1920, Height: 1080},
		SharingFrame: geometry.Frame{Extent: geometry.Extent{Width: 1920, Height: 1080}},
	})
	return r
}

func TestSoftwareRendererUpsertAndRender(t *testing.T) {
	r := newTestRenderer(t)
	r.UpsertController(Controller{SID: "p1", Name: "Ada", Color: "#3388ff", Position: geometry.Position{X: 0.5, Y: 0.5}})

	if err := r.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if r.Surface() == nil {
		t.Fatal("expected a composited surface after render")
	}
}

func TestSoftwareRendererAutoHidesIdleController(t *testing.T) {
	r := newTestRenderer(t)
	r.UpsertController(Controller{SID: "p1", Name: "Ada", Color: "#3388ff"})
	r.ctrls["p1"].LastActivity = time.Now().Add(-10 * time.Second)

	if err := r.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if r.ctrls["p1"].Visible {
		t.Fatal("expected idle controller to be hidden after render")
	}
}

func TestSoftwareRendererSetPositionRevivesVisibility(t *testing.T) {
	r := newTestRenderer(t)
	r.UpsertController(Controller{SID: "p1", Name: "Ada", Color: "#3388ff"})
	r.SetControllerVisible("p1", false)

	r.SetControllerPosition("p1", geometry.Position{X: 0.2, Y: 0.2})
	if !r.ctrls["p1"].Visible {
		t.Fatal("expected SetControllerPosition to mark controller visible again")
	}
}

func TestSoftwareRendererRemoveController(t *testing.T) {
	r := newTestRenderer(t)
	r.UpsertController(Controller{SID: "p1", Name: "Ada", Color: "#3388ff"})
	r.RemoveController("p1")
	if _, ok := r.ctrls["p1"]; ok {
		t.Fatal("expected controller to be removed")
	}
}

func TestRenderBeforeSetWindowErrors(t *testing.T) {
	r := NewSoftwareRenderer(t.TempDir())
	if err := r.Render(); err == nil {
		t.Fatal("expected error rendering before SetWindow")
	}
}

func TestNoopRendererIsSafeToCallThroughInterface(t *testing.T) {
	var r Renderer = noopRenderer{}
	r.SetWindow(OverlayWindow{})
	r.UpsertController(Controller{SID: "p1"})
	r.SetControllerPosition("p1", geometry.Position{})
	r.SetControllerVisible("p1", true)
	if err := r.Render(); err != nil {
		t.Fatalf("noop render should never error: %v", err)
	}
	r.RemoveController("p1")
	if err := r.Close(); err != nil {
		t.Fatalf("noop close should never error: %v", err)
	}
}
