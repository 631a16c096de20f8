// Package overlay draws the transparent, always-on-top layer showing each
// remote controller's cursor as a labeled badge. The GPU binding is kept
// behind a small Renderer interface; the default implementation composites
// with golang.org/x/image/draw so the overlay works even without a GPU
// context (tests, and platforms without a wired hardware backend).
package overlay

import (
	"time"

	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/logging"
	"github.com/windowpane-rc/core/internal/platform"
)

var log = logging.L("overlay")

const autoHideAfter = 5 * time.Second

// OverlayWindow is written once when a capture session starts and only
// read afterward, per the single-writer ownership rule that keeps the
// GPU device and the capture/session goroutines from racing on it.
type OverlayWindow struct {
	SharingFrame geometry.Frame
	Extent       geometry.Extent
	Position     geometry.Position
	Display      platform.DisplayInfo
	Scaled       bool
}

// Controller is one remote participant's cursor badge state.
type Controller struct {
	SID           string
	Name          string
	Color         string
	CursorTexture []byte
	Visible       bool
	Enabled       bool
	LastActivity  time.Time
	Position      geometry.Position
}

// Renderer draws the current set of visible controller badges plus the
// static corner markers onto the overlay surface. Implementations may be
// backed by a real GPU context or by an in-memory software compositor.
type Renderer interface {
	SetWindow(w OverlayWindow)
	UpsertController(c Controller)
	RemoveController(sid string)
	SetControllerPosition(sid string, pos geometry.Position)
	SetControllerVisible(sid string, visible bool)
	Render() error
	Close() error
}

// noopRenderer satisfies Renderer on platforms/sessions where the overlay
// is entirely disabled (every adapter except Windows).
type noopRenderer struct{}

func (noopRenderer) SetWindow(OverlayWindow)                       {}
func (noopRenderer) UpsertController(Controller)                   {}
func (noopRenderer) RemoveController(string)                       {}
func (noopRenderer) SetControllerPosition(string, geometry.Position) {}
func (noopRenderer) SetControllerVisible(string, bool)              {}
func (noopRenderer) Render() error                                  { return nil }
func (noopRenderer) Close() error                                   { return nil }

// New builds the overlay renderer appropriate for the given adapter. When
// the adapter reports no overlay support (all but Windows) a no-op renderer is
// returned so callers never need a platform switch of their own.
func New(adapter platform.Adapter, texturesPath string) Renderer {
	if !adapter.SupportsOverlay() {
		log.Info("overlay disabled: platform adapter reports no support")
		return noopRenderer{}
	}
	return NewSoftwareRenderer(texturesPath)
}

