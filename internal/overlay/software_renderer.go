package overlay

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	ximgdraw "golang.org/x/image/draw"

	"github.com/windowpane-rc/core/internal/geometry"
)

// cornerMarker names the four static textures loaded from --textures-path.
var cornerMarkers = []string{
	"marker_top_left.png",
	"marker_top_right.png",
	"marker_bottom_left.png",
	"marker_bottom_right.png",
}

type controllerState struct {
	Controller
	badge *image.RGBA
}

// SoftwareRenderer composites controller badges and corner markers into an
// in-memory RGBA surface using golang.org/x/image/draw, for platforms or
// test builds without a wired GPU backend.
type SoftwareRenderer struct {
	mu      sync.Mutex
	window  OverlayWindow
	markers []image.Image
	ctrls   map[string]*controllerState
	surface *image.RGBA
}

func NewSoftwareRenderer(texturesPath string) *SoftwareRenderer {
	r := &SoftwareRenderer{ctrls: make(map[string]*controllerState)}
	r.loadMarkers(texturesPath)
	return r
}

func (r *SoftwareRenderer) loadMarkers(texturesPath string) {
	for _, name := range cornerMarkers {
		img, err := loadPNG(filepath.Join(texturesPath, name))
		if err != nil {
			log.Warn("overlay: corner marker missing", "file", name, "error", err)
			continue
		}
		r.markers = append(r.markers, img)
	}
}

// rescaleMarkersForDisplay re-renders loaded marker textures to a display's
// HiDPI scale factor; called from SetWindow once the session's display is
// known, since marker PNGs ship at 1x.
func (r *SoftwareRenderer) rescaleMarkersForDisplay(scale float64) {
	if scale <= 0 || scale == 1 {
		return
	}
	for i, m := range r.markers {
		b := m.Bounds()
		r.markers[i] = scaleImage(m, int(float64(b.Dx())*scale), int(float64(b.Dy())*scale))
	}
}

func (r *SoftwareRenderer) SetWindow(w OverlayWindow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.window = w
	r.rescaleMarkersForDisplay(w.Display.ScaleFactor)
	width, height := int(w.Extent.Width), int(w.Extent.Height)
	if width <= 0 || height <= 0 {
		return
	}
	r.surface = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (r *SoftwareRenderer) UpsertController(c Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.ctrls[c.SID]
	if !ok {
		existing = &controllerState{}
		r.ctrls[c.SID] = existing
	}
	c.LastActivity = time.Now()
	c.Visible = true
	existing.Controller = c
	existing.badge = renderBadge(c.Name, c.Color)
}

func (r *SoftwareRenderer) RemoveController(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ctrls, sid)
}

func (r *SoftwareRenderer) SetControllerPosition(sid string, pos geometry.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.ctrls[sid]
	if !ok {
		return
	}
	c.Position = pos
	c.LastActivity = time.Now()
	c.Visible = true
}

func (r *SoftwareRenderer) SetControllerVisible(sid string, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.ctrls[sid]; ok {
		c.Visible = visible
	}
}

// Render clears the surface, draws each visible controller's badge at its
// window-local pixel position, then the static corner markers, auto-hiding
// any controller idle for longer than autoHideAfter.
func (r *SoftwareRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface == nil {
		return fmt.Errorf("overlay: render called before SetWindow")
	}
	draw.Draw(r.surface, r.surface.Bounds(), image.Transparent, image.Point{}, draw.Src)

	now := time.Now()
	for _, c := range r.ctrls {
		if c.Visible && now.Sub(c.LastActivity) > autoHideAfter {
			c.Visible = false
		}
		if !c.Visible {
			continue
		}
		r.drawController(c)
	}

	w, h := r.surface.Bounds().Dx(), r.surface.Bounds().Dy()
	for i, marker := range r.markers {
		pt := markerOrigin(i, w, h, marker.Bounds().Dx(), marker.Bounds().Dy())
		draw.Draw(r.surface, marker.Bounds().Add(pt), marker, image.Point{}, draw.Over)
	}
	return nil
}

func (r *SoftwareRenderer) drawController(c *controllerState) {
	local := geometry.TranslateWindowLocal(c.Position.X, c.Position.Y, r.window.SharingFrame, r.window.Extent)
	px := int(local.X * r.window.Extent.Width)
	py := int(local.Y * r.window.Extent.Height)

	if c.badge != nil {
		bounds := c.badge.Bounds().Add(image.Pt(px, py))
		draw.Draw(r.surface, bounds, c.badge, image.Point{}, draw.Over)
	}
}

func markerOrigin(index, surfaceW, surfaceH, markerW, markerH int) image.Point {
	switch index {
	case 0:
		return image.Pt(0, 0)
	case 1:
		return image.Pt(surfaceW-markerW, 0)
	case 2:
		return image.Pt(0, surfaceH-markerH)
	default:
		return image.Pt(surfaceW-markerW, surfaceH-markerH)
	}
}

func (r *SoftwareRenderer) Close() error {
	return nil
}

// Surface exposes the current composited frame for callers (tests, a
// future presenter) that need to inspect or present it without going
// through a platform GPU swap chain.
func (r *SoftwareRenderer) Surface() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// scaleImage resamples an image to width x height; rescaleMarkersForDisplay
// uses it to bring marker textures to the display's scale factor.
func scaleImage(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	ximgdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), ximgdraw.Over, nil)
	return dst
}
