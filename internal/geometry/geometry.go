// Package geometry implements the coordinate transforms shared by the
// capture pipeline, the remote-control translator and the overlay renderer:
// extents and frames in pixel space, and the percentage-based coordinate
// space used on the wire between controller and sharer.
package geometry

// Extent is a width/height pair in pixels.
type Extent struct {
	Width  float64
	Height float64
}

// Frame is the region of the display currently being shared.
type Frame struct {
	OriginX float64
	OriginY float64
	Extent  Extent
}

// Position is a point, either in pixel space or in the 0..1 percentage
// space used for cross-participant cursor coordinates.
type Position struct {
	X float64
	Y float64
}

// Display describes a physical display surface for percentage<->pixel
// conversions.
type Display struct {
	Position    Position
	Extent      Extent
	ScaleFactor float64
	// Scaled reports whether this platform expects coordinates in scaled
	// logical points (macOS) rather than raw pixels (Windows). Only the
	// former needs ScaleFactor divided out during percentage<->pixel
	// conversion.
	Scaled bool
}

// AspectFit computes the largest width/height pair that fits within a
// target box of size max(targetWidth, targetHeight) while preserving the
// width/height aspect ratio of the source. The long edge of the result is
// always exactly that target size; the short edge is derived from it.
//
// This mirrors the source ratio math exactly, including its truncation
// order, so restreamed resolutions stay stable across restarts.
func AspectFit(width, height, targetWidth, targetHeight uint32) (uint32, uint32) {
	size := targetWidth
	if targetHeight > size {
		size = targetHeight
	}
	if width >= height {
		ratio := float32(height) / float32(width)
		return size, uint32(float32(size) * ratio)
	}
	ratio := float32(width) / float32(height)
	return uint32(float32(size) * ratio), size
}

func clamp01(v float64) float64 {
	if v > 1 {
		return v
	}
	if v < 0 {
		return v
	}
	return v
}

// OutOfBounds nudges a percentage coordinate that has drifted past the
// display edge back onto it. The asymmetric constants (0.997/0.995 rather
// than 1.0) keep a cursor badge's anchor point from rendering fully off the
// visible edge.
func OutOfBounds(x, y float64) (float64, float64) {
	if x > 1 {
		x = 0.997
	} else if x < 0 {
		x = 0
	}
	if y > 1 {
		y = 0.995
	} else if y < 0 {
		y = 0
	}
	return x, y
}

// PercentageToGlobal converts a 0..1 percentage position relative to a
// display into a global pixel Position. When scaled is true the display's
// HiDPI scale factor is divided out first, matching how the originating
// platform (macOS, which reports percentages against logical points) expects
// the conversion; Windows reports raw pixels and passes scaled=false.
func PercentageToGlobal(x, y float64, d Display, scaled bool) Position {
	gx := x * d.Extent.Width
	gy := y * d.Extent.Height
	if scaled && d.ScaleFactor != 0 {
		gx /= d.ScaleFactor
		gy /= d.ScaleFactor
	}
	return Position{X: d.Position.X + gx, Y: d.Position.Y + gy}
}

// GlobalToDisplayPercentage converts a global pixel Position into a 0..1
// percentage relative to a display, the inverse of PercentageToGlobal.
func GlobalToDisplayPercentage(p Position, d Display, scaled bool) Position {
	lx := p.X - d.Position.X
	ly := p.Y - d.Position.Y
	if scaled && d.ScaleFactor != 0 {
		lx *= d.ScaleFactor
		ly *= d.ScaleFactor
	}
	var x, y float64
	if d.Extent.Width != 0 {
		x = lx / d.Extent.Width
	}
	if d.Extent.Height != 0 {
		y = ly / d.Extent.Height
	}
	x, y = OutOfBounds(x, y)
	return Position{X: x, Y: y}
}

// TranslateWindowLocal maps a percentage position that is local to the
// overlay window into a percentage position on the underlying display,
// given the frame of the display currently being shared inside that
// window. Whole-display sharing (the only mode this release supports)
// makes this the identity transform; it exists so window-level sharing
// can be introduced later without touching call sites.
func TranslateWindowLocal(x, y float64, sharing Frame, window Extent) Position {
	if window.Width == 0 || window.Height == 0 {
		return Position{X: x, Y: y}
	}
	px := sharing.OriginX + x*sharing.Extent.Width
	py := sharing.OriginY + y*sharing.Extent.Height
	nx, ny := clamp01(px/window.Width), clamp01(py/window.Height)
	nx, ny = OutOfBounds(nx, ny)
	return Position{X: nx, Y: ny}
}

// ToClipSpace converts a 0..1 window-local percentage position into GPU
// clip-space coordinates in [-1, 1], with the Y axis flipped to match the
// top-left origin convention percentages are expressed in.
func ToClipSpace(x, y float64) (float32, float32) {
	cx := float32(x*2 - 1)
	cy := float32(1 - y*2)
	return cx, cy
}
