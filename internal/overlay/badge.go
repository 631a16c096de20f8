package overlay

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var errInvalidHex = errors.New("overlay: invalid hex color")

const (
	badgeMaxWidth  = 152
	badgeHeight    = 28
	nameMaxRunes   = 17
)

// estimateBadgeWidth approximates the rendered pixel width of a name label
// without shaping text through a real font engine: none of the example
// repos bundle an SVG/text-layout library, so the same fixed-width
// estimate original_source's svg_renderer.rs uses is kept here instead of
// pulling one in just for this.
func estimateBadgeWidth(name string) float64 {
	n := len([]rune(name))
	w := 29 + float64(max(0, n-2))*6.5
	if w > badgeMaxWidth {
		w = badgeMaxWidth
	}
	return w
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// truncateName clips a controller's display name to the badge's character
// budget, appending an ellipsis when it was cut.
func truncateName(name string) string {
	r := []rune(name)
	if len(r) <= nameMaxRunes {
		return name
	}
	return string(r[:nameMaxRunes]) + "…"
}

// renderBadge draws a plain rectangular name badge in the controller's
// color with white text starting 6px from its left edge, sized by
// estimateBadgeWidth.
func renderBadge(name, hexColor string) *image.RGBA {
	label := truncateName(name)
	width := int(estimateBadgeWidth(label))
	if width < 20 {
		width = 20
	}

	img := image.NewRGBA(image.Rect(0, 0, width, badgeHeight))
	bg := parseHexColor(hexColor)
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(6, badgeHeight/2+4),
	}
	d.DrawString(label)

	return img
}

func parseHexColor(s string) color.RGBA {
	c := color.RGBA{R: 0x33, G: 0x88, B: 0xff, A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	var r, g, b int
	if _, err := hexTriple(s[1:3], s[3:5], s[5:7], &r, &g, &b); err != nil {
		return c
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}

func hexTriple(a, b, c string, r, g, bl *int) (bool, error) {
	var err error
	*r, err = hexByte(a)
	if err != nil {
		return false, err
	}
	*g, err = hexByte(b)
	if err != nil {
		return false, err
	}
	*bl, err = hexByte(c)
	if err != nil {
		return false, err
	}
	return true, nil
}

func hexByte(s string) (int, error) {
	v := 0
	for _, r := range s {
		v <<= 4
		switch {
		case r >= '0' && r <= '9':
			v |= int(r - '0')
		case r >= 'a' && r <= 'f':
			v |= int(r-'a') + 10
		case r >= 'A' && r <= 'F':
			v |= int(r-'A') + 10
		default:
			return 0, errInvalidHex
		}
	}
	return v, nil
}

