//go:build windows

package windows

import (
	"bytes"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/platform"
)

// encodeThumbnailJPEG scales a captured BGRA frame to fit within
// targetW x targetH (aspect-preserving) and returns it as a JPEG.
func encodeThumbnailJPEG(frame *platform.DesktopFrame, targetW, targetH int) []byte {
	src := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		srcRow := frame.BGRA[y*frame.Stride : y*frame.Stride+frame.Width*4]
		dstRow := src.Pix[y*src.Stride : y*src.Stride+frame.Width*4]
		for x := 0; x < frame.Width; x++ {
			b, g, r, a := srcRow[x*4], srcRow[x*4+1], srcRow[x*4+2], srcRow[x*4+3]
			dstRow[x*4], dstRow[x*4+1], dstRow[x*4+2], dstRow[x*4+3] = r, g, b, a
		}
	}

	w, h := geometry.AspectFit(uint32(frame.Width), uint32(frame.Height), uint32(targetW), uint32(targetH))
	dst := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80})
	return buf.Bytes()
}
