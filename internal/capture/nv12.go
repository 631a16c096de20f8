package capture

// bgraToNV12 converts a BGRA frame into NV12 (one Y plane followed by an
// interleaved UV plane, 4:2:0 subsampled) using BT.601 fixed-point
// integer coefficients. dst must be at least width*height + width*height/2
// bytes; it is filled in place and nothing is returned.
func bgraToNV12(dst, bgra []byte, width, height, stride int) {
	yPlane := dst[:width*height]
	uvPlane := dst[width*height:]

	for y := 0; y < height; y++ {
		rowOff := y * stride
		yOff := y * width
		for x := 0; x < width; x++ {
			pi := rowOff + x*4
			b := int(bgra[pi+0])
			g := int(bgra[pi+1])
			r := int(bgra[pi+2])

			yVal := clampByte((66*r+129*g+25*b+128)>>8 + 16)
			yPlane[yOff+x] = yVal

			if y%2 == 0 && x%2 == 0 {
				uVal := clampByte((-38*r-74*g+112*b+128)>>8 + 128)
				vVal := clampByte((112*r-94*g-18*b+128)>>8 + 128)
				uvIdx := (y/2)*width + (x/2)*2
				uvPlane[uvIdx+0] = uVal
				uvPlane[uvIdx+1] = vVal
			}
		}
	}
}

func clampByte(v int) byte {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return byte(v)
}

// scaleNV12 performs nearest-neighbor resampling of a full-resolution NV12
// frame into a destination buffer of streamW x streamH. Nearest-neighbor
// keeps the per-frame cost low enough for the 16ms capture cadence; quality
// loss at typical downscale ratios (capture resolution to a <=2560px
// stream target) is negligible for screen content.
func scaleNV12(dst []byte, dstW, dstH int, src []byte, srcW, srcH int) {
	dstY := dst[:dstW*dstH]
	dstUV := dst[dstW*dstH:]
	srcY := src[:srcW*srcH]
	srcUV := src[srcW*srcH:]

	for y := 0; y < dstH; y++ {
		sy := y * srcH / dstH
		for x := 0; x < dstW; x++ {
			sx := x * srcW / dstW
			dstY[y*dstW+x] = srcY[sy*srcW+sx]
		}
	}

	dstCW, dstCH := dstW/2, dstH/2
	srcCW, srcCH := srcW/2, srcH/2
	for y := 0; y < dstCH; y++ {
		sy := y * srcCH / dstCH
		for x := 0; x < dstCW; x++ {
			sx := x * srcCW / dstCW
			dstUV[y*dstW+x*2+0] = srcUV[sy*srcW+sx*2+0]
			dstUV[y*dstW+x*2+1] = srcUV[sy*srcW+sx*2+1]
		}
	}
}
