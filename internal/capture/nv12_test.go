package capture

import "testing"

func TestBgraToNV12SolidColor(t *testing.T) {
	w, h := 4, 4
	bgra := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		bgra[i*4+0] = 255 // B
		bgra[i*4+1] = 255 // G
		bgra[i*4+2] = 255 // R
		bgra[i*4+3] = 255 // A
	}
	dst := make([]byte, w*h+w*h/2)
	bgraToNV12(dst, bgra, w, h, w*4)

	for _, y := range dst[:w*h] {
		if y < 230 {
			t.Fatalf("expected near-white luma, got %d", y)
		}
	}
	uv := dst[w*h:]
	for _, c := range uv {
		if c < 120 || c > 136 {
			t.Fatalf("expected near-neutral chroma for white, got %d", c)
		}
	}
}

func TestContainsFold(t *testing.T) {
	if !containsFold("WindowPaneCore.exe", "windowpane") {
		t.Fatal("expected case-insensitive match")
	}
	if containsFold("explorer.exe", "windowpane") {
		t.Fatal("unexpected match")
	}
}

func TestScaleNV12Downscale(t *testing.T) {
	srcW, srcH := 4, 4
	src := make([]byte, srcW*srcH+srcW*srcH/2)
	for i := range src[:srcW*srcH] {
		src[i] = 200
	}
	dstW, dstH := 2, 2
	dst := make([]byte, dstW*dstH+dstW*dstH/2)
	scaleNV12(dst, dstW, dstH, src, srcW, srcH)
	for _, y := range dst[:dstW*dstH] {
		if y != 200 {
			t.Fatalf("expected luma 200 after nearest-neighbor scale, got %d", y)
		}
	}
}
