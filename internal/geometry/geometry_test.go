package geometry

import "testing"

func TestAspectFitWidescreen(t *testing.T) {
	w, h := AspectFit(1920, 1080, 1280, 1280)
	if w != 1280 {
		t.Fatalf("expected long edge 1280, got %d", w)
	}
	if h != 720 {
		t.Fatalf("expected height 720, got %d", h)
	}
}

func TestAspectFitPortrait(t *testing.T) {
	w, h := AspectFit(1080, 1920, 1280, 1280)
	if h != 1280 {
		t.Fatalf("expected long edge 1280, got %d", h)
	}
	if w != 720 {
		t.Fatalf("expected width 720, got %d", w)
	}
}

func TestOutOfBoundsClamp(t *testing.T) {
	cases := []struct {
		x, y, wantX, wantY float64
	}{
		{1.5, 0.5, 0.997, 0.5},
		{-0.2, 0.5, 0, 0.5},
		{0.5, 1.2, 0.5, 0.995},
		{0.5, -0.1, 0.5, 0},
		{0.5, 0.5, 0.5, 0.5},
	}
	for _, c := range cases {
		x, y := OutOfBounds(c.x, c.y)
		if x != c.wantX || y != c.wantY {
			t.Errorf("OutOfBounds(%v,%v) = (%v,%v), want (%v,%v)", c.x, c.y, x, y, c.wantX, c.wantY)
		}
	}
}

func TestPercentageRoundTrip(t *testing.T) {
	d := Display{Position: Position{X: 100, Y: 50}, Extent: Extent{Width: 1920, Height: 1080}, ScaleFactor: 1}
	g := PercentageToGlobal(0.5, 0.5, d, false)
	if g.X != 1060 || g.Y != 590 {
		t.Fatalf("unexpected global position: %+v", g)
	}
	p := GlobalToDisplayPercentage(g, d, false)
	if p.X != 0.5 || p.Y != 0.5 {
		t.Fatalf("round trip mismatch: %+v", p)
	}
}

func TestPercentageToGlobalScaled(t *testing.T) {
	d := Display{Position: Position{}, Extent: Extent{Width: 3840, Height: 2160}, ScaleFactor: 2}
	g := PercentageToGlobal(1, 1, d, true)
	if g.X != 1920 || g.Y != 1080 {
		t.Fatalf("expected scale factor division, got %+v", g)
	}
}

func TestPercentageToGlobalUnscaledIgnoresScaleFactor(t *testing.T) {
	d := Display{Position: Position{}, Extent: Extent{Width: 3840, Height: 2160}, ScaleFactor: 2}
	g := PercentageToGlobal(1, 1, d, false)
	if g.X != 3840 || g.Y != 2160 {
		t.Fatalf("expected scale factor to be ignored when unscaled, got %+v", g)
	}
}

func TestTranslateWindowLocalIdentityForFullFrame(t *testing.T) {
	sharing := Frame{OriginX: 0, OriginY: 0, Extent: Extent{Width: 1920, Height: 1080}}
	p := TranslateWindowLocal(0.25, 0.75, sharing, Extent{Width: 1920, Height: 1080})
	if p.X != 0.25 || p.Y != 0.75 {
		t.Fatalf("expected identity mapping for full-frame sharing, got %+v", p)
	}
}

func TestToClipSpaceCorners(t *testing.T) {
	x, y := ToClipSpace(0, 0)
	if x != -1 || y != 1 {
		t.Fatalf("top-left should map to (-1,1), got (%v,%v)", x, y)
	}
	x, y = ToClipSpace(1, 1)
	if x != 1 || y != -1 {
		t.Fatalf("bottom-right should map to (1,-1), got (%v,%v)", x, y)
	}
}
