package overlay

import "testing"

func TestEstimateBadgeWidthGrowsWithNameLength(t *testing.T) {
	short := estimateBadgeWidth("Al")
	long := estimateBadgeWidth("Alexandria")
	if !(long > short) {
		t.Fatalf("expected longer name to produce a wider badge: short=%v long=%v", short, long)
	}
}

func TestEstimateBadgeWidthClampsToMax(t *testing.T) {
	w := estimateBadgeWidth("a-very-long-participant-display-name-indeed")
	if w != badgeMaxWidth {
		t.Fatalf("expected width clamped to %d, got %v", badgeMaxWidth, w)
	}
}

func TestTruncateNameAddsEllipsis(t *testing.T) {
	got := truncateName("a-very-long-participant-display-name")
	if len([]rune(got)) != nameMaxRunes+1 {
		t.Fatalf("expected truncated name of length %d, got %q (%d)", nameMaxRunes+1, got, len([]rune(got)))
	}
	if got[len(got)-len("…"):] != "…" {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestTruncateNameLeavesShortNamesAlone(t *testing.T) {
	if got := truncateName("Ada"); got != "Ada" {
		t.Fatalf("expected short name unchanged, got %q", got)
	}
}

func TestRenderBadgeProducesNonEmptyImage(t *testing.T) {
	img := renderBadge("Ada Lovelace", "#3388ff")
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatal("expected non-empty badge image")
	}
}

func TestParseHexColorFallsBackOnInvalid(t *testing.T) {
	c := parseHexColor("not-a-color")
	if c.A != 0xff {
		t.Fatalf("expected opaque fallback color, got %+v", c)
	}
}

func TestParseHexColorParsesValid(t *testing.T) {
	c := parseHexColor("#ff0000")
	if c.R != 0xff || c.G != 0 || c.B != 0 {
		t.Fatalf("expected pure red, got %+v", c)
	}
}
