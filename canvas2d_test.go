package arcanee

import (
	"testing"

	"golang.org/x/image/font/basicfont"
)

func newTestCanvas(t *testing.T) *Canvas2D {
	t.Helper()
	registry := NewResourceRegistry(testPolicy(), nil)
	return NewCanvas2D(registry, 64, 48, &LastErrorChannel{}, NewLogger())
}

func TestParseBlendModeAcceptsAllSeparableModes(t *testing.T) {
	names := []string{
		"normal", "srcOver", "multiply", "screen", "overlay", "darken",
		"lighten", "colorDodge", "colorBurn", "hardLight", "softLight",
		"difference", "exclusion", "add",
	}
	for _, n := range names {
		if _, ok := ParseBlendMode(n); !ok {
			t.Errorf("ParseBlendMode(%q) rejected, want accepted", n)
		}
	}
}

func TestParseBlendModeRejectsNonSeparableModes(t *testing.T) {
	rejected := []string{"hue", "saturation", "color", "luminosity", "hardMix", "bogus"}
	for _, n := range rejected {
		if _, ok := ParseBlendMode(n); ok {
			t.Errorf("ParseBlendMode(%q) accepted, want rejected", n)
		}
	}
}

func TestSaveRestoreStackDepthLimit(t *testing.T) {
	c := newTestCanvas(t)
	for i := 0; i < maxSaveStackDepth; i++ {
		if !c.Save() {
			t.Fatalf("Save() failed early at depth %d", i)
		}
	}
	if c.Save() {
		t.Fatal("Save() beyond max depth should fail")
	}
	if c.lastErr.GetCategory() != CategoryQuotaExceeded {
		t.Fatalf("expected CategoryQuotaExceeded, got %v", c.lastErr.GetCategory())
	}
}

func TestRestoreOnEmptyStackIsSafeNoOp(t *testing.T) {
	c := newTestCanvas(t)
	beforeAlpha := c.state.GlobalAlpha
	c.Restore()
	if c.state.GlobalAlpha != beforeAlpha {
		t.Fatal("Restore on empty stack must not mutate state")
	}
	if c.lastErr.Get() == "" {
		t.Fatal("Restore on empty stack should set last-error")
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	c := newTestCanvas(t)
	c.state.GlobalAlpha = 0.25
	c.Save()
	c.state.GlobalAlpha = 0.75
	c.Restore()
	if c.state.GlobalAlpha != 0.25 {
		t.Fatalf("expected restored GlobalAlpha 0.25, got %v", c.state.GlobalAlpha)
	}
}

func TestPathSegmentSoftAndHardLimits(t *testing.T) {
	c := newTestCanvas(t)
	c.BeginFrame()
	// Drive the soft warning without tripping the hard limit.
	c.pathSegCount = softPathSegmentLimit - 1
	if !c.Append(Command{Kind: CmdFill}, 2) {
		t.Fatal("Append should succeed before hard limit")
	}
	if !c.pathSoftWarned {
		t.Fatal("expected soft warning to have fired")
	}

	c.pathSegCount = hardPathSegmentLimit
	if c.Append(Command{Kind: CmdFill}, 1) {
		t.Fatal("Append should fail once hard limit reached")
	}
	if c.lastErr.GetCategory() != CategoryQuotaExceeded {
		t.Fatalf("expected CategoryQuotaExceeded, got %v", c.lastErr.GetCategory())
	}
}

func TestQuadToMatchesCubicConversionRule(t *testing.T) {
	var p PathBuilder
	p.MoveTo(0, 0)
	p.QuadTo(10, 0, 10, 10)
	subs := p.Subpaths()
	if len(subs) != 1 {
		t.Fatalf("expected 1 subpath, got %d", len(subs))
	}
	last := subs[0].Points[len(subs[0].Points)-1]
	if last.X != 10 || last.Y != 10 {
		t.Fatalf("quadTo endpoint mismatch: got (%v,%v)", last.X, last.Y)
	}
}

func TestRectNegativeDimensionIsNoOp(t *testing.T) {
	var p PathBuilder
	if n := p.Rect(0, 0, -5, 10); n != 0 {
		t.Fatalf("expected 0 segments for negative width, got %d", n)
	}
	if len(p.Subpaths()) != 0 {
		t.Fatal("negative-dimension rect should not record a subpath")
	}
}

func TestArcNonPositiveRadiusIsNoOp(t *testing.T) {
	var p PathBuilder
	if n := p.Arc(0, 0, 0, 0, 3.14, false); n != 0 {
		t.Fatalf("expected 0 segments for zero radius, got %d", n)
	}
}

func TestFillRecordsNoCommandForEmptyPath(t *testing.T) {
	c := newTestCanvas(t)
	c.BeginFrame()
	c.Fill()
	if len(c.commands) != 0 {
		t.Fatalf("expected no recorded command for empty path, got %d", len(c.commands))
	}
}

func TestFillTextWithoutBoundFontFails(t *testing.T) {
	c := newTestCanvas(t)
	c.BeginFrame()
	c.FillText("hello", 0, 0, 0)
	if len(c.commands) != 0 {
		t.Fatal("fillText with no bound font must not record a command")
	}
	if c.lastErr.Get() == "" {
		t.Fatal("fillText with no bound font should set last-error")
	}
}

func TestSampleStopsInterpolatesLinearly(t *testing.T) {
	stops := []GradientStop{
		{Offset: 0, Color: 0xFF000000},
		{Offset: 1, Color: 0xFFFFFFFF},
	}
	r, g, b := sampleStops(stops, 0.5)
	if r < 0.49 || r > 0.51 || g < 0.49 || g > 0.51 || b < 0.49 || b > 0.51 {
		t.Fatalf("expected midpoint gray, got (%v,%v,%v)", r, g, b)
	}
}

func TestApplySpreadPadClampsToUnitRange(t *testing.T) {
	if v := applySpread(-0.5, SpreadPad); v != 0 {
		t.Fatalf("expected 0, got %v", v)
	}
	if v := applySpread(1.5, SpreadPad); v != 1 {
		t.Fatalf("expected 1, got %v", v)
	}
}

func TestApplySpreadRepeatWraps(t *testing.T) {
	v := applySpread(1.25, SpreadRepeat)
	if v < 0.24 || v > 0.26 {
		t.Fatalf("expected ~0.25, got %v", v)
	}
}

func TestBlendFuncNormalPassesSourceThrough(t *testing.T) {
	if got := blendFunc(BlendNormal, 0.2, 0.8); got != 0.8 {
		t.Fatalf("expected 0.8, got %v", got)
	}
}

func TestBlendFuncMultiplyDarkensTowardBlack(t *testing.T) {
	got := blendFunc(BlendMultiply, 0.5, 0.5)
	if got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}

func TestRasterFillSubpathsPaintsOpaqueRect(t *testing.T) {
	c := newTestCanvas(t)
	target := NewRasterSurface(8, 8)
	var p PathBuilder
	p.Rect(1, 1, 4, 4)
	c.rasterFillSubpaths(target, p.Subpaths(), solidPaint(0xFFFF0000), 1.0, BlendNormal, nil)
	off := (2*8 + 2) * 4
	if target.Pix[off+3] == 0 {
		t.Fatal("expected filled rect pixel to be opaque")
	}
	if target.Pix[off+0] == 0 {
		t.Fatal("expected filled rect pixel to carry red channel")
	}
	outsideOff := (0*8 + 0) * 4
	if target.Pix[outsideOff+3] != 0 {
		t.Fatal("expected pixel outside rect to remain transparent")
	}
}

func TestMatMulIdentityIsNoOp(t *testing.T) {
	m := Mat2D{A: 2, B: 0, C: 0, D: 3, E: 5, F: 7}
	x, y := m.Mul(identityMat2D()).Apply(1, 1)
	wx, wy := m.Apply(1, 1)
	if x != wx || y != wy {
		t.Fatalf("expected (%v,%v), got (%v,%v)", wx, wy, x, y)
	}
}

func TestMeasureTextWidthPositiveForNonEmptyString(t *testing.T) {
	// basicfont's fixed 7x13 face stands in for a loaded TTF, so no font
	// file is needed.
	m := MeasureText(basicfont.Face7x13, "hello")
	if m.Width <= 0 || m.Height <= 0 {
		t.Fatalf("expected positive width/height for a non-empty string, got %+v", m)
	}
}
