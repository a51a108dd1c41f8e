//go:build headless

package arcanee

import "testing"

func newTestPipeline(t *testing.T, drawableW, drawableH, cbufW, cbufH int, mode PresentMode) *RenderPipeline {
	t.Helper()
	p := NewPlatform()
	if err := p.Start(WindowConfig{Width: drawableW, Height: drawableH}); err != nil {
		t.Fatalf("unexpected error starting platform: %v", err)
	}
	return NewRenderPipeline(p, cbufW, cbufH, mode, &LastErrorChannel{}, NewLogger())
}

func TestFitViewportCentersAndPreservesAspect(t *testing.T) {
	rp := newTestPipeline(t, 1000, 500, 320, 240, PresentFit)
	vp := rp.Viewport()
	// s = min(1000/320, 500/240) = min(3.125, 2.0833) = 2.0833 -> vw=666 vh=500
	if vp.Width != 666 || vp.Height != 500 {
		t.Fatalf("unexpected viewport size: %+v", vp)
	}
	if vp.X != (1000-666)/2 || vp.Y != 0 {
		t.Fatalf("unexpected viewport position: %+v", vp)
	}
}

func TestIntegerNearestViewportUsesIntegerMultiple(t *testing.T) {
	rp := newTestPipeline(t, 1000, 500, 320, 240, PresentIntegerNearest)
	vp := rp.Viewport()
	// k = floor(min(1000/320, 500/240)) = floor(2.0833) = 2
	if vp.Width != 640 || vp.Height != 480 {
		t.Fatalf("unexpected integer_nearest viewport: %+v", vp)
	}
}

func TestIntegerNearestDegradesToFitWhenSmallerThanOne(t *testing.T) {
	rp := newTestPipeline(t, 200, 150, 320, 240, PresentIntegerNearest)
	vp := rp.Viewport()
	// k would be 0; must fall back to fit: s = min(200/320, 150/240) = 0.625
	if vp.Width != 200 || vp.Height != 150 {
		t.Fatalf("expected fit fallback filling the drawable, got %+v", vp)
	}
}

func TestFillViewportCanExceedBackbuffer(t *testing.T) {
	rp := newTestPipeline(t, 1000, 500, 320, 240, PresentFill)
	vp := rp.Viewport()
	// s = max(1000/320, 500/240) = 3.125 -> vw=1000 vh=750 (taller than backbuffer)
	if vp.Width != 1000 || vp.Height != 750 {
		t.Fatalf("unexpected fill viewport: %+v", vp)
	}
	if vp.Y >= 0 {
		t.Fatalf("expected fill viewport to extend past the backbuffer vertically, got Y=%d", vp.Y)
	}
}

func TestStretchViewportFillsBackbufferExactly(t *testing.T) {
	rp := newTestPipeline(t, 1000, 500, 320, 240, PresentStretch)
	vp := rp.Viewport()
	if vp != (Viewport{X: 0, Y: 0, Width: 1000, Height: 500}) {
		t.Fatalf("expected stretch viewport to cover the whole backbuffer, got %+v", vp)
	}
}

func TestPresentRejectsWrongCBUFSize(t *testing.T) {
	rp := newTestPipeline(t, 640, 480, 320, 240, PresentStretch)
	wrong := NewRasterSurface(64, 64)
	err := rp.Present(wrong)
	if err == nil || err.Category != CategoryInvalidArgument {
		t.Fatalf("expected CategoryInvalidArgument for mismatched cbuf size, got %+v", err)
	}
}

func TestPresentStretchFlattensOpaqueCenterPixel(t *testing.T) {
	rp := newTestPipeline(t, 320, 240, 320, 240, PresentStretch)
	cbuf := NewRasterSurface(320, 240)
	off := (120*320 + 160) * 4
	cbuf.Pix[off+0], cbuf.Pix[off+1], cbuf.Pix[off+2], cbuf.Pix[off+3] = 200, 10, 10, 255
	if err := rp.Present(cbuf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bbOff := (120*rp.backbufferW + 160) * 4
	if rp.backbuffer[bbOff+0] != 200 || rp.backbuffer[bbOff+3] != 255 {
		t.Fatalf("expected opaque red pixel to pass through 1:1 stretch, got %v", rp.backbuffer[bbOff:bbOff+4])
	}
}

func TestPresentLeavesLetterboxOpaqueBlackByDefault(t *testing.T) {
	rp := newTestPipeline(t, 1000, 500, 320, 240, PresentFit)
	cbuf := NewRasterSurface(320, 240)
	if err := rp.Present(cbuf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// top-left corner of the backbuffer is outside the centered viewport.
	off := 0
	if rp.backbuffer[off+0] != 0 || rp.backbuffer[off+1] != 0 || rp.backbuffer[off+2] != 0 || rp.backbuffer[off+3] != 0xFF {
		t.Fatalf("expected opaque black letterbox, got %v", rp.backbuffer[off:off+4])
	}
}

func TestPresentIntegerNearestReplicatesTexelBlock(t *testing.T) {
	rp := newTestPipeline(t, 1000, 500, 320, 240, PresentIntegerNearest) // k=2
	cbuf := NewRasterSurface(320, 240)
	off := (0*320 + 0) * 4
	cbuf.Pix[off+0], cbuf.Pix[off+1], cbuf.Pix[off+2], cbuf.Pix[off+3] = 50, 60, 70, 255
	if err := rp.Present(cbuf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vp := rp.Viewport()
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			bbOff := ((vp.Y+dy)*rp.backbufferW + (vp.X + dx)) * 4
			if rp.backbuffer[bbOff+0] != 50 || rp.backbuffer[bbOff+1] != 60 || rp.backbuffer[bbOff+2] != 70 {
				t.Fatalf("expected the top-left source texel replicated across its 2x2 block, got %v at (%d,%d)", rp.backbuffer[bbOff:bbOff+4], dx, dy)
			}
		}
	}
}

func TestResizeRecreatesBackbufferAndViewport(t *testing.T) {
	rp := newTestPipeline(t, 640, 480, 320, 240, PresentFit)
	before := rp.Viewport()
	rp.resize(1280, 960)
	after := rp.Viewport()
	if after.Width == before.Width && after.Height == before.Height {
		t.Fatal("expected viewport to change after a drawable resize")
	}
	if len(rp.backbuffer) != 1280*960*4 {
		t.Fatalf("expected backbuffer to be reallocated for the new drawable size, got len %d", len(rp.backbuffer))
	}
}

func TestOverlayHookRunsAfterComposite(t *testing.T) {
	rp := newTestPipeline(t, 320, 240, 320, 240, PresentStretch)
	var sawW, sawH int
	rp.SetOverlay(func(rgba []byte, w, h int) {
		sawW, sawH = w, h
		rgba[0] = 42
	})
	cbuf := NewRasterSurface(320, 240)
	if err := rp.Present(cbuf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawW != 320 || sawH != 240 {
		t.Fatalf("expected overlay to see the backbuffer dimensions, got %dx%d", sawW, sawH)
	}
	if rp.backbuffer[0] != 42 {
		t.Fatal("expected overlay mutation of the backbuffer to stick")
	}
}

func TestDeviceErrorListenerRecreatesBackbuffer(t *testing.T) {
	rp := newTestPipeline(t, 640, 480, 320, 240, PresentFit)
	rp.backbuffer[0] = 7
	rp.platform.notifyDeviceError(newErr("platform.present", CategoryDeviceError, "swapchain lost"))
	if rp.backbuffer == nil || len(rp.backbuffer) != 640*480*4 {
		t.Fatalf("expected backbuffer to be recreated at the current drawable size, got len %d", len(rp.backbuffer))
	}
	if rp.backbuffer[0] != 0 {
		t.Fatal("expected a freshly recreated backbuffer to start cleared")
	}
}
