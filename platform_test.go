//go:build headless

package arcanee

import "testing"

func TestPlatformStartSetsDrawableSize(t *testing.T) {
	p := NewPlatform()
	if err := p.Start(WindowConfig{Title: "test", Width: 320, Height: 240}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := p.DrawableSize()
	if w != 320 || h != 240 {
		t.Fatalf("expected 320x240, got %dx%d", w, h)
	}
}

func TestPlatformFullscreenToggle(t *testing.T) {
	p := NewPlatform()
	_ = p.Start(WindowConfig{Width: 320, Height: 240})
	if p.IsFullscreen() {
		t.Fatal("expected windowed by default")
	}
	p.SetFullscreen(true)
	if !p.IsFullscreen() {
		t.Fatal("expected fullscreen after SetFullscreen(true)")
	}
}

func TestPlatformSizeChangedListener(t *testing.T) {
	p := NewPlatform()
	var got SizeChange
	called := false
	p.OnSizeChanged(func(sc SizeChange) {
		called = true
		got = sc
	})
	p.notifySizeChanged(800, 600)
	if !called {
		t.Fatal("expected listener to be invoked")
	}
	if got.DrawableWidth != 800 || got.DrawableHeight != 600 {
		t.Fatalf("unexpected size change: %+v", got)
	}
}

func TestPlatformDeviceErrorListener(t *testing.T) {
	p := NewPlatform()
	var got *CartridgeError
	p.OnDeviceError(func(err *CartridgeError) { got = err })
	want := newErr("platform.present", CategoryDeviceError, "swapchain lost")
	p.notifyDeviceError(want)
	if got != want {
		t.Fatal("expected listener to receive the same error instance")
	}
}

func TestPlatformNowIsMonotonicNonNegative(t *testing.T) {
	p := NewPlatform()
	first := p.Now()
	second := p.Now()
	if second < first {
		t.Fatalf("expected monotonic non-decreasing time, got %f then %f", first, second)
	}
}

func TestPlatformCloseRequested(t *testing.T) {
	p := NewPlatform()
	if p.CloseRequested() {
		t.Fatal("expected close not requested initially")
	}
	p.requestClose()
	if !p.CloseRequested() {
		t.Fatal("expected close requested after requestClose")
	}
}
