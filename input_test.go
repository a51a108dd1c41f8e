package arcanee

import "testing"

func TestInputEdgeDetection(t *testing.T) {
	in := NewInput()
	in.Tick() // both snapshots empty

	in.State().SetKey(10, true)
	in.Tick()
	if !in.KeyPressed(10) {
		t.Fatal("expected key 10 to register pressed edge")
	}
	if in.KeyReleased(10) {
		t.Fatal("did not expect released edge on first press")
	}

	in.Tick() // key still held, no prior change
	if in.KeyPressed(10) {
		t.Fatal("expected pressed edge to not repeat while held")
	}
	if !in.KeyDown(10) {
		t.Fatal("expected key to still read down")
	}

	in.State().SetKey(10, false)
	in.Tick()
	if !in.KeyReleased(10) {
		t.Fatal("expected released edge after SetKey(false)")
	}
}

func TestInputOutOfRangeIsSafe(t *testing.T) {
	in := NewInput()
	if in.KeyDown(-1) || in.KeyDown(99999) {
		t.Fatal("expected out-of-range key queries to return false")
	}
	if in.MouseButtonDown(-1) || in.MouseButtonDown(99) {
		t.Fatal("expected out-of-range mouse button queries to return false")
	}
	g := in.Gamepad(-1)
	if g.Connected {
		t.Fatal("expected invalid gamepad index to return disconnected state")
	}
	g = in.Gamepad(999)
	if g.Connected {
		t.Fatal("expected out-of-range gamepad index to return disconnected state")
	}
}

func TestFocusLossForcesRelease(t *testing.T) {
	in := NewInput()
	in.State().SetKey(5, true)
	in.Tick()
	if !in.KeyDown(5) {
		t.Fatal("expected key down before focus loss")
	}

	in.State().OnFocusLost()
	in.Tick()
	if in.KeyDown(5) {
		t.Fatal("expected key forced released on focus loss")
	}
	if !in.KeyReleased(5) {
		t.Fatal("expected a released edge to be generated for the key that was down at focus loss")
	}

	in.State().OnFocusGained()
	in.Tick()
	if in.KeyPressed(5) || in.KeyReleased(5) {
		t.Fatal("expected no phantom edges on refocus")
	}
}

func TestStickRadialDeadzone(t *testing.T) {
	x, y := applyRadialDeadzone(0.05, 0.05, 0.15)
	if x != 0 || y != 0 {
		t.Fatalf("expected small stick motion inside deadzone to be zeroed, got (%f,%f)", x, y)
	}
	x, y = applyRadialDeadzone(0.5, 0.0, 0.15)
	if x != 0.5 || y != 0.0 {
		t.Fatalf("expected stick motion outside deadzone to pass through, got (%f,%f)", x, y)
	}
}

func TestTriggerThresholdDeadzone(t *testing.T) {
	if v := applyTriggerDeadzone(0.02, 0.05); v != 0 {
		t.Fatalf("expected trigger below threshold to be zeroed, got %f", v)
	}
	if v := applyTriggerDeadzone(0.5, 0.05); v != 0.5 {
		t.Fatalf("expected trigger above threshold to pass through, got %f", v)
	}
}

func TestGamepadButtonsAreQueryableSafely(t *testing.T) {
	in := NewInput()
	var buttons [gamepadButtons]bool
	buttons[0] = true
	var axes [gamepadAxes]float64
	in.State().SetGamepadRaw(0, true, buttons, axes)
	in.Tick()
	if !in.GamepadButtonPressed(0, 0) {
		t.Fatal("expected gamepad button 0 to register pressed edge")
	}
}

func TestMapMouseToConsoleFitOutsideViewport(t *testing.T) {
	vp := Viewport{X: 10, Y: 10, Width: 100, Height: 100}
	if x, y := MapMouseToConsole(5, 5, vp, 320, 240, PresentFit); x != -1 || y != -1 {
		t.Fatalf("expected (-1,-1) outside viewport, got (%d,%d)", x, y)
	}
}

func TestMapMouseToConsoleFitInsideViewport(t *testing.T) {
	vp := Viewport{X: 0, Y: 0, Width: 100, Height: 100}
	x, y := MapMouseToConsole(50, 50, vp, 200, 200, PresentFit)
	if x != 100 || y != 100 {
		t.Fatalf("expected (100,100), got (%d,%d)", x, y)
	}
}

func TestMapMouseToConsoleIntegerNearestBoundary(t *testing.T) {
	vp := Viewport{X: 0, Y: 0, Width: 100, Height: 100}
	if x, y := MapMouseToConsole(0, 0, vp, 200, 200, PresentIntegerNearest); x != 0 || y != 0 {
		t.Fatalf("expected (0,0) at top-left corner, got (%d,%d)", x, y)
	}
	if x, y := MapMouseToConsole(100, 100, vp, 200, 200, PresentIntegerNearest); x != -1 || y != -1 {
		t.Fatalf("expected (-1,-1) exactly at the exclusive boundary, got (%d,%d)", x, y)
	}
}

func TestMapMouseToConsoleStretch(t *testing.T) {
	vp := Viewport{X: 0, Y: 0, Width: 400, Height: 200}
	x, y := MapMouseToConsole(200, 100, vp, 800, 600, PresentStretch)
	if x != 400 || y != 300 {
		t.Fatalf("expected (400,300), got (%d,%d)", x, y)
	}
}

func TestMapMouseToConsoleDegenerateViewportIsSafe(t *testing.T) {
	vp := Viewport{X: 0, Y: 0, Width: 0, Height: 0}
	if x, y := MapMouseToConsole(1, 1, vp, 200, 200, PresentFit); x != -1 || y != -1 {
		t.Fatalf("expected (-1,-1) for degenerate viewport, got (%d,%d)", x, y)
	}
}
