// input.go - per-tick input snapshot, edge detection, mouse/gamepad mapping

package arcanee

const (
	maxScancode   = 256
	maxGamepads   = 8
	gamepadButtons = 14
	gamepadAxes    = 6
)

const (
	stickDeadzoneDefault   = 0.15
	triggerDeadzoneDefault = 0.05
)

// GamepadState is one connected (or invalid) gamepad's standardized
// Xbox-style digital and analog state, post-deadzone.
type GamepadState struct {
	Connected bool
	Buttons   [gamepadButtons]bool
	Axes      [gamepadAxes]float64
}

// InputSnapshot is an immutable point-in-time copy of the input state,
// produced once per tick. draw reads the same snapshot as the
// just-executed update; when several updates run in one frame without an
// intervening pump, they all observe the same snapshot.
type InputSnapshot struct {
	Keys         [maxScancode]bool
	MouseX       int
	MouseY       int
	MouseButtons [3]bool
	WheelDeltaX  float64
	WheelDeltaY  float64
	Gamepads     [maxGamepads]GamepadState
}

// InputState is the live, mutable current state the Platform's event pump
// writes into. Input.Tick() clones it into a frozen InputSnapshot and
// diffs against the prior snapshot to compute edges.
type InputState struct {
	keys         [maxScancode]bool
	mouseX       int
	mouseY       int
	mouseButtons [3]bool
	wheelDeltaX  float64
	wheelDeltaY  float64
	gamepads     [maxGamepads]GamepadState
	hasFocus     bool
}

func NewInputState() *InputState {
	return &InputState{hasFocus: true, mouseX: -1, mouseY: -1}
}

func (s *InputState) SetKey(scancode int, down bool) {
	if scancode < 0 || scancode >= maxScancode {
		return
	}
	s.keys[scancode] = down
}

func (s *InputState) SetMousePosition(x, y int) {
	s.mouseX, s.mouseY = x, y
}

func (s *InputState) SetMouseButton(button int, down bool) {
	if button < 0 || button >= len(s.mouseButtons) {
		return
	}
	s.mouseButtons[button] = down
}

func (s *InputState) AddWheelDelta(dx, dy float64) {
	s.wheelDeltaX += dx
	s.wheelDeltaY += dy
}

// SetGamepadRaw records a connected gamepad's raw (pre-deadzone) button
// and axis values; deadzones are applied at snapshot time so the
// configured deadzone radii can change without re-polling the backend.
func (s *InputState) SetGamepadRaw(index int, connected bool, buttons [gamepadButtons]bool, axes [gamepadAxes]float64) {
	if index < 0 || index >= maxGamepads {
		return
	}
	s.gamepads[index] = GamepadState{Connected: connected, Buttons: buttons, Axes: axes}
}

// OnFocusLost forces all digital states released, per spec: edges are
// still generated for keys that were down at loss time (Tick diffs
// against the prior snapshot as usual), and refocus begins fresh with no
// phantom edges because the state is already clear.
func (s *InputState) OnFocusLost() {
	s.hasFocus = false
	for i := range s.keys {
		s.keys[i] = false
	}
	for i := range s.mouseButtons {
		s.mouseButtons[i] = false
	}
	for i := range s.gamepads {
		for b := range s.gamepads[i].Buttons {
			s.gamepads[i].Buttons[b] = false
		}
	}
}

func (s *InputState) OnFocusGained() {
	s.hasFocus = true
}

func applyRadialDeadzone(x, y, deadzone float64) (float64, float64) {
	mag := x*x + y*y
	if mag < deadzone*deadzone {
		return 0, 0
	}
	return x, y
}

func applyTriggerDeadzone(v, deadzone float64) float64 {
	if v < deadzone {
		return 0
	}
	return v
}

// snapshotGamepads applies stick radial and trigger threshold deadzones.
// Axes 0,1 = left stick x/y; 2,3 = right stick x/y; 4,5 = left/right
// trigger, matching the standardized layout in the spec.
func snapshotGamepads(raw [maxGamepads]GamepadState, stickDeadzone, triggerDeadzone float64) [maxGamepads]GamepadState {
	var out [maxGamepads]GamepadState
	for i, g := range raw {
		if !g.Connected {
			continue
		}
		out[i] = g
		lx, ly := applyRadialDeadzone(g.Axes[0], g.Axes[1], stickDeadzone)
		out[i].Axes[0], out[i].Axes[1] = lx, ly
		rx, ry := applyRadialDeadzone(g.Axes[2], g.Axes[3], stickDeadzone)
		out[i].Axes[2], out[i].Axes[3] = rx, ry
		out[i].Axes[4] = applyTriggerDeadzone(g.Axes[4], triggerDeadzone)
		out[i].Axes[5] = applyTriggerDeadzone(g.Axes[5], triggerDeadzone)
	}
	return out
}

// Input owns the live InputState plus the frozen current/prior snapshots
// used for edge detection.
type Input struct {
	state          *InputState
	current        InputSnapshot
	prior          InputSnapshot
	stickDeadzone  float64
	triggerDeadzone float64
}

func NewInput() *Input {
	return &Input{
		state:           NewInputState(),
		stickDeadzone:   stickDeadzoneDefault,
		triggerDeadzone: triggerDeadzoneDefault,
	}
}

func (in *Input) State() *InputState { return in.state }

// Tick freezes the current live state into a new tick snapshot, retaining
// the previous one for edge computation. Called once per update tick by
// the Scheduler.
func (in *Input) Tick() {
	in.prior = in.current
	in.current = InputSnapshot{
		Keys:         in.state.keys,
		MouseX:       in.state.mouseX,
		MouseY:       in.state.mouseY,
		MouseButtons: in.state.mouseButtons,
		WheelDeltaX:  in.state.wheelDeltaX,
		WheelDeltaY:  in.state.wheelDeltaY,
		Gamepads:     snapshotGamepads(in.state.gamepads, in.stickDeadzone, in.triggerDeadzone),
	}
	in.state.wheelDeltaX = 0
	in.state.wheelDeltaY = 0
}

// Snapshot returns the current tick's frozen snapshot, read by both
// update and draw.
func (in *Input) Snapshot() InputSnapshot { return in.current }

func (in *Input) KeyDown(scancode int) bool {
	if scancode < 0 || scancode >= maxScancode {
		return false
	}
	return in.current.Keys[scancode]
}

func (in *Input) KeyPressed(scancode int) bool {
	if scancode < 0 || scancode >= maxScancode {
		return false
	}
	return in.current.Keys[scancode] && !in.prior.Keys[scancode]
}

func (in *Input) KeyReleased(scancode int) bool {
	if scancode < 0 || scancode >= maxScancode {
		return false
	}
	return !in.current.Keys[scancode] && in.prior.Keys[scancode]
}

func (in *Input) MouseButtonDown(button int) bool {
	if button < 0 || button >= len(in.current.MouseButtons) {
		return false
	}
	return in.current.MouseButtons[button]
}

func (in *Input) MouseButtonPressed(button int) bool {
	if button < 0 || button >= len(in.current.MouseButtons) {
		return false
	}
	return in.current.MouseButtons[button] && !in.prior.MouseButtons[button]
}

func (in *Input) MouseButtonReleased(button int) bool {
	if button < 0 || button >= len(in.current.MouseButtons) {
		return false
	}
	return !in.current.MouseButtons[button] && in.prior.MouseButtons[button]
}

// Gamepad returns gamepad index's snapshotted state, or the zero value
// (Connected=false) for an invalid or disconnected index. Always safe.
func (in *Input) Gamepad(index int) GamepadState {
	if index < 0 || index >= maxGamepads {
		return GamepadState{}
	}
	return in.current.Gamepads[index]
}

func (in *Input) GamepadButtonPressed(index, button int) bool {
	if index < 0 || index >= maxGamepads || button < 0 || button >= gamepadButtons {
		return false
	}
	return in.current.Gamepads[index].Buttons[button] && !in.prior.Gamepads[index].Buttons[button]
}

func (in *Input) GamepadButtonReleased(index, button int) bool {
	if index < 0 || index >= maxGamepads || button < 0 || button >= gamepadButtons {
		return false
	}
	return !in.current.Gamepads[index].Buttons[button] && in.prior.Gamepads[index].Buttons[button]
}

// PresentMode mirrors the Render Pipeline's scaling modes, needed here
// because mouse mapping depends on how the viewport maps onto CBUF space.
type PresentMode int

const (
	PresentFit PresentMode = iota
	PresentIntegerNearest
	PresentFill
	PresentStretch
)

// Viewport is the present pass's computed destination rectangle in
// backbuffer (display) space.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// MapMouseToConsole converts display-space (mx, my) to console (CBUF)
// space given the active viewport and present mode. Returns (-1, -1) when
// the point falls outside the visible region for fit/integer_nearest.
func MapMouseToConsole(mx, my int, vp Viewport, cbufW, cbufH int, mode PresentMode) (int, int) {
	if vp.Width <= 0 || vp.Height <= 0 || cbufW <= 0 || cbufH <= 0 {
		return -1, -1
	}

	switch mode {
	case PresentFit, PresentIntegerNearest:
		if mx < vp.X || mx >= vp.X+vp.Width || my < vp.Y || my >= vp.Y+vp.Height {
			return -1, -1
		}
		cx := (mx - vp.X) * cbufW / vp.Width
		cy := (my - vp.Y) * cbufH / vp.Height
		return clampInt(cx, 0, cbufW-1), clampInt(cy, 0, cbufH-1)

	case PresentStretch:
		cx := (mx - vp.X) * cbufW / vp.Width
		cy := (my - vp.Y) * cbufH / vp.Height
		if cx < 0 || cx >= cbufW || cy < 0 || cy >= cbufH {
			return -1, -1
		}
		return cx, cy

	case PresentFill:
		// The viewport extends past the backbuffer; crop is inverted, the
		// visible subregion of CBUF maps across the whole backbuffer.
		cx := (mx - vp.X) * cbufW / vp.Width
		cy := (my - vp.Y) * cbufH / vp.Height
		return clampInt(cx, 0, cbufW-1), clampInt(cy, 0, cbufH-1)

	default:
		return -1, -1
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
