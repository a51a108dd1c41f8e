//go:build !headless

// input_poll_ebiten.go - polls ebiten device state into InputState each pump

package arcanee

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// scancodeKeys enumerates the subset of ebiten.Key values the runtime
// forwards to cartridges, indexed by our own stable scancode numbering
// rather than ebiten's own key constants (so a future backend swap
// doesn't renumber every cartridge's key bindings).
var scancodeKeys = [...]ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
	ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
	ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
	ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
	ebiten.KeyY, ebiten.KeyZ,
	ebiten.Key0, ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	ebiten.KeySpace, ebiten.KeyEnter, ebiten.KeyEscape, ebiten.KeyTab,
	ebiten.KeyBackspace, ebiten.KeyShiftLeft, ebiten.KeyShiftRight,
	ebiten.KeyControlLeft, ebiten.KeyControlRight, ebiten.KeyAltLeft, ebiten.KeyAltRight,
	ebiten.KeyArrowUp, ebiten.KeyArrowDown, ebiten.KeyArrowLeft, ebiten.KeyArrowRight,
}

// PollInto pumps ebiten's current device state into state, ready for the
// Scheduler to call Input.Tick() immediately after.
func PollInto(state *InputState) {
	for scancode, key := range scancodeKeys {
		state.SetKey(scancode, ebiten.IsKeyPressed(key))
	}

	mx, my := ebiten.CursorPosition()
	state.SetMousePosition(mx, my)
	state.SetMouseButton(0, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	state.SetMouseButton(1, ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight))
	state.SetMouseButton(2, ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle))
	wx, wy := ebiten.Wheel()
	state.AddWheelDelta(wx, wy)

	ids := ebiten.AppendGamepadIDs(nil)
	connected := make(map[ebiten.GamepadID]bool, len(ids))
	for _, id := range ids {
		connected[id] = true
	}
	for i := 0; i < maxGamepads; i++ {
		id := ebiten.GamepadID(i)
		if !connected[id] {
			state.SetGamepadRaw(i, false, [gamepadButtons]bool{}, [gamepadAxes]float64{})
			continue
		}
		var buttons [gamepadButtons]bool
		for b := 0; b < gamepadButtons; b++ {
			buttons[b] = ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButton(b))
		}
		var axes [gamepadAxes]float64
		axes[0] = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		axes[1] = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		axes[2] = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		axes[3] = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		axes[4] = ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomLeft)
		axes[5] = ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomRight)
		state.SetGamepadRaw(i, true, buttons, axes)
	}
}
