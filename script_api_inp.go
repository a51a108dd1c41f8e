// script_api_inp.go - inp.* namespace bindings over the frozen tick snapshot

package arcanee

import lua "github.com/yuin/gopher-lua"

// RegisterInpAPI binds the inp namespace. All queries are O(1),
// allocation-free, and safe on invalid indices (return false/0 per spec).
func RegisterInpAPI(vm *lua.LState, c *apiContext) {
	register(vm, "inp", "keyDown", func(ls *lua.LState) int {
		sc, ok := intArg(ls, c, "inp.keyDown", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.input.KeyDown(sc)))
		return 1
	})
	register(vm, "inp", "keyPressed", func(ls *lua.LState) int {
		sc, ok := intArg(ls, c, "inp.keyPressed", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.input.KeyPressed(sc)))
		return 1
	})
	register(vm, "inp", "keyReleased", func(ls *lua.LState) int {
		sc, ok := intArg(ls, c, "inp.keyReleased", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.input.KeyReleased(sc)))
		return 1
	})

	register(vm, "inp", "mousePosition", func(ls *lua.LState) int {
		snap := c.input.Snapshot()
		ls.Push(lua.LNumber(snap.MouseX))
		ls.Push(lua.LNumber(snap.MouseY))
		return 2
	})
	register(vm, "inp", "mouseButtonDown", func(ls *lua.LState) int {
		b, ok := intArg(ls, c, "inp.mouseButtonDown", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.input.MouseButtonDown(b)))
		return 1
	})
	register(vm, "inp", "wheelDelta", func(ls *lua.LState) int {
		snap := c.input.Snapshot()
		ls.Push(lua.LNumber(snap.WheelDeltaX))
		ls.Push(lua.LNumber(snap.WheelDeltaY))
		return 2
	})

	register(vm, "inp", "gamepadConnected", func(ls *lua.LState) int {
		idx, ok := intArg(ls, c, "inp.gamepadConnected", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.input.Gamepad(idx).Connected))
		return 1
	})
	register(vm, "inp", "gamepadButtonDown", func(ls *lua.LState) int {
		idx, ok1 := intArg(ls, c, "inp.gamepadButtonDown", 0)
		btn, ok2 := intArg(ls, c, "inp.gamepadButtonDown", 1)
		if !ok1 || !ok2 {
			ls.Push(lua.LFalse)
			return 1
		}
		g := c.input.Gamepad(idx)
		if !g.Connected || btn < 0 || btn >= len(g.Buttons) {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(g.Buttons[btn]))
		return 1
	})
	register(vm, "inp", "gamepadAxis", func(ls *lua.LState) int {
		idx, ok1 := intArg(ls, c, "inp.gamepadAxis", 0)
		axis, ok2 := intArg(ls, c, "inp.gamepadAxis", 1)
		if !ok1 || !ok2 {
			ls.Push(lua.LNumber(0))
			return 1
		}
		g := c.input.Gamepad(idx)
		if !g.Connected || axis < 0 || axis >= len(g.Axes) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		ls.Push(lua.LNumber(g.Axes[axis]))
		return 1
	})
}

func intArg(ls *lua.LState, c *apiContext, op string, idx int) (int, bool) {
	f, ok := checkNumber(ls, c, op, idx)
	if !ok {
		return 0, false
	}
	return int(f), true
}
