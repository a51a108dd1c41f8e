// script_api_sys.go - sys.* namespace bindings

package arcanee

import lua "github.com/yuin/gopher-lua"

// RegisterSysAPI binds the sys namespace: last-error inspection and the
// deterministic RNG.
func RegisterSysAPI(vm *lua.LState, c *apiContext) {
	register(vm, "sys", "getLastError", func(ls *lua.LState) int {
		ls.Push(lua.LString(c.lastErr.Get()))
		return 1
	})
	register(vm, "sys", "clearLastError", func(ls *lua.LState) int {
		c.lastErr.Clear()
		return 0
	})
	register(vm, "sys", "rand", func(ls *lua.LState) int {
		if !checkArity(ls, c, "sys.rand", 0) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		ls.Push(lua.LNumber(c.rng.next31()))
		return 1
	})
	register(vm, "sys", "srand", func(ls *lua.LState) int {
		if !checkArity(ls, c, "sys.srand", 1) {
			return 0
		}
		seed, ok := checkNumber(ls, c, "sys.srand", 0)
		if !ok {
			return 0
		}
		c.rng.seed(int64(seed))
		return 0
	})
}
