// script_api.go - shared API-binding validation helpers (arity/type/handle/range)

package arcanee

import (
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// apiContext is threaded through every namespace binding: the pieces a
// native function needs to validate arguments, resolve handles, and
// report failures the documented way.
type apiContext struct {
	vfs      *VFS
	registry *ResourceRegistry
	input    *Input
	cartID   string
	lastErr  *LastErrorChannel
	logger   *Logger
	rng      *xorshift128plus
	canvas   *Canvas2D
	scene    *Scene3D
	devMode  bool

	audio *AudioCore
	cart  *Cartridge

	// profiles tracks open dev.profileBegin(name) timers; only populated
	// in Dev Mode (RegisterDevAPI is the sole writer).
	profiles map[string]time.Time
}

// fail records the error on the last-error channel and returns the
// documented failure value for void/false/0/null-returning functions;
// callers push whatever Lua value the specific binding's contract
// documents (LFalse, LNumber(0), LNil, or nothing for void).
func (c *apiContext) fail(op string, cat Category, cause string) {
	c.lastErr.Set(newErr(op, cat, cause))
}

// checkArity returns false (after recording InvalidArgument) if the call
// did not pass exactly want arguments.
func checkArity(ls *lua.LState, c *apiContext, op string, want int) bool {
	if ls.GetTop() != want {
		c.fail(op, CategoryInvalidArgument, "wrong number of arguments")
		return false
	}
	return true
}

// checkNumber, checkString, checkBool, and checkHandle all take a
// zero-based positional argument index (0 = first argument) and
// translate it to gopher-lua's one-based stack index internally, so call
// sites throughout the namespace bindings never have to think about the
// stack's native numbering.
func checkNumber(ls *lua.LState, c *apiContext, op string, idx int) (float64, bool) {
	v := ls.Get(idx + 1)
	n, ok := v.(lua.LNumber)
	if !ok {
		c.fail(op, CategoryInvalidArgument, "expected number argument")
		return 0, false
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		c.fail(op, CategoryInvalidArgument, "argument must be finite")
		return 0, false
	}
	return f, true
}

func checkNumberRange(ls *lua.LState, c *apiContext, op string, idx int, lo, hi float64) (float64, bool) {
	f, ok := checkNumber(ls, c, op, idx)
	if !ok {
		return 0, false
	}
	if f < lo || f > hi {
		c.fail(op, CategoryInvalidArgument, "argument out of range")
		return 0, false
	}
	return f, true
}

func checkString(ls *lua.LState, c *apiContext, op string, idx int) (string, bool) {
	v := ls.Get(idx + 1)
	s, ok := v.(lua.LString)
	if !ok {
		c.fail(op, CategoryInvalidArgument, "expected string argument")
		return "", false
	}
	return string(s), true
}

func checkBool(ls *lua.LState, c *apiContext, op string, idx int) (bool, bool) {
	v := ls.Get(idx + 1)
	b, ok := v.(lua.LBool)
	if !ok {
		c.fail(op, CategoryInvalidArgument, "expected boolean argument")
		return false, false
	}
	return bool(b), true
}

// checkHandle validates a handle argument's existence, type, and
// ownership, returning the resolved payload on success.
func checkHandle(ls *lua.LState, c *apiContext, op string, idx int, expected ResourceType) (any, bool) {
	n, ok := checkNumber(ls, c, op, idx)
	if !ok {
		return nil, false
	}
	h := Handle(uint64(n))
	payload, rerr := c.registry.Resolve(h, expected)
	if rerr != nil {
		c.fail(op, rerr.Category, rerr.Cause)
		return nil, false
	}
	if c.registry.Owner(h) != c.cartID {
		c.fail(op, CategoryInvalidHandle, "handle not owned by this cartridge")
		return nil, false
	}
	return payload, true
}

func pushHandle(ls *lua.LState, h Handle) { ls.Push(lua.LNumber(uint64(h))) }

// register binds a Go function under table[name], creating table if it
// is not already a table in the global environment.
func register(vm *lua.LState, namespace, name string, fn lua.LGFunction) {
	tbl, ok := vm.GetGlobal(namespace).(*lua.LTable)
	if !ok {
		tbl = vm.NewTable()
		vm.SetGlobal(namespace, tbl)
	}
	tbl.RawSetString(name, vm.NewFunction(fn))
}
