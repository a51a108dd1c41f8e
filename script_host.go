// script_host.go - embedded Lua VM lifecycle, module loader, entry points

package arcanee

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const entryPointInit = "init"
const entryPointUpdate = "update"
const entryPointDraw = "draw"

// moduleCache holds the already-executed modules keyed by canonical VFS
// path, per the "second require of the same path returns the cached
// value" rule. A module mid-execution (circular require) is present with
// inProgress=true so a second require during its own execution gets back
// whatever the module has assigned to its return value so far.
type moduleCacheEntry struct {
	value      lua.LValue
	inProgress bool
}

// ScriptHost embeds one gopher-lua VM per cartridge, bound to a single
// VFS and Resource Registry scope. It runs exclusively on the main
// thread, per spec.
type ScriptHost struct {
	vm        *lua.LState
	vfs       *VFS
	cartID    string
	modules   map[string]*moduleCacheEntry
	loadStack []string // require() call stack, for circular-require detection
	rng       *xorshift128plus
	logger    *Logger
	lastErr   *LastErrorChannel
}

// NewScriptHost creates a fresh VM scoped to one cartridge. The global
// environment is sandboxed down to the fixed API namespaces by the
// caller (see script_api_*.go) immediately after construction.
func NewScriptHost(cartID string, vfs *VFS, logger *Logger, lastErr *LastErrorChannel) *ScriptHost {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	// Only base, string, table, math — no io/os/package/debug/coroutine.
	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		vm.Push(vm.NewFunction(pair.fn))
		vm.Push(lua.LString(pair.name))
		vm.Call(1, 0)
	}
	removeUnsandboxedBaseGlobals(vm)

	return &ScriptHost{
		vm:      vm,
		vfs:     vfs,
		cartID:  cartID,
		modules: make(map[string]*moduleCacheEntry),
		rng:     newXorshift128plusFromCartridgeID(cartID),
		logger:  logger,
		lastErr: lastErr,
	}
}

// removeUnsandboxedBaseGlobals strips base-library entries that grant
// reflective or OS-adjacent power beyond the spec's fixed namespaces:
// dofile, loadfile, collectgarbage, require, print, load and loadstring.
// Modules are compiled through the host's own LoadString instead, and
// LoadEntry binds a sandboxed require in place of the base one.
func removeUnsandboxedBaseGlobals(vm *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "collectgarbage", "require", "print", "load", "loadstring"} {
		vm.SetGlobal(name, lua.LNil)
	}
}

func (sh *ScriptHost) Close() {
	sh.vm.Close()
}

func (sh *ScriptHost) VM() *lua.LState { return sh.vm }

// Rand returns the next deterministic RNG value in [0, 2^31).
func (sh *ScriptHost) Rand() int32 { return sh.rng.next31() }

// Seed reseeds the RNG deterministically.
func (sh *ScriptHost) Seed(seed int64) { sh.rng.seed(seed) }

// LoadEntry binds the sandboxed require global, compiles and runs the
// entry module (and transitively everything it requires), then verifies
// init/update/draw are exposed as callables in the global environment.
func (sh *ScriptHost) LoadEntry(entryPath string) *CartridgeError {
	canonical, err := sh.resolveRequireTarget("cart:/"+strings.TrimPrefix(entryPath, "/"), "cart:/")
	if err != nil {
		return err
	}
	sh.vm.SetGlobal("require", sh.vm.NewFunction(func(L *lua.LState) int {
		requiring := "cart:/"
		if n := len(sh.loadStack); n > 0 {
			requiring = sh.loadStack[n-1]
		}
		v, rerr := sh.Require(requiring, L.CheckString(1))
		if rerr != nil {
			L.RaiseError("%s", rerr.Error())
		}
		L.Push(v)
		return 1
	}))
	if _, lerr := sh.loadModule(canonical); lerr != nil {
		return lerr
	}
	return sh.verifyEntryPoints()
}

func (sh *ScriptHost) verifyEntryPoints() *CartridgeError {
	for _, name := range []string{entryPointInit, entryPointUpdate, entryPointDraw} {
		v := sh.vm.GetGlobal(name)
		if v.Type() != lua.LTFunction {
			return newErr("script_host.load", CategoryMissingEntryPoints, fmt.Sprintf("missing entry point %q", name))
		}
	}
	return nil
}

// CallInit/CallUpdate/CallDraw invoke the verified entry points. The
// Scheduler is responsible for budget/hang enforcement around these
// calls; ScriptHost itself just performs the call and translates a Lua
// runtime error into a CartridgeError.
func (sh *ScriptHost) CallInit() *CartridgeError {
	return sh.callGlobal(entryPointInit, lua.LNil)
}

func (sh *ScriptHost) CallUpdate(dtFixed float64) *CartridgeError {
	return sh.callGlobal(entryPointUpdate, lua.LNumber(dtFixed))
}

// CallUpdateWatched runs update(dt_fixed) under a hard deadline. gopher-lua
// checks the VM's context between instructions, so a timed-out context
// interrupts a runaway script instead of blocking the host thread
// forever. A deadline-exceeded call is reported as CategoryHangDetected
// and the VM must be considered unsafe to reuse (the caller terminates
// the cartridge into Faulted; it does not retry the call).
func (sh *ScriptHost) CallUpdateWatched(dtFixed float64, hangTimeout time.Duration) *CartridgeError {
	ctx, cancel := context.WithTimeout(context.Background(), hangTimeout)
	defer cancel()
	sh.vm.SetContext(ctx)
	defer sh.vm.RemoveContext()

	err := sh.callGlobal(entryPointUpdate, lua.LNumber(dtFixed))
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newErr(entryPointUpdate, CategoryHangDetected, "update exceeded hang watchdog")
	}
	return err
}

func (sh *ScriptHost) CallDraw(alpha float64) *CartridgeError {
	return sh.callGlobal(entryPointDraw, lua.LNumber(alpha))
}

func (sh *ScriptHost) callGlobal(name string, arg lua.LValue) *CartridgeError {
	fn := sh.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return newErr(name, CategoryMissingEntryPoints, "entry point not callable")
	}
	if err := sh.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, arg); err != nil {
		return newErr(name, CategoryRuntimeError, err.Error())
	}
	return nil
}

// resolveRequireTarget implements the module-loader resolution rules:
// cart:/ absolute resolves exactly; ./x or x resolves relative to the
// requiring module's directory within cart:/ with a deterministic .nut
// suffix if missing; .. and non-cart:/ absolute are rejected.
func (sh *ScriptHost) resolveRequireTarget(spec string, requiringDir string) (string, *CartridgeError) {
	var candidate string
	switch {
	case strings.HasPrefix(spec, "cart:/"):
		candidate = spec
	case strings.HasPrefix(spec, "/"):
		return "", newErr("require", CategoryInvalidArgument, "non-cart:/ absolute path rejected")
	default:
		for _, seg := range strings.Split(spec, "/") {
			if seg == ".." {
				return "", newErr("require", CategoryInvalidArgument, "'..' segment rejected")
			}
		}
		candidate = path.Join(requiringDir, spec)
	}

	if !strings.HasSuffix(candidate, ".nut") {
		candidate += ".nut"
	}

	vp, verr := CanonicalizeVFSPath(candidate)
	if verr != nil {
		return "", newErr("require", CategoryInvalidArgument, verr.Error())
	}
	if vp.NS != NamespaceCart {
		return "", newErr("require", CategoryInvalidArgument, "require must resolve within cart:/")
	}
	return vp.String(), nil
}

func dirOf(canonicalPath string) string {
	idx := strings.LastIndex(canonicalPath, "/")
	if idx < 0 {
		return "cart:/"
	}
	return canonicalPath[:idx]
}

// loadModule compiles and runs the module at canonicalPath if not already
// cached, using canonicalPath as the chunk name so every error frame
// carries "cart:/...:LINE". Handles circular require by returning the
// partially constructed value (lua.LNil if nothing has been assigned
// yet) instead of recursing.
func (sh *ScriptHost) loadModule(canonicalPath string) (lua.LValue, *CartridgeError) {
	if entry, ok := sh.modules[canonicalPath]; ok {
		return entry.value, nil // cached (possibly still in-progress -> partial value)
	}

	entry := &moduleCacheEntry{value: lua.LNil, inProgress: true}
	sh.modules[canonicalPath] = entry
	sh.loadStack = append(sh.loadStack, canonicalPath)
	defer func() {
		sh.loadStack = sh.loadStack[:len(sh.loadStack)-1]
		entry.inProgress = false
	}()

	source, rerr := sh.vfs.ReadText(canonicalPath)
	if rerr != nil {
		return lua.LNil, rerr
	}

	fn, err := sh.vm.LoadString(source)
	if err != nil {
		return lua.LNil, newErr("script_host.compile", CategoryCompileError, fmt.Sprintf("%s: %v", canonicalPath, err))
	}
	// Override the chunk's source name so error traces show the VFS path.
	if proto := fn.Proto; proto != nil {
		proto.SourceName = canonicalPath
	}

	sh.vm.Push(fn)
	if err := sh.vm.PCall(0, 1, nil); err != nil {
		return lua.LNil, newErr("script_host.run", CategoryRuntimeError, fmt.Sprintf("%s: %v", canonicalPath, err))
	}
	ret := sh.vm.Get(-1)
	sh.vm.Pop(1)
	entry.value = ret
	return ret, nil
}

// Require is the native implementation behind the sandboxed `require`
// global that LoadEntry binds (in place of the base library's require),
// so cart:/ modules can require one another.
func (sh *ScriptHost) Require(requiringModule, spec string) (lua.LValue, *CartridgeError) {
	target, err := sh.resolveRequireTarget(spec, dirOf(requiringModule))
	if err != nil {
		return lua.LNil, err
	}
	for _, inflight := range sh.loadStack {
		if inflight == target {
			// Circular require: return whatever has been assigned so far.
			return sh.modules[target].value, nil
		}
	}
	return sh.loadModule(target)
}
