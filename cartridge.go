// cartridge.go - Cartridge Instance: lifecycle state machine, owns VFS/registry/script host scope

package arcanee

import (
	"os"
	"path/filepath"
	"time"
)

// CartridgeState is one node of the lifecycle state machine. Transitions
// are driven only by the Scheduler.
type CartridgeState int

const (
	StateUnloaded CartridgeState = iota
	StateLoading
	StateInitialized
	StateRunning
	StatePaused
	StateFaulted
	StateStopped
)

func (s CartridgeState) String() string {
	switch s {
	case StateUnloaded:
		return "Unloaded"
	case StateLoading:
		return "Loading"
	case StateInitialized:
		return "Initialized"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateFaulted:
		return "Faulted"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Cartridge is one loaded cartridge instance: one script VM, one resource
// registry scope, and its own save:/ and temp:/ roots. Identified by a
// stable string id (the manifest's id field).
type Cartridge struct {
	ID    string
	state CartridgeState

	root     string
	manifest *Manifest
	policy   EffectivePolicy

	vfs      *VFS
	registry *ResourceRegistry
	script   *ScriptHost
	input    *Input
	logger   *Logger
	lastErr  *LastErrorChannel
	canvas   *Canvas2D
	scene    *Scene3D
	audio    *AudioCore

	rtPolicy        RuntimePolicy
	devMode         bool
	reloadRequested bool

	faultReason *CartridgeError
}

// RequestReload flags this cartridge for a full stop/reload cycle at the
// next Scheduler tick boundary; dev.reloadCartridge is the only caller.
func (c *Cartridge) RequestReload() { c.reloadRequested = true }

// ConsumeReloadRequest reports and clears a pending reload flag; the
// Scheduler calls this once per tick, mirroring the Pause/Resume
// observe-at-top-of-tick convention.
func (c *Cartridge) ConsumeReloadRequest() bool {
	r := c.reloadRequested
	c.reloadRequested = false
	return r
}

// NewCartridge constructs an instance in the Unloaded state. root is the
// cartridge's source: an unpacked directory, or a .arc archive path.
func NewCartridge(root string, logger *Logger, input *Input) *Cartridge {
	return &Cartridge{
		state:   StateUnloaded,
		root:    root,
		logger:  logger,
		input:   input,
		lastErr: &LastErrorChannel{},
	}
}

func (c *Cartridge) State() CartridgeState { return c.state }

// FaultReason returns the error that drove the last Faulted transition,
// or nil if the cartridge has never faulted.
func (c *Cartridge) FaultReason() *CartridgeError { return c.faultReason }

func (c *Cartridge) fault(err *CartridgeError) {
	c.state = StateFaulted
	c.faultReason = err
	c.logger.Error("cartridge %s faulted: %v", c.ID, err)
}

// Load mounts the VFS, creates the script VM, compiles and runs the entry
// module and its transitive requires, and verifies entry points. On
// success the cartridge moves to Initialized; on any failure it moves to
// Faulted and returns the error.
func (c *Cartridge) Load(rt RuntimePolicy, devMode bool) *CartridgeError {
	if c.state != StateUnloaded {
		return newErr("cartridge.load", CategoryInvalidArgument, "cartridge is not Unloaded")
	}
	c.state = StateLoading

	m, err := LoadManifest(c.root)
	if err != nil {
		cerr := newErr("cartridge.load", CategoryInvalidArgument, err.Error())
		c.fault(cerr)
		return cerr
	}
	c.ID = m.ID
	c.manifest = m
	c.policy = m.Merge(rt)
	c.rtPolicy = rt
	c.devMode = devMode
	c.lastErr.devMode = devMode

	saveRoot := filepath.Join(rt.StateDir, "saves", m.ID)
	tempRoot := filepath.Join(rt.StateDir, "temp", m.ID)
	if err := os.MkdirAll(saveRoot, 0o755); err != nil {
		cerr := newErr("cartridge.load", CategoryPermissionDenied, err.Error())
		c.fault(cerr)
		return cerr
	}
	if err := os.MkdirAll(tempRoot, 0o755); err != nil {
		cerr := newErr("cartridge.load", CategoryPermissionDenied, err.Error())
		c.fault(cerr)
		return cerr
	}

	var source CartSource
	if fileExists(c.root) {
		arc, err := OpenArchiveCartSource(c.root)
		if err != nil {
			cerr := newErr("cartridge.load", CategoryNotFound, err.Error())
			c.fault(cerr)
			return cerr
		}
		source = arc
	} else {
		source = NewDirCartSource(c.root)
	}

	c.vfs = NewVFS(source, saveRoot, tempRoot, m.Permissions.SaveStorage, int64(c.policy.TempQuotaBytes))
	c.registry = NewResourceRegistry(c.policy, c.onResourceDestroyed)
	c.script = NewScriptHost(c.ID, c.vfs, c.logger, c.lastErr)
	cbufW, cbufH := m.CBUFSize()
	c.canvas = NewCanvas2D(c.registry, cbufW, cbufH, c.lastErr, c.logger)
	c.scene = NewScene3D(c.registry, c.ID, c.lastErr, c.logger)

	audioCore, aerr := NewAudioCore(c.registry, c.vfs, c.lastErr, c.logger, c.policy.AudioChannels, DefaultAudioSampleRate)
	if aerr != nil {
		c.fault(aerr)
		return aerr
	}
	c.audio = audioCore
	c.audio.Start()

	apiCtx := &apiContext{
		vfs:      c.vfs,
		registry: c.registry,
		input:    c.input,
		cartID:   c.ID,
		lastErr:  c.lastErr,
		logger:   c.logger,
		rng:      c.script.rng,
		canvas:   c.canvas,
		scene:    c.scene,
		devMode:  devMode,
		audio:    c.audio,
		cart:     c,
	}
	RegisterSysAPI(c.script.VM(), apiCtx)
	RegisterFSAPI(c.script.VM(), apiCtx)
	RegisterInpAPI(c.script.VM(), apiCtx)
	RegisterGfxAPI(c.script.VM(), apiCtx)
	RegisterGfx3DAPI(c.script.VM(), apiCtx)
	RegisterAudioAPI(c.script.VM(), apiCtx)
	if devMode {
		apiCtx.profiles = make(map[string]time.Time)
		RegisterDevAPI(c.script.VM(), apiCtx)
	}

	if lerr := c.script.LoadEntry(m.Entry); lerr != nil {
		c.fault(lerr)
		return lerr
	}

	c.state = StateInitialized
	return nil
}

// onResourceDestroyed is the ResourceRegistry teardown callback. Every
// payload kind currently registered (textures, surfaces, fonts, sounds,
// modules) is a plain Go value with no OS handle or GPU object behind
// it, so there is nothing to release beyond letting the garbage
// collector reclaim it; this stays a no-op until a payload kind owns
// native resources.
func (c *Cartridge) onResourceDestroyed(t ResourceType, payload any) {}

// RunInit invokes the script's init() entry point, advancing Initialized
// to Running. Called exactly once by the Scheduler.
func (c *Cartridge) RunInit() *CartridgeError {
	if c.state != StateInitialized {
		return newErr("cartridge.init", CategoryInvalidArgument, "cartridge is not Initialized")
	}
	if err := c.script.CallInit(); err != nil {
		c.fault(err)
		return err
	}
	c.state = StateRunning
	return nil
}

// Pause freezes the cartridge's accumulator; the Scheduler stops calling
// update() but may still call draw() depending on Workbench policy.
func (c *Cartridge) Pause() {
	if c.state == StateRunning {
		c.state = StatePaused
	}
}

// Resume returns a Paused cartridge to Running.
func (c *Cartridge) Resume() {
	if c.state == StatePaused {
		c.state = StateRunning
	}
}

// Update invokes the script's update(dt_fixed) entry point. Any runtime
// error faults the cartridge.
func (c *Cartridge) Update(dtFixed float64) *CartridgeError {
	if err := c.script.CallUpdate(dtFixed); err != nil {
		c.fault(err)
		return err
	}
	return nil
}

// UpdateWatched is Update with a hard hang-watchdog deadline; the
// Scheduler uses this form so a runaway update() terminates the
// cartridge instead of the host process.
func (c *Cartridge) UpdateWatched(dtFixed float64, hangTimeout time.Duration) *CartridgeError {
	if err := c.script.CallUpdateWatched(dtFixed, hangTimeout); err != nil {
		c.fault(err)
		return err
	}
	return nil
}

// Draw invokes the script's draw(alpha) entry point, then replays the
// command buffer it recorded. gfx.* calls append to the buffer and mutate
// the scratch path during the script call; nothing is rasterized until
// the script returns.
func (c *Cartridge) Draw(alpha float64) *CartridgeError {
	c.canvas.BeginFrame()
	c.scene.BeginFrame()
	if err := c.script.CallDraw(alpha); err != nil {
		c.fault(err)
		return err
	}
	if c.scene.renderRequested {
		c.scene.RenderActiveScene(c.canvas.cbuf)
	}
	c.canvas.Execute()
	return nil
}

// Stop tears down every handle this cartridge owns, then the script VM,
// leaving the cartridge in Stopped. Per spec, the outstanding-handle
// count for this cartridge must be 0 before the next Unloaded
// transition; DestroyAllOwnedBy guarantees that synchronously.
func (c *Cartridge) Stop() {
	if c.audio != nil {
		c.audio.Stop()
	}
	if c.registry != nil {
		c.registry.DestroyAllOwnedBy(c.ID)
	}
	if c.script != nil {
		c.script.Close()
	}
	c.state = StateStopped
}

// Unload finalizes a Stopped cartridge back to Unloaded so it can be
// Load()ed again (Reload = Stop + Load, no state persists).
func (c *Cartridge) Unload() {
	c.script = nil
	c.vfs = nil
	c.registry = nil
	c.manifest = nil
	c.faultReason = nil
	c.state = StateUnloaded
}
