// runtime.go - top-level wiring: Platform + Scheduler + Render Pipeline,
// one cartridge at a time, driven by the host's event loop.

package arcanee

import "fmt"

// RuntimeConfig bundles the window and policy knobs Runtime.Start needs;
// cartridge-specific values (CBUF size, present mode) are resolved from
// the manifest once the cartridge loads.
type RuntimeConfig struct {
	Window  WindowConfig
	Policy  RuntimePolicy
	Sched   SchedulerConfig
	DevMode bool
}

// DefaultRuntimeConfig mirrors DefaultRuntimePolicy/DefaultSchedulerConfig
// with a windowed, non-Dev-Mode default suitable for `arcanee run`.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Window: WindowConfig{Title: "ARCANEE", Width: 1280, Height: 720, VSync: true},
		Policy: DefaultRuntimePolicy(),
		Sched:  DefaultSchedulerConfig(),
	}
}

// Runtime owns the process-lifetime singletons (Platform, Input, Logger)
// and the single-cartridge Scheduler; Render Pipeline is created once the
// first cartridge's manifest reveals its CBUF resolution, and recreated
// whenever a reload changes it.
type Runtime struct {
	cfg RuntimeConfig

	platform  *Platform
	input     *Input
	logger    *Logger
	scheduler *Scheduler
	render    *RenderPipeline
}

// NewRuntime constructs an unstarted Runtime.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	logger := NewLogger()
	platform := NewPlatform()
	input := NewInput()
	return &Runtime{
		cfg:       cfg,
		platform:  platform,
		input:     input,
		logger:    logger,
		scheduler: NewScheduler(platform, input, logger, cfg.Sched),
	}
}

func presentModeFromScaling(scaling string) PresentMode {
	switch scaling {
	case "integer_nearest":
		return PresentIntegerNearest
	case "fill":
		return PresentFill
	case "stretch":
		return PresentStretch
	default:
		return PresentFit
	}
}

// Load starts the platform (opening the window) and loads a cartridge
// from root, then builds a Render Pipeline to match the manifest's
// console resolution and requested scaling mode.
func (rt *Runtime) Load(root string) error {
	if err := rt.platform.Start(rt.cfg.Window); err != nil {
		return fmt.Errorf("runtime: starting platform: %w", err)
	}
	if err := rt.scheduler.LoadCartridge(root, rt.cfg.Policy, rt.cfg.DevMode); err != nil {
		return fmt.Errorf("runtime: loading cartridge: %s: %s", err.Category, err.Cause)
	}

	cart := rt.scheduler.Cartridge()
	cbufW, cbufH := cart.manifest.CBUFSize()
	mode := presentModeFromScaling(cart.manifest.Display.Scaling)
	rt.render = NewRenderPipeline(rt.platform, cbufW, cbufH, mode, &LastErrorChannel{}, rt.logger)
	rt.scheduler.OnRenderFrame(func(alpha float64) {
		cart := rt.scheduler.Cartridge()
		if cart == nil {
			return
		}
		if w, h := cart.manifest.CBUFSize(); w != rt.render.cbufW || h != rt.render.cbufH {
			rt.render = NewRenderPipeline(rt.platform, w, h, presentModeFromScaling(cart.manifest.Display.Scaling), &LastErrorChannel{}, rt.logger)
		}
		if err := rt.render.Present(cart.canvas.cbuf); err != nil {
			rt.logger.Warn("present failed: %v", err)
		}
	})
	return nil
}

// Run drives the host frame loop until the window is closed. Each
// iteration is one Scheduler.Tick; Platform.PumpEvents (called inside
// Tick) is what observes the close request.
func (rt *Runtime) Run() {
	for !rt.platform.CloseRequested() {
		rt.scheduler.Tick()
	}
}

// Stop tears down the current cartridge and closes the window.
func (rt *Runtime) Stop() {
	rt.scheduler.Stop()
	if err := rt.platform.Stop(); err != nil {
		rt.logger.Warn("platform stop: %v", err)
	}
}
