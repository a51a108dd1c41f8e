// scheduler.go - fixed-timestep accumulator, budget enforcement, hang watchdog, lifecycle driver

package arcanee

import (
	"fmt"
	"time"
)

// SchedulerConfig holds the frame-loop constants named in the spec. All
// are expressed in the units scripts and Workbench reason about
// directly (Hz, milliseconds, seconds) rather than ticks, so a
// misconfiguration is legible in a log line.
type SchedulerConfig struct {
	TickHz                             int
	MaxUpdatesPerFrame                 int
	MaxFrameDt                         float64 // clamp on frame_dt, default 0.25s
	CPUMsPerUpdateSoft                 float64
	ConsecutiveOverrunsBeforeAutoPause int
	HangWatchdogMs                     float64
	// DrawWhilePaused mirrors the spec's "(or Paused per Workbench
	// policy)" clause; a headless runtime defaults this off since there
	// is no Workbench to opt in.
	DrawWhilePaused bool
}

// DefaultSchedulerConfig matches the spec's named constants: tick_hz=60,
// max_updates_per_frame=4. The soft/hard budget figures are this
// runtime's own choice (the spec names the knobs but not their
// defaults); see DESIGN.md for the reasoning.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickHz:                             60,
		MaxUpdatesPerFrame:                 4,
		MaxFrameDt:                         0.25,
		CPUMsPerUpdateSoft:                 8.0,
		ConsecutiveOverrunsBeforeAutoPause: 30,
		HangWatchdogMs:                     1000.0,
		DrawWhilePaused:                    false,
	}
}

// FrameTimings is returned by Tick once per host frame, summarizing that
// frame's updates, alpha and faults.
type FrameTimings struct {
	FrameDt        float64
	UpdatesRun     int
	Alpha          float64
	SoftOverruns   int
	BudgetExceeded bool
	Faulted        bool
}

// Scheduler owns the cartridge lifecycle state machine and the
// single-threaded cooperative frame loop. It holds at most one loaded
// cartridge at a time (v0.1).
type Scheduler struct {
	platform *Platform
	input    *Input
	logger   *Logger
	cfg      SchedulerConfig

	cart        *Cartridge
	accumulator float64
	prevNow     float64
	frame       uint64

	consecutiveOverruns int

	// onRenderFrame is the Render Pipeline's hook, invoked after a
	// successful draw(alpha) with the same alpha the script just saw.
	onRenderFrame func(alpha float64)
}

// NewScheduler wires a Scheduler to the platform and input pumps it
// drives every frame.
func NewScheduler(platform *Platform, input *Input, logger *Logger, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{platform: platform, input: input, logger: logger, cfg: cfg}
}

// OnRenderFrame registers the Render Pipeline's per-frame hook.
func (s *Scheduler) OnRenderFrame(fn func(alpha float64)) { s.onRenderFrame = fn }

// Cartridge returns the currently loaded cartridge, or nil.
func (s *Scheduler) Cartridge() *Cartridge { return s.cart }

// LoadCartridge constructs and loads a new cartridge, replacing any
// previously stopped one. The caller must Stop() a Running/Paused
// cartridge before loading a new one.
func (s *Scheduler) LoadCartridge(root string, rt RuntimePolicy, devMode bool) *CartridgeError {
	if s.cart != nil && (s.cart.State() == StateRunning || s.cart.State() == StatePaused) {
		return newErr("scheduler.load", CategoryInvalidArgument, "a cartridge is already running; stop it first")
	}
	c := NewCartridge(root, s.logger, s.input)
	if err := c.Load(rt, devMode); err != nil {
		s.cart = c
		return err
	}
	s.cart = c
	s.accumulator = 0
	s.consecutiveOverruns = 0
	s.prevNow = s.platform.Now()
	return nil
}

// Reload stops the current cartridge (if any) and loads it fresh from
// the same root. No state persists across a reload, per spec.
func (s *Scheduler) Reload(rt RuntimePolicy, devMode bool) *CartridgeError {
	if s.cart == nil {
		return newErr("scheduler.reload", CategoryInvalidArgument, "no cartridge loaded")
	}
	root := s.cart.root
	s.cart.Stop()
	s.cart.Unload()
	return s.LoadCartridge(root, rt, devMode)
}

// Stop tears down the current cartridge's resources and VM.
func (s *Scheduler) Stop() {
	if s.cart != nil {
		s.cart.Stop()
	}
}

// PauseCartridge / ResumeCartridge expose Workbench-driven run-state
// toggles; the scheduler observes these at the top of the next Tick.
func (s *Scheduler) PauseCartridge()  { s.cart.Pause() }
func (s *Scheduler) ResumeCartridge() { s.cart.Resume() }

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Tick runs exactly one host frame of the loop described in spec §4.6:
// clamp frame_dt, pump events/input, advance Initialized->Running,
// accumulate and run bounded update() calls under budget/hang
// enforcement, then draw() once at the resulting alpha.
func (s *Scheduler) Tick() FrameTimings {
	now := s.platform.Now()
	frameDt := now - s.prevNow
	if frameDt > s.cfg.MaxFrameDt {
		frameDt = s.cfg.MaxFrameDt
	}
	if frameDt < 0 {
		frameDt = 0
	}
	s.prevNow = now
	s.frame++
	s.logger.SetFrame(s.frame)

	s.platform.PumpEvents()
	s.input.Tick()

	timings := FrameTimings{FrameDt: frameDt}
	if s.cart == nil {
		return timings
	}

	if s.cart.ConsumeReloadRequest() {
		root, rt, devMode := s.cart.root, s.cart.rtPolicy, s.cart.devMode
		s.cart.Stop()
		s.cart.Unload()
		if err := s.LoadCartridge(root, rt, devMode); err != nil {
			timings.Faulted = true
			return timings
		}
	}

	if s.cart.State() == StateInitialized {
		if err := s.cart.RunInit(); err != nil {
			timings.Faulted = true
			return timings
		}
	}

	dtFixed := 1.0 / float64(s.cfg.TickHz)

	if s.cart.State() == StateRunning {
		s.accumulator += frameDt
		hangTimeout := time.Duration(s.cfg.HangWatchdogMs * float64(time.Millisecond))

		for s.accumulator >= dtFixed && timings.UpdatesRun < s.cfg.MaxUpdatesPerFrame {
			start := s.platform.Now()
			if err := s.cart.UpdateWatched(dtFixed, hangTimeout); err != nil {
				timings.Faulted = true
				return timings
			}
			elapsedMs := (s.platform.Now() - start) * 1000

			if elapsedMs > s.cfg.CPUMsPerUpdateSoft {
				s.consecutiveOverruns++
				timings.SoftOverruns++
				s.logger.Warn(fmt.Sprintf("update exceeded soft budget: %.2fms > %.2fms", elapsedMs, s.cfg.CPUMsPerUpdateSoft))
				if s.consecutiveOverruns >= s.cfg.ConsecutiveOverrunsBeforeAutoPause {
					s.logger.Warn("auto-pausing cartridge after sustained budget overruns")
					s.cart.Pause()
					s.consecutiveOverruns = 0
					break
				}
			} else {
				s.consecutiveOverruns = 0
			}

			s.accumulator -= dtFixed
			timings.UpdatesRun++
		}

		if timings.UpdatesRun >= s.cfg.MaxUpdatesPerFrame && s.accumulator > dtFixed*float64(s.cfg.MaxUpdatesPerFrame) {
			s.logger.Warn("frame budget exceeded; dropping accumulator")
			s.accumulator = 0
			timings.BudgetExceeded = true
		}
	}

	timings.Alpha = clampFloat(s.accumulator/dtFixed, 0, 1)

	shouldDraw := s.cart.State() == StateRunning || (s.cart.State() == StatePaused && s.cfg.DrawWhilePaused)
	if shouldDraw {
		if err := s.cart.Draw(timings.Alpha); err != nil {
			timings.Faulted = true
			return timings
		}
		if s.onRenderFrame != nil {
			s.onRenderFrame(timings.Alpha)
		}
	}

	return timings
}
