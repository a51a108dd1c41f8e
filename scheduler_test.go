//go:build headless

package arcanee

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSchedulerCart(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	toml := "id = \"demo.game\"\ntitle = \"Demo\"\nversion = \"1.0.0\"\napi_version = \"1.0\"\n"
	if err := os.WriteFile(filepath.Join(dir, "cartridge.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.nut"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	p := NewPlatform()
	if err := p.Start(WindowConfig{Width: 320, Height: 240}); err != nil {
		t.Fatalf("unexpected platform start error: %v", err)
	}
	return NewScheduler(p, NewInput(), NewLogger(), DefaultSchedulerConfig())
}

const countingScript = `
n = 0
function init() n = 0 end
function update(dt) n = n + 1 end
function draw(alpha) end
`

func TestSchedulerAdvancesInitializedToRunningOnFirstTick(t *testing.T) {
	dir := writeSchedulerCart(t, countingScript)
	s := newTestScheduler(t)
	rt := DefaultRuntimePolicy()
	rt.StateDir = t.TempDir()

	if err := s.LoadCartridge(dir, rt, false); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if s.Cartridge().State() != StateInitialized {
		t.Fatalf("expected Initialized after load, got %v", s.Cartridge().State())
	}

	s.Tick()
	if s.Cartridge().State() != StateRunning {
		t.Fatalf("expected Running after first tick, got %v", s.Cartridge().State())
	}
}

func TestSchedulerRunsBoundedUpdatesPerFrame(t *testing.T) {
	dir := writeSchedulerCart(t, countingScript)
	s := newTestScheduler(t)
	rt := DefaultRuntimePolicy()
	rt.StateDir = t.TempDir()
	if err := s.LoadCartridge(dir, rt, false); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	s.Tick() // Initialized -> Running, first tick has ~0 frame_dt

	// Force a large backlog by advancing the accumulator directly, the
	// way a debugger-pause spike would.
	s.accumulator = 10.0
	timings := s.Tick()

	if timings.UpdatesRun != s.cfg.MaxUpdatesPerFrame {
		t.Fatalf("expected exactly %d updates, got %d", s.cfg.MaxUpdatesPerFrame, timings.UpdatesRun)
	}
	if !timings.BudgetExceeded {
		t.Fatal("expected budget-exceeded flag when backlog exceeds cap")
	}
	if s.accumulator != 0 {
		t.Fatalf("expected accumulator dropped to 0, got %v", s.accumulator)
	}
}

func TestSchedulerFrameDtClamped(t *testing.T) {
	dir := writeSchedulerCart(t, countingScript)
	s := newTestScheduler(t)
	rt := DefaultRuntimePolicy()
	rt.StateDir = t.TempDir()
	if err := s.LoadCartridge(dir, rt, false); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	s.prevNow = -1000 // simulate a huge debugger-pause gap
	timings := s.Tick()
	if timings.FrameDt > s.cfg.MaxFrameDt {
		t.Fatalf("expected frame_dt clamped to %v, got %v", s.cfg.MaxFrameDt, timings.FrameDt)
	}
}

func TestSchedulerFaultsOnUncaughtUpdateError(t *testing.T) {
	dir := writeSchedulerCart(t, `
function init() end
function update(dt) error("boom") end
function draw(alpha) end
`)
	s := newTestScheduler(t)
	rt := DefaultRuntimePolicy()
	rt.StateDir = t.TempDir()
	if err := s.LoadCartridge(dir, rt, false); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	s.Tick() // -> Running

	s.accumulator = 1.0
	timings := s.Tick()
	if !timings.Faulted {
		t.Fatal("expected Faulted timings after uncaught update error")
	}
	if s.Cartridge().State() != StateFaulted {
		t.Fatalf("expected cartridge Faulted, got %v", s.Cartridge().State())
	}
}

func TestSchedulerStopDestroysAllHandles(t *testing.T) {
	dir := writeSchedulerCart(t, countingScript)
	s := newTestScheduler(t)
	rt := DefaultRuntimePolicy()
	rt.StateDir = t.TempDir()
	if err := s.LoadCartridge(dir, rt, false); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	s.Tick()
	s.Stop()
	if s.Cartridge().State() != StateStopped {
		t.Fatalf("expected Stopped, got %v", s.Cartridge().State())
	}
	if n := s.Cartridge().registry.Count(ResourceTexture); n != 0 {
		t.Fatalf("expected 0 outstanding handles, got %d", n)
	}
}
