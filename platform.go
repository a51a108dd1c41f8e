// platform.go - window lifecycle, event pump, monotonic clock

package arcanee

import (
	"sync"
	"time"
)

// WindowConfig is the Platform's creation-time configuration.
type WindowConfig struct {
	Title      string
	Width      int
	Height     int
	VSync      bool
	Fullscreen bool
}

// SizeChange carries a new drawable (physical pixel) size to the listeners
// registered with OnSizeChanged; the Render Pipeline answers it by
// reallocating its backbuffer and recomputing the viewport. Listeners run
// only when notifySizeChanged is called, and neither backend calls it: the
// ebiten backend reports the configured window size as its drawable size
// and lets ebiten scale the uploaded frame to the window, so a window
// resize does not reach the listeners.
type SizeChange struct {
	DrawableWidth  int
	DrawableHeight int
}

// Platform owns the single top-level window, pumps its event loop, and is
// the runtime's one source of monotonic time. Backend-specific startup
// lives in platform_ebiten.go (real window) and platform_headless.go (no
// window, for tests and CI), selected by the `headless` build tag.
type Platform struct {
	mu           sync.RWMutex
	backend      platformBackend
	config       WindowConfig
	fullscreen   bool
	closeRequested bool
	sizeListeners []func(SizeChange)
	deviceErrorListeners []func(*CartridgeError)
	start        time.Time
}

// platformBackend is the narrow surface a concrete windowing backend must
// implement; Platform itself holds the policy (fullscreen toggle tracking,
// listener fan-out) common to every backend.
type platformBackend interface {
	Start(cfg WindowConfig) error
	Stop() error
	PumpEvents() error // returns non-nil only on fatal failure
	DrawableSize() (int, int)
	SetFullscreen(bool)
	UploadFrame(rgba []byte, width, height int) error
	Present() error
}

// NewPlatform constructs a Platform bound to the build's selected backend.
func NewPlatform() *Platform {
	return &Platform{backend: newPlatformBackend(), start: time.Now()}
}

// Start creates the window. Initialization failure is fatal per spec;
// callers should treat a non-nil error as unrecoverable.
func (p *Platform) Start(cfg WindowConfig) error {
	p.mu.Lock()
	p.config = cfg
	p.fullscreen = cfg.Fullscreen
	p.mu.Unlock()
	return p.backend.Start(cfg)
}

func (p *Platform) Stop() error {
	return p.backend.Stop()
}

// PumpEvents processes one iteration of window/input events. Called once
// per host frame before Input freezes its snapshot.
func (p *Platform) PumpEvents() error {
	return p.backend.PumpEvents()
}

// Now returns monotonic seconds since Platform construction.
func (p *Platform) Now() float64 {
	return time.Since(p.start).Seconds()
}

// DrawableSize returns the physical pixel size of the window's drawable
// surface (may differ from logical size under HiDPI).
func (p *Platform) DrawableSize() (int, int) {
	return p.backend.DrawableSize()
}

// SetFullscreen toggles desktop (borderless) fullscreen without a display
// mode switch.
func (p *Platform) SetFullscreen(enabled bool) {
	p.mu.Lock()
	p.fullscreen = enabled
	p.mu.Unlock()
	p.backend.SetFullscreen(enabled)
}

func (p *Platform) IsFullscreen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fullscreen
}

// OnSizeChanged registers a listener for SizeChange notifications
// (consumed by the Render Pipeline); see SizeChange for when they fire.
func (p *Platform) OnSizeChanged(fn func(SizeChange)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizeListeners = append(p.sizeListeners, fn)
}

func (p *Platform) notifySizeChanged(w, h int) {
	p.mu.RLock()
	listeners := append([]func(SizeChange){}, p.sizeListeners...)
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn(SizeChange{DrawableWidth: w, DrawableHeight: h})
	}
}

// OnDeviceError registers a listener for device-loss notifications, which
// the Render Pipeline answers by recreating its backbuffer. Neither backend
// reports device loss, so these listeners run only when notifyDeviceError
// is called.
func (p *Platform) OnDeviceError(fn func(*CartridgeError)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deviceErrorListeners = append(p.deviceErrorListeners, fn)
}

func (p *Platform) notifyDeviceError(err *CartridgeError) {
	p.mu.RLock()
	listeners := append([]func(*CartridgeError){}, p.deviceErrorListeners...)
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn(err)
	}
}

// UploadFrame pushes a composited backbuffer-resolution RGBA image to the
// window for display; Present then blits it to screen.
func (p *Platform) UploadFrame(rgba []byte, width, height int) error {
	return p.backend.UploadFrame(rgba, width, height)
}

func (p *Platform) Present() error {
	return p.backend.Present()
}

// CloseRequested reports whether the host window close control (or OS
// termination signal) has fired since the last Start.
func (p *Platform) CloseRequested() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closeRequested
}

func (p *Platform) requestClose() {
	p.mu.Lock()
	p.closeRequested = true
	p.mu.Unlock()
}
