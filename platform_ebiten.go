//go:build !headless

// platform_ebiten.go - ebiten-backed window and event pump

package arcanee

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ebitenBackend adapts ebiten's RunGame game loop to the pull-style
// PumpEvents/UploadFrame/Present contract the Scheduler drives. Grounded
// on the teacher's EbitenOutput: a shared frame buffer behind a mutex,
// handed to ebiten.Image on each Draw call, with a channel used to hand
// control back to the caller once ebiten's internal loop has started.
type ebitenBackend struct {
	mu          sync.RWMutex
	frame       *ebiten.Image
	width       int
	height      int
	fullscreen  bool
	started     chan struct{}
	startedOnce sync.Once
	buf         []byte
	frameW      int
	frameH      int
}

func newPlatformBackend() platformBackend {
	return &ebitenBackend{started: make(chan struct{})}
}

func (b *ebitenBackend) Start(cfg WindowConfig) error {
	b.width, b.height = cfg.Width, cfg.Height
	b.fullscreen = cfg.Fullscreen
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(cfg.VSync)
	if cfg.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	go func() {
		if err := ebiten.RunGame(b); err != nil {
			fmt.Printf("platform: ebiten run loop exited: %v\n", err)
		}
	}()
	<-b.started
	return nil
}

func (b *ebitenBackend) Stop() error { return nil }

// PumpEvents is a no-op: ebiten drives its own loop via Update/Draw on a
// dedicated goroutine. The Scheduler calls this once per host frame to
// keep the interface symmetric with the headless backend.
func (b *ebitenBackend) PumpEvents() error { return nil }

func (b *ebitenBackend) DrawableSize() (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width, b.height
}

func (b *ebitenBackend) SetFullscreen(enabled bool) {
	b.mu.Lock()
	b.fullscreen = enabled
	b.mu.Unlock()
	ebiten.SetFullscreen(enabled)
}

func (b *ebitenBackend) UploadFrame(rgba []byte, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameW != width || b.frameH != height {
		b.buf = make([]byte, width*height*4)
		b.frameW, b.frameH = width, height
	}
	copy(b.buf, rgba)
	return nil
}

func (b *ebitenBackend) Present() error { return nil }

// Update implements ebiten.Game.
func (b *ebitenBackend) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (b *ebitenBackend) Draw(screen *ebiten.Image) {
	b.mu.Lock()
	if b.frame == nil && b.frameW > 0 && b.frameH > 0 {
		b.frame = ebiten.NewImage(b.frameW, b.frameH)
	}
	if b.frame != nil && len(b.buf) == b.frameW*b.frameH*4 {
		b.frame.WritePixels(b.buf)
	}
	frame := b.frame
	b.mu.Unlock()

	if frame != nil {
		screen.DrawImage(frame, nil)
	}
	b.startedOnce.Do(func() { close(b.started) })
}

// Layout implements ebiten.Game.
func (b *ebitenBackend) Layout(outsideWidth, outsideHeight int) (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.frameW > 0 && b.frameH > 0 {
		return b.frameW, b.frameH
	}
	return b.width, b.height
}
