//go:build headless

// platform_headless.go - no-window backend for tests and CI

package arcanee

import "sync"

// headlessBackend satisfies platformBackend without opening a real window,
// grounded on the teacher's headless audio backend convention
// (audio_backend_headless.go): same shape, inert implementation.
type headlessBackend struct {
	mu         sync.RWMutex
	width      int
	height     int
	fullscreen bool
}

func newPlatformBackend() platformBackend {
	return &headlessBackend{width: 640, height: 480}
}

func (b *headlessBackend) Start(cfg WindowConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = cfg.Width, cfg.Height
	b.fullscreen = cfg.Fullscreen
	return nil
}

func (b *headlessBackend) Stop() error { return nil }

func (b *headlessBackend) PumpEvents() error { return nil }

func (b *headlessBackend) DrawableSize() (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width, b.height
}

func (b *headlessBackend) SetFullscreen(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fullscreen = enabled
}

func (b *headlessBackend) UploadFrame(rgba []byte, width, height int) error { return nil }

func (b *headlessBackend) Present() error { return nil }
