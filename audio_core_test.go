//go:build headless

package arcanee

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestAudioCore(t *testing.T) (*AudioCore, *VFS, *ResourceRegistry) {
	t.Helper()
	vfs, cartDir := newTestVFS(t, true)
	if err := os.WriteFile(filepath.Join(cartDir, "blip.wav"), minimalMonoWAV, 0o644); err != nil {
		t.Fatal(err)
	}
	registry := NewResourceRegistry(testPolicy(), nil)
	ac, cerr := NewAudioCore(registry, vfs, &LastErrorChannel{}, NewLogger(), 4, 48000)
	if cerr != nil {
		t.Fatalf("unexpected error constructing audio core: %v", cerr)
	}
	return ac, vfs, registry
}

func TestAudioCoreLoadSoundDecodesAndRegisters(t *testing.T) {
	ac, _, registry := newTestAudioCore(t)
	h, err := ac.LoadSound("cart-a", "cart:/blip.wav")
	if err != nil {
		t.Fatalf("unexpected error loading sound: %v", err)
	}
	payload, rerr := registry.Resolve(h, ResourceSound)
	if rerr != nil {
		t.Fatalf("unexpected error resolving handle: %v", rerr)
	}
	if _, ok := payload.(*SoundAsset); !ok {
		t.Fatalf("expected *SoundAsset payload, got %T", payload)
	}
}

func TestAudioCorePlaySoundAllocatesDistinctVoices(t *testing.T) {
	ac, _, _ := newTestAudioCore(t)
	h, err := ac.LoadSound("cart-a", "cart:/blip.wav")
	if err != nil {
		t.Fatalf("unexpected error loading sound: %v", err)
	}
	v1, perr := ac.PlaySound(h, 1, 0, 1, false)
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	v2, perr := ac.PlaySound(h, 1, 0, 1, false)
	if perr != nil {
		t.Fatalf("unexpected error: %v", perr)
	}
	if v1 == v2 {
		t.Fatalf("expected two live PlaySound calls to land on distinct voices, got %d and %d", v1, v2)
	}
}

func TestAudioCorePlaySoundStealsOldestVoiceWhenPoolExhausted(t *testing.T) {
	ac, _, _ := newTestAudioCore(t)
	h, err := ac.LoadSound("cart-a", "cart:/blip.wav")
	if err != nil {
		t.Fatalf("unexpected error loading sound: %v", err)
	}
	var first int
	for i := 0; i < 4; i++ {
		v, perr := ac.PlaySound(h, 1, 0, 1, false)
		if perr != nil {
			t.Fatalf("unexpected error allocating voice %d: %v", i, perr)
		}
		if i == 0 {
			first = v
		}
	}
	// pool (size 4) is now fully active; the next PlaySound must steal the
	// oldest (first-allocated) voice rather than failing.
	stolen, perr := ac.PlaySound(h, 1, 0, 1, false)
	if perr != nil {
		t.Fatalf("unexpected error stealing a voice: %v", perr)
	}
	if stolen != first {
		t.Fatalf("expected the oldest voice (%d) to be stolen, got %d", first, stolen)
	}
}

func TestAudioCoreStopVoiceMarksShadowInactive(t *testing.T) {
	ac, _, _ := newTestAudioCore(t)
	h, _ := ac.LoadSound("cart-a", "cart:/blip.wav")
	v, _ := ac.PlaySound(h, 1, 0, 1, false)
	if err := ac.StopVoice(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ac.shadow[v].active {
		t.Fatal("expected StopVoice to mark the shadow slot inactive immediately")
	}
}

func TestAudioCoreRenderCallbackAppliesQueuedCommands(t *testing.T) {
	ac, _, _ := newTestAudioCore(t)
	h, _ := ac.LoadSound("cart-a", "cart:/blip.wav")
	if _, err := ac.PlaySound(h, 1, 0, 1, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := make([][2]float32, 8)
	ac.renderCallback(out)
	nonzero := false
	for _, f := range out {
		if f[0] != 0 || f[1] != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Fatal("expected the render callback to drain the queued PlaySound and produce audible output")
	}
}

func TestAudioCoreLoadModuleRegistersUnderResourceModule(t *testing.T) {
	ac, _, registry := newTestAudioCore(t)
	h, err := ac.LoadModule("cart-a", "cart:/blip.wav")
	if err != nil {
		t.Fatalf("unexpected error loading module: %v", err)
	}
	payload, rerr := registry.Resolve(h, ResourceModule)
	if rerr != nil {
		t.Fatalf("unexpected error resolving module handle: %v", rerr)
	}
	if _, ok := payload.(*ModuleAsset); !ok {
		t.Fatalf("expected *ModuleAsset payload, got %T", payload)
	}
}

func TestAudioCoreStopAllClearsShadowVoices(t *testing.T) {
	ac, _, _ := newTestAudioCore(t)
	h, _ := ac.LoadSound("cart-a", "cart:/blip.wav")
	ac.PlaySound(h, 1, 0, 1, false)
	ac.PlaySound(h, 1, 0, 1, false)
	if err := ac.StopAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range ac.shadow {
		if s.active {
			t.Fatalf("expected StopAll to clear every shadow slot, slot %d still active", i)
		}
	}
}
