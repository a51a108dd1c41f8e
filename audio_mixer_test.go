//go:build headless

package arcanee

import (
	"math"
	"testing"
)

func constantSound(l, r float32, frames int) *SoundAsset {
	fr := make([][2]float32, frames)
	for i := range fr {
		fr[i] = [2]float32{l, r}
	}
	return &SoundAsset{SampleRate: 48000, Frames: fr}
}

func TestMixerPlaySoundRendersIntoBuffer(t *testing.T) {
	m := NewAudioMixer(4, 48000)
	m.ApplyCommand(AudioCommand{Kind: CmdPlaySound, Voice: 0, Vol: 1, Pan: 0, Pitch: 1, Asset: constantSound(0.5, 0.5, 1000)})

	out := make([][2]float32, 8)
	m.RenderBuffer(out)

	for i, f := range out {
		if f[0] <= 0 || f[1] <= 0 {
			t.Fatalf("frame %d: expected nonzero output from an active voice, got %v", i, f)
		}
	}
}

func TestMixerEqualPowerPanCentered(t *testing.T) {
	l, r := equalPowerPan(0)
	want := math.Sqrt2 / 2
	if math.Abs(l-want) > 1e-9 || math.Abs(r-want) > 1e-9 {
		t.Fatalf("expected centered pan to give equal ~0.7071 gains, got l=%v r=%v", l, r)
	}
}

func TestMixerEqualPowerPanHardLeftAndRight(t *testing.T) {
	l, r := equalPowerPan(-1)
	if math.Abs(l-1) > 1e-9 || r > 1e-9 {
		t.Fatalf("expected hard left to give l=1 r=0, got l=%v r=%v", l, r)
	}
	l, r = equalPowerPan(1)
	if l > 1e-9 || math.Abs(r-1) > 1e-9 {
		t.Fatalf("expected hard right to give l=0 r=1, got l=%v r=%v", l, r)
	}
}

func TestMixerVoiceDeactivatesAtSoundEndWithoutLoop(t *testing.T) {
	m := NewAudioMixer(1, 48000)
	m.ApplyCommand(AudioCommand{Kind: CmdPlaySound, Voice: 0, Vol: 1, Pitch: 1, Asset: constantSound(1, 1, 4), Loop: false})

	out := make([][2]float32, 10)
	m.RenderBuffer(out)

	if m.voices[0].active {
		t.Fatal("expected a non-looping voice to deactivate once it runs past its sample end")
	}
}

func TestMixerVoiceLoopsInsteadOfDeactivating(t *testing.T) {
	m := NewAudioMixer(1, 48000)
	m.ApplyCommand(AudioCommand{Kind: CmdPlaySound, Voice: 0, Vol: 1, Pitch: 1, Asset: constantSound(1, 1, 4), Loop: true})

	out := make([][2]float32, 10)
	m.RenderBuffer(out)

	if !m.voices[0].active {
		t.Fatal("expected a looping voice to remain active past its sample end")
	}
}

func TestMixerStopVoiceSilencesIt(t *testing.T) {
	m := NewAudioMixer(2, 48000)
	m.ApplyCommand(AudioCommand{Kind: CmdPlaySound, Voice: 0, Vol: 1, Pitch: 1, Asset: constantSound(1, 1, 1000)})
	m.ApplyCommand(AudioCommand{Kind: CmdStopVoice, Voice: 0})

	out := make([][2]float32, 4)
	m.RenderBuffer(out)

	for _, f := range out {
		if f[0] != 0 || f[1] != 0 {
			t.Fatalf("expected silence after stopping the only active voice, got %v", f)
		}
	}
}

func TestMixerMasterVolumeScalesOutput(t *testing.T) {
	m := NewAudioMixer(1, 48000)
	m.ApplyCommand(AudioCommand{Kind: CmdPlaySound, Voice: 0, Vol: 1, Pan: 0, Pitch: 1, Asset: constantSound(1, 1, 1000)})
	m.ApplyCommand(AudioCommand{Kind: CmdSetMasterVolume, Value: 0})

	out := make([][2]float32, 4)
	m.RenderBuffer(out)

	for _, f := range out {
		if f[0] != 0 || f[1] != 0 {
			t.Fatalf("expected zero master volume to silence all output, got %v", f)
		}
	}
}

func TestMixerClampsOutOfRangeSamples(t *testing.T) {
	if clampSample(2.5) != 1 {
		t.Fatal("expected positive overshoot to clamp to 1")
	}
	if clampSample(-2.5) != -1 {
		t.Fatal("expected negative overshoot to clamp to -1")
	}
	if clampSample(math.NaN()) != 0 {
		t.Fatal("expected NaN to sanitize to 0")
	}
	if clampSample(math.Inf(1)) != 0 {
		t.Fatal("expected +Inf to sanitize to 0")
	}
}

func TestMixerModulePlaybackLoops(t *testing.T) {
	m := NewAudioMixer(1, 48000)
	mod := &ModuleAsset{Sound: constantSound(0.25, 0.25, 4)}
	m.ApplyCommand(AudioCommand{Kind: CmdPlayModule, Loop: true, Asset: mod})

	out := make([][2]float32, 20)
	m.RenderBuffer(out)

	if !m.modulePlaying {
		t.Fatal("expected a looping module to remain playing past its length")
	}
	for i, f := range out {
		if f[0] <= 0 {
			t.Fatalf("frame %d: expected nonzero module output, got %v", i, f)
		}
	}
}

func TestMixerStopModuleSilencesIt(t *testing.T) {
	m := NewAudioMixer(1, 48000)
	mod := &ModuleAsset{Sound: constantSound(1, 1, 1000)}
	m.ApplyCommand(AudioCommand{Kind: CmdPlayModule, Loop: true, Asset: mod})
	m.ApplyCommand(AudioCommand{Kind: CmdStopModule})

	out := make([][2]float32, 4)
	m.RenderBuffer(out)

	for _, f := range out {
		if f[0] != 0 || f[1] != 0 {
			t.Fatalf("expected silence after stopping the module, got %v", f)
		}
	}
}

func TestMixerStopAllClearsVoicesAndModule(t *testing.T) {
	m := NewAudioMixer(2, 48000)
	m.ApplyCommand(AudioCommand{Kind: CmdPlaySound, Voice: 0, Vol: 1, Pitch: 1, Asset: constantSound(1, 1, 1000)})
	m.ApplyCommand(AudioCommand{Kind: CmdPlayModule, Loop: true, Asset: &ModuleAsset{Sound: constantSound(1, 1, 1000)}})
	m.ApplyCommand(AudioCommand{Kind: CmdStopAll})

	out := make([][2]float32, 4)
	m.RenderBuffer(out)

	for _, f := range out {
		if f[0] != 0 || f[1] != 0 {
			t.Fatalf("expected silence after StopAll, got %v", f)
		}
	}
}
