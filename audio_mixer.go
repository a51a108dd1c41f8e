// audio_mixer.go - real-time buffer render: module playback, voice mixing, master volume

package arcanee

import "math"

// mixerVoice is one slot of the fixed-size voice pool.
type mixerVoice struct {
	active bool
	sound  *SoundAsset
	pos    float64 // fractional frame position into sound.Frames
	pitch  float64 // playback rate multiplier, 1.0 = native speed
	volume float64
	pan    float64 // -1 (left) .. 0 (center) .. 1 (right)
	loop   bool
}

// AudioMixer owns everything the audio callback thread touches: the fixed
// voice pool, the single active module slot, and the buffer-render
// algorithm from the spec's "Callback algorithm per buffer" paragraph.
// Every method here runs on the callback thread only; command queue
// commands are the only channel by which the main thread affects this
// state, per the real-time discipline in §4.11 (no locks, no allocation,
// no file I/O on the hot path).
type AudioMixer struct {
	voices     []mixerVoice
	sampleRate int

	module        *ModuleAsset
	modulePlaying bool
	modulePaused  bool
	moduleLoop    bool
	moduleFrame   float64
	moduleVolume  float64
	moduleTempo   float64

	masterVolume float64
}

// NewAudioMixer builds a mixer with numVoices voice slots at the given
// device sample rate.
func NewAudioMixer(numVoices, sampleRate int) *AudioMixer {
	return &AudioMixer{
		voices:       make([]mixerVoice, numVoices),
		sampleRate:   sampleRate,
		moduleVolume: 1,
		moduleTempo:  1,
		masterVolume: 1,
	}
}

// ApplyCommand mutates mixer state for one drained command. Step 2 of the
// per-buffer algorithm.
func (m *AudioMixer) ApplyCommand(cmd AudioCommand) {
	switch cmd.Kind {
	case CmdPlaySound:
		if cmd.Voice < 0 || cmd.Voice >= len(m.voices) {
			return
		}
		sound, _ := cmd.Asset.(*SoundAsset)
		pitch := cmd.Pitch
		if pitch == 0 {
			pitch = 1
		}
		m.voices[cmd.Voice] = mixerVoice{
			active: sound != nil,
			sound:  sound,
			pitch:  pitch,
			volume: cmd.Vol,
			pan:    cmd.Pan,
			loop:   cmd.Loop,
		}

	case CmdStopVoice:
		if cmd.Voice >= 0 && cmd.Voice < len(m.voices) {
			m.voices[cmd.Voice].active = false
		}

	case CmdSetVoiceVolume:
		if cmd.Voice >= 0 && cmd.Voice < len(m.voices) {
			m.voices[cmd.Voice].volume = cmd.Value
		}

	case CmdSetVoicePan:
		if cmd.Voice >= 0 && cmd.Voice < len(m.voices) {
			m.voices[cmd.Voice].pan = cmd.Value
		}

	case CmdSetVoicePitch:
		if cmd.Voice >= 0 && cmd.Voice < len(m.voices) {
			p := cmd.Value
			if p == 0 {
				p = 1
			}
			m.voices[cmd.Voice].pitch = p
		}

	case CmdPlayModule:
		asset, _ := cmd.Asset.(*ModuleAsset)
		m.module = asset
		m.moduleFrame = 0
		m.moduleLoop = cmd.Loop
		m.modulePlaying = asset != nil
		m.modulePaused = false

	case CmdStopModule:
		m.module = nil
		m.modulePlaying = false

	case CmdPauseModule:
		m.modulePaused = true

	case CmdResumeModule:
		m.modulePaused = false

	case CmdSetModuleVolume:
		m.moduleVolume = cmd.Value

	case CmdSetModuleTempo:
		t := cmd.Value
		if t == 0 {
			t = 1
		}
		m.moduleTempo = t

	case CmdSeekModule:
		if m.module != nil {
			m.moduleFrame = cmd.Value * float64(m.sampleRate)
		}

	case CmdSetMasterVolume:
		m.masterVolume = cmd.Value

	case CmdStopAll:
		m.module = nil
		m.modulePlaying = false
		for i := range m.voices {
			m.voices[i].active = false
		}
	}
}

// RenderBuffer fills out (stereo frames, zeroed by the caller) following
// the spec's fixed per-buffer order: module first, then voices, then
// master volume, then clamp/sanitize. queue.DrainInto is expected to have
// already been called by the caller immediately before this.
func (m *AudioMixer) RenderBuffer(out [][2]float32) {
	if m.modulePlaying && !m.modulePaused && m.module != nil && m.module.Sound != nil {
		m.renderModule(out)
	}
	for i := range m.voices {
		m.renderVoice(&m.voices[i], out)
	}
	for i := range out {
		l := float64(out[i][0]) * m.masterVolume
		r := float64(out[i][1]) * m.masterVolume
		out[i][0] = float32(clampSample(l))
		out[i][1] = float32(clampSample(r))
	}
}

func (m *AudioMixer) renderModule(out [][2]float32) {
	frames := m.module.Sound.Frames
	n := len(frames)
	if n == 0 {
		return
	}
	for i := range out {
		l, r := interpFrame(frames, m.moduleFrame)
		out[i][0] += float32(float64(l) * m.moduleVolume)
		out[i][1] += float32(float64(r) * m.moduleVolume)
		m.moduleFrame += m.moduleTempo
		if m.moduleFrame >= float64(n) {
			if m.moduleLoop {
				m.moduleFrame = math.Mod(m.moduleFrame, float64(n))
			} else {
				m.modulePlaying = false
				break
			}
		}
	}
}

func (m *AudioMixer) renderVoice(v *mixerVoice, out [][2]float32) {
	if !v.active || v.sound == nil {
		return
	}
	n := len(v.sound.Frames)
	if n == 0 {
		v.active = false
		return
	}
	lg, rg := equalPowerPan(v.pan)
	for i := range out {
		if v.pos >= float64(n) {
			if v.loop {
				v.pos = math.Mod(v.pos, float64(n))
			} else {
				v.active = false
				return
			}
		}
		l, r := interpFrame(v.sound.Frames, v.pos)
		out[i][0] += float32(float64(l) * v.volume * lg)
		out[i][1] += float32(float64(r) * v.volume * rg)
		v.pos += v.pitch
	}
}

// interpFrame linearly interpolates the stereo sample at a fractional
// frame position, per the spec's "linear interpolation over the voice's
// fractional position" requirement.
func interpFrame(frames [][2]float32, pos float64) (float32, float32) {
	n := len(frames)
	i0 := int(pos)
	if i0 >= n {
		i0 = n - 1
	}
	i1 := i0 + 1
	if i1 >= n {
		i1 = n - 1
	}
	frac := float32(pos - float64(i0))
	a, b := frames[i0], frames[i1]
	return a[0] + (b[0]-a[0])*frac, a[1] + (b[1]-a[1])*frac
}

// equalPowerPan maps pan in [-1,1] to a constant-power left/right gain
// pair so a centered voice doesn't dip in perceived loudness.
func equalPowerPan(pan float64) (float64, float64) {
	pan = clampFloat(pan, -1, 1)
	angle := (pan + 1) * 0.25 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}

// clampSample clamps to [-1,1] and sanitizes NaN/Inf to silence, the
// callback's final safety net per spec.
func clampSample(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
