// audio_core.go - main-thread Audio Core API: asset loading, voice
// allocation, and the command queue producer side

package arcanee

import "sync/atomic"

// audioVoiceShadow tracks, on the main thread only, an optimistic view of
// voice liveness used purely to decide allocation/steal targets. The
// callback thread's real mixerVoice array is the source of truth for
// rendering; this shadow may lag it by up to one buffer, which is within
// the bounded command-to-audible latency the spec already allows.
type audioVoiceShadow struct {
	active bool
	birth  uint64
}

// AudioCore is the engine's public audio surface: it owns asset decode,
// registry registration, voice allocation bookkeeping, and the command
// queue producer side. The consumer side (AudioMixer, run from the
// device callback) never touches this type or the registry.
type AudioCore struct {
	registry   *ResourceRegistry
	vfs        *VFS
	lastErr    *LastErrorChannel
	logger     *Logger
	queue      *AudioCommandQueue
	mixer      *AudioMixer
	player     *OtoPlayer
	sampleRate int

	shadow    []audioVoiceShadow
	birthNext atomic.Uint64
}

// DefaultAudioSampleRate is the device rate the spec documents as
// preferred; NewOtoPlayer opens the device context at exactly this rate
// and does not fall back to another one.
const DefaultAudioSampleRate = 48000

// NewAudioCore builds an Audio Core with numVoices voice slots at
// sampleRate, wiring a fresh command queue and mixer together and opening
// the device backend.
func NewAudioCore(registry *ResourceRegistry, vfs *VFS, lastErr *LastErrorChannel, logger *Logger, numVoices, sampleRate int) (*AudioCore, *CartridgeError) {
	if numVoices <= 0 {
		numVoices = 1
	}
	player, err := NewOtoPlayer(sampleRate)
	if err != nil {
		return nil, newErr("audio.start", CategoryAudioDeviceError, err.Error())
	}
	ac := &AudioCore{
		registry:   registry,
		vfs:        vfs,
		lastErr:    lastErr,
		logger:     logger,
		queue:      NewAudioCommandQueue(),
		mixer:      NewAudioMixer(numVoices, sampleRate),
		player:     player,
		sampleRate: sampleRate,
		shadow:     make([]audioVoiceShadow, numVoices),
	}
	player.SetupPlayer(ac.renderCallback)
	return ac, nil
}

// renderCallback is handed to the backend as its pull source: it drains
// the command queue into the mixer, then asks the mixer to render. This
// is the audio callback thread's entire body, per the spec's fixed
// six-step order (drain+apply is step 2, render is steps 3-6).
func (ac *AudioCore) renderCallback(out [][2]float32) {
	ac.queue.DrainInto(ac.mixer.ApplyCommand)
	ac.mixer.RenderBuffer(out)
}

// Start begins device playback.
func (ac *AudioCore) Start() { ac.player.Start() }

// Stop halts device playback and releases the backend.
func (ac *AudioCore) Stop() { ac.player.Close() }

// LoadSound decodes a WAV/OGG file from the VFS and registers it under
// ResourceSound, resampled to the device's sample rate.
func (ac *AudioCore) LoadSound(cartID, vfsPath string) (Handle, *CartridgeError) {
	data, verr := ac.vfs.ReadBytes(vfsPath)
	if verr != nil {
		return handleInvalid, verr
	}
	asset, derr := decodeSoundAsset(data, ac.sampleRate, "audio.loadSound")
	if derr != nil {
		return handleInvalid, derr
	}
	return ac.registry.Allocate(ResourceSound, cartID, asset)
}

// LoadModule decodes a WAV/OGG background track from the VFS and
// registers it under ResourceModule. See ModuleAsset's doc comment for
// the tracker-simplification this implements.
func (ac *AudioCore) LoadModule(cartID, vfsPath string) (Handle, *CartridgeError) {
	data, verr := ac.vfs.ReadBytes(vfsPath)
	if verr != nil {
		return handleInvalid, verr
	}
	asset, derr := decodeSoundAsset(data, ac.sampleRate, "audio.loadModule")
	if derr != nil {
		return handleInvalid, derr
	}
	return ac.registry.Allocate(ResourceModule, cartID, &ModuleAsset{Sound: asset})
}

// PlaySound allocates (or steals) a voice for sound and enqueues a
// CmdPlaySound. Returns the allocated voice index as a stable VoiceId.
func (ac *AudioCore) PlaySound(sound Handle, volume, pan, pitch float64, loop bool) (int, *CartridgeError) {
	payload, rerr := ac.registry.Resolve(sound, ResourceSound)
	if rerr != nil {
		return -1, rerr
	}
	asset, _ := payload.(*SoundAsset)
	voice := ac.allocateVoice()
	if !ac.queue.Push(AudioCommand{
		Kind:  CmdPlaySound,
		Voice: voice,
		Vol:   volume,
		Pan:   pan,
		Pitch: pitch,
		Loop:  loop,
		Asset: asset,
	}) {
		return -1, newErr("audio.playSound", CategoryAudioDeviceError, "command queue full")
	}
	return voice, nil
}

// allocateVoice returns the first free slot, or steals the slot with the
// smallest birth tick if every slot is active. Ties among equally-oldest
// voices break toward the lowest index, keeping allocation decisions
// deterministic and replay-stable.
func (ac *AudioCore) allocateVoice() int {
	for i := range ac.shadow {
		if !ac.shadow[i].active {
			return ac.markBorn(i)
		}
	}
	oldest := 0
	for i := 1; i < len(ac.shadow); i++ {
		if ac.shadow[i].birth < ac.shadow[oldest].birth {
			oldest = i
		}
	}
	return ac.markBorn(oldest)
}

func (ac *AudioCore) markBorn(i int) int {
	ac.shadow[i] = audioVoiceShadow{active: true, birth: ac.birthNext.Add(1)}
	return i
}

// StopVoice stops voice immediately.
func (ac *AudioCore) StopVoice(voice int) *CartridgeError {
	if voice < 0 || voice >= len(ac.shadow) {
		return newErr("audio.stopVoice", CategoryInvalidArgument, "voice index out of range")
	}
	ac.shadow[voice].active = false
	ac.push(AudioCommand{Kind: CmdStopVoice, Voice: voice})
	return nil
}

func (ac *AudioCore) SetVoiceVolume(voice int, v float64) *CartridgeError {
	return ac.pushVoiceParam(CmdSetVoiceVolume, voice, v)
}

func (ac *AudioCore) SetVoicePan(voice int, v float64) *CartridgeError {
	return ac.pushVoiceParam(CmdSetVoicePan, voice, v)
}

func (ac *AudioCore) SetVoicePitch(voice int, v float64) *CartridgeError {
	return ac.pushVoiceParam(CmdSetVoicePitch, voice, v)
}

func (ac *AudioCore) pushVoiceParam(kind AudioCommandKind, voice int, v float64) *CartridgeError {
	if voice < 0 || voice >= len(ac.shadow) {
		return newErr("audio.setVoiceParam", CategoryInvalidArgument, "voice index out of range")
	}
	return ac.push(AudioCommand{Kind: kind, Voice: voice, Value: v})
}

// PlayModule resolves module and enqueues a CmdPlayModule, stopping
// whatever module is currently active per the spec's single-module rule.
func (ac *AudioCore) PlayModule(module Handle, loop bool) *CartridgeError {
	payload, rerr := ac.registry.Resolve(module, ResourceModule)
	if rerr != nil {
		return rerr
	}
	asset, _ := payload.(*ModuleAsset)
	return ac.push(AudioCommand{Kind: CmdPlayModule, Loop: loop, Asset: asset})
}

func (ac *AudioCore) StopModule() *CartridgeError   { return ac.push(AudioCommand{Kind: CmdStopModule}) }
func (ac *AudioCore) PauseModule() *CartridgeError  { return ac.push(AudioCommand{Kind: CmdPauseModule}) }
func (ac *AudioCore) ResumeModule() *CartridgeError { return ac.push(AudioCommand{Kind: CmdResumeModule}) }

func (ac *AudioCore) SetModuleVolume(v float64) *CartridgeError {
	return ac.push(AudioCommand{Kind: CmdSetModuleVolume, Value: v})
}

func (ac *AudioCore) SetModuleTempo(factor float64) *CartridgeError {
	return ac.push(AudioCommand{Kind: CmdSetModuleTempo, Value: factor})
}

func (ac *AudioCore) SeekModule(seconds float64) *CartridgeError {
	return ac.push(AudioCommand{Kind: CmdSeekModule, Value: seconds})
}

func (ac *AudioCore) SetMasterVolume(v float64) *CartridgeError {
	return ac.push(AudioCommand{Kind: CmdSetMasterVolume, Value: v})
}

// StopAll stops every voice and the active module, clearing the shadow
// allocation table too.
func (ac *AudioCore) StopAll() *CartridgeError {
	for i := range ac.shadow {
		ac.shadow[i].active = false
	}
	return ac.push(AudioCommand{Kind: CmdStopAll})
}

func (ac *AudioCore) push(cmd AudioCommand) *CartridgeError {
	if !ac.queue.Push(cmd) {
		err := newErr("audio.command", CategoryAudioDeviceError, "command queue full")
		ac.lastErr.Set(err)
		return err
	}
	return nil
}
