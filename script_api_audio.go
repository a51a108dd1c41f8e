// script_api_audio.go - audio.* namespace bindings over Audio Core

package arcanee

import (
	lua "github.com/yuin/gopher-lua"
)

// RegisterAudioAPI binds the audio namespace: asset loading, one-shot
// voice playback, module playback, and master volume, all forwarded to
// the cartridge's AudioCore. Every call here runs on the main thread and
// only ever touches the command queue's producer side.
func RegisterAudioAPI(vm *lua.LState, c *apiContext) {
	ac := c.audio

	register(vm, "audio", "loadSound", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.loadSound", 1) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		path, ok := checkString(ls, c, "audio.loadSound", 0)
		if !ok {
			ls.Push(lua.LNumber(0))
			return 1
		}
		h, err := ac.LoadSound(c.cartID, path)
		if err != nil {
			c.fail("audio.loadSound", err.Category, err.Cause)
			ls.Push(lua.LNumber(0))
			return 1
		}
		pushHandle(ls, h)
		return 1
	})

	register(vm, "audio", "loadModule", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.loadModule", 1) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		path, ok := checkString(ls, c, "audio.loadModule", 0)
		if !ok {
			ls.Push(lua.LNumber(0))
			return 1
		}
		h, err := ac.LoadModule(c.cartID, path)
		if err != nil {
			c.fail("audio.loadModule", err.Category, err.Cause)
			ls.Push(lua.LNumber(0))
			return 1
		}
		pushHandle(ls, h)
		return 1
	})

	register(vm, "audio", "playSound", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.playSound", 5) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		if _, ok := checkHandle(ls, c, "audio.playSound", 0, ResourceSound); !ok {
			ls.Push(lua.LNumber(0))
			return 1
		}
		soundNum, _ := checkNumber(ls, c, "audio.playSound", 0)
		volume, ok1 := checkNumber(ls, c, "audio.playSound", 1)
		pan, ok2 := checkNumberRange(ls, c, "audio.playSound", 2, -1, 1)
		pitch, ok3 := checkNumber(ls, c, "audio.playSound", 3)
		loop, ok4 := checkBool(ls, c, "audio.playSound", 4)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			ls.Push(lua.LNumber(0))
			return 1
		}
		voice, err := ac.PlaySound(Handle(uint64(soundNum)), volume, pan, pitch, loop)
		if err != nil {
			c.fail("audio.playSound", err.Category, err.Cause)
			ls.Push(lua.LNumber(0))
			return 1
		}
		ls.Push(lua.LNumber(voice))
		return 1
	})

	register(vm, "audio", "stopVoice", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.stopVoice", 1) {
			return 0
		}
		voice, ok := checkNumber(ls, c, "audio.stopVoice", 0)
		if !ok {
			return 0
		}
		if err := ac.StopVoice(int(voice)); err != nil {
			c.fail("audio.stopVoice", err.Category, err.Cause)
		}
		return 0
	})

	registerVoiceParam(vm, c, ac, "setVoiceVolume", ac.SetVoiceVolume)
	registerVoiceParam(vm, c, ac, "setVoicePan", ac.SetVoicePan)
	registerVoiceParam(vm, c, ac, "setVoicePitch", ac.SetVoicePitch)

	register(vm, "audio", "playModule", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.playModule", 2) {
			return 0
		}
		if _, ok := checkHandle(ls, c, "audio.playModule", 0, ResourceModule); !ok {
			return 0
		}
		moduleNum, _ := checkNumber(ls, c, "audio.playModule", 0)
		loop, ok := checkBool(ls, c, "audio.playModule", 1)
		if !ok {
			return 0
		}
		if err := ac.PlayModule(Handle(uint64(moduleNum)), loop); err != nil {
			c.fail("audio.playModule", err.Category, err.Cause)
		}
		return 0
	})

	register(vm, "audio", "stopModule", func(ls *lua.LState) int {
		if err := ac.StopModule(); err != nil {
			c.fail("audio.stopModule", err.Category, err.Cause)
		}
		return 0
	})
	register(vm, "audio", "pauseModule", func(ls *lua.LState) int {
		if err := ac.PauseModule(); err != nil {
			c.fail("audio.pauseModule", err.Category, err.Cause)
		}
		return 0
	})
	register(vm, "audio", "resumeModule", func(ls *lua.LState) int {
		if err := ac.ResumeModule(); err != nil {
			c.fail("audio.resumeModule", err.Category, err.Cause)
		}
		return 0
	})

	register(vm, "audio", "setModuleVolume", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.setModuleVolume", 1) {
			return 0
		}
		v, ok := checkNumber(ls, c, "audio.setModuleVolume", 0)
		if !ok {
			return 0
		}
		if err := ac.SetModuleVolume(v); err != nil {
			c.fail("audio.setModuleVolume", err.Category, err.Cause)
		}
		return 0
	})
	register(vm, "audio", "setModuleTempo", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.setModuleTempo", 1) {
			return 0
		}
		factor, ok := checkNumber(ls, c, "audio.setModuleTempo", 0)
		if !ok {
			return 0
		}
		if err := ac.SetModuleTempo(factor); err != nil {
			c.fail("audio.setModuleTempo", err.Category, err.Cause)
		}
		return 0
	})
	register(vm, "audio", "seekModule", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.seekModule", 1) {
			return 0
		}
		seconds, ok := checkNumber(ls, c, "audio.seekModule", 0)
		if !ok {
			return 0
		}
		if err := ac.SeekModule(seconds); err != nil {
			c.fail("audio.seekModule", err.Category, err.Cause)
		}
		return 0
	})

	register(vm, "audio", "setMasterVolume", func(ls *lua.LState) int {
		if !checkArity(ls, c, "audio.setMasterVolume", 1) {
			return 0
		}
		v, ok := checkNumber(ls, c, "audio.setMasterVolume", 0)
		if !ok {
			return 0
		}
		if err := ac.SetMasterVolume(v); err != nil {
			c.fail("audio.setMasterVolume", err.Category, err.Cause)
		}
		return 0
	})
	register(vm, "audio", "stopAll", func(ls *lua.LState) int {
		if err := ac.StopAll(); err != nil {
			c.fail("audio.stopAll", err.Category, err.Cause)
		}
		return 0
	})
}

// registerVoiceParam binds one of the three identically-shaped
// setVoice{Volume,Pan,Pitch}(voice, value) calls.
func registerVoiceParam(vm *lua.LState, c *apiContext, ac *AudioCore, name string, apply func(voice int, v float64) *CartridgeError) {
	op := "audio." + name
	register(vm, "audio", name, func(ls *lua.LState) int {
		if !checkArity(ls, c, op, 2) {
			return 0
		}
		voice, ok1 := checkNumber(ls, c, op, 0)
		v, ok2 := checkNumber(ls, c, op, 1)
		if !ok1 || !ok2 {
			return 0
		}
		if err := apply(int(voice), v); err != nil {
			c.fail(op, err.Category, err.Cause)
		}
		return 0
	})
}
