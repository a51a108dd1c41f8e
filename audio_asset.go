// audio_asset.go - WAV/OGG decode, mono upmix, linear resample to device rate

package arcanee

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
)

// SoundAsset is a fully decoded, stereo, device-rate-resampled sample
// ready for the mixer's hot path: no further format conversion happens
// per-voice, only position interpolation.
type SoundAsset struct {
	SampleRate int
	Frames     [][2]float32 // one entry per output sample frame, left/right
}

func (a *SoundAsset) Len() int { return len(a.Frames) }

// ModuleAsset is a loopable background track. The spec names libopenmpt
// tracker-module playback; no tracker-decode library of any kind appears
// anywhere in the retrieved pack (no cgo libopenmpt binding, no pure-Go
// tracker reader), so module assets are loaded through the same decoded
// PCM path as sound effects — "module" becomes "the one background track
// slot that loops by default" rather than a multi-pattern sequencer. This
// keeps every other §4.11 invariant (single active module, stop-on-new)
// intact, with tempo scaling the PCM playback step and seek moving the
// playback position in seconds, while not fabricating a
// tracker format decoder this pack gives no grounding for.
type ModuleAsset struct {
	Sound *SoundAsset
}

// decodeSoundAsset dispatches on the file's magic bytes (WAV's "RIFF"
// versus OGG's "OggS") and resamples the decoded stereo stream to
// deviceRate.
func decodeSoundAsset(data []byte, deviceRate int, op string) (*SoundAsset, *CartridgeError) {
	var frames [][2]float32
	var srcRate int
	var err error

	switch {
	case len(data) >= 4 && string(data[0:4]) == "RIFF":
		frames, srcRate, err = decodeWAV(data)
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		frames, srcRate, err = decodeOggVorbis(data)
	default:
		return nil, newErr(op, CategoryAssetDecodeError, "unrecognized audio container (expected RIFF/WAV or OggS/Vorbis)")
	}
	if err != nil {
		return nil, newErr(op, CategoryAssetDecodeError, err.Error())
	}
	if srcRate != deviceRate && srcRate > 0 {
		frames = resampleLinear(frames, srcRate, deviceRate)
	}
	return &SoundAsset{SampleRate: deviceRate, Frames: frames}, nil
}

// decodeWAV reads PCM WAV data (8/16/32-bit int or IEEE float, mono or
// stereo) via go-audio/wav's full-buffer decode, then upmixes mono to
// stereo by duplication per spec.
func decodeWAV(data []byte) ([][2]float32, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav decode: %w", err)
	}
	fbuf := buf.AsFloatBuffer()
	chans := fbuf.Format.NumChannels
	if chans != 1 && chans != 2 {
		return nil, 0, fmt.Errorf("wav decode: unsupported channel count %d", chans)
	}
	n := len(fbuf.Data) / chans
	frames := make([][2]float32, n)
	for i := 0; i < n; i++ {
		if chans == 1 {
			s := float32(fbuf.Data[i])
			frames[i] = [2]float32{s, s}
		} else {
			frames[i] = [2]float32{float32(fbuf.Data[i*2]), float32(fbuf.Data[i*2+1])}
		}
	}
	return frames, fbuf.Format.SampleRate, nil
}

// decodeOggVorbis streams-decodes an Ogg Vorbis file via
// jfreymuth/oggvorbis, which already hands back interleaved float32
// samples at the file's native channel count and sample rate.
func decodeOggVorbis(data []byte) ([][2]float32, int, error) {
	r, err := oggvorbis.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("ogg vorbis decode: %w", err)
	}
	chans := r.Channels()
	if chans != 1 && chans != 2 {
		return nil, 0, fmt.Errorf("ogg vorbis decode: unsupported channel count %d", chans)
	}

	var pcm []float32
	buf := make([]float32, 4096*chans)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			pcm = append(pcm, buf[:n]...)
		}
		if rerr != nil {
			break
		}
	}

	frameCount := len(pcm) / chans
	frames := make([][2]float32, frameCount)
	for i := 0; i < frameCount; i++ {
		if chans == 1 {
			frames[i] = [2]float32{pcm[i], pcm[i]}
		} else {
			frames[i] = [2]float32{pcm[i*2], pcm[i*2+1]}
		}
	}
	return frames, r.SampleRate(), nil
}

// resampleLinear converts a stereo frame sequence from srcRate to
// dstRate by linear interpolation, the deterministic resampling method
// the spec names explicitly.
func resampleLinear(src [][2]float32, srcRate, dstRate int) [][2]float32 {
	if len(src) == 0 || srcRate <= 0 || dstRate <= 0 || srcRate == dstRate {
		return src
	}
	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(src)) / ratio)
	out := make([][2]float32, outLen)
	for i := range out {
		srcPos := float64(i) * ratio
		i0 := int(srcPos)
		frac := srcPos - float64(i0)
		i1 := i0 + 1
		if i1 >= len(src) {
			i1 = len(src) - 1
		}
		a, b := src[i0], src[i1]
		out[i] = [2]float32{
			float32((1-frac)*float64(a[0]) + frac*float64(b[0])),
			float32((1-frac)*float64(a[1]) + frac*float64(b[1])),
		}
	}
	return out
}
