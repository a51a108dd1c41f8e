//go:build headless

package arcanee

import "testing"

// minimalMonoWAV is a hand-verified 8kHz, 16-bit, mono PCM WAV containing
// four samples: 1000, 2000, 3000, 4000.
var minimalMonoWAV = []byte{
	0x52, 0x49, 0x46, 0x46, 0x2c, 0x00, 0x00, 0x00, 0x57, 0x41, 0x56, 0x45, 0x66, 0x6d, 0x74, 0x20,
	0x10, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x40, 0x1f, 0x00, 0x00, 0x80, 0x3e, 0x00, 0x00,
	0x02, 0x00, 0x10, 0x00, 0x64, 0x61, 0x74, 0x61, 0x08, 0x00, 0x00, 0x00,
	0xe8, 0x03, 0xd0, 0x07, 0xb8, 0x0b, 0xa0, 0x0f,
}

func TestDecodeWAVUpmixesMonoToStereo(t *testing.T) {
	frames, rate, err := decodeWAV(minimalMonoWAV)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if rate != 8000 {
		t.Fatalf("expected sample rate 8000, got %d", rate)
	}
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f[0] != f[1] {
			t.Fatalf("frame %d: expected mono upmix to duplicate into both channels, got %v", i, f)
		}
	}
	// Source samples are 1000, 2000, 3000, 4000: each should scale up
	// proportionally regardless of the decoder's normalization convention.
	if frames[0][0] == 0 || frames[3][0] != frames[0][0]*4 {
		t.Fatalf("expected decoded samples to stay proportional to the source PCM values, got %v", frames)
	}
}

func TestDecodeSoundAssetDispatchesOnMagicBytes(t *testing.T) {
	asset, cerr := decodeSoundAsset(minimalMonoWAV, 8000, "test.decode")
	if cerr != nil {
		t.Fatalf("unexpected error: %v", cerr)
	}
	if asset.Len() != 4 {
		t.Fatalf("expected 4 decoded frames, got %d", asset.Len())
	}
}

func TestDecodeSoundAssetRejectsUnknownContainer(t *testing.T) {
	_, cerr := decodeSoundAsset([]byte("not an audio file"), 48000, "test.decode")
	if cerr == nil || cerr.Category != CategoryAssetDecodeError {
		t.Fatalf("expected CategoryAssetDecodeError for an unrecognized container, got %+v", cerr)
	}
}

func TestDecodeSoundAssetResamplesToDeviceRate(t *testing.T) {
	asset, cerr := decodeSoundAsset(minimalMonoWAV, 16000, "test.decode")
	if cerr != nil {
		t.Fatalf("unexpected error: %v", cerr)
	}
	// source is 8kHz/4 frames; resampling to 16kHz should roughly double the frame count.
	if asset.Len() < 7 || asset.Len() > 9 {
		t.Fatalf("expected resampled frame count near 8, got %d", asset.Len())
	}
	if asset.SampleRate != 16000 {
		t.Fatalf("expected asset sample rate to record the device rate, got %d", asset.SampleRate)
	}
}

func TestResampleLinearNoopWhenRatesMatch(t *testing.T) {
	src := [][2]float32{{1, 1}, {2, 2}}
	out := resampleLinear(src, 48000, 48000)
	if len(out) != 2 || out[0] != src[0] || out[1] != src[1] {
		t.Fatal("expected resampleLinear to pass through unchanged when rates match")
	}
}

func TestResampleLinearUpsamplesLengthProportionally(t *testing.T) {
	src := make([][2]float32, 100)
	for i := range src {
		src[i] = [2]float32{float32(i), float32(i)}
	}
	out := resampleLinear(src, 8000, 16000)
	if out == nil || len(out) < 195 || len(out) > 205 {
		t.Fatalf("expected ~200 frames after doubling sample rate, got %d", len(out))
	}
}
