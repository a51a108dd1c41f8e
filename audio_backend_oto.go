//go:build !headless

// audio_backend_oto.go - oto v3 stereo float32 device output

package arcanee

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer drives an oto/v3 context whose Read callback is the audio
// device's own pull thread: exactly the "audio callback thread" the
// real-time discipline in §4.11 describes. render is called with no
// locks held and must not block.
type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	render  func(out [][2]float32)
	scratch [][2]float32
	started bool
	mutex   sync.Mutex // setup/control only, never held across render
}

// NewOtoPlayer opens a stereo float32 device context at sampleRate.
func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0, // let oto pick its platform default target buffer
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	return &OtoPlayer{ctx: ctx}, nil
}

// SetupPlayer wires render as the source of every device buffer and
// (re)creates the oto player bound to this instance's Read method.
func (op *OtoPlayer) SetupPlayer(render func(out [][2]float32)) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.render = render
	op.player = op.ctx.NewPlayer(op)
}

// Read implements io.Reader for oto: deinterleaves the requested byte
// count into stereo frames, asks render to fill them, then re-interleaves
// into little-endian float32 bytes.
func (op *OtoPlayer) Read(p []byte) (int, error) {
	const bytesPerFrame = 2 * 4 // stereo, float32
	numFrames := len(p) / bytesPerFrame
	if cap(op.scratch) < numFrames {
		op.scratch = make([][2]float32, numFrames)
	}
	frames := op.scratch[:numFrames]
	for i := range frames {
		frames[i] = [2]float32{}
	}
	if op.render != nil {
		op.render(frames)
	}
	for i, f := range frames {
		off := i * bytesPerFrame
		putFloat32LE(p[off:], f[0])
		putFloat32LE(p[off+4:], f[1])
	}
	return numFrames * bytesPerFrame, nil
}

func putFloat32LE(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
