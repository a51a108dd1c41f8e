//go:build headless

package arcanee

type OtoPlayer struct {
	started bool
	render  func(out [][2]float32)
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(render func(out [][2]float32)) {
	op.render = render
}

func (op *OtoPlayer) Read(p []byte) (int, error) {
	return len(p), nil
}

func (op *OtoPlayer) Start() {
	op.started = true
}

func (op *OtoPlayer) Stop() {
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.started = false
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}
