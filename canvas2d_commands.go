// canvas2d_commands.go - deferred draw commands recorded during draw(), replayed by the executor

package arcanee

// CommandKind tags which rasterization primitive a Command replays.
type CommandKind int

const (
	CmdFill CommandKind = iota
	CmdStroke
	CmdFillText
	CmdStrokeText
	CmdDrawImage
	CmdClearRect
)

// Command is one deferred rasterization op: a snapshot of everything
// the executor needs, taken at record time so later state mutations
// (another save/restore, a transform change) cannot retroactively alter
// an already-recorded draw.
type Command struct {
	Kind   CommandKind
	Target *RasterSurface

	Subpaths []Subpath // Fill/Stroke/ClearRect (ClearRect synthesizes a rect subpath)

	Paint       Paint
	StrokeStyle StrokeStyle
	GlobalAlpha float64
	Blend       BlendMode
	Clip        *ClipShape

	// Text-only fields.
	Text     string
	TextX    float64
	TextY    float64
	Font     Handle
	Align    TextAlign
	Baseline TextBaseline
	MaxWidth float64 // 0 means unset

	// Image-only fields.
	Image                  Handle
	SrcX, SrcY, SrcW, SrcH float64
	DstX, DstY, DstW, DstH float64
}

func (c *Canvas2D) target() *RasterSurface {
	if c.activeTarget != nil {
		return c.activeTarget
	}
	return c.cbuf
}

// Fill rasterizes the current path with the active fill paint.
func (c *Canvas2D) Fill() {
	if len(c.path.Subpaths()) == 0 {
		return
	}
	c.Append(Command{
		Kind:        CmdFill,
		Target:      c.target(),
		Subpaths:    append([]Subpath(nil), c.path.Subpaths()...),
		Paint:       c.state.Fill,
		GlobalAlpha: c.state.GlobalAlpha,
		Blend:       c.state.Blend,
		Clip:        c.state.Clip,
	}, 0)
}

// Stroke rasterizes the current path's outline with the active stroke
// paint and stroke style.
func (c *Canvas2D) Stroke() {
	if len(c.path.Subpaths()) == 0 {
		return
	}
	c.Append(Command{
		Kind:        CmdStroke,
		Target:      c.target(),
		Subpaths:    append([]Subpath(nil), c.path.Subpaths()...),
		Paint:       c.state.Stroke,
		StrokeStyle: c.state.StrokeStyle,
		GlobalAlpha: c.state.GlobalAlpha,
		Blend:       c.state.Blend,
		Clip:        c.state.Clip,
	}, 0)
}

// ClearRect clears device-space rect (x,y,w,h) on the active target to
// fully transparent, ignoring blend mode (a hard reset, like HTML5
// Canvas's clearRect).
func (c *Canvas2D) ClearRect(x, y, w, h float64) {
	if w < 0 || h < 0 {
		return
	}
	var pb PathBuilder
	pb.Rect(x, y, w, h)
	c.Append(Command{
		Kind:     CmdClearRect,
		Target:   c.target(),
		Subpaths: pb.Subpaths(),
	}, 0)
}

// FillText/StrokeText record a text draw at device-space (x,y) using
// the currently bound font. A no-op (per spec) if no font is bound.
func (c *Canvas2D) FillText(text string, x, y, maxWidth float64) {
	if c.state.Font == handleInvalid {
		c.fail("gfx.fillText", CategoryInvalidArgument, "no font bound")
		return
	}
	c.Append(Command{
		Kind: CmdFillText, Target: c.target(), Text: text, TextX: x, TextY: y,
		Font: c.state.Font, Align: c.state.TextAlign, Baseline: c.state.TextBaseline,
		Paint: c.state.Fill, GlobalAlpha: c.state.GlobalAlpha, Blend: c.state.Blend,
		Clip: c.state.Clip, MaxWidth: maxWidth,
	}, 0)
}

func (c *Canvas2D) StrokeText(text string, x, y, maxWidth float64) {
	if c.state.Font == handleInvalid {
		c.fail("gfx.strokeText", CategoryInvalidArgument, "no font bound")
		return
	}
	c.Append(Command{
		Kind: CmdStrokeText, Target: c.target(), Text: text, TextX: x, TextY: y,
		Font: c.state.Font, Align: c.state.TextAlign, Baseline: c.state.TextBaseline,
		Paint: c.state.Stroke, GlobalAlpha: c.state.GlobalAlpha, Blend: c.state.Blend,
		Clip: c.state.Clip, MaxWidth: maxWidth,
	}, 0)
}

// DrawImage records a textured-quad blit from a texture/surface handle's
// source rect to a device-space destination rect.
func (c *Canvas2D) DrawImage(img Handle, sx, sy, sw, sh, dx, dy, dw, dh float64) {
	c.Append(Command{
		Kind: CmdDrawImage, Target: c.target(), Image: img,
		SrcX: sx, SrcY: sy, SrcW: sw, SrcH: sh,
		DstX: dx, DstY: dy, DstW: dw, DstH: dh,
		GlobalAlpha: c.state.GlobalAlpha, Blend: c.state.Blend, Clip: c.state.Clip,
	}, 0)
}
