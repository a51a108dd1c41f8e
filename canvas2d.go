// canvas2d.go - retained command buffer, state stack, CPU raster surface

package arcanee

import "fmt"

const (
	maxSurfaceDim        = 4096
	softPathSegmentLimit = 100_000
	hardPathSegmentLimit = 250_000
	maxSaveStackDepth    = 64
)

// Mat2D is the canvas-style affine transform [a b e; c d f; 0 0 1].
type Mat2D struct{ A, B, C, D, E, F float64 }

func identityMat2D() Mat2D { return Mat2D{A: 1, D: 1} }

// Apply transforms a point by this matrix.
func (m Mat2D) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Mul returns m composed with n such that (m.Mul(n)).Apply(p) == m.Apply(n.Apply(p)).
func (m Mat2D) Mul(n Mat2D) Mat2D {
	return Mat2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// BlendMode enumerates the required Porter-Duff/separable blend modes.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendAdd
)

// ParseBlendMode accepts the spec's named modes plus the srcOver alias,
// and rejects the non-separable modes that spec explicitly disallows
// (hue, saturation, color, luminosity, hardMix).
func ParseBlendMode(name string) (BlendMode, bool) {
	switch name {
	case "normal", "srcOver":
		return BlendNormal, true
	case "multiply":
		return BlendMultiply, true
	case "screen":
		return BlendScreen, true
	case "overlay":
		return BlendOverlay, true
	case "darken":
		return BlendDarken, true
	case "lighten":
		return BlendLighten, true
	case "colorDodge":
		return BlendColorDodge, true
	case "colorBurn":
		return BlendColorBurn, true
	case "hardLight":
		return BlendHardLight, true
	case "softLight":
		return BlendSoftLight, true
	case "difference":
		return BlendDifference, true
	case "exclusion":
		return BlendExclusion, true
	case "add":
		return BlendAdd, true
	default:
		return BlendNormal, false
	}
}

// LineJoin/LineCap/TextAlign/TextBaseline/SpreadMode are closed enums
// bound straight from the spec's named sets.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
	AlignStart
	AlignEnd
)

type TextBaseline int

const (
	BaselineTop TextBaseline = iota
	BaselineMiddle
	BaselineAlphabetic
	BaselineBottom
)

type SpreadMode int

const (
	SpreadPad SpreadMode = iota
	SpreadRepeat
	SpreadReflect
)

// GradientStop is one color stop in a linear/radial gradient.
type GradientStop struct {
	Offset float64
	Color  uint32 // ARGB, premultiplied at use
}

// PaintKind distinguishes a solid color from a gradient paint.
type PaintKind int

const (
	PaintSolid PaintKind = iota
	PaintLinearGradient
	PaintRadialGradient
)

// Paint is a fill/stroke source: either a solid color or a gradient.
type Paint struct {
	Kind   PaintKind
	Solid  uint32
	X0, Y0 float64
	X1, Y1 float64 // linear: two points; radial: center (X0,Y0) + radius X1
	Radius float64
	Stops  []GradientStop
	Spread SpreadMode
}

func solidPaint(c uint32) Paint { return Paint{Kind: PaintSolid, Solid: c} }

// StrokeStyle groups the stroke-only state fields.
type StrokeStyle struct {
	Width      float64
	Join       LineJoin
	Cap        LineCap
	MiterLimit float64
	Dash       []float64
}

func defaultStrokeStyle() StrokeStyle {
	return StrokeStyle{Width: 1, Join: JoinMiter, Cap: CapButt, MiterLimit: 10}
}

// CanvasState is one save/restore level of Canvas2D state.
type CanvasState struct {
	Transform    Mat2D
	GlobalAlpha  float64
	Blend        BlendMode
	Fill         Paint
	Stroke       Paint
	StrokeStyle  StrokeStyle
	Font         Handle
	TextAlign    TextAlign
	TextBaseline TextBaseline
	Clip         *ClipShape
}

func defaultCanvasState() CanvasState {
	return CanvasState{
		Transform:   identityMat2D(),
		GlobalAlpha: 1,
		Blend:       BlendNormal,
		Fill:        solidPaint(0xFFFFFFFF),
		Stroke:      solidPaint(0xFF000000),
		StrokeStyle: defaultStrokeStyle(),
	}
}

// ClipShape is an intersected device-space polygon clip. nil means no
// clip at this state level.
type ClipShape struct {
	Subpaths []Subpath
}

// RasterSurface is a CPU-side premultiplied RGBA pixel buffer, the
// execution target for the Canvas2D command buffer. Bytes are laid out
// row-major, 4 bytes per pixel (R,G,B,A), written with plain byte
// indexing.
type RasterSurface struct {
	Width, Height int
	Pix           []byte // len == Width*Height*4
}

func NewRasterSurface(w, h int) *RasterSurface {
	return &RasterSurface{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

func (s *RasterSurface) Clear() {
	for i := range s.Pix {
		s.Pix[i] = 0
	}
}

// Canvas2D owns the per-frame command buffer, the state stack, the
// in-progress scratch path, and the CPU raster surfaces bound as
// targets. gfx.* API bindings append to the command buffer and mutate
// path/state; the executor walks the buffer once draw() returns.
type Canvas2D struct {
	registry *ResourceRegistry

	commands       []Command
	state          CanvasState
	stack          []CanvasState
	path           PathBuilder
	pathSegCount   int
	pathSoftWarned bool

	cbuf         *RasterSurface // the console framebuffer target
	activeTarget *RasterSurface // nil means cbuf

	lastErr *LastErrorChannel
	logger  *Logger
}

// NewCanvas2D constructs an empty Canvas2D bound to a CBUF of the given
// console resolution.
func NewCanvas2D(registry *ResourceRegistry, cbufW, cbufH int, lastErr *LastErrorChannel, logger *Logger) *Canvas2D {
	return &Canvas2D{
		registry: registry,
		state:    defaultCanvasState(),
		cbuf:     NewRasterSurface(cbufW, cbufH),
		lastErr:  lastErr,
		logger:   logger,
	}
}

// BeginFrame clears the command buffer and resets state to default,
// called once per draw() invocation per spec ("cleared at the start of
// each draw invocation").
func (c *Canvas2D) BeginFrame() {
	c.commands = c.commands[:0]
	c.stack = c.stack[:0]
	c.state = defaultCanvasState()
	c.path = PathBuilder{}
	c.pathSegCount = 0
	c.pathSoftWarned = false
	c.activeTarget = nil
}

// Append records one command, enforcing the per-frame path-segment
// budget for path-growing commands (checked by the caller passing
// addedSegments > 0).
func (c *Canvas2D) Append(cmd Command, addedSegments int) bool {
	if addedSegments > 0 {
		if c.pathSegCount >= hardPathSegmentLimit {
			c.fail("gfx.path", CategoryQuotaExceeded, "hard path segment limit reached for this frame")
			return false
		}
		c.pathSegCount += addedSegments
		if c.pathSegCount >= softPathSegmentLimit && !c.pathSoftWarned {
			c.pathSoftWarned = true
			c.logger.Warn("path segment count exceeded soft limit (%d) this frame", softPathSegmentLimit)
		}
	}
	c.commands = append(c.commands, cmd)
	return true
}

func (c *Canvas2D) fail(op string, cat Category, cause string) {
	c.lastErr.Set(newErr(op, cat, cause))
}

// Save pushes an exact copy of the current state.
func (c *Canvas2D) Save() bool {
	if len(c.stack) >= maxSaveStackDepth {
		c.fail("gfx.save", CategoryQuotaExceeded, "save stack depth limit reached")
		return false
	}
	c.stack = append(c.stack, c.state)
	return true
}

// Restore pops the state stack; an empty stack is a safe no-op with
// last-error set, per spec.
func (c *Canvas2D) Restore() {
	if len(c.stack) == 0 {
		c.fail("gfx.restore", CategoryInvalidArgument, "restore on empty state stack")
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas2D) String() string {
	return fmt.Sprintf("Canvas2D{cbuf=%dx%d, commands=%d}", c.cbuf.Width, c.cbuf.Height, len(c.commands))
}
