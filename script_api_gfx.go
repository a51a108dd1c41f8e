// script_api_gfx.go - gfx.* namespace bindings over Canvas2D

package arcanee

import (
	"math"

	lua "github.com/yuin/gopher-lua"
)

func sincos(a float64) (float64, float64) { return math.Sin(a), math.Cos(a) }

// scaleMagnitude estimates the transform's uniform scale factor from the
// length of its transformed x-axis unit vector, used to scale a circular
// arc's radius under the current transform.
func scaleMagnitude(m Mat2D) float64 {
	return math.Hypot(m.A, m.B)
}

// transformPoint applies the current state's transform to a script-space
// coordinate pair, producing the device-space point PathBuilder expects.
// Style and clip mutations apply immediately; only the four rasterization
// ops (fill/stroke/text/image) are deferred into the command buffer.
func transformPoint(cv *Canvas2D, x, y float64) (float64, float64) {
	return cv.state.Transform.Apply(x, y)
}

// RegisterGfxAPI binds the gfx namespace: state stack, transform, path
// construction, fill/stroke, clipping, text, and image/surface ops.
func RegisterGfxAPI(vm *lua.LState, c *apiContext) {
	cv := c.canvas

	register(vm, "gfx", "save", func(ls *lua.LState) int {
		ls.Push(lua.LBool(cv.Save()))
		return 1
	})
	register(vm, "gfx", "restore", func(ls *lua.LState) int {
		cv.Restore()
		return 0
	})

	register(vm, "gfx", "setTransform", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setTransform", 6) {
			return 0
		}
		vals, ok := checkNumbers(ls, c, "gfx.setTransform", 6)
		if !ok {
			return 0
		}
		cv.state.Transform = Mat2D{A: vals[0], B: vals[1], C: vals[2], D: vals[3], E: vals[4], F: vals[5]}
		return 0
	})
	register(vm, "gfx", "resetTransform", func(ls *lua.LState) int {
		cv.state.Transform = identityMat2D()
		return 0
	})
	register(vm, "gfx", "translate", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.translate", 2) {
			return 0
		}
		x, ok1 := checkNumber(ls, c, "gfx.translate", 0)
		y, ok2 := checkNumber(ls, c, "gfx.translate", 1)
		if !ok1 || !ok2 {
			return 0
		}
		cv.state.Transform = cv.state.Transform.Mul(Mat2D{A: 1, D: 1, E: x, F: y})
		return 0
	})
	register(vm, "gfx", "scale", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.scale", 2) {
			return 0
		}
		sx, ok1 := checkNumber(ls, c, "gfx.scale", 0)
		sy, ok2 := checkNumber(ls, c, "gfx.scale", 1)
		if !ok1 || !ok2 {
			return 0
		}
		cv.state.Transform = cv.state.Transform.Mul(Mat2D{A: sx, D: sy})
		return 0
	})
	register(vm, "gfx", "rotate", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.rotate", 1) {
			return 0
		}
		a, ok := checkNumber(ls, c, "gfx.rotate", 0)
		if !ok {
			return 0
		}
		sinA, cosA := sincos(a)
		cv.state.Transform = cv.state.Transform.Mul(Mat2D{A: cosA, B: sinA, C: -sinA, D: cosA})
		return 0
	})

	register(vm, "gfx", "beginPath", func(ls *lua.LState) int {
		cv.path.Reset()
		return 0
	})
	register(vm, "gfx", "moveTo", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.moveTo", 2) {
			return 0
		}
		x, ok1 := checkNumber(ls, c, "gfx.moveTo", 0)
		y, ok2 := checkNumber(ls, c, "gfx.moveTo", 1)
		if !ok1 || !ok2 {
			return 0
		}
		dx, dy := transformPoint(cv, x, y)
		chargePathBudget(cv, c, "gfx.moveTo", cv.path.MoveTo(dx, dy))
		return 0
	})
	register(vm, "gfx", "lineTo", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.lineTo", 2) {
			return 0
		}
		x, ok1 := checkNumber(ls, c, "gfx.lineTo", 0)
		y, ok2 := checkNumber(ls, c, "gfx.lineTo", 1)
		if !ok1 || !ok2 {
			return 0
		}
		dx, dy := transformPoint(cv, x, y)
		chargePathBudget(cv, c, "gfx.lineTo", cv.path.LineTo(dx, dy))
		return 0
	})
	register(vm, "gfx", "closePath", func(ls *lua.LState) int {
		cv.path.ClosePath()
		return 0
	})
	register(vm, "gfx", "quadTo", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.quadTo", 4) {
			return 0
		}
		vals, ok := checkNumbers(ls, c, "gfx.quadTo", 4)
		if !ok {
			return 0
		}
		cx, cy := transformPoint(cv, vals[0], vals[1])
		x, y := transformPoint(cv, vals[2], vals[3])
		chargePathBudget(cv, c, "gfx.quadTo", cv.path.QuadTo(cx, cy, x, y))
		return 0
	})
	register(vm, "gfx", "arc", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.arc", 6) {
			return 0
		}
		vals, ok := checkNumbers(ls, c, "gfx.arc", 5)
		ccw, okB := checkBool(ls, c, "gfx.arc", 5)
		if !ok || !okB {
			return 0
		}
		cx, cy := transformPoint(cv, vals[0], vals[1])
		// radius is scaled by the transform's x-axis magnitude; arcs under
		// non-uniform transforms are an accepted approximation.
		r := vals[2] * scaleMagnitude(cv.state.Transform)
		chargePathBudget(cv, c, "gfx.arc", cv.path.Arc(cx, cy, r, vals[3], vals[4], ccw))
		return 0
	})
	register(vm, "gfx", "rect", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.rect", 4) {
			return 0
		}
		vals, ok := checkNumbers(ls, c, "gfx.rect", 4)
		if !ok {
			return 0
		}
		if vals[2] < 0 || vals[3] < 0 {
			return 0
		}
		// A transform may be a rotation, so the four corners are
		// transformed independently rather than flattening an
		// axis-aligned box and transforming after the fact.
		x0, y0 := transformPoint(cv, vals[0], vals[1])
		x1, y1 := transformPoint(cv, vals[0]+vals[2], vals[1])
		x2, y2 := transformPoint(cv, vals[0]+vals[2], vals[1]+vals[3])
		x3, y3 := transformPoint(cv, vals[0], vals[1]+vals[3])
		added := cv.path.MoveTo(x0, y0)
		added += cv.path.LineTo(x1, y1)
		added += cv.path.LineTo(x2, y2)
		added += cv.path.LineTo(x3, y3)
		cv.path.ClosePath()
		chargePathBudget(cv, c, "gfx.rect", added)
		return 0
	})

	register(vm, "gfx", "fill", func(ls *lua.LState) int {
		cv.Fill()
		return 0
	})
	register(vm, "gfx", "stroke", func(ls *lua.LState) int {
		cv.Stroke()
		return 0
	})
	register(vm, "gfx", "clearRect", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.clearRect", 4) {
			return 0
		}
		vals, ok := checkNumbers(ls, c, "gfx.clearRect", 4)
		if !ok {
			return 0
		}
		cv.ClearRect(vals[0], vals[1], vals[2], vals[3])
		return 0
	})

	register(vm, "gfx", "setFillColor", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setFillColor", 1) {
			return 0
		}
		col, ok := checkNumber(ls, c, "gfx.setFillColor", 0)
		if !ok {
			return 0
		}
		cv.state.Fill = solidPaint(uint32(col))
		return 0
	})
	register(vm, "gfx", "setStrokeColor", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setStrokeColor", 1) {
			return 0
		}
		col, ok := checkNumber(ls, c, "gfx.setStrokeColor", 0)
		if !ok {
			return 0
		}
		cv.state.Stroke = solidPaint(uint32(col))
		return 0
	})
	register(vm, "gfx", "setFillPaint", func(ls *lua.LState) int {
		p, ok := parsePaintArg(ls, c, "gfx.setFillPaint", 0)
		if !ok {
			return 0
		}
		cv.state.Fill = p
		return 0
	})
	register(vm, "gfx", "setStrokePaint", func(ls *lua.LState) int {
		p, ok := parsePaintArg(ls, c, "gfx.setStrokePaint", 0)
		if !ok {
			return 0
		}
		cv.state.Stroke = p
		return 0
	})

	register(vm, "gfx", "setGlobalAlpha", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setGlobalAlpha", 1) {
			return 0
		}
		a, ok := checkNumberRange(ls, c, "gfx.setGlobalAlpha", 0, 0, 1)
		if !ok {
			return 0
		}
		cv.state.GlobalAlpha = a
		return 0
	})
	register(vm, "gfx", "setBlendMode", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setBlendMode", 1) {
			return 0
		}
		name, ok := checkString(ls, c, "gfx.setBlendMode", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		mode, accepted := ParseBlendMode(name)
		if !accepted {
			c.fail("gfx.setBlendMode", CategoryInvalidArgument, "unsupported blend mode: "+name)
			ls.Push(lua.LFalse)
			return 1
		}
		cv.state.Blend = mode
		ls.Push(lua.LTrue)
		return 1
	})

	register(vm, "gfx", "setLineWidth", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setLineWidth", 1) {
			return 0
		}
		w, ok := checkNumber(ls, c, "gfx.setLineWidth", 0)
		if !ok || w < 0 {
			c.fail("gfx.setLineWidth", CategoryInvalidArgument, "line width must be non-negative")
			return 0
		}
		cv.state.StrokeStyle.Width = w
		return 0
	})
	register(vm, "gfx", "setLineJoin", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setLineJoin", 1) {
			return 0
		}
		name, ok := checkString(ls, c, "gfx.setLineJoin", 0)
		if !ok {
			return 0
		}
		switch name {
		case "miter":
			cv.state.StrokeStyle.Join = JoinMiter
		case "round":
			cv.state.StrokeStyle.Join = JoinRound
		case "bevel":
			cv.state.StrokeStyle.Join = JoinBevel
		default:
			c.fail("gfx.setLineJoin", CategoryInvalidArgument, "unknown line join: "+name)
		}
		return 0
	})
	register(vm, "gfx", "setLineCap", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setLineCap", 1) {
			return 0
		}
		name, ok := checkString(ls, c, "gfx.setLineCap", 0)
		if !ok {
			return 0
		}
		switch name {
		case "butt":
			cv.state.StrokeStyle.Cap = CapButt
		case "round":
			cv.state.StrokeStyle.Cap = CapRound
		case "square":
			cv.state.StrokeStyle.Cap = CapSquare
		default:
			c.fail("gfx.setLineCap", CategoryInvalidArgument, "unknown line cap: "+name)
		}
		return 0
	})

	register(vm, "gfx", "clip", func(ls *lua.LState) int {
		subs := append([]Subpath(nil), cv.path.Subpaths()...)
		if cv.state.Clip != nil {
			subs = append(append([]Subpath(nil), cv.state.Clip.Subpaths...), subs...)
		}
		cv.state.Clip = &ClipShape{Subpaths: subs}
		return 0
	})
	register(vm, "gfx", "resetClip", func(ls *lua.LState) int {
		cv.state.Clip = nil
		return 0
	})

	register(vm, "gfx", "loadFont", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.loadFont", 2) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		path, ok1 := checkString(ls, c, "gfx.loadFont", 0)
		size, ok2 := checkNumber(ls, c, "gfx.loadFont", 1)
		if !ok1 || !ok2 {
			ls.Push(lua.LNumber(0))
			return 1
		}
		h, err := LoadFont(c.vfs, c.registry, c.cartID, path, size)
		if err != nil {
			c.fail("gfx.loadFont", err.Category, err.Error())
			ls.Push(lua.LNumber(0))
			return 1
		}
		pushHandle(ls, h)
		return 1
	})
	register(vm, "gfx", "setFont", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setFont", 1) {
			return 0
		}
		_, ok := checkHandle(ls, c, "gfx.setFont", 0, ResourceFont)
		if !ok {
			return 0
		}
		n, _ := checkNumber(ls, c, "gfx.setFont", 0)
		cv.state.Font = Handle(uint64(n))
		return 0
	})
	register(vm, "gfx", "setTextAlign", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setTextAlign", 1) {
			return 0
		}
		name, ok := checkString(ls, c, "gfx.setTextAlign", 0)
		if !ok {
			return 0
		}
		switch name {
		case "left":
			cv.state.TextAlign = AlignLeft
		case "center":
			cv.state.TextAlign = AlignCenter
		case "right":
			cv.state.TextAlign = AlignRight
		case "start":
			cv.state.TextAlign = AlignStart
		case "end":
			cv.state.TextAlign = AlignEnd
		default:
			c.fail("gfx.setTextAlign", CategoryInvalidArgument, "unknown text align: "+name)
		}
		return 0
	})
	register(vm, "gfx", "setTextBaseline", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setTextBaseline", 1) {
			return 0
		}
		name, ok := checkString(ls, c, "gfx.setTextBaseline", 0)
		if !ok {
			return 0
		}
		switch name {
		case "top":
			cv.state.TextBaseline = BaselineTop
		case "middle":
			cv.state.TextBaseline = BaselineMiddle
		case "alphabetic":
			cv.state.TextBaseline = BaselineAlphabetic
		case "bottom":
			cv.state.TextBaseline = BaselineBottom
		default:
			c.fail("gfx.setTextBaseline", CategoryInvalidArgument, "unknown text baseline: "+name)
		}
		return 0
	})
	register(vm, "gfx", "fillText", func(ls *lua.LState) int {
		text, x, y, maxWidth, ok := textArgs(ls, c, "gfx.fillText")
		if !ok {
			return 0
		}
		cv.FillText(text, x, y, maxWidth)
		return 0
	})
	register(vm, "gfx", "strokeText", func(ls *lua.LState) int {
		text, x, y, maxWidth, ok := textArgs(ls, c, "gfx.strokeText")
		if !ok {
			return 0
		}
		cv.StrokeText(text, x, y, maxWidth)
		return 0
	})
	register(vm, "gfx", "measureText", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.measureText", 2) {
			ls.Push(lua.LNil)
			return 1
		}
		payload, ok1 := checkHandle(ls, c, "gfx.measureText", 0, ResourceFont)
		text, ok2 := checkString(ls, c, "gfx.measureText", 1)
		if !ok1 || !ok2 {
			ls.Push(lua.LNil)
			return 1
		}
		lf := payload.(*loadedFont)
		m := MeasureText(lf.face, text)
		tbl := ls.NewTable()
		tbl.RawSetString("width", lua.LNumber(m.Width))
		tbl.RawSetString("height", lua.LNumber(m.Height))
		tbl.RawSetString("ascent", lua.LNumber(m.Ascent))
		tbl.RawSetString("descent", lua.LNumber(m.Descent))
		tbl.RawSetString("lineHeight", lua.LNumber(m.LineHeight))
		ls.Push(tbl)
		return 1
	})

	register(vm, "gfx", "loadTexture", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.loadTexture", 1) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		path, ok := checkString(ls, c, "gfx.loadTexture", 0)
		if !ok {
			ls.Push(lua.LNumber(0))
			return 1
		}
		h, err := LoadTexture(c.vfs, c.registry, c.cartID, path)
		if err != nil {
			c.fail("gfx.loadTexture", err.Category, err.Error())
			ls.Push(lua.LNumber(0))
			return 1
		}
		pushHandle(ls, h)
		return 1
	})
	register(vm, "gfx", "createSurface", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.createSurface", 2) {
			ls.Push(lua.LNumber(0))
			return 1
		}
		w, ok1 := checkNumber(ls, c, "gfx.createSurface", 0)
		h, ok2 := checkNumber(ls, c, "gfx.createSurface", 1)
		if !ok1 || !ok2 {
			ls.Push(lua.LNumber(0))
			return 1
		}
		handle, err := CreateSurface(c.registry, c.cartID, int(w), int(h))
		if err != nil {
			c.fail("gfx.createSurface", err.Category, err.Error())
			ls.Push(lua.LNumber(0))
			return 1
		}
		pushHandle(ls, handle)
		return 1
	})
	register(vm, "gfx", "setTarget", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.setTarget", 1) {
			return 0
		}
		payload, ok := checkHandle(ls, c, "gfx.setTarget", 0, ResourceSurface)
		if !ok {
			return 0
		}
		cv.activeTarget = payload.(*RasterSurface)
		return 0
	})
	register(vm, "gfx", "resetTarget", func(ls *lua.LState) int {
		cv.activeTarget = nil
		return 0
	})
	register(vm, "gfx", "drawImage", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx.drawImage", 9) {
			return 0
		}
		n, ok := checkNumber(ls, c, "gfx.drawImage", 0)
		if !ok {
			return 0
		}
		vals, ok := checkNumbers8(ls, c, "gfx.drawImage")
		if !ok {
			return 0
		}
		cv.DrawImage(Handle(uint64(n)), vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6], vals[7])
		return 0
	})
}

// chargePathBudget records path-op segment growth against the per-frame
// budget without emitting a rasterization command (path mutation itself
// is immediate; only fill/stroke/text/image are deferred).
func chargePathBudget(cv *Canvas2D, c *apiContext, op string, added int) {
	if added <= 0 {
		return
	}
	if cv.pathSegCount >= hardPathSegmentLimit {
		c.fail(op, CategoryQuotaExceeded, "hard path segment limit reached for this frame")
		return
	}
	cv.pathSegCount += added
	if cv.pathSegCount >= softPathSegmentLimit && !cv.pathSoftWarned {
		cv.pathSoftWarned = true
		cv.logger.Warn("path segment count exceeded soft limit (%d) this frame", softPathSegmentLimit)
	}
}

func checkNumbers(ls *lua.LState, c *apiContext, op string, n int) ([]float64, bool) {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, ok := checkNumber(ls, c, op, i)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func checkNumbers8(ls *lua.LState, c *apiContext, op string) ([]float64, bool) {
	out := make([]float64, 8)
	for i := 0; i < 8; i++ {
		v, ok := checkNumber(ls, c, op, i+1)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// textArgs parses the shared (text, x, y[, maxWidth]) signature fillText
// and strokeText accept; maxWidth defaults to 0 (unset) when omitted.
func textArgs(ls *lua.LState, c *apiContext, op string) (string, float64, float64, float64, bool) {
	top := ls.GetTop()
	if top != 3 && top != 4 {
		c.fail(op, CategoryInvalidArgument, "wrong number of arguments")
		return "", 0, 0, 0, false
	}
	text, ok1 := checkString(ls, c, op, 0)
	x, ok2 := checkNumber(ls, c, op, 1)
	y, ok3 := checkNumber(ls, c, op, 2)
	if !ok1 || !ok2 || !ok3 {
		return "", 0, 0, 0, false
	}
	maxWidth := 0.0
	if top == 4 {
		mw, ok := checkNumber(ls, c, op, 3)
		if !ok {
			return "", 0, 0, 0, false
		}
		maxWidth = mw
	}
	return text, x, y, maxWidth, true
}

// parsePaintArg accepts either nil (clears to a fully transparent solid
// paint) or a table {kind="linear"|"radial", x0,y0,x1,y1,radius, spread,
// stops={{offset,color},...}}.
func parsePaintArg(ls *lua.LState, c *apiContext, op string, idx int) (Paint, bool) {
	v := ls.Get(idx + 1)
	if v == lua.LNil {
		return solidPaint(0), true
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		c.fail(op, CategoryInvalidArgument, "expected paint table or nil")
		return Paint{}, false
	}
	kind := lua.LVAsString(tbl.RawGetString("kind"))
	p := Paint{Spread: parseSpread(lua.LVAsString(tbl.RawGetString("spread")))}
	switch kind {
	case "radial":
		p.Kind = PaintRadialGradient
	default:
		p.Kind = PaintLinearGradient
	}
	p.X0 = float64(lua.LVAsNumber(tbl.RawGetString("x0")))
	p.Y0 = float64(lua.LVAsNumber(tbl.RawGetString("y0")))
	p.X1 = float64(lua.LVAsNumber(tbl.RawGetString("x1")))
	p.Y1 = float64(lua.LVAsNumber(tbl.RawGetString("y1")))
	p.Radius = float64(lua.LVAsNumber(tbl.RawGetString("radius")))

	stopsV := tbl.RawGetString("stops")
	stopsTbl, ok := stopsV.(*lua.LTable)
	if !ok {
		c.fail(op, CategoryInvalidArgument, "paint table missing stops array")
		return Paint{}, false
	}
	var stops []GradientStop
	stopsTbl.ForEach(func(_ lua.LValue, sv lua.LValue) {
		st, ok := sv.(*lua.LTable)
		if !ok {
			return
		}
		offset := float64(lua.LVAsNumber(st.RawGetString("offset")))
		color := uint32(lua.LVAsNumber(st.RawGetString("color")))
		stops = append(stops, GradientStop{Offset: offset, Color: color})
	})
	if len(stops) == 0 {
		c.fail(op, CategoryInvalidArgument, "paint table requires at least one stop")
		return Paint{}, false
	}
	p.Stops = stops
	return p, true
}

func parseSpread(name string) SpreadMode {
	switch name {
	case "repeat":
		return SpreadRepeat
	case "reflect":
		return SpreadReflect
	default:
		return SpreadPad
	}
}
