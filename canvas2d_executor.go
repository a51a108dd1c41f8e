// canvas2d_executor.go - replays the recorded command buffer against CPU raster surfaces

package arcanee

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// Execute walks the command buffer recorded during the just-returned
// draw() call, in order, rasterizing each into its target surface. Per
// spec this runs after draw() returns, never during script execution.
func (c *Canvas2D) Execute() {
	for _, cmd := range c.commands {
		c.executeOne(cmd)
	}
}

func (c *Canvas2D) executeOne(cmd Command) {
	if cmd.Target == nil {
		return
	}
	switch cmd.Kind {
	case CmdFill:
		c.rasterFillSubpaths(cmd.Target, cmd.Subpaths, cmd.Paint, cmd.GlobalAlpha, cmd.Blend, cmd.Clip)
	case CmdStroke:
		outline := strokeOutline(cmd.Subpaths, cmd.StrokeStyle)
		c.rasterFillSubpaths(cmd.Target, outline, cmd.Paint, cmd.GlobalAlpha, cmd.Blend, cmd.Clip)
	case CmdClearRect:
		c.rasterClear(cmd.Target, cmd.Subpaths)
	case CmdFillText, CmdStrokeText:
		c.executeText(cmd)
	case CmdDrawImage:
		c.executeDrawImage(cmd)
	}
}

// rasterizeCoverage computes a per-pixel coverage mask (nonzero winding,
// antialiased) for the given subpaths over the target's full bounds,
// using golang.org/x/image/vector's signed-area accumulation rasterizer.
func rasterizeCoverage(w, h int, subpaths []Subpath) *image.Alpha {
	rz := vector.NewRasterizer(w, h)
	for _, sp := range subpaths {
		if len(sp.Points) == 0 {
			continue
		}
		rz.MoveTo(float32(sp.Points[0].X), float32(sp.Points[0].Y))
		for _, p := range sp.Points[1:] {
			rz.LineTo(float32(p.X), float32(p.Y))
		}
		rz.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	rz.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

func boundsOfSubpaths(subpaths []Subpath, w, h int) (minX, minY, maxX, maxY int) {
	minX, minY = w, h
	maxX, maxY = 0, 0
	for _, sp := range subpaths {
		for _, p := range sp.Points {
			x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x+1 > maxX {
				maxX = x + 1
			}
			if y+1 > maxY {
				maxY = y + 1
			}
		}
	}
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > w {
		maxX = w
	}
	if maxY > h {
		maxY = h
	}
	return
}

func (c *Canvas2D) rasterFillSubpaths(target *RasterSurface, subpaths []Subpath, paint Paint, globalAlpha float64, blend BlendMode, clip *ClipShape) {
	if len(subpaths) == 0 || globalAlpha <= 0 {
		return
	}
	w, h := target.Width, target.Height
	minX, minY, maxX, maxY := boundsOfSubpaths(subpaths, w, h)
	if minX >= maxX || minY >= maxY {
		return
	}

	mask := rasterizeCoverage(w, h, subpaths)
	var clipMask *image.Alpha
	if clip != nil && len(clip.Subpaths) > 0 {
		clipMask = rasterizeCoverage(w, h, clip.Subpaths)
	}

	pr, pg, pb, pa := rgba01(paint.Solid)
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			cov := float64(mask.AlphaAt(x, y).A) / 255
			if clipMask != nil {
				cov *= float64(clipMask.AlphaAt(x, y).A) / 255
			}
			if cov <= 0 {
				continue
			}
			rC, gC, bC := paintColorAt(paint, x, y, pr, pg, pb)
			srcA := cov * globalAlpha * pa
			if srcA <= 0 {
				continue
			}
			off := (y*w + x) * 4
			compositePixel(target.Pix, off, rC, gC, bC, srcA, blend)
		}
	}
}

// paintColorAt resolves a paint to a straight-alpha RGB color at device
// pixel (x,y). Gradients are evaluated by projecting the pixel onto the
// gradient's axis (linear) or distance-from-center (radial); solids
// ignore position.
func paintColorAt(paint Paint, x, y int, solidR, solidG, solidB float64) (float64, float64, float64) {
	if paint.Kind == PaintSolid || len(paint.Stops) == 0 {
		return solidR, solidG, solidB
	}
	px, py := float64(x)+0.5, float64(y)+0.5
	var t float64
	switch paint.Kind {
	case PaintLinearGradient:
		dx, dy := paint.X1-paint.X0, paint.Y1-paint.Y0
		lenSq := dx*dx + dy*dy
		if lenSq == 0 {
			t = 0
		} else {
			t = ((px-paint.X0)*dx + (py-paint.Y0)*dy) / lenSq
		}
	case PaintRadialGradient:
		dx, dy := px-paint.X0, py-paint.Y0
		dist := math.Sqrt(dx*dx + dy*dy)
		if paint.Radius <= 0 {
			t = 0
		} else {
			t = dist / paint.Radius
		}
	}
	t = applySpread(t, paint.Spread)
	return sampleStops(paint.Stops, t)
}

func applySpread(t float64, spread SpreadMode) float64 {
	switch spread {
	case SpreadRepeat:
		t = t - math.Floor(t)
	case SpreadReflect:
		t = math.Abs(t)
		period := math.Mod(t, 2)
		if period > 1 {
			period = 2 - period
		}
		t = period
	default: // pad
		t = clampFloat(t, 0, 1)
	}
	return t
}

func sampleStops(stops []GradientStop, t float64) (float64, float64, float64) {
	if len(stops) == 0 {
		return 0, 0, 0
	}
	if t <= stops[0].Offset {
		r, g, b, _ := rgba01(stops[0].Color)
		return r, g, b
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		r, g, b, _ := rgba01(last.Color)
		return r, g, b
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			a, b := stops[i-1], stops[i]
			span := b.Offset - a.Offset
			f := 0.0
			if span > 0 {
				f = (t - a.Offset) / span
			}
			ar, ag, ab, _ := rgba01(a.Color)
			br, bg, bb, _ := rgba01(b.Color)
			return ar + (br-ar)*f, ag + (bg-ag)*f, ab + (bb-ab)*f
		}
	}
	r, g, b, _ := rgba01(last.Color)
	return r, g, b
}

func (c *Canvas2D) rasterClear(target *RasterSurface, subpaths []Subpath) {
	w, h := target.Width, target.Height
	minX, minY, maxX, maxY := boundsOfSubpaths(subpaths, w, h)
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			off := (y*w + x) * 4
			target.Pix[off], target.Pix[off+1], target.Pix[off+2], target.Pix[off+3] = 0, 0, 0, 0
		}
	}
}

// strokeOutline approximates a stroked polyline as a set of fillable
// quads (one per segment) plus a round disk at every vertex, which
// covers joins and round/square caps well enough for a software
// rasterizer without a full miter-geometry solver. Butt caps simply omit
// the end disks.
func strokeOutline(subpaths []Subpath, style StrokeStyle) []Subpath {
	halfW := style.Width / 2
	if halfW <= 0 {
		halfW = 0.5
	}
	var out []Subpath
	for _, sp := range subpaths {
		pts := sp.Points
		if sp.Closed && len(pts) > 0 {
			pts = append(append([]Point(nil), pts...), pts[0])
		}
		for i := 0; i+1 < len(pts); i++ {
			out = append(out, segmentQuad(pts[i], pts[i+1], halfW))
		}
		drawCaps := style.Cap != CapButt || sp.Closed
		for i, p := range pts {
			if i == 0 || i == len(pts)-1 {
				if !drawCaps && !sp.Closed {
					continue
				}
			}
			out = append(out, discSubpath(p, halfW))
		}
	}
	return out
}

func segmentQuad(a, b Point, halfW float64) Subpath {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return discSubpath(a, halfW)
	}
	nx, ny := -dy/length*halfW, dx/length*halfW
	return Subpath{Closed: true, Points: []Point{
		{a.X + nx, a.Y + ny}, {b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny}, {a.X - nx, a.Y - ny},
	}}
}

func discSubpath(center Point, r float64) Subpath {
	const n = 12
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / n
		pts = append(pts, Point{center.X + r*math.Cos(a), center.Y + r*math.Sin(a)})
	}
	return Subpath{Closed: true, Points: pts}
}
