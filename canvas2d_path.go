// canvas2d_path.go - path builder: moveTo/lineTo/quadTo/arc/rect, all converted to polylines

package arcanee

import "math"

// Point is a device-space (post-transform) vertex.
type Point struct{ X, Y float64 }

// Subpath is one contiguous polyline, optionally closed.
type Subpath struct {
	Points []Point
	Closed bool
}

// PathBuilder accumulates the scratch path mutated by path ops during
// draw(); fill/stroke consume a snapshot of it at record time.
type PathBuilder struct {
	subpaths []Subpath
	cur      *Subpath
	curX     float64
	curY     float64
	startX   float64
	startY   float64
	hasPoint bool
}

func (p *PathBuilder) Reset() {
	p.subpaths = nil
	p.cur = nil
	p.hasPoint = false
}

func (p *PathBuilder) Subpaths() []Subpath { return p.subpaths }

// arcSegmentsForRadius picks a deterministic polyline resolution scaled
// to the arc's device-space radius, capped to keep a single arc() call
// bounded in emitted segments.
func arcSegmentsForRadius(r float64) int {
	n := int(math.Ceil(r / 2))
	if n < 8 {
		return 8
	}
	if n > 256 {
		return 256
	}
	return n
}

func (p *PathBuilder) newSubpath(x, y float64) {
	p.subpaths = append(p.subpaths, Subpath{Points: []Point{{x, y}}})
	p.cur = &p.subpaths[len(p.subpaths)-1]
	p.curX, p.curY = x, y
	p.startX, p.startY = x, y
	p.hasPoint = true
}

func (p *PathBuilder) lineTo(x, y float64) {
	if p.cur == nil {
		p.newSubpath(x, y)
		return
	}
	p.cur.Points = append(p.cur.Points, Point{x, y})
	p.curX, p.curY = x, y
}

// MoveTo starts a new subpath at (x,y) (already transformed to device
// space by the caller).
func (p *PathBuilder) MoveTo(x, y float64) int {
	p.newSubpath(x, y)
	return 1
}

// LineTo appends a straight segment; returns the number of polyline
// segments added, for path-budget accounting.
func (p *PathBuilder) LineTo(x, y float64) int {
	p.lineTo(x, y)
	return 1
}

// ClosePath closes the current subpath back to its start point.
func (p *PathBuilder) ClosePath() int {
	if p.cur == nil || len(p.cur.Points) == 0 {
		return 0
	}
	p.cur.Closed = true
	p.curX, p.curY = p.startX, p.startY
	return 0
}

// QuadTo converts a quadratic Bezier (control cx,cy, end x,y) to a cubic
// via the spec's deterministic rule P0 + 2/3*(P1-P0), then flattens the
// cubic into a fixed-resolution polyline.
func (p *PathBuilder) QuadTo(cx, cy, x, y float64) int {
	x0, y0 := p.curX, p.curY
	c1x, c1y := x0+2.0/3.0*(cx-x0), y0+2.0/3.0*(cy-y0)
	c2x, c2y := x+2.0/3.0*(cx-x), y+2.0/3.0*(cy-y)
	return p.cubicTo(c1x, c1y, c2x, c2y, x, y)
}

const cubicSegments = 24

func (p *PathBuilder) cubicTo(c1x, c1y, c2x, c2y, x, y float64) int {
	x0, y0 := p.curX, p.curY
	if p.cur == nil {
		p.newSubpath(x0, y0)
	}
	added := 0
	for i := 1; i <= cubicSegments; i++ {
		t := float64(i) / float64(cubicSegments)
		mt := 1 - t
		px := mt*mt*mt*x0 + 3*mt*mt*t*c1x + 3*mt*t*t*c2x + t*t*t*x
		py := mt*mt*mt*y0 + 3*mt*mt*t*c1y + 3*mt*t*t*c2y + t*t*t*y
		p.lineTo(px, py)
		added++
	}
	return added
}

// Arc flattens arc(cx,cy,r,a0,a1,ccw) into a polyline using the Canvas
// direction convention: ccw=false sweeps clockwise (increasing angle)
// from a0 to a1, ccw=true sweeps the other way; the sweep is the angular
// distance in that direction, reduced modulo 2*pi.
// A non-positive radius is a safe no-op (returns 0 segments added).
func (p *PathBuilder) Arc(cx, cy, r, a0, a1 float64, ccw bool) int {
	if r <= 0 {
		return 0
	}
	sweep := normalizeArcSweep(a0, a1, ccw)
	n := arcSegmentsForRadius(r)
	added := 0
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		var a float64
		if ccw {
			a = a0 - sweep*t
		} else {
			a = a0 + sweep*t
		}
		x := cx + r*math.Cos(a)
		y := cy + r*math.Sin(a)
		if i == 0 {
			p.newSubpath(x, y)
		} else {
			p.lineTo(x, y)
			added++
		}
	}
	return added
}

// normalizeArcSweep returns the non-negative angular distance traveled
// from a0 to a1 in the requested direction.
func normalizeArcSweep(a0, a1 float64, ccw bool) float64 {
	const twoPi = 2 * math.Pi
	var d float64
	if ccw {
		d = a0 - a1
	} else {
		d = a1 - a0
	}
	d = math.Mod(d, twoPi)
	if d < 0 {
		d += twoPi
	}
	return d
}

// Rect appends a closed rectangle subpath. Negative width or height is a
// safe no-op per spec.
func (p *PathBuilder) Rect(x, y, w, h float64) int {
	if w < 0 || h < 0 {
		return 0
	}
	p.newSubpath(x, y)
	p.lineTo(x+w, y)
	p.lineTo(x+w, y+h)
	p.lineTo(x, y+h)
	p.ClosePath()
	return 3
}
