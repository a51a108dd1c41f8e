// scene3d_render.go - software rasterization of the active scene into a
// CBUF-shaped RasterSurface plus a depth buffer: opaque triangles first
// with full depth test, then alpha-blend materials back-to-front by
// view-space depth, matching spec's render-order contract.

package arcanee

import (
	"sort"

	"github.com/yohamta/donburi"
)

// RenderActiveScene rasterizes every drawable mesh in s into target,
// using a freshly cleared depth buffer each call. Returns false (with
// lastErr set) if there is no active camera, matching the "render with
// no active camera fails safely" rule; target is left untouched in
// that case.
func (s *Scene3D) RenderActiveScene(target *RasterSurface) bool {
	const op = "gfx3d.render"
	if s.activeCamera == 0 {
		s.fail(op, CategoryInvalidArgument, "no active camera")
		return false
	}
	camEntry := s.entry(op, s.activeCamera)
	if camEntry == nil {
		return false
	}
	cam := *donburi.Get[Camera](camEntry, cameraComponent)
	view := cameraViewMatrix(s, s.activeCamera, cam)
	aspect := float64(target.Width) / float64(target.Height)
	proj := Perspective(cam.FOV, aspect, cam.Near, cam.Far)
	viewProj := proj.Mul(view)

	depth := make([]float32, target.Width*target.Height)
	for i := range depth {
		depth[i] = 1
	}

	drawables := s.collectDrawables()
	var opaque, transparent []drawable
	for _, d := range drawables {
		if d.material.AlphaMode == AlphaBlend {
			transparent = append(transparent, d)
		} else {
			opaque = append(opaque, d)
		}
	}
	for _, d := range opaque {
		rasterizeMesh(target, depth, d, view, viewProj, true)
	}

	sort.Slice(transparent, func(i, j int) bool {
		return viewSpaceDepth(transparent[i], view) > viewSpaceDepth(transparent[j], view)
	})
	for _, d := range transparent {
		rasterizeMesh(target, depth, d, view, viewProj, false)
	}
	return true
}

func viewSpaceDepth(d drawable, view Mat4) float64 {
	center := d.world.MulPoint(Vec3{})
	vp := view.MulPoint(center)
	return vp.Z
}

func cameraViewMatrix(s *Scene3D, h Handle, cam Camera) Mat4 {
	if !cam.FromTransform {
		return LookAt(cam.Eye, cam.At, cam.Up)
	}
	world := s.WorldTransform(h)
	eye := world.MulPoint(Vec3{})
	forward := normalizeVec3(world.MulDir(Vec3{0, 0, -1}))
	up := normalizeVec3(world.MulDir(Vec3{0, 1, 0}))
	return LookAt(eye, add(eye, forward), up)
}

// rasterizeMesh transforms and clips each triangle, then scan-converts it
// with a standard edge-function barycentric test. depthTest controls
// whether triangles both test and write depth (opaque pass) or only test
// it without writing (transparent pass, so later transparent triangles
// are not occluded by earlier ones at equal depth).
func rasterizeMesh(target *RasterSurface, depth []float32, d drawable, view, viewProj Mat4, depthTest bool) {
	m := d.mesh
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(i0) >= len(m.Vertices) || int(i1) >= len(m.Vertices) || int(i2) >= len(m.Vertices) {
			continue
		}
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]

		w0 := d.world.MulPoint(v0.Pos)
		w1 := d.world.MulPoint(v1.Pos)
		w2 := d.world.MulPoint(v2.Pos)

		c0x, c0y, c0z, c0w := viewProj.MulVec4(w0.X, w0.Y, w0.Z, 1)
		c1x, c1y, c1z, c1w := viewProj.MulVec4(w1.X, w1.Y, w1.Z, 1)
		c2x, c2y, c2z, c2w := viewProj.MulVec4(w2.X, w2.Y, w2.Z, 1)

		// Behind-camera triangles (any vertex with w <= 0) are dropped
		// rather than clipped, a deterministic simplification acceptable
		// for a CPU fallback path.
		if c0w <= 0 || c1w <= 0 || c2w <= 0 {
			continue
		}

		sx0, sy0, sz0 := screenSpace(c0x, c0y, c0z, c0w, target.Width, target.Height)
		sx1, sy1, sz1 := screenSpace(c1x, c1y, c1z, c1w, target.Width, target.Height)
		sx2, sy2, sz2 := screenSpace(c2x, c2y, c2z, c2w, target.Width, target.Height)

		area := edge(sx0, sy0, sx1, sy1, sx2, sy2)
		if area == 0 {
			continue
		}
		if !d.material.DoubleSided && area < 0 {
			continue // back-face cull, consistent winding required
		}

		minX := clampInt(int(floorf(minOf3(sx0, sx1, sx2))), 0, target.Width-1)
		maxX := clampInt(int(ceilf(maxOf3(sx0, sx1, sx2))), 0, target.Width-1)
		minY := clampInt(int(floorf(minOf3(sy0, sy1, sy2))), 0, target.Height-1)
		maxY := clampInt(int(ceilf(maxOf3(sy0, sy1, sy2))), 0, target.Height-1)

		for py := minY; py <= maxY; py++ {
			for px := minX; px <= maxX; px++ {
				fx, fy := float64(px)+0.5, float64(py)+0.5
				w0b := edge(sx1, sy1, sx2, sy2, fx, fy)
				w1b := edge(sx2, sy2, sx0, sy0, fx, fy)
				w2b := edge(sx0, sy0, sx1, sy1, fx, fy)
				if area < 0 {
					w0b, w1b, w2b = -w0b, -w1b, -w2b
				}
				if w0b < 0 || w1b < 0 || w2b < 0 {
					continue
				}
				absArea := area
				if absArea < 0 {
					absArea = -absArea
				}
				b0, b1, b2 := w0b/absArea, w1b/absArea, w2b/absArea
				z := b0*sz0 + b1*sz1 + b2*sz2

				idx := py*target.Width + px
				if z >= float64(depth[idx]) {
					continue
				}
				if depthTest && z > 1 {
					continue
				}
				rgba := shadeFragment(d.material)
				off := idx * 4
				compositePixel(target.Pix, off, rgba[0], rgba[1], rgba[2], rgba[3], BlendNormal)
				if depthTest {
					depth[idx] = float32(z)
				}
			}
		}
	}
}

// shadeFragment shades with the flat material base color only; the
// material's texture slots (BaseColorTexture etc.) are not sampled by this
// CPU rasterizer.
func shadeFragment(mat *Material) [4]float64 {
	a := mat.BaseColor[3]
	if mat.AlphaMode == AlphaOpaque {
		a = 1
	} else if mat.AlphaMode == AlphaMask && a < mat.AlphaCutoff {
		a = 0
	}
	return [4]float64{mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2], a}
}

func screenSpace(x, y, z, w float64, width, height int) (float64, float64, float64) {
	ndcX, ndcY, ndcZ := x/w, y/w, z/w
	sx := (ndcX*0.5 + 0.5) * float64(width)
	sy := (1 - (ndcY*0.5 + 0.5)) * float64(height)
	return sx, sy, ndcZ*0.5 + 0.5
}

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (px-ax)*(by-ay) - (py-ay)*(bx-ax)
}

func minOf3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxOf3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func floorf(v float64) float64 {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return float64(i)
}

func ceilf(v float64) float64 {
	i := int(v)
	if v > 0 && float64(i) != v {
		i++
	}
	return float64(i)
}

// clampInt is defined once, in input.go, and reused here.
