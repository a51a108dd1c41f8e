// render_pipeline.go - CBUF-to-backbuffer present pass

package arcanee

import "math"

// LetterboxColor is the opaque color painted into the backbuffer region
// the console image does not cover. Defaults to opaque black.
type LetterboxColor struct {
	R, G, B byte
}

var defaultLetterbox = LetterboxColor{R: 0, G: 0, B: 0}

// RenderPipeline owns the mapping from a CBUF-resolution console image to
// a backbuffer-resolution image suitable for Platform.UploadFrame. It does
// not run the 3D or 2D passes itself — Cartridge.Draw already rasterizes
// Scene3D and replays the Canvas2D command buffer directly into CBUF — its
// job is the final present-mode scale/letterbox and the handoff to the
// window. Grounded on video_compositor.go's blendFrameScaled (the same
// dstX*srcW/dstW integer-ratio sampling, generalized from "scale a video
// source into the output frame" to "scale CBUF into the backbuffer under
// an explicit present mode").
type RenderPipeline struct {
	platform *Platform
	cbufW    int
	cbufH    int

	mode      PresentMode
	letterbox LetterboxColor

	backbuffer    []byte // backbuffer-resolution RGBA scratch, reused frame to frame
	backbufferW   int
	backbufferH   int
	viewport      Viewport
	drawableW     int
	drawableH     int
	overlay       func([]byte, int, int) // external overlay hook, nil when none registered

	lastErr *LastErrorChannel
	logger  *Logger
}

// NewRenderPipeline constructs a pipeline bound to the console's fixed
// CBUF resolution. The backbuffer resolution tracks the platform's
// drawable size via OnSizeChanged.
func NewRenderPipeline(platform *Platform, cbufW, cbufH int, mode PresentMode, lastErr *LastErrorChannel, logger *Logger) *RenderPipeline {
	rp := &RenderPipeline{
		platform:  platform,
		cbufW:     cbufW,
		cbufH:     cbufH,
		mode:      mode,
		letterbox: defaultLetterbox,
		lastErr:   lastErr,
		logger:    logger,
	}
	w, h := platform.DrawableSize()
	rp.resize(w, h)
	platform.OnSizeChanged(func(sc SizeChange) { rp.resize(sc.DrawableWidth, sc.DrawableHeight) })
	platform.OnDeviceError(func(err *CartridgeError) { rp.onDeviceError(err) })
	return rp
}

// SetPresentMode switches present mode and recomputes the viewport for the
// current drawable size. Safe to call at any time (e.g. from a Dev Mode
// toggle); takes effect on the next Present call.
func (rp *RenderPipeline) SetPresentMode(mode PresentMode) {
	rp.mode = mode
	rp.recomputeViewport()
}

// SetLetterboxColor overrides the default opaque-black letterbox fill.
func (rp *RenderPipeline) SetLetterboxColor(c LetterboxColor) {
	rp.letterbox = c
}

// SetOverlay registers a callback invoked after the console image is
// composited into the backbuffer but before Present, given the backbuffer
// RGBA bytes and its dimensions to draw into directly. Used by the IDE's
// debug overlay; nil clears it.
func (rp *RenderPipeline) SetOverlay(fn func(rgba []byte, w, h int)) {
	rp.overlay = fn
}

func (rp *RenderPipeline) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	rp.drawableW, rp.drawableH = w, h
	if rp.backbufferW != w || rp.backbufferH != h {
		rp.backbuffer = make([]byte, w*h*4)
		rp.backbufferW, rp.backbufferH = w, h
	}
	rp.recomputeViewport()
}

func (rp *RenderPipeline) onDeviceError(err *CartridgeError) {
	rp.logger.Error("render pipeline: device error, forcing backbuffer recreation: %v", err)
	rp.backbuffer = nil
	rp.backbufferW, rp.backbufferH = 0, 0
	w, h := rp.platform.DrawableSize()
	rp.resize(w, h)
}

// recomputeViewport implements the four present modes' pixel-aligned
// viewport math against the current drawable size.
func (rp *RenderPipeline) recomputeViewport() {
	W, H := rp.drawableW, rp.drawableH
	w, h := rp.cbufW, rp.cbufH
	if W <= 0 || H <= 0 || w <= 0 || h <= 0 {
		rp.viewport = Viewport{}
		return
	}

	switch rp.mode {
	case PresentStretch:
		rp.viewport = Viewport{X: 0, Y: 0, Width: W, Height: H}

	case PresentIntegerNearest:
		k := int(math.Min(float64(W)/float64(w), float64(H)/float64(h)))
		if k < 1 {
			rp.viewport = fitViewport(W, H, w, h)
			return
		}
		vw, vh := w*k, h*k
		rp.viewport = Viewport{X: (W - vw) / 2, Y: (H - vh) / 2, Width: vw, Height: vh}

	case PresentFill:
		s := math.Max(float64(W)/float64(w), float64(H)/float64(h))
		vw := int(math.Ceil(float64(w) * s))
		vh := int(math.Ceil(float64(h) * s))
		rp.viewport = Viewport{X: (W - vw) / 2, Y: (H - vh) / 2, Width: vw, Height: vh}

	default: // PresentFit
		rp.viewport = fitViewport(W, H, w, h)
	}
}

func fitViewport(W, H, w, h int) Viewport {
	s := math.Min(float64(W)/float64(w), float64(H)/float64(h))
	vw := int(math.Floor(float64(w) * s))
	vh := int(math.Floor(float64(h) * s))
	return Viewport{X: (W - vw) / 2, Y: (H - vh) / 2, Width: vw, Height: vh}
}

// Viewport returns the currently computed present viewport, in backbuffer
// (display) space, for Input's mouse-mapping to consume.
func (rp *RenderPipeline) Viewport() Viewport {
	return rp.viewport
}

// Present scales cbuf into the backbuffer per the active present mode,
// paints the letterbox region, runs the overlay hook, then hands the
// finished image to Platform. cbuf must be cbufW x cbufH.
func (rp *RenderPipeline) Present(cbuf *RasterSurface) *CartridgeError {
	if rp.backbuffer == nil || rp.backbufferW <= 0 || rp.backbufferH <= 0 {
		return newErr("renderPipeline.present", CategoryDeviceError, "no drawable surface to present into")
	}
	if cbuf.Width != rp.cbufW || cbuf.Height != rp.cbufH {
		return newErr("renderPipeline.present", CategoryInvalidArgument, "cbuf dimensions do not match console resolution")
	}

	rp.clearLetterbox()
	vp := rp.viewport
	if vp.Width > 0 && vp.Height > 0 {
		if rp.mode == PresentIntegerNearest {
			rp.blitNearest(cbuf, vp)
		} else {
			rp.blitScaled(cbuf, vp)
		}
	}

	if rp.overlay != nil {
		rp.overlay(rp.backbuffer, rp.backbufferW, rp.backbufferH)
	}

	if err := rp.platform.UploadFrame(rp.backbuffer, rp.backbufferW, rp.backbufferH); err != nil {
		e := newErr("renderPipeline.present", CategoryDeviceError, err.Error())
		rp.lastErr.Set(e)
		return e
	}
	if err := rp.platform.Present(); err != nil {
		e := newErr("renderPipeline.present", CategoryDeviceError, err.Error())
		rp.lastErr.Set(e)
		return e
	}
	return nil
}

func (rp *RenderPipeline) clearLetterbox() {
	buf := rp.backbuffer
	for i := 0; i < len(buf); i += 4 {
		buf[i+0] = rp.letterbox.R
		buf[i+1] = rp.letterbox.G
		buf[i+2] = rp.letterbox.B
		buf[i+3] = 0xFF
	}
}

// blitNearest is the point-sampled integer_nearest path: every destination
// texel maps to exactly one CBUF texel, no filtering, texel centers land
// on pixel centers by construction since vw/vh are exact multiples of w/h.
func (rp *RenderPipeline) blitNearest(cbuf *RasterSurface, vp Viewport) {
	k := vp.Width / cbuf.Width
	dstRowBytes := rp.backbufferW * 4

	for sy := 0; sy < cbuf.Height; sy++ {
		srcRow := sy * cbuf.Width * 4
		dstY0 := vp.Y + sy*k
		if dstY0 < 0 || dstY0 >= rp.backbufferH {
			continue
		}
		rowOff := dstY0 * dstRowBytes
		for sx := 0; sx < cbuf.Width; sx++ {
			dstX := vp.X + sx*k
			flattenOver(rp.backbuffer, rowOff+dstX*4, cbuf.Pix, srcRow+sx*4, rp.letterbox)
			for dx := 1; dx < k; dx++ {
				if dstX+dx >= rp.backbufferW {
					break
				}
				copy(rp.backbuffer[rowOff+(dstX+dx)*4:rowOff+(dstX+dx)*4+4], rp.backbuffer[rowOff+dstX*4:rowOff+dstX*4+4])
			}
		}
		for dy := 1; dy < k; dy++ {
			dstY := dstY0 + dy
			if dstY < 0 || dstY >= rp.backbufferH {
				continue
			}
			copy(rp.backbuffer[dstY*dstRowBytes:dstY*dstRowBytes+dstRowBytes], rp.backbuffer[rowOff:rowOff+dstRowBytes])
		}
	}
}

// blitScaled handles fit/fill/stretch with nearest-neighbour sampling
// using the same dstX*srcW/dstW integer-ratio mapping as
// video_compositor.go's blendFrameScaled, generalized to a destination
// rectangle (vp) instead of the full frame and to premultiplied-over
// flattening instead of an alpha-test copy.
func (rp *RenderPipeline) blitScaled(cbuf *RasterSurface, vp Viewport) {
	dstRowBytes := rp.backbufferW * 4
	x0, y0 := max0(vp.X), max0(vp.Y)
	x1 := minInt(vp.X+vp.Width, rp.backbufferW)
	y1 := minInt(vp.Y+vp.Height, rp.backbufferH)

	for dstY := y0; dstY < y1; dstY++ {
		srcY := (dstY - vp.Y) * cbuf.Height / vp.Height
		srcY = clampInt(srcY, 0, cbuf.Height-1)
		srcRowOff := srcY * cbuf.Width * 4
		dstRowOff := dstY * dstRowBytes
		for dstX := x0; dstX < x1; dstX++ {
			srcX := (dstX - vp.X) * cbuf.Width / vp.Width
			srcX = clampInt(srcX, 0, cbuf.Width-1)
			flattenOver(rp.backbuffer, dstRowOff+dstX*4, cbuf.Pix, srcRowOff+srcX*4, rp.letterbox)
		}
	}
}

// flattenOver composites one premultiplied CBUF source pixel over the
// opaque letterbox color already resident at dst, writing an opaque
// backbuffer pixel.
func flattenOver(dst []byte, dstOff int, src []byte, srcOff int, bg LetterboxColor) {
	sa := float64(src[srcOff+3]) / 255
	inv := 1 - sa
	dst[dstOff+0] = clampByteF(float64(src[srcOff+0]) + inv*float64(bg.R))
	dst[dstOff+1] = clampByteF(float64(src[srcOff+1]) + inv*float64(bg.G))
	dst[dstOff+2] = clampByteF(float64(src[srcOff+2]) + inv*float64(bg.B))
	dst[dstOff+3] = 0xFF
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
