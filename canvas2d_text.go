// canvas2d_text.go - font loading, measurement, and text rasterization via golang.org/x/image/font

package arcanee

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// loadedFont is the Resource Registry payload behind a Font handle.
type loadedFont struct {
	face font.Face
}

// LoadFont reads a TTF/OTF from the VFS and rasterizes a face at the
// given nominal pixel size, registering it under ResourceFont. Every call
// allocates a new handle, so each size the cartridge requests is its own
// handle.
func LoadFont(vfs *VFS, registry *ResourceRegistry, cartID, vfsPath string, pixelSize float64) (Handle, *CartridgeError) {
	data, err := vfs.ReadBytes(vfsPath)
	if err != nil {
		return handleInvalid, err
	}
	parsed, perr := opentype.Parse(data)
	if perr != nil {
		return handleInvalid, newErr("gfx.loadFont", CategoryInvalidArgument, perr.Error())
	}
	face, ferr := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    pixelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if ferr != nil {
		return handleInvalid, newErr("gfx.loadFont", CategoryInvalidArgument, ferr.Error())
	}
	h, aerr := registry.Allocate(ResourceFont, cartID, &loadedFont{face: face})
	if aerr != nil {
		return handleInvalid, aerr
	}
	return h, nil
}

// TextMetrics mirrors the spec's {width, height, ascent, descent,
// lineHeight} measureText result.
type TextMetrics struct {
	Width, Height, Ascent, Descent, LineHeight float64
}

func fx26ToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// MeasureText computes layout metrics consistent with the positioning
// fillText/strokeText use (same face.GlyphAdvance-based advance sum).
func MeasureText(face font.Face, text string) TextMetrics {
	width := fx26ToFloat(font.MeasureString(face, text))
	m := face.Metrics()
	return TextMetrics{
		Width:      width,
		Height:     fx26ToFloat(m.Ascent + m.Descent),
		Ascent:     fx26ToFloat(m.Ascent),
		Descent:    fx26ToFloat(m.Descent),
		LineHeight: fx26ToFloat(m.Height),
	}
}

// textOrigin resolves the anchor (x,y) plus align/baseline into the
// font.Drawer's Dot (the alphabetic baseline start position).
func textOrigin(face font.Face, text string, x, y float64, align TextAlign, baseline TextBaseline) (float64, float64) {
	m := face.Metrics()
	width := fx26ToFloat(font.MeasureString(face, text))

	dx := x
	switch align {
	case AlignCenter:
		dx = x - width/2
	case AlignRight, AlignEnd:
		dx = x - width
	}

	dy := y
	switch baseline {
	case BaselineTop:
		dy = y + fx26ToFloat(m.Ascent)
	case BaselineMiddle:
		dy = y + fx26ToFloat(m.Ascent-m.Descent)/2
	case BaselineBottom:
		dy = y - fx26ToFloat(m.Descent)
	case BaselineAlphabetic:
		dy = y
	}
	return dx, dy
}

// executeText rasterizes a glyph-coverage mask via font.Drawer into a
// throwaway RGBA canvas, then composites it through the same blend path
// as fills so text honors global alpha/blend/clip uniformly.
func (c *Canvas2D) executeText(cmd Command) {
	payload, _ := c.registry.Resolve(cmd.Font, ResourceFont)
	lf, ok := payload.(*loadedFont)
	if !ok || lf == nil {
		return
	}
	if cmd.MaxWidth > 0 {
		full := fx26ToFloat(font.MeasureString(lf.face, cmd.Text))
		if full > cmd.MaxWidth {
			// Deterministic clip: drop trailing runes until it fits.
			runes := []rune(cmd.Text)
			for len(runes) > 0 && fx26ToFloat(font.MeasureString(lf.face, string(runes))) > cmd.MaxWidth {
				runes = runes[:len(runes)-1]
			}
			cmd.Text = string(runes)
		}
	}

	dx, dy := textOrigin(lf.face, cmd.Text, cmd.TextX, cmd.TextY, cmd.Align, cmd.Baseline)

	w, h := cmd.Target.Width, cmd.Target.Height
	glyphMask := image.NewRGBA(image.Rect(0, 0, w, h))
	drawer := font.Drawer{
		Dst:  glyphMask,
		Src:  image.NewUniform(image.White),
		Face: lf.face,
		Dot:  fixed.P(int(math.Round(dx)), int(math.Round(dy))),
	}
	drawer.DrawString(cmd.Text)

	pr, pg, pb, pa := rgba01(cmd.Paint.Solid)
	var clipMask *image.Alpha
	if cmd.Clip != nil && len(cmd.Clip.Subpaths) > 0 {
		clipMask = rasterizeCoverage(w, h, cmd.Clip.Subpaths)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := glyphMask.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			cov := float64(a>>8) / 255
			if clipMask != nil {
				cov *= float64(clipMask.AlphaAt(x, y).A) / 255
			}
			srcA := cov * cmd.GlobalAlpha * pa
			if srcA <= 0 {
				continue
			}
			off := (y*w + x) * 4
			compositePixel(cmd.Target.Pix, off, pr, pg, pb, srcA, cmd.Blend)
		}
	}
}
