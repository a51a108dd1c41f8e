// canvas2d_texture.go - texture/surface creation and image decoding for drawImage

package arcanee

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// loadedTexture is the Resource Registry payload behind a Texture
// handle: a read-only, premultiplied RasterSurface decoded from VFS
// bytes. Straight-alpha source images are premultiplied at load time per
// the spec's alpha convention.
type loadedTexture struct {
	surf *RasterSurface
}

// LoadTexture decodes a PNG/JPEG read through the VFS and registers it
// under ResourceTexture, enforcing the same max-surface-dimension limit
// Canvas2D surfaces use.
func LoadTexture(vfs *VFS, registry *ResourceRegistry, cartID, vfsPath string) (Handle, *CartridgeError) {
	data, err := vfs.ReadBytes(vfsPath)
	if err != nil {
		return handleInvalid, err
	}
	surf, derr := decodeImageRaster(data, "gfx.loadTexture")
	if derr != nil {
		return handleInvalid, derr
	}
	if err := registry.AddTextureMemory(int64(len(surf.Pix))); err != nil {
		return handleInvalid, err
	}
	h, aerr := registry.Allocate(ResourceTexture, cartID, &loadedTexture{surf: surf})
	if aerr != nil {
		registry.ReleaseTextureMemory(int64(len(surf.Pix)))
		return handleInvalid, aerr
	}
	return h, nil
}

// decodeImageRaster decodes a PNG/JPEG byte stream into a premultiplied
// RasterSurface, enforcing the shared max-surface-dimension limit. Used
// by both gfx.loadTexture and the glTF importer's embedded/external
// image loading, so both paths premultiply and size-limit identically.
func decodeImageRaster(data []byte, op string) (*RasterSurface, *CartridgeError) {
	img, _, derr := image.Decode(bytes.NewReader(data))
	if derr != nil {
		return nil, newErr(op, CategoryAssetDecodeError, derr.Error())
	}
	b := img.Bounds()
	if b.Dx() > maxSurfaceDim || b.Dy() > maxSurfaceDim {
		return nil, newErr(op, CategoryQuotaExceeded, "image exceeds max surface dimension")
	}
	surf := NewRasterSurface(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := (y*b.Dx() + x) * 4
			// RGBA() returns premultiplied 16-bit; downshift to 8-bit.
			surf.Pix[off+0] = byte(r >> 8)
			surf.Pix[off+1] = byte(g >> 8)
			surf.Pix[off+2] = byte(bb >> 8)
			surf.Pix[off+3] = byte(a >> 8)
		}
	}
	return surf, nil
}

// CreateSurface allocates a blank, writable offscreen RasterSurface
// target (e.g. for render-to-texture effects) registered under
// ResourceSurface, enforcing the surface-pixel budget.
func CreateSurface(registry *ResourceRegistry, cartID string, w, h int) (Handle, *CartridgeError) {
	if w <= 0 || h <= 0 || w > maxSurfaceDim || h > maxSurfaceDim {
		return handleInvalid, newErr("gfx.createSurface", CategoryInvalidArgument, "surface dimensions out of range")
	}
	if err := registry.AddSurfacePixels(int64(w * h)); err != nil {
		return handleInvalid, err
	}
	surf := NewRasterSurface(w, h)
	h2, aerr := registry.Allocate(ResourceSurface, cartID, surf)
	if aerr != nil {
		registry.ReleaseSurfacePixels(int64(w * h))
		return handleInvalid, aerr
	}
	return h2, nil
}

// executeDrawImage nearest-samples a texture/surface's source rect into
// the destination rect on the active target, compositing through the
// same blend path as fills.
func (c *Canvas2D) executeDrawImage(cmd Command) {
	var src *RasterSurface
	if payload, err := c.registry.Resolve(cmd.Image, ResourceTexture); err == nil {
		if lt, ok := payload.(*loadedTexture); ok {
			src = lt.surf
		}
	} else if payload, err := c.registry.Resolve(cmd.Image, ResourceSurface); err == nil {
		if s, ok := payload.(*RasterSurface); ok {
			src = s
		}
	}
	if src == nil {
		return
	}

	sw, sh := cmd.SrcW, cmd.SrcH
	if sw <= 0 {
		sw = float64(src.Width)
	}
	if sh <= 0 {
		sh = float64(src.Height)
	}
	dw, dh := cmd.DstW, cmd.DstH
	if dw <= 0 {
		dw = sw
	}
	if dh <= 0 {
		dh = sh
	}

	w, h := cmd.Target.Width, cmd.Target.Height
	x0, y0 := int(cmd.DstX), int(cmd.DstY)
	x1, y1 := int(cmd.DstX+dw), int(cmd.DstY+dh)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}

	var clipMask *image.Alpha
	if cmd.Clip != nil && len(cmd.Clip.Subpaths) > 0 {
		clipMask = rasterizeCoverage(w, h, cmd.Clip.Subpaths)
	}

	for y := y0; y < y1; y++ {
		v := (float64(y) - cmd.DstY) / dh
		sy := int(cmd.SrcY + v*sh)
		if sy < 0 || sy >= src.Height {
			continue
		}
		for x := x0; x < x1; x++ {
			u := (float64(x) - cmd.DstX) / dw
			sx := int(cmd.SrcX + u*sw)
			if sx < 0 || sx >= src.Width {
				continue
			}
			srcOff := (sy*src.Width + sx) * 4
			srcA := float64(src.Pix[srcOff+3]) / 255 * cmd.GlobalAlpha
			if clipMask != nil {
				srcA *= float64(clipMask.AlphaAt(x, y).A) / 255
			}
			if srcA <= 0 {
				continue
			}
			var pr, pg, pb float64
			if srcA > 0 {
				pr = float64(src.Pix[srcOff+0]) / 255 / (float64(src.Pix[srcOff+3]) / 255)
				pg = float64(src.Pix[srcOff+1]) / 255 / (float64(src.Pix[srcOff+3]) / 255)
				pb = float64(src.Pix[srcOff+2]) / 255 / (float64(src.Pix[srcOff+3]) / 255)
			}
			dstOff := (y*w + x) * 4
			compositePixel(cmd.Target.Pix, dstOff, pr, pg, pb, srcA, cmd.Blend)
		}
	}
}
