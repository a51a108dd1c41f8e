// script_api_dev.go - dev.* namespace bindings, Dev Mode only

package arcanee

import (
	"bytes"
	"image"
	"image/png"
	"time"

	"golang.design/x/clipboard"
	lua "github.com/yuin/gopher-lua"
)

// RegisterDevAPI binds the dev namespace. The Scheduler/cartridge.go
// caller only invokes this when devMode is true; the global table simply
// does not exist for a Player-mode cartridge. clipboard.Init is
// attempted once per registration (mirrors the teacher's ebiten backend
// clipboardOK probe); captureFrame degrades to file-only on a headless
// build or a display with no clipboard service.
func RegisterDevAPI(vm *lua.LState, c *apiContext) {
	clipboardOK := clipboard.Init() == nil

	register(vm, "dev", "reloadCartridge", func(ls *lua.LState) int {
		c.cart.RequestReload()
		return 0
	})

	register(vm, "dev", "captureFrame", func(ls *lua.LState) int {
		if !checkArity(ls, c, "dev.captureFrame", 1) {
			return 0
		}
		path, ok := checkString(ls, c, "dev.captureFrame", 0)
		if !ok {
			return 0
		}
		cbuf := c.canvas.cbuf
		img := &image.RGBA{
			Pix:    cbuf.Pix,
			Stride: cbuf.Width * 4,
			Rect:   image.Rect(0, 0, cbuf.Width, cbuf.Height),
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			c.fail("dev.captureFrame", CategoryIOError, err.Error())
			return 0
		}
		if werr := c.vfs.WriteBytes(path, buf.Bytes()); werr != nil {
			c.fail("dev.captureFrame", werr.Category, werr.Cause)
			return 0
		}
		if clipboardOK {
			clipboard.Write(clipboard.FmtImage, buf.Bytes())
		}
		return 0
	})

	register(vm, "dev", "profileBegin", func(ls *lua.LState) int {
		if !checkArity(ls, c, "dev.profileBegin", 1) {
			return 0
		}
		name, ok := checkString(ls, c, "dev.profileBegin", 0)
		if !ok {
			return 0
		}
		c.profiles[name] = time.Now()
		return 0
	})

	register(vm, "dev", "profileEnd", func(ls *lua.LState) int {
		if !checkArity(ls, c, "dev.profileEnd", 1) {
			return 0
		}
		name, ok := checkString(ls, c, "dev.profileEnd", 0)
		if !ok {
			return 0
		}
		start, ok := c.profiles[name]
		if !ok {
			c.fail("dev.profileEnd", CategoryInvalidArgument, "no matching profileBegin for "+name)
			return 0
		}
		delete(c.profiles, name)
		elapsedMs := time.Since(start).Seconds() * 1000
		c.logger.Info("profile %s: %.3fms", name, elapsedMs)
		return 0
	})
}
