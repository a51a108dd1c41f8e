// script_api_gfx3d.go - gfx3d.* namespace: Scene3D entity/transform/light/
// camera mutation and glTF import, mirroring gfx.*'s validate-then-call
// binding shape over Canvas2D.

package arcanee

import lua "github.com/yuin/gopher-lua"

// RegisterGfx3DAPI binds every gfx3d.* function documented in spec §6
// onto c.scene.
func RegisterGfx3DAPI(vm *lua.LState, c *apiContext) {
	register(vm, "gfx3d", "createEntity", func(ls *lua.LState) int {
		h, err := c.scene.CreateEntity()
		if err != nil {
			c.fail("gfx3d.createEntity", err.Category, err.Cause)
			ls.Push(lua.LNumber(0))
			return 1
		}
		pushHandle(ls, h)
		return 1
	})

	register(vm, "gfx3d", "destroyEntity", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.destroyEntity", 1) {
			return 0
		}
		n, ok := checkNumber(ls, c, "gfx3d.destroyEntity", 0)
		if !ok {
			return 0
		}
		c.scene.DestroyEntity(Handle(uint64(n)))
		return 0
	})

	register(vm, "gfx3d", "setTransform", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.setTransform", 11) {
			ls.Push(lua.LFalse)
			return 1
		}
		vals, ok := checkNumbersN(ls, c, "gfx3d.setTransform", 11)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		h := Handle(uint64(vals[0]))
		pos := Vec3{vals[1], vals[2], vals[3]}
		rot := Quat{vals[4], vals[5], vals[6], vals[7]}
		scale := Vec3{vals[8], vals[9], vals[10]}
		ls.Push(lua.LBool(c.scene.SetTransform(h, pos, rot, scale)))
		return 1
	})

	register(vm, "gfx3d", "setParent", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.setParent", 2) {
			ls.Push(lua.LFalse)
			return 1
		}
		vals, ok := checkNumbersN(ls, c, "gfx3d.setParent", 2)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.scene.SetParent(Handle(uint64(vals[0])), Handle(uint64(vals[1])))))
		return 1
	})

	// attachLight(entity, kind, color{r,g,b}, intensity, range, innerAngle, outerAngle)
	register(vm, "gfx3d", "attachLight", func(ls *lua.LState) int {
		const op = "gfx3d.attachLight"
		if !checkArity(ls, c, op, 9) {
			ls.Push(lua.LFalse)
			return 1
		}
		h, ok := checkNumber(ls, c, op, 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		kindStr, ok := checkString(ls, c, op, 1)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		kind, ok := parseLightKind(kindStr)
		if !ok {
			c.fail(op, CategoryInvalidArgument, "unknown light kind")
			ls.Push(lua.LFalse)
			return 1
		}
		rest, ok := checkNumbersFrom(ls, c, op, 2, 7)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		l := Light{
			Kind:       kind,
			Color:      Vec3{rest[0], rest[1], rest[2]},
			Intensity:  rest[3],
			Range:      rest[4],
			InnerAngle: rest[5],
			OuterAngle: rest[6],
		}
		ls.Push(lua.LBool(c.scene.AttachLight(Handle(uint64(h)), l)))
		return 1
	})

	register(vm, "gfx3d", "removeLight", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.removeLight", 1) {
			return 0
		}
		n, ok := checkNumber(ls, c, "gfx3d.removeLight", 0)
		if !ok {
			return 0
		}
		c.scene.RemoveLight(Handle(uint64(n)))
		return 0
	})

	// attachCamera(entity, fromTransform, eye{x,y,z}, at{x,y,z}, up{x,y,z}, fov, near, far)
	register(vm, "gfx3d", "attachCamera", func(ls *lua.LState) int {
		const op = "gfx3d.attachCamera"
		if !checkArity(ls, c, op, 14) {
			ls.Push(lua.LFalse)
			return 1
		}
		h, ok := checkNumber(ls, c, op, 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		fromTransform, ok := checkBool(ls, c, op, 1)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		nums, ok := checkNumbersFrom(ls, c, op, 2, 12)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		cam := Camera{
			Eye:           Vec3{nums[0], nums[1], nums[2]},
			At:            Vec3{nums[3], nums[4], nums[5]},
			Up:            Vec3{nums[6], nums[7], nums[8]},
			FromTransform: fromTransform,
			FOV:           nums[9],
			Near:          nums[10],
			Far:           nums[11],
		}
		ls.Push(lua.LBool(c.scene.AttachCamera(Handle(uint64(h)), cam)))
		return 1
	})

	register(vm, "gfx3d", "setActiveCamera", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.setActiveCamera", 1) {
			ls.Push(lua.LFalse)
			return 1
		}
		n, ok := checkNumber(ls, c, "gfx3d.setActiveCamera", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.scene.SetActiveCamera(Handle(uint64(n)))))
		return 1
	})

	register(vm, "gfx3d", "attachMesh", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.attachMesh", 2) {
			ls.Push(lua.LFalse)
			return 1
		}
		vals, ok := checkNumbersN(ls, c, "gfx3d.attachMesh", 2)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.scene.AttachMesh(Handle(uint64(vals[0])), Handle(uint64(vals[1])))))
		return 1
	})

	register(vm, "gfx3d", "attachMaterial", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.attachMaterial", 2) {
			ls.Push(lua.LFalse)
			return 1
		}
		vals, ok := checkNumbersN(ls, c, "gfx3d.attachMaterial", 2)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.scene.AttachMaterial(Handle(uint64(vals[0])), Handle(uint64(vals[1])))))
		return 1
	})

	register(vm, "gfx3d", "render", func(ls *lua.LState) int {
		c.scene.Render(c.devMode)
		return 0
	})

	register(vm, "gfx3d", "importGLTF", func(ls *lua.LState) int {
		if !checkArity(ls, c, "gfx3d.importGLTF", 1) {
			ls.Push(lua.LNil)
			return 1
		}
		path, ok := checkString(ls, c, "gfx3d.importGLTF", 0)
		if !ok {
			ls.Push(lua.LNil)
			return 1
		}
		res, err := ImportGLTF(c.vfs, c.scene, c.registry, c.cartID, path)
		if err != nil {
			c.fail("gfx3d.importGLTF", err.Category, err.Cause)
			ls.Push(lua.LNil)
			return 1
		}
		ls.Push(gltfResultToLua(ls, res))
		return 1
	})
}

func parseLightKind(name string) (LightKind, bool) {
	switch name {
	case "directional":
		return LightDirectional, true
	case "point":
		return LightPoint, true
	case "spot":
		return LightSpot, true
	default:
		return 0, false
	}
}

// checkNumbersN reads positional indices 0..n-1 as numbers.
func checkNumbersN(ls *lua.LState, c *apiContext, op string, n int) ([]float64, bool) {
	return checkNumbersFrom(ls, c, op, 0, n)
}

// checkNumbersFrom reads n numbers starting at positional index start.
func checkNumbersFrom(ls *lua.LState, c *apiContext, op string, start, n int) ([]float64, bool) {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, ok := checkNumber(ls, c, op, start+i)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func gltfResultToLua(ls *lua.LState, res *GLTFImportResult) *lua.LTable {
	tbl := ls.NewTable()
	tbl.RawSetString("root", lua.LNumber(uint64(res.Root)))
	tbl.RawSetString("meshes", handleListToLua(ls, res.Meshes))
	tbl.RawSetString("materials", handleListToLua(ls, res.Materials))
	tbl.RawSetString("textures", handleListToLua(ls, res.Textures))

	anims := ls.NewTable()
	for i, a := range res.Animations {
		at := ls.NewTable()
		at.RawSetString("name", lua.LString(a.Name))
		at.RawSetString("channelCount", lua.LNumber(a.ChannelCount))
		anims.RawSetInt(i+1, at)
	}
	tbl.RawSetString("animations", anims)
	return tbl
}

func handleListToLua(ls *lua.LState, hs []Handle) *lua.LTable {
	tbl := ls.NewTable()
	for i, h := range hs {
		tbl.RawSetInt(i+1, lua.LNumber(uint64(h)))
	}
	return tbl
}
