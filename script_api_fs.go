// script_api_fs.go - fs.* namespace bindings over the VFS

package arcanee

import lua "github.com/yuin/gopher-lua"

// RegisterFSAPI binds the fs namespace. Every binding's failure value
// matches the documented contract: null for reads, false for
// writes/boolean ops.
func RegisterFSAPI(vm *lua.LState, c *apiContext) {
	register(vm, "fs", "readText", func(ls *lua.LState) int {
		if !checkArity(ls, c, "fs.readText", 1) {
			ls.Push(lua.LNil)
			return 1
		}
		p, ok := checkString(ls, c, "fs.readText", 0)
		if !ok {
			ls.Push(lua.LNil)
			return 1
		}
		text, err := c.vfs.ReadText(p)
		if err != nil {
			c.fail("fs.readText", err.Category, err.Error())
			ls.Push(lua.LNil)
			return 1
		}
		ls.Push(lua.LString(text))
		return 1
	})

	register(vm, "fs", "writeText", func(ls *lua.LState) int {
		if !checkArity(ls, c, "fs.writeText", 2) {
			ls.Push(lua.LFalse)
			return 1
		}
		p, ok1 := checkString(ls, c, "fs.writeText", 0)
		text, ok2 := checkString(ls, c, "fs.writeText", 1)
		if !ok1 || !ok2 {
			ls.Push(lua.LFalse)
			return 1
		}
		if err := c.vfs.WriteText(p, text); err != nil {
			c.fail("fs.writeText", err.Category, err.Error())
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LTrue)
		return 1
	})

	register(vm, "fs", "exists", func(ls *lua.LState) int {
		if !checkArity(ls, c, "fs.exists", 1) {
			ls.Push(lua.LFalse)
			return 1
		}
		p, ok := checkString(ls, c, "fs.exists", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LBool(c.vfs.Exists(p)))
		return 1
	})

	register(vm, "fs", "listDir", func(ls *lua.LState) int {
		if !checkArity(ls, c, "fs.listDir", 1) {
			ls.Push(lua.LNil)
			return 1
		}
		p, ok := checkString(ls, c, "fs.listDir", 0)
		if !ok {
			ls.Push(lua.LNil)
			return 1
		}
		names, err := c.vfs.ListDir(p)
		if err != nil {
			c.fail("fs.listDir", err.Category, err.Error())
			ls.Push(lua.LNil)
			return 1
		}
		tbl := ls.NewTable()
		for i, n := range names {
			tbl.RawSetInt(i+1, lua.LString(n))
		}
		ls.Push(tbl)
		return 1
	})

	register(vm, "fs", "mkdir", func(ls *lua.LState) int {
		if !checkArity(ls, c, "fs.mkdir", 1) {
			ls.Push(lua.LFalse)
			return 1
		}
		p, ok := checkString(ls, c, "fs.mkdir", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		if err := c.vfs.Mkdir(p); err != nil {
			c.fail("fs.mkdir", err.Category, err.Error())
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LTrue)
		return 1
	})

	register(vm, "fs", "remove", func(ls *lua.LState) int {
		if !checkArity(ls, c, "fs.remove", 1) {
			ls.Push(lua.LFalse)
			return 1
		}
		p, ok := checkString(ls, c, "fs.remove", 0)
		if !ok {
			ls.Push(lua.LFalse)
			return 1
		}
		if err := c.vfs.Remove(p); err != nil {
			c.fail("fs.remove", err.Category, err.Error())
			ls.Push(lua.LFalse)
			return 1
		}
		ls.Push(lua.LTrue)
		return 1
	})

	register(vm, "fs", "stat", func(ls *lua.LState) int {
		if !checkArity(ls, c, "fs.stat", 1) {
			ls.Push(lua.LNil)
			return 1
		}
		p, ok := checkString(ls, c, "fs.stat", 0)
		if !ok {
			ls.Push(lua.LNil)
			return 1
		}
		res, err := c.vfs.Stat(p)
		if err != nil {
			c.fail("fs.stat", err.Category, err.Error())
			ls.Push(lua.LNil)
			return 1
		}
		tbl := ls.NewTable()
		if res.Kind == StatDir {
			tbl.RawSetString("type", lua.LString("dir"))
		} else {
			tbl.RawSetString("type", lua.LString("file"))
		}
		tbl.RawSetString("size", lua.LNumber(res.Size))
		if res.HasTime {
			tbl.RawSetString("mtime", lua.LNumber(res.ModTime.Unix()))
		} else {
			tbl.RawSetString("mtime", lua.LNil)
		}
		ls.Push(tbl)
		return 1
	})
}
