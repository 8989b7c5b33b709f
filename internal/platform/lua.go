package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// luaGlobal is the name of the table seen by configurations.
const luaGlobal = "platform"

// InjectPlatformTable publishes info to L as the read-only global
// "platform". Call it before evaluating user code.
//
// Besides the plain fields the table offers two helpers:
//
//	platform.when(cond, value)               -- value if cond, else nil
//	platform.by_arch{ arm64 = a, x86_64 = b } -- the entry for the host arch
func InjectPlatformTable(L *lua.LState, info *Info) error {
	fields := L.NewTable()

	for key, value := range map[string]lua.LValue{
		"os":               lua.LString(info.OS),
		"arch":             lua.LString(info.Arch.String()),
		"kernel_arch":      lua.LString(info.KernelArch),
		"version":          lua.LString(info.Version),
		"is_macos":         lua.LBool(info.IsMacOS()),
		"is_linux":         lua.LBool(info.IsLinux()),
		"is_arm64":         lua.LBool(info.IsARM64()),
		"is_x86_64":        lua.LBool(info.IsX86_64()),
		"is_apple_silicon": lua.LBool(info.IsAppleSilicon()),
	} {
		fields.RawSetString(key, value)
	}

	fields.RawSetString("when", L.NewFunction(luaWhen))
	fields.RawSetString("by_arch", L.NewFunction(func(L *lua.LState) int {
		choices := L.CheckTable(1)
		L.Push(choices.RawGetString(info.Arch.String()))
		return 1
	}))

	L.SetGlobal(luaGlobal, readOnlyProxy(L, fields))
	return nil
}

func luaWhen(L *lua.LState) int {
	if L.CheckBool(1) {
		L.Push(L.Get(2))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

// readOnlyProxy returns an empty table whose metatable forwards reads to
// backing and raises on every write.
func readOnlyProxy(L *lua.LState, backing *lua.LTable) *lua.LTable {
	meta := L.NewTable()
	meta.RawSetString("__index", backing)
	meta.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("%s table is read-only", luaGlobal)
		return 0
	}))
	meta.RawSetString("__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, meta)
	return proxy
}
