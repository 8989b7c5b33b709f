package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed before any user code runs. What remains is
// string, table, math and the basic value helpers (type, tostring, pairs...).
var blockedGlobals = []string{
	// process and filesystem access
	"os",
	"io",
	// code loading
	"require",
	"module",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	// escapes from the read-only platform table
	"debug",
	"getmetatable",
	"setmetatable",
	"rawget",
	"rawset",
	"rawequal",
	"getfenv",
	"setfenv",
	"collectgarbage",
}

// sandboxLuaVM removes every global that could reach the host or
// bypass read-only tables.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	// package.loaders would still let code reach the file system
	L.SetGlobal("package", lua.LNil)
}

// newSandboxedVM creates a Lua state for config evaluation with the
// call stack and registry bounded.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: maxCallStackSize,
		RegistrySize:  maxRegistrySize,
	})
	sandboxLuaVM(L)
	return L
}
