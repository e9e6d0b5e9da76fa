package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable exposes platform information to user configs as a
// read-only global Lua table named "platform". This must be called before
// the user's config code runs.
func InjectPlatformTable(L *lua.LState, info *Info) {
	platformTable := L.NewTable()

	L.SetField(platformTable, "os", lua.LString(info.OS))
	L.SetField(platformTable, "arch", lua.LString(info.Arch))

	L.SetField(platformTable, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(platformTable, "is_macos", lua.LBool(info.IsMacOS()))
	L.SetField(platformTable, "is_debian_family", lua.LBool(info.IsDebianFamily()))

	if info.Distro != "" {
		L.SetField(platformTable, "distro", lua.LString(info.Distro))
		L.SetField(platformTable, "family", lua.LString(info.Family))
		L.SetField(platformTable, "version", lua.LString(info.Version))
	} else {
		L.SetField(platformTable, "distro", lua.LNil)
		L.SetField(platformTable, "family", lua.LNil)
		L.SetField(platformTable, "version", lua.LNil)
	}

	L.SetGlobal("platform", makeReadOnly(L, platformTable))
}

// makeReadOnly wraps a table in a proxy whose metatable forwards reads and
// rejects all writes.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
