// SPDX-License-Identifier: EPL-2.0

package script

import (
	"context"
	"maps"
	"slices"

	"github.com/ik5/audloop/mixer"
	lua "github.com/yuin/gopher-lua"
)

const (
	launcherType = "audloop.launcher"
	trackType    = "audloop.track"
)

var launcherMethods = map[string]lua.LGFunction{
	"initialize":           launcherInitialize,
	"add_track":            launcherAddTrack,
	"get_track":            launcherGetTrack,
	"update_pending_clips": launcherUpdatePendingClips,
	"needs_audio":          launcherNeedsAudio,
	"play":                 launcherPlay,
	"pause":                launcherPause,
	"stop":                 launcherStop,
	"set_volume":           launcherSetVolume,
	"volume":               launcherVolume,
	"set_loop":             launcherSetLoop,
	"loop":                 launcherLoop,
	"sample_rate":          launcherSampleRate,
	"channels":             launcherChannels,
}

var trackMethods = map[string]lua.LGFunction{
	"name":        trackName,
	"has_clip":    trackHasClip,
	"set_pending": trackSetPending,
	"active":      trackActive,
	"pending":     trackPending,
	"clips":       trackClips,
}

func registerTypes(L *lua.LState) {
	mt := L.NewTypeMetatable(launcherType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), launcherMethods))

	mt = L.NewTypeMetatable(trackType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), trackMethods))
}

func checkLauncher(L *lua.LState) *mixer.Mixer {
	ud := L.CheckUserData(1)
	if m, ok := ud.Value.(*mixer.Mixer); ok {
		return m
	}

	L.ArgError(1, "launcher expected")

	return nil
}

func checkTrack(L *lua.LState) *mixer.Track {
	ud := L.CheckUserData(1)
	if t, ok := ud.Value.(*mixer.Track); ok {
		return t
	}

	L.ArgError(1, "track expected")

	return nil
}

func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// stringList reads a Lua array of strings.
func stringList(L *lua.LState, tbl *lua.LTable, what string) []string {
	out := make([]string, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		s, ok := tbl.RawGetInt(i).(lua.LString)
		if !ok {
			L.RaiseError("%s: entry %d is not a string", what, i)
		}
		out = append(out, string(s))
	}

	return out
}

// stringArgs accepts either one table of strings or strings as varargs,
// starting at argument from.
func stringArgs(L *lua.LState, from int) []string {
	if tbl, ok := L.Get(from).(*lua.LTable); ok {
		return stringList(L, tbl, "clips")
	}

	out := make([]string, 0, max(L.GetTop()-from+1, 0))
	for i := from; i <= L.GetTop(); i++ {
		out = append(out, L.CheckString(i))
	}

	return out
}

func pushOptString(L *lua.LState, s string, ok bool) int {
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	L.Push(lua.LString(s))
	return 1
}

// launcher:initialize({track = {clip, ...}, ...})
func launcherInitialize(L *lua.LState) int {
	m := checkLauncher(L)
	tbl := L.CheckTable(2)

	tracks := make(map[string][]string)
	tbl.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok {
			L.RaiseError("initialize: track name %v is not a string", k)
		}
		list, ok := v.(*lua.LTable)
		if !ok {
			L.RaiseError("initialize: clips of %s are not a table", name)
		}
		tracks[string(name)] = stringList(L, list, string(name))
	})

	if err := m.Initialize(luaContext(L), tracks); err != nil {
		L.RaiseError("initialize: %v", err)
	}

	return 0
}

// launcher:add_track(name, {clip, ...})
func launcherAddTrack(L *lua.LState) int {
	m := checkLauncher(L)
	name := L.CheckString(2)
	clips := stringList(L, L.CheckTable(3), name)

	if err := m.AddTrack(luaContext(L), name, clips); err != nil {
		L.RaiseError("add_track: %v", err)
	}

	return 0
}

// launcher:get_track(name) returns a track or nil.
func launcherGetTrack(L *lua.LState) int {
	m := checkLauncher(L)

	t, ok := m.Track(L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	ud := L.NewUserData()
	ud.Value = t
	L.SetMetatable(ud, L.GetTypeMetatable(trackType))
	L.Push(ud)

	return 1
}

// launcher:update_pending_clips({clip, ...}) or launcher:update_pending_clips(clip, ...)
func launcherUpdatePendingClips(L *lua.LState) int {
	m := checkLauncher(L)
	L.Push(lua.LBool(m.UpdatePendingClips(stringArgs(L, 2)...)))

	return 1
}

func launcherNeedsAudio(L *lua.LState) int {
	L.Push(lua.LBool(checkLauncher(L).NeedsAudio()))
	return 1
}

func launcherPlay(L *lua.LState) int {
	if err := checkLauncher(L).Play(); err != nil {
		L.RaiseError("play: %v", err)
	}

	return 0
}

func launcherPause(L *lua.LState) int {
	checkLauncher(L).Pause()
	return 0
}

func launcherStop(L *lua.LState) int {
	checkLauncher(L).Stop()
	return 0
}

func launcherSetVolume(L *lua.LState) int {
	checkLauncher(L).SetVolume(float64(L.CheckNumber(2)))
	return 0
}

func launcherVolume(L *lua.LState) int {
	L.Push(lua.LNumber(checkLauncher(L).Volume()))
	return 1
}

func launcherSetLoop(L *lua.LState) int {
	checkLauncher(L).SetLoop(L.CheckBool(2))
	return 0
}

func launcherLoop(L *lua.LState) int {
	L.Push(lua.LBool(checkLauncher(L).Loop()))
	return 1
}

func launcherSampleRate(L *lua.LState) int {
	L.Push(lua.LNumber(checkLauncher(L).SampleRate()))
	return 1
}

func launcherChannels(L *lua.LState) int {
	L.Push(lua.LNumber(checkLauncher(L).Channels()))
	return 1
}

func trackName(L *lua.LState) int {
	L.Push(lua.LString(checkTrack(L).Name()))
	return 1
}

func trackHasClip(L *lua.LState) int {
	L.Push(lua.LBool(checkTrack(L).HasClip(L.CheckString(2))))
	return 1
}

// track:set_pending(name) selects the clip for the track's next wrap
// directly, bypassing the staged requests. nil fades the track out.
func trackSetPending(L *lua.LState) int {
	t := checkTrack(L)
	L.Push(lua.LBool(t.SetPendingClip(L.OptString(2, ""))))

	return 1
}

func trackActive(L *lua.LState) int {
	name, ok := checkTrack(L).Active()
	return pushOptString(L, name, ok)
}

func trackPending(L *lua.LState) int {
	name, ok := checkTrack(L).Pending()
	return pushOptString(L, name, ok)
}

func trackClips(L *lua.LState) int {
	tbl := L.NewTable()
	for _, name := range checkTrack(L).Clips() {
		tbl.Append(lua.LString(name))
	}
	L.Push(tbl)

	return 1
}

// methodNames lists the launcher methods, for diagnostics.
func methodNames() []string {
	return slices.Sorted(maps.Keys(launcherMethods))
}
