// Package scripting runs entity behaviors written in Lua.
//
// A script may define the globals start(), update(dt) and on_destroy().
// Each entity gets its own VM, so scripts keep private state in globals.
// The entity the script is attached to is exposed as the global table
// "entity":
//
//	entity.id()                      entity.name()
//	entity.translate(dx, dy, dz)     entity.set_position(x, y, z)
//	entity.set_rotation(p, y, r)     entity.rotate(p, y, r)
//	entity.set_scale(x, y, z)        entity.position() -> x, y, z
//	entity.scale() -> x, y, z        entity.set_active(bool)
//	entity.active() -> bool
//
// Keyboard and mouse state is read through the global table "input". Keys
// are named like "w", "space" or "f1"; buttons "left", "right", "middle":
//
//	input.key_down(key) -> bool      input.key_was_down(key) -> bool
//	input.button_down(b) -> bool     input.mouse_position() -> x, y
//
// log(msg) writes to the engine logger.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const API_VERSION = 2

// script is a chunk compiled once and shared by every VM built from it.
type script struct {
	name   string
	source string

	once  sync.Once
	proto *lua.FunctionProto
	err   error
}

func (s *script) compile() (*lua.FunctionProto, error) {
	s.once.Do(func() {
		chunk, err := parse.Parse(strings.NewReader(s.source), s.name)
		if err != nil {
			s.err = fmt.Errorf("parse %s: %w", s.name, err)
			return
		}
		s.proto, s.err = lua.Compile(chunk, s.name)
		if s.err != nil {
			s.err = fmt.Errorf("compile %s: %w", s.name, s.err)
		}
	})
	return s.proto, s.err
}

/**
 * @brief Returns a factory for behaviors running source. The source is
 * compiled on the first attach. A compile error is returned from every
 * attach, so only the entities using the broken script lose their
 * behavior.
 */
func LuaFactory(name, source string, logger *log.Logger) scene.BehaviorFactory {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	s := &script{name: name, source: source}
	logger = logger.WithPrefix("lua")
	return func(api scene.API) (scene.Behavior, error) {
		proto, err := s.compile()
		if err != nil {
			return nil, err
		}
		return newLuaBehavior(s.name, proto, api, logger)
	}
}

/**
 * @brief Registers every .lua file of dir under its base name without the
 * extension. A missing directory registers nothing.
 */
func LoadDir(registry *scene.BehaviorRegistry, dir string, logger *log.Logger) ([]string, error) {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return names, fmt.Errorf("load %s: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), ".lua")
		registry.Register(name, LuaFactory(name, string(data), logger))
		names = append(names, name)
		logger.Debug("loaded lua script", "file", path, "behavior", name)
	}
	return names, nil
}

type luaBehavior struct {
	name   string
	vm     *lua.LState
	logger *log.Logger
}

func newLuaBehavior(name string, proto *lua.FunctionProto, api scene.API, logger *log.Logger) (*luaBehavior, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(API_VERSION))
	vm.SetGlobal("entity", entityTable(vm, api))
	vm.SetGlobal("input", inputTable(vm, api))
	vm.SetGlobal("log", vm.NewFunction(func(L *lua.LState) int {
		logger.Info(L.CheckString(1), "script", name, "entity", api.ID())
		return 0
	}))

	vm.Push(vm.NewFunctionFromProto(proto))
	if err := vm.PCall(0, lua.MultRet, nil); err != nil {
		vm.Close()
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return &luaBehavior{name: name, vm: vm, logger: logger}, nil
}

func entityTable(vm *lua.LState, api scene.API) *lua.LTable {
	t := vm.NewTable()
	fns := map[string]lua.LGFunction{
		"id": func(L *lua.LState) int {
			L.Push(lua.LNumber(api.ID()))
			return 1
		},
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(api.Name()))
			return 1
		},
		"translate": func(L *lua.LState) int {
			x, y, z := vec3Args(L)
			api.Translate(x, y, z)
			return 0
		},
		"set_position": func(L *lua.LState) int {
			x, y, z := vec3Args(L)
			api.SetPosition(x, y, z)
			return 0
		},
		"set_rotation": func(L *lua.LState) int {
			pitch, yaw, roll := vec3Args(L)
			api.SetRotation(pitch, yaw, roll)
			return 0
		},
		"rotate": func(L *lua.LState) int {
			pitch, yaw, roll := vec3Args(L)
			api.Rotate(pitch, yaw, roll)
			return 0
		},
		"set_scale": func(L *lua.LState) int {
			x, y, z := vec3Args(L)
			api.SetScale(x, y, z)
			return 0
		},
		"position": func(L *lua.LState) int {
			p := api.Position()
			L.Push(lua.LNumber(p.X))
			L.Push(lua.LNumber(p.Y))
			L.Push(lua.LNumber(p.Z))
			return 3
		},
		"scale": func(L *lua.LState) int {
			s := api.Scale()
			L.Push(lua.LNumber(s.X))
			L.Push(lua.LNumber(s.Y))
			L.Push(lua.LNumber(s.Z))
			return 3
		},
		"set_active": func(L *lua.LState) int {
			api.SetActive(L.ToBool(1))
			return 0
		},
		"active": func(L *lua.LState) int {
			L.Push(lua.LBool(api.Active()))
			return 1
		},
	}
	for name, fn := range fns {
		t.RawSetString(name, vm.NewFunction(fn))
	}
	return t
}

// inputTable resolves the input state on every call; the entity may join a
// graph after the behavior is built.
func inputTable(vm *lua.LState, api scene.API) *lua.LTable {
	t := vm.NewTable()
	fns := map[string]lua.LGFunction{
		"key_down": func(L *lua.LState) int {
			L.Push(lua.LBool(api.Input().IsKeyDown(keyArg(L))))
			return 1
		},
		"key_was_down": func(L *lua.LState) int {
			L.Push(lua.LBool(api.Input().WasKeyDown(keyArg(L))))
			return 1
		},
		"button_down": func(L *lua.LState) int {
			name := L.CheckString(1)
			button, ok := core.ButtonFromName(name)
			if !ok {
				L.ArgError(1, "unknown mouse button "+name)
				return 0
			}
			L.Push(lua.LBool(api.Input().IsButtonDown(button)))
			return 1
		},
		"mouse_position": func(L *lua.LState) int {
			x, y := api.Input().MousePosition()
			L.Push(lua.LNumber(x))
			L.Push(lua.LNumber(y))
			return 2
		},
	}
	for name, fn := range fns {
		t.RawSetString(name, vm.NewFunction(fn))
	}
	return t
}

func keyArg(L *lua.LState) core.KeyCode {
	name := L.CheckString(1)
	key, ok := core.KeyFromName(name)
	if !ok {
		L.ArgError(1, "unknown key "+name)
	}
	return key
}

func vec3Args(L *lua.LState) (float32, float32, float32) {
	return float32(L.CheckNumber(1)), float32(L.CheckNumber(2)), float32(L.CheckNumber(3))
}

// call runs the global fn if the script defines it.
func (b *luaBehavior) call(fn string, args ...lua.LValue) error {
	if b.vm == nil {
		return nil
	}
	f := b.vm.GetGlobal(fn)
	if f == lua.LNil {
		return nil
	}
	if err := b.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("lua %s.%s: %w", b.name, fn, err)
	}
	return nil
}

func (b *luaBehavior) Start() error {
	return b.call("start")
}

func (b *luaBehavior) Update(deltaTime float64) error {
	return b.call("update", lua.LNumber(deltaTime))
}

// OnDestroy runs on_destroy and releases the VM.
func (b *luaBehavior) OnDestroy() {
	if b.vm == nil {
		return
	}
	if err := b.call("on_destroy"); err != nil {
		b.logger.Error("on_destroy failed", "script", b.name, "err", err)
	}
	b.vm.Close()
	b.vm = nil
}
