// SPDX-License-Identifier: EPL-2.0

package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ik5/audloop/mixer"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

const (
	initFunc   = "initialize"
	updateFunc = "update"
)

// Agent owns a Lua state bound to one mixer. Lua states are not safe for
// concurrent use; Agent serializes every call into the script.
type Agent struct {
	mixer *mixer.Mixer
	log   zerolog.Logger

	mu       sync.Mutex
	ls       *lua.LState
	launcher *lua.LUserData
}

type Option func(*Agent)

func WithLogger(l zerolog.Logger) Option {
	return func(a *Agent) { a.log = l }
}

// New returns an agent with an empty script environment.
func New(m *mixer.Mixer, opts ...Option) *Agent {
	a := &Agent{
		mixer: m,
		log:   zerolog.Nop(),
		ls:    lua.NewState(),
	}

	for _, opt := range opts {
		opt(a)
	}

	registerTypes(a.ls)
	a.ls.SetGlobal("print", a.ls.NewFunction(a.luaPrint))

	a.launcher = a.ls.NewUserData()
	a.launcher.Value = m
	a.ls.SetMetatable(a.launcher, a.ls.GetTypeMetatable(launcherType))

	a.log.Debug().Strs("methods", methodNames()).Msg("launcher bound")

	return a
}

// LoadFile runs the script at path, which defines the driver functions.
func (a *Agent) LoadFile(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ls == nil {
		return ErrClosed
	}
	if err := a.ls.DoFile(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	a.log.Debug().Str("script", path).Msg("script loaded")

	return nil
}

// LoadString runs src as a script.
func (a *Agent) LoadString(src string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ls == nil {
		return ErrClosed
	}
	if err := a.ls.DoString(src); err != nil {
		return fmt.Errorf("loading script: %w", err)
	}

	return nil
}

// Initialize calls the script's initialize function.
func (a *Agent) Initialize(ctx context.Context) error {
	_, err := a.call(ctx, initFunc)
	return err
}

// Update calls the script's update function once. It reports false when
// the script asks to stop by returning false.
func (a *Agent) Update(ctx context.Context) (bool, error) {
	ret, err := a.call(ctx, updateFunc)
	if err != nil {
		return false, err
	}

	return ret != lua.LFalse, nil
}

// Run initializes the script, then polls update every interval until update
// returns false or fails. A done ctx ends the run without an error.
func (a *Agent) Run(ctx context.Context, interval time.Duration) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}

	return a.Poll(ctx, interval)
}

// Poll is Run without the initialize call, for hosts that attach an output
// device between the two.
func (a *Agent) Poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Debug().Msg("driver stopped by context")
			return nil
		case <-ticker.C:
		}

		more, err := a.Update(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !more {
			a.log.Info().Msg("driver finished")
			return nil
		}
	}
}

// Close releases the Lua state.
func (a *Agent) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ls != nil {
		a.ls.Close()
		a.ls = nil
	}
}

func (a *Agent) call(ctx context.Context, name string) (lua.LValue, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ls == nil {
		return lua.LNil, ErrClosed
	}

	fn, ok := a.ls.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return lua.LNil, fmt.Errorf("%w: %s", ErrMissingFunction, name)
	}

	a.ls.SetContext(ctx)
	defer a.ls.RemoveContext()

	if err := a.ls.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, a.launcher); err != nil {
		return lua.LNil, fmt.Errorf("calling %s: %w", name, err)
	}

	ret := a.ls.Get(-1)
	a.ls.Pop(1)

	return ret, nil
}

func (a *Agent) luaPrint(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}

	a.log.Info().Str("source", "script").Msg(strings.Join(parts, "\t"))

	return 0
}
