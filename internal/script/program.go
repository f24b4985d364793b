// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Error codes for script failures.
const (
	CodeScriptSyntax    = "SCRIPT_SYNTAX"
	CodeScriptRuntime   = "SCRIPT_RUNTIME"
	CodeScriptNoFunc    = "SCRIPT_FUNCTION_MISSING"
	CodeScriptBadResult = "SCRIPT_BAD_RESULT"
)

// DefaultTimeout bounds a single function call.
const DefaultTimeout = 100 * time.Millisecond

// Program is a compiled Lua chunk. Each call runs in a fresh sandboxed state,
// so globals set by one call are not visible to the next.
type Program struct {
	name    string
	proto   *lua.FunctionProto
	factory *StateFactory
	timeout time.Duration
	logger  *slog.Logger
}

// ProgramOption configures a Program.
type ProgramOption func(*Program)

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) ProgramOption {
	return func(p *Program) { p.timeout = max(d, 0) }
}

// WithLogger routes the script's log() calls to logger.
func WithLogger(logger *slog.Logger) ProgramOption {
	return func(p *Program) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Compile parses source once. name identifies the chunk in errors.
func Compile(name, source string, opts ...ProgramOption) (*Program, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, oops.In("script").Code(CodeScriptSyntax).With("script", name).Wrap(err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, oops.In("script").Code(CodeScriptSyntax).With("script", name).Wrap(err)
	}
	p := &Program{
		name:    name,
		proto:   proto,
		factory: NewStateFactory(),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the chunk name.
func (p *Program) Name() string {
	return p.name
}

// CallInt runs the chunk, then calls the global function fn with a table
// built from fields, and returns its result as an integer. nil and false
// return 0, true returns 1.
func (p *Program) CallInt(ctx context.Context, fn string, fields map[string]string) (int, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	L, err := p.factory.NewState(ctx)
	if err != nil {
		return 0, err
	}
	defer L.Close()

	p.registerHost(L)

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return 0, oops.In("script").Code(CodeScriptRuntime).With("script", p.name).Hint("failed to load chunk").Wrap(err)
	}

	f := L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return 0, oops.In("script").
			Code(CodeScriptNoFunc).
			With("script", p.name).
			With("function", fn).
			Errorf("script does not define %s()", fn)
	}

	arg := L.NewTable()
	for k, v := range fields {
		arg.RawSetString(k, lua.LString(v))
	}

	if err := L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, arg); err != nil {
		return 0, oops.In("script").Code(CodeScriptRuntime).With("script", p.name).With("function", fn).Wrap(err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case lua.LNumber:
		return int(v), nil
	case lua.LBool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		if ret == lua.LNil {
			return 0, nil
		}
		return 0, oops.In("script").
			Code(CodeScriptBadResult).
			With("script", p.name).
			With("function", fn).
			With("type", ret.Type().String()).
			Errorf("%s() must return a number", fn)
	}
}

// registerHost exposes log(msg) to the script.
func (p *Program) registerHost(L *lua.LState) {
	logger := p.logger.With("script", p.name)
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		logger.Debug(L.CheckString(1))
		return 0
	}))
}
