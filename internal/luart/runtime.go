package luart

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// LineHook is invoked ahead of every executed debuggee line with the 1-based
// line number. At the moment of the call, stack level 1 is the innermost
// debuggee frame.
type LineHook func(line int)

// PrintFunc receives the rendered arguments of a debuggee print call, joined
// with ", " and individually quoted.
type PrintFunc func(text string)

// lineHookGlobal is the reserved name the instrumented chunk calls on every
// line. It lives only in the sandbox environment.
const lineHookGlobal = "__line_trace__"

// Runtime wraps a gopher-lua state prepared for debugging: selectively
// opened libraries, a sandbox environment for the debuggee, and the
// instrumentation hook binding.
//
// gopher-lua's LState is not goroutine-safe; a Runtime must be driven from a
// single goroutine. The adapter is single-threaded cooperative, so this
// holds by construction.
type Runtime struct {
	L   *lua.LState
	env *lua.LTable

	hook    LineHook
	printFn PrintFunc

	closed bool
}

// NewRuntime creates a runtime with the safe library set opened and the
// debuggee environment prepared.
func NewRuntime() *Runtime {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // We'll open selectively
	})
	openSafeLibraries(L)

	rt := &Runtime{L: L}
	rt.env = rt.buildEnv()
	return rt
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// Base library (type, pairs, ipairs, pcall, tostring, etc.)
	lua.OpenBase(L)

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Note: These are intentionally NOT opened:
	// - io (file system access)
	// - os (system calls, execute)
	// - debug (can observe the instrumentation)
	// - package (can load arbitrary modules)
}

// safeEnvGlobals are the base-library names copied into the debuggee
// environment. Loaders (dofile, loadfile, load, loadstring) and environment
// escapes (getfenv, setfenv) are excluded; print is rebound separately.
var safeEnvGlobals = []string{
	"_VERSION",
	"assert", "error", "getmetatable", "ipairs", "next", "pairs",
	"pcall", "rawequal", "rawget", "rawset", "select", "setmetatable",
	"tonumber", "tostring", "type", "unpack", "xpcall",
	"string", "table", "math",
}

// buildEnv creates the restricted environment the debuggee runs in.
func (rt *Runtime) buildEnv() *lua.LTable {
	env := rt.L.NewTable()
	for _, name := range safeEnvGlobals {
		if v := rt.L.GetGlobal(name); v != lua.LNil {
			env.RawSetString(name, v)
		}
	}
	env.RawSetString("_G", env)

	env.RawSetString("print", rt.L.NewFunction(rt.luaPrint))
	env.RawSetString(lineHookGlobal, rt.L.NewFunction(rt.luaLineHook))
	return env
}

// luaLineHook is the Go side of the instrumentation call.
func (rt *Runtime) luaLineHook(L *lua.LState) int {
	line := L.CheckInt(1)
	if rt.hook != nil {
		rt.hook(line)
	}
	return 0
}

// luaPrint renders every argument with the interpreter's default conversion,
// quotes it, and hands the comma-separated result to the print binding.
func (rt *Runtime) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, fmt.Sprintf("%q", L.Get(i).String()))
	}
	if rt.printFn != nil {
		rt.printFn(strings.Join(parts, ", "))
	}
	return 0
}

// SetLineHook installs the per-line callback for the debuggee run.
func (rt *Runtime) SetLineHook(h LineHook) {
	rt.hook = h
}

// SetPrint installs the receiver for debuggee print output.
func (rt *Runtime) SetPrint(p PrintFunc) {
	rt.printFn = p
}

// Chunk is a loaded, instrumented script ready to run.
type Chunk struct {
	Proto *lua.FunctionProto

	// Path is the absolute path the chunk was loaded from. The compiled
	// source name is this path with the interpreter's "@" file marker.
	Path string
}

// LoadInstrumented parses the file at path, injects the line hook ahead of
// every statement, and compiles the result. The chunk's source name carries
// the "@" prefix the interpreter uses for real files, so stack introspection
// can tell file-backed frames apart.
func (rt *Runtime) LoadInstrumented(path string) (*Chunk, error) {
	if rt.closed {
		return nil, ErrClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	source := "@" + abs
	stmts, err := parse.Parse(bufio.NewReader(f), source)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	stmts = instrumentStmts(stmts)

	proto, err := lua.Compile(stmts, source)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return &Chunk{Proto: proto, Path: abs}, nil
}

// Run invokes the chunk inside the sandbox environment with the given
// positional string arguments. The returned code is the script's first
// return value when that value is a number, or 0 otherwise. A debuggee failure comes back as a
// *RuntimeError; the adapter's own state is never unwound.
func (rt *Runtime) Run(chunk *Chunk, args []string) (code int, err error) {
	if rt.closed {
		return 0, ErrClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{Message: fmt.Sprintf("%v", r)}
		}
	}()

	fn := rt.L.NewFunctionFromProto(chunk.Proto)
	fn.Env = rt.env

	base := rt.L.GetTop()
	rt.L.Push(fn)
	for _, a := range args {
		rt.L.Push(lua.LString(a))
	}

	if err := rt.L.PCall(len(args), lua.MultRet, nil); err != nil {
		return 0, &RuntimeError{Message: errorMessage(err)}
	}

	nret := rt.L.GetTop() - base
	if nret > 0 {
		if n, ok := rt.L.Get(base + 1).(lua.LNumber); ok {
			code = int(n)
		}
		rt.L.Pop(nret)
	}
	return code, nil
}

// errorMessage extracts the script's error value from a PCall failure.
func errorMessage(err error) string {
	if ae, ok := err.(*lua.ApiError); ok {
		return ae.Object.String()
	}
	return err.Error()
}

// CurrentSource returns the chunk source name of the frame at the given
// stack level, as the interpreter reports it ("@"-prefixed for file-backed
// chunks). ok is false when no such frame exists.
func (rt *Runtime) CurrentSource(level int) (string, bool) {
	dbg, ok := rt.L.GetStack(level)
	if !ok {
		return "", false
	}
	if _, err := rt.L.GetInfo("S", dbg, lua.LNil); err != nil {
		return "", false
	}
	return dbg.Source, true
}

// Abort raises an error on the interpreter, unwinding the debuggee from
// inside a hook callback. Used when the session must die mid-pause.
func (rt *Runtime) Abort(reason string) {
	rt.L.RaiseError("%s", reason)
}

// Close releases the interpreter state.
func (rt *Runtime) Close() error {
	if rt.closed {
		return nil
	}
	rt.L.Close()
	rt.closed = true
	return nil
}
