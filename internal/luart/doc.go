// Package luart embeds the Lua interpreter for the debug adapter.
//
// It wraps gopher-lua behind the narrow capability set the adapter needs:
// load a script as an invocable chunk with a substituted environment, observe
// execution at line granularity, and introspect the paused call stack.
//
// # Line observation
//
// gopher-lua exposes no debug hook to Go, so the per-line callback is
// realized by source instrumentation: the script is parsed, a call to a
// reserved hook global is injected ahead of every statement (recursing into
// nested blocks and function bodies), and the result is compiled in place of
// the original chunk. The hook global is bound in the sandbox environment to
// a Go function, so only debuggee code can ever trigger it.
//
// # Typical use
//
//	rt := luart.NewRuntime()
//	defer rt.Close()
//
//	rt.SetLineHook(func(line int) { ... })
//	rt.SetPrint(func(text string) { ... })
//
//	chunk, err := rt.LoadInstrumented("script.lua")
//	if err != nil {
//	    // *LoadError: missing file, parse or compile failure
//	}
//	code, err := rt.Run(chunk, args)
//
// While inside the line hook, stack level 1 is the innermost debuggee frame:
//
//	snap := rt.BuildSnapshot(1)
package luart
