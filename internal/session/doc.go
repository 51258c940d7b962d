// Package session drives one debug session over the adapter's lifetime.
//
// The session owns the protocol pump, the breakpoint registry, the embedded
// interpreter, and the run/pause stack that makes the nested-pump model
// explicit.
//
// # Execution model
//
// There is exactly one executing context; the debuggee and the adapter share
// it and alternate by call/return through the interpreter's line hook. The
// pump reads one request at a time, dispatches it, writes the response, and
// drains deferred actions (send the initialized event, launch the debuggee)
// at the top of each iteration.
//
// When a breakpoint or step hit fires inside the debuggee, the line hook
// builds a stack snapshot, emits a stopped event, pushes a run frame, and
// re-enters the pump without unwinding the debuggee. Requests served in that
// nested activation (stackTrace, scopes, variables) read from the snapshot.
// A continue or next request flips the top run frame; the nested pump exits,
// the hook returns, and the interpreter resumes exactly where it paused. The
// run/pause stack's depth always equals the number of active pump
// activations; when it reaches zero the process is done.
package session
