package protocol

import "encoding/json"

// Message type discriminators for the DAP envelope.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Event names emitted by the adapter.
const (
	EventInitialized = "initialized"
	EventStopped     = "stopped"
	EventOutput      = "output"
	EventExited      = "exited"
)

// Output event categories.
const (
	CategoryStdout  = "stdout"
	CategoryConsole = "console"
)

// Stop reasons reported in stopped events.
const (
	StopReasonBreakpoint = "breakpoint"
	StopReasonStep       = "step"
)

// Request is an inbound DAP request. Arguments stay raw; handlers pick
// fields out of them per command.
type Request struct {
	Seq       int             `json:"seq"`
	Type      string          `json:"type"`
	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Response is an outbound reply to a request.
type Response struct {
	Seq        int    `json:"seq"`
	Type       string `json:"type"`
	RequestSeq int    `json:"request_seq"`
	Command    string `json:"command"`
	Success    bool   `json:"success"`
	Body       any    `json:"body,omitempty"`
}

// Event is an outbound DAP event.
type Event struct {
	Seq   int    `json:"seq"`
	Type  string `json:"type"`
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

// Source describes the origin of breakpoints and stack frames.
type Source struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// Breakpoint is the editor-facing view of one registered breakpoint.
// Verified is false when the placement duplicated an existing breakpoint;
// the paired editor extension relies on that signal.
type Breakpoint struct {
	ID       int     `json:"id"`
	Verified bool    `json:"verified"`
	Line     int     `json:"line"`
	Source   *Source `json:"source,omitempty"`
}

// Thread identifies a debuggee thread. The debuggee is single-threaded, so
// exactly one synthetic thread is ever reported.
type Thread struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StackFrame is one frame of the paused debuggee's call stack.
type StackFrame struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Source *Source `json:"source,omitempty"`
	Line   int     `json:"line"`
	Column int     `json:"column"`
}

// Scope groups the variables visible in one stack frame.
type Scope struct {
	Name               string `json:"name"`
	PresentationHint   string `json:"presentationHint,omitempty"`
	VariablesReference int    `json:"variablesReference"`
	Expensive          bool   `json:"expensive"`
}

// Variable is one name/value pair within a scope. A VariablesReference of
// zero marks a leaf with no children.
type Variable struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	Type               string `json:"type,omitempty"`
	VariablesReference int    `json:"variablesReference"`
}

// InitializeResponseBody advertises adapter capabilities.
type InitializeResponseBody struct {
	SupportsConfigurationDoneRequest bool `json:"supportsConfigurationDoneRequest"`
}

// SetBreakpointsResponseBody carries one descriptor per requested line, in
// request order.
type SetBreakpointsResponseBody struct {
	Breakpoints []Breakpoint `json:"breakpoints"`
}

// ThreadsResponseBody lists the debuggee threads.
type ThreadsResponseBody struct {
	Threads []Thread `json:"threads"`
}

// StackTraceResponseBody carries the paused call stack, innermost first.
type StackTraceResponseBody struct {
	StackFrames []StackFrame `json:"stackFrames"`
	TotalFrames int          `json:"totalFrames"`
}

// ScopesResponseBody lists the scopes of one frame.
type ScopesResponseBody struct {
	Scopes []Scope `json:"scopes"`
}

// VariablesResponseBody lists the variables behind one reference.
type VariablesResponseBody struct {
	Variables []Variable `json:"variables"`
}

// StoppedEventBody describes why and where the debuggee paused.
type StoppedEventBody struct {
	Reason            string `json:"reason"`
	ThreadID          int    `json:"threadId"`
	AllThreadsStopped bool   `json:"allThreadsStopped"`
	HitBreakpointIDs  []int  `json:"hitBreakpointIds,omitempty"`
}

// OutputEventBody carries debuggee or adapter output.
type OutputEventBody struct {
	Category string `json:"category"`
	Output   string `json:"output"`
}

// ExitedEventBody reports the debuggee exit code.
type ExitedEventBody struct {
	ExitCode int `json:"exitCode"`
}
