package session

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/luadap/internal/protocol"
)

// handle routes one request to its handler and returns the response body.
// Every response it produces is a success; an unknown command, or a launch or
// setBreakpoints request missing its required field, is a protocol violation
// and kills the session.
func (s *Session) handle(cmd string, args gjson.Result) (any, error) {
	switch cmd {
	case "initialize":
		return s.handleInitialize()
	case "launch":
		return s.handleLaunch(args)
	case "setBreakpoints":
		return s.handleSetBreakpoints(args)
	case "configurationDone":
		return s.handleConfigurationDone()
	case "threads":
		return s.handleThreads()
	case "stackTrace":
		return s.handleStackTrace()
	case "scopes":
		return s.handleScopes(args)
	case "variables":
		return s.handleVariables(args)
	case "continue":
		return s.handleContinue()
	case "next":
		return s.handleNext()
	case "disconnect":
		return s.handleDisconnect()
	default:
		return nil, &protocol.ProtocolError{Reason: fmt.Sprintf("unknown command %q", cmd)}
	}
}

// handleInitialize advertises capabilities and defers the initialized event
// until after the response is on the wire.
func (s *Session) handleInitialize() (any, error) {
	s.enqueue(func() error {
		return s.emit(protocol.EventInitialized, nil)
	})
	return &protocol.InitializeResponseBody{SupportsConfigurationDoneRequest: true}, nil
}

// handleLaunch stores the debuggee configuration. The program itself starts
// after configurationDone.
func (s *Session) handleLaunch(args gjson.Result) (any, error) {
	program := args.Get("program")
	if !program.Exists() {
		return nil, &protocol.ProtocolError{Reason: "launch request has no program"}
	}

	s.program = program.String()
	s.args = nil
	for _, a := range args.Get("args").Array() {
		s.args = append(s.args, a.String())
	}
	return nil, nil
}

// handleSetBreakpoints replaces the breakpoint set for one source. The
// response carries one descriptor per requested line in request order, with
// duplicates flagged verified=false.
func (s *Session) handleSetBreakpoints(args gjson.Result) (any, error) {
	path := args.Get("source.path")
	if !path.Exists() {
		return nil, &protocol.ProtocolError{Reason: "setBreakpoints request has no source.path"}
	}

	var lines []int
	for _, b := range args.Get("breakpoints").Array() {
		lines = append(lines, int(b.Get("line").Int()))
	}

	stored := s.reg.Set(path.String(), lines)
	out := make([]protocol.Breakpoint, 0, len(stored))
	for _, bp := range stored {
		out = append(out, protocol.Breakpoint{
			ID:       bp.ID,
			Verified: bp.Verified,
			Line:     bp.Line,
			Source:   &protocol.Source{Name: baseName(bp.SourcePath), Path: bp.SourcePath},
		})
	}
	return &protocol.SetBreakpointsResponseBody{Breakpoints: out}, nil
}

// handleConfigurationDone defers the debuggee launch so the response is
// written before any debuggee-driven traffic.
func (s *Session) handleConfigurationDone() (any, error) {
	s.enqueue(s.launchDebuggee)
	return nil, nil
}

// handleThreads reports the single synthetic thread.
func (s *Session) handleThreads() (any, error) {
	return &protocol.ThreadsResponseBody{
		Threads: []protocol.Thread{{ID: 0, Name: "main"}},
	}, nil
}

// handleStackTrace serves the paused snapshot. Outside a pause there is
// nothing to show and the frame list is empty.
func (s *Session) handleStackTrace() (any, error) {
	frames := []protocol.StackFrame{}
	if s.snapshot != nil {
		for _, f := range s.snapshot.Frames {
			sf := protocol.StackFrame{
				ID:     f.ID,
				Name:   f.Name,
				Line:   f.Line,
				Column: 1,
			}
			if f.SourcePath != "" {
				sf.Source = &protocol.Source{Name: baseName(f.SourcePath), Path: f.SourcePath}
			}
			frames = append(frames, sf)
		}
	}
	return &protocol.StackTraceResponseBody{StackFrames: frames, TotalFrames: len(frames)}, nil
}

// handleScopes serves the scope list of one snapshot frame: currently the
// single "Locals" scope. Unknown frame ids answer empty, not an error.
func (s *Session) handleScopes(args gjson.Result) (any, error) {
	scopes := []protocol.Scope{}
	if s.snapshot != nil {
		if ref, ok := s.snapshot.Locals[int(args.Get("frameId").Int())]; ok {
			scopes = append(scopes, protocol.Scope{
				Name:               "Locals",
				PresentationHint:   "locals",
				VariablesReference: ref,
				Expensive:          false,
			})
		}
	}
	return &protocol.ScopesResponseBody{Scopes: scopes}, nil
}

// handleVariables serves one variable list from the snapshot. Unknown
// references answer empty, not an error.
func (s *Session) handleVariables(args gjson.Result) (any, error) {
	vars := []protocol.Variable{}
	if s.snapshot != nil {
		for _, v := range s.snapshot.VariablesAt(int(args.Get("variablesReference").Int())) {
			vars = append(vars, protocol.Variable{
				Name:               v.Name,
				Value:              v.Value,
				Type:               v.Type,
				VariablesReference: 0,
			})
		}
	}
	return &protocol.VariablesResponseBody{Variables: vars}, nil
}

// handleContinue flips the top run frame; the active pump exits after the
// response is written and the debuggee resumes.
func (s *Session) handleContinue() (any, error) {
	s.setTop(false)
	return nil, nil
}

// handleNext arms the step flag and resumes; the line hook pauses again on
// the next executed line.
func (s *Session) handleNext() (any, error) {
	s.stepPending = true
	s.setTop(false)
	return nil, nil
}

// handleDisconnect resumes the debuggee with pausing disabled and lets every
// pump activation unwind.
func (s *Session) handleDisconnect() (any, error) {
	s.disconnected = true
	s.setTop(false)
	return nil, nil
}

// baseName returns the last path element for either separator style; the
// registry normalizes to backslashes while local paths use the host's.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
