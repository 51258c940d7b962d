package session

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dshills/luadap/internal/luart"
	"github.com/dshills/luadap/internal/protocol"
)

// launchDebuggee loads the configured program into the sandbox and runs it.
// Load failures leave the session pumping (the editor decides what to do
// next); completion and runtime failures both end with an exited event and
// flip the bottom run frame, ending the session.
func (s *Session) launchDebuggee() error {
	chunk, err := s.rt.LoadInstrumented(s.program)
	if err != nil {
		s.log.Error("load failed: %v", err)
		return s.emit(protocol.EventOutput, &protocol.OutputEventBody{
			Category: protocol.CategoryConsole,
			Output:   strconv.Quote(err.Error()) + "\n",
		})
	}

	s.log.Info("launching %s", chunk.Path)
	code, err := s.rt.Run(chunk, s.args)
	if s.fatal != nil {
		return s.fatal
	}
	if err != nil {
		s.log.Error("debuggee failed: %v", err)
		var rerr *luart.RuntimeError
		msg := err.Error()
		if errors.As(err, &rerr) {
			msg = rerr.Message
		}
		if e := s.emit(protocol.EventOutput, &protocol.OutputEventBody{
			Category: protocol.CategoryConsole,
			Output:   strconv.Quote(msg) + "\n",
		}); e != nil {
			return e
		}
		code = 1
	}

	if e := s.emit(protocol.EventExited, &protocol.ExitedEventBody{ExitCode: code}); e != nil {
		return e
	}
	s.runStack[0] = false
	return nil
}

// lineHook is the per-line callback the interpreter fires through the
// instrumented chunk. It decides pause vs. continue and drives the nested
// pump; returning resumes the debuggee in place.
func (s *Session) lineHook(line int) {
	if s.disconnected || s.fatal != nil {
		return
	}

	// Never pause on a frame the adapter itself owns: only file-backed
	// debuggee chunks carry the "@" source marker.
	src, ok := s.rt.CurrentSource(1)
	if !ok || !strings.HasPrefix(src, "@") {
		return
	}
	path := strings.TrimPrefix(src, "@")

	var stopped *protocol.StoppedEventBody
	if s.stepPending {
		s.stepPending = false
		if err := s.emit(protocol.EventOutput, &protocol.OutputEventBody{
			Category: protocol.CategoryConsole,
			Output:   "step: " + path + ":" + strconv.Itoa(line) + "\n",
		}); err != nil {
			s.abort(err)
			return
		}
		stopped = &protocol.StoppedEventBody{
			Reason:            protocol.StopReasonStep,
			ThreadID:          0,
			AllThreadsStopped: true,
		}
	} else {
		bp := s.reg.Match(path, line)
		if bp == nil {
			return
		}
		stopped = &protocol.StoppedEventBody{
			Reason:            protocol.StopReasonBreakpoint,
			ThreadID:          0,
			AllThreadsStopped: true,
			HitBreakpointIDs:  []int{bp.ID},
		}
	}

	s.snapshot = s.rt.BuildSnapshot(1)
	if err := s.emit(protocol.EventStopped, stopped); err != nil {
		s.snapshot = nil
		s.abort(err)
		return
	}

	s.runStack = append(s.runStack, true)
	err := s.pump()
	s.snapshot = nil
	if err != nil {
		s.abort(err)
	}
}

// debuggeePrint forwards rebound print output to the editor. Write failures
// are ignored here, so print itself never fails the debuggee.
func (s *Session) debuggeePrint(text string) {
	_ = s.emit(protocol.EventOutput, &protocol.OutputEventBody{
		Category: protocol.CategoryStdout,
		Output:   text + "\n",
	})
}

// abort records a fatal pump error and unwinds the debuggee so the error can
// resurface at the top-level pump.
func (s *Session) abort(err error) {
	if s.fatal == nil {
		s.fatal = err
	}
	s.rt.Abort("debug session aborted")
}
