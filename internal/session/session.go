package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/dshills/luadap/internal/breakpoint"
	"github.com/dshills/luadap/internal/luart"
	"github.com/dshills/luadap/internal/protocol"
	"github.com/dshills/luadap/internal/tracelog"
)

// Options configures a Session.
type Options struct {
	// In and Out are the editor-facing streams, typically stdin and stdout.
	In  io.Reader
	Out io.Writer

	// Trace records wire traffic. Defaults to a discarding trace.
	Trace *tracelog.Trace

	// Log receives diagnostics. Defaults to a logger over Trace.
	Log *tracelog.Logger
}

// Session is the debug-session engine: sequence counters, the breakpoint
// registry, the run/pause stack, the deferred-action queue, and the current
// stack snapshot while paused.
type Session struct {
	conn  *protocol.Conn
	trace *tracelog.Trace
	log   *tracelog.Logger

	reg *breakpoint.Registry
	rt  *luart.Runtime

	nextSeq  int
	runStack []bool
	actions  []func() error

	snapshot    *luart.Snapshot
	stepPending bool

	program      string
	args         []string
	disconnected bool

	// fatal records a pump failure that happened inside a nested
	// activation; the debuggee is unwound and the error resurfaces at the
	// top level.
	fatal error
}

// New creates a session over the given streams. The run/pause stack starts
// with the single top-level frame.
func New(opts Options) *Session {
	if opts.Trace == nil {
		opts.Trace = tracelog.Discard()
	}
	if opts.Log == nil {
		opts.Log = tracelog.NewLogger(opts.Trace, tracelog.LogLevelInfo)
	}

	s := &Session{
		conn:     protocol.NewConn(opts.In, opts.Out),
		trace:    opts.Trace,
		log:      opts.Log,
		reg:      breakpoint.NewRegistry(),
		rt:       luart.NewRuntime(),
		nextSeq:  1,
		runStack: []bool{true},
	}
	s.rt.SetLineHook(s.lineHook)
	s.rt.SetPrint(s.debuggeePrint)
	return s
}

// Run serves the session until the debuggee has exited and the editor flow
// is complete, or until the stream dies. A clean shutdown (exited emitted,
// or the editor closing its end between requests) returns nil; a protocol
// violation returns the error after a best-effort console notice.
func (s *Session) Run() error {
	defer s.rt.Close()

	err := s.pump()
	if err == nil {
		return nil
	}
	if s.disconnected {
		return nil
	}
	if errors.Is(err, protocol.ErrPeerClosed) && s.fatal == nil {
		s.log.Info("editor closed the stream, shutting down")
		return nil
	}

	s.log.Error("fatal: %v", err)
	_ = s.emit(protocol.EventOutput, &protocol.OutputEventBody{
		Category: protocol.CategoryConsole,
		Output:   fmt.Sprintf("%v\n", err),
	})
	return err
}

// pump is one activation of the message loop. It runs until the top run
// frame flips to false and pops that frame on the way out; the depth of the
// run/pause stack always equals the number of live activations.
func (s *Session) pump() error {
	defer func() {
		s.runStack = s.runStack[:len(s.runStack)-1]
	}()

	for s.top() {
		if err := s.drainActions(); err != nil {
			return err
		}
		if !s.top() {
			break
		}

		body, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		s.trace.Inbound(body)

		if err := s.dispatch(body); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) top() bool {
	return s.runStack[len(s.runStack)-1]
}

func (s *Session) setTop(v bool) {
	s.runStack[len(s.runStack)-1] = v
}

// enqueue defers an action until after the current response is written.
func (s *Session) enqueue(act func() error) {
	s.actions = append(s.actions, act)
}

func (s *Session) drainActions() error {
	for len(s.actions) > 0 {
		act := s.actions[0]
		s.actions = s.actions[1:]
		if err := act(); err != nil {
			return err
		}
	}
	return nil
}

// dispatch decodes one inbound body, routes it, and writes the response.
func (s *Session) dispatch(body []byte) error {
	var req protocol.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return &protocol.ProtocolError{Reason: "body is not a valid request", Err: err}
	}

	if req.Type != protocol.TypeRequest {
		return &protocol.ProtocolError{Reason: fmt.Sprintf("unexpected message type %q", req.Type)}
	}
	if req.Command == "" {
		return &protocol.ProtocolError{Reason: "request has no command"}
	}

	respBody, err := s.handle(req.Command, gjson.ParseBytes(req.Arguments))
	if err != nil {
		return err
	}
	return s.respond(req.Seq, req.Command, respBody)
}

func (s *Session) takeSeq() int {
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

// send writes one message and traces the encoded bytes.
func (s *Session) send(msg any) error {
	encoded, err := s.conn.WriteMessage(msg)
	if err != nil {
		return err
	}
	s.trace.Outbound(encoded)
	return nil
}

// respond writes a success response carrying the request's seq.
func (s *Session) respond(requestSeq int, cmd string, body any) error {
	return s.send(&protocol.Response{
		Seq:        s.takeSeq(),
		Type:       protocol.TypeResponse,
		RequestSeq: requestSeq,
		Command:    cmd,
		Success:    true,
		Body:       body,
	})
}

// emit writes an event.
func (s *Session) emit(event string, body any) error {
	return s.send(&protocol.Event{
		Seq:   s.takeSeq(),
		Type:  protocol.TypeEvent,
		Event: event,
		Body:  body,
	})
}
