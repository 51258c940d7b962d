// Package protocol implements the Debug Adapter Protocol wire layer.
//
// It covers the two halves of the wire: the framed transport (Content-Length
// header, blank separator, JSON body) and the DAP message model (requests,
// responses, events and their bodies).
//
// # Transport
//
// A Conn wraps the two byte streams the editor drives the adapter over,
// typically stdin and stdout:
//
//	conn := protocol.NewConn(os.Stdin, os.Stdout)
//
//	body, err := conn.ReadMessage()
//	if err != nil {
//	    // protocol.ErrPeerClosed when the editor went away
//	}
//
//	encoded, err := conn.WriteMessage(resp)
//
// WriteMessage returns the encoded body so callers can trace exactly what
// went out on the wire.
//
// # Messages
//
// Message types mirror the DAP JSON shapes with struct tags. Optional fields
// are pointers or omitempty so that an absent field never serializes, while
// an explicit zero still can. Inbound requests keep their arguments as raw
// JSON; handlers pick fields out with gjson rather than binding a struct per
// command.
package protocol
