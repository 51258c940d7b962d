package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Conn frames DAP messages over a pair of byte streams.
// The base protocol is the LSP one: a Content-Length header line, a blank
// separator line, then exactly that many body bytes of single-line JSON.
type Conn struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewConn creates a connection over the given streams.
// The reader and writer are typically the process stdin and stdout pipes.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{
		reader: bufio.NewReaderSize(r, 64*1024),
		writer: w,
	}
}

// ReadMessage reads one framed message and returns its body.
// It returns ErrPeerClosed (wrapped) when the stream ends before a complete
// frame has been read, including before its first byte, and a
// *ProtocolError for malformed frames.
func (c *Conn) ReadMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF || err == io.ErrClosedPipe {
				return nil, fmt.Errorf("read header: %w", ErrPeerClosed)
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break // End of headers
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			parts := strings.SplitN(line, ":", 2)
			length, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil || length < 0 {
				return nil, &ProtocolError{Reason: "bad Content-Length value", Err: err}
			}
			contentLength = length
		}
		// Ignore Content-Type and other headers
	}

	if contentLength < 0 {
		return nil, &ProtocolError{Reason: "malformed frame", Err: ErrMissingContentLength}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF || err == io.ErrClosedPipe {
			return nil, fmt.Errorf("read body: %w", ErrPeerClosed)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// WriteMessage serializes msg and writes it as one framed message.
// The body must serialize to a single line; a body containing raw newline
// bytes is a protocol error. The encoded body is returned for tracing.
func (c *Conn) WriteMessage(msg any) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	if bytes.ContainsAny(body, "\r\n") {
		return nil, &ProtocolError{Reason: "message body contains raw newline"}
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(c.writer, header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if _, err := c.writer.Write(body); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}

	return body, nil
}
