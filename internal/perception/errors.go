package perception

import (
	"errors"
	"fmt"
)

// ErrNoModels is returned by the startup probe when the server has no models installed.
var ErrNoModels = errors.New("no models installed (try: ollama pull <model>)")

// RequestError is a network-level failure talking to the chat service.
type RequestError struct {
	Op  string
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ProtocolError covers replies that arrived but cannot be used: an explicit
// error field, malformed JSON, or a body carrying neither a message nor an error.
type ProtocolError struct {
	Op         string
	StatusCode int
	// ServerMessage is the service's own error text, when it sent one.
	ServerMessage string
	Err           error
}

func (e *ProtocolError) Error() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// errEmptyReply marks a chat body that has neither message nor error.
var errEmptyReply = errors.New("the response has neither message nor error")

// IsServerError reports whether err carries an error string sent by the service.
func IsServerError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.ServerMessage != ""
}
