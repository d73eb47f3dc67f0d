package glazeipc

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClientClosed is wrapped by a *ConnectionError when a request could
	// not proceed because Close was called.
	ErrClientClosed = errors.New(ErrClientIsClosed)

	// ErrDisconnected is wrapped by a *ConnectionError when the stream ended
	// while a request was waiting for its reply.
	ErrDisconnected = errors.New(ErrStreamEnded)
)

// ConnectionError reports that the stream could not be opened or was lost.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrConnectionFailed, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RemoteCommandError is returned when the server answers a request with an
// error message.
type RemoteCommandError struct {
	Request string
	Message string
}

func (e *RemoteCommandError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrRemoteCommand, e.Request, e.Message)
}

// ProtocolDecodeError reports an inbound payload that is not a valid message.
// The message is dropped and the stream keeps running.
type ProtocolDecodeError struct {
	Payload []byte
	Err     error
}

func (e *ProtocolDecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidMessageFormat, e.Err)
}

func (e *ProtocolDecodeError) Unwrap() error { return e.Err }

// TimeoutError is returned when no reply arrived within the request timeout.
type TimeoutError struct {
	Request string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s after %s: %q", ErrRequestTimedOut, e.After, e.Request)
}

// Timeout reports true so callers can treat this like a net.Error timeout.
func (e *TimeoutError) Timeout() bool { return true }
