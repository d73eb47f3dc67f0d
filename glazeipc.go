package glazeipc

import (
	"context"
	"encoding/json"
)

// Client defines a connection to the GlazeWM IPC endpoint.
//
// A Client owns exactly one WebSocket stream. Every operation that needs the
// stream connects lazily, so calling Connect up front is optional.
//
// Example usage:
//
//	import "github.com/luciancaetano/glazeipc/wm"
//
//	client := wm.New(wm.NewConfig(wm.DefaultPort))
//	defer client.Close()
//
//	monitors, err := client.QueryMonitors(ctx)
//	if err != nil {
//	    return err
//	}
//
//	unlisten, err := client.Subscribe(ctx, glazeipc.EventFocusChanged, func(e *glazeipc.Event) {
//	    log.Printf("focus changed: %s", e.Data)
//	})
//	defer unlisten(ctx)
type Client interface {
	// ID returns a unique identifier for this client instance.
	//
	// The ID is generated at construction time and is attached to every log
	// line the client writes.
	ID() string

	// State returns the current state of the underlying stream.
	State() ConnState

	// Connect ensures the stream exists and is open.
	//
	// Concurrent callers share a single in-flight connection attempt; only one
	// stream is ever dialed at a time. Returns a *ConnectionError when the
	// stream cannot be opened.
	Connect(ctx context.Context) error

	// Close closes the stream. Calling Close on a client that was never
	// connected, or calling it twice, is a no-op.
	Close() error

	// Send transmits a raw request text and waits for the reply that echoes it.
	//
	// The reply payload is returned undecoded. A reply carrying an error is
	// returned as a *RemoteCommandError.
	//
	// Example:
	//
	//	data, err := client.Send(ctx, "query monitors")
	Send(ctx context.Context, request string) (json.RawMessage, error)

	// Query sends "query <name>" and returns the undecoded reply payload.
	Query(ctx context.Context, name string) (json.RawMessage, error)

	// QueryMonitors returns all monitors with their workspace and window trees.
	QueryMonitors(ctx context.Context) (*MonitorsResponse, error)

	// QueryWorkspaces returns all active workspaces.
	QueryWorkspaces(ctx context.Context) (*WorkspacesResponse, error)

	// QueryWindows returns all managed windows.
	QueryWindows(ctx context.Context) (*WindowsResponse, error)

	// QueryFocused returns the currently focused container.
	QueryFocused(ctx context.Context) (*FocusedResponse, error)

	// QueryBindingModes returns the active binding modes.
	QueryBindingModes(ctx context.Context) (*BindingModesResponse, error)

	// QueryAppMetadata returns metadata about the running window manager.
	QueryAppMetadata(ctx context.Context) (*AppMetadataResponse, error)

	// QueryPaused reports whether the window manager is paused.
	QueryPaused(ctx context.Context) (*PausedResponse, error)

	// QueryTilingDirection returns the tiling direction of the focused container.
	QueryTilingDirection(ctx context.Context) (*TilingDirectionResponse, error)

	// RunCommand runs a window manager command.
	//
	// When subjectContainerID is non-empty the command runs against that
	// container instead of the focused one.
	//
	// Example:
	//
	//	client.RunCommand(ctx, "focus --direction left", "")
	//	client.RunCommand(ctx, "close", windowID)
	RunCommand(ctx context.Context, command string, subjectContainerID string) (*RunCommandResponse, error)

	// Subscribe registers handler for a single event type.
	//
	// See SubscribeMany for delivery guarantees.
	Subscribe(ctx context.Context, event EventType, handler EventHandler) (Unlisten, error)

	// SubscribeMany registers handler for a set of event types.
	//
	// The handler is called once per matching event, in arrival order, on the
	// connection's read loop. It must not wait on replies from the same client;
	// start a goroutine for that. EventAll matches every event type.
	//
	// The returned Unlisten stops delivery before the unsubscribe request is
	// acknowledged, so no event reaches handler once Unlisten has been called.
	// If the subscribe request fails nothing is registered.
	SubscribeMany(ctx context.Context, events []EventType, handler EventHandler) (Unlisten, error)

	// OnMessage registers a listener for every decoded inbound message.
	// The returned function removes the listener; calling it twice is harmless.
	OnMessage(fn MessageHandler) func()

	// OnConnect registers a listener called each time a stream opens.
	OnConnect(fn ConnectHandler) func()

	// OnDisconnect registers a listener called each time a stream ends.
	OnDisconnect(fn DisconnectHandler) func()

	// OnError registers a listener for stream and decode errors.
	OnError(fn ErrorHandler) func()
}

// Unlisten removes an event subscription and waits for the server to
// acknowledge it. Calls after the first return nil.
type Unlisten func(ctx context.Context) error

// EventHandler receives events delivered to a subscription.
type EventHandler func(event *Event)

// MessageHandler receives every decoded inbound message.
type MessageHandler func(msg *ServerMessage)

// ConnectHandler is called after a stream opens.
type ConnectHandler func()

// DisconnectHandler is called after a stream ends. voluntary is true when the
// stream was closed through Client.Close.
type DisconnectHandler func(voluntary bool)

// ErrorHandler receives stream failures and malformed messages.
type ErrorHandler func(err error)

// ConnState describes the lifecycle of the client's stream.
type ConnState int32

const (
	StateAbsent ConnState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
