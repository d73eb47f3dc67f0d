package glazeipc

// DefaultPort is the port GlazeWM listens on for IPC connections.
const DefaultPort = 6123

// Query names accepted by "query <name>".
const (
	QueryNameMonitors        = "monitors"
	QueryNameWorkspaces      = "workspaces"
	QueryNameWindows         = "windows"
	QueryNameFocused         = "focused"
	QueryNameBindingModes    = "binding-modes"
	QueryNameAppMetadata     = "app-metadata"
	QueryNamePaused          = "paused"
	QueryNameTilingDirection = "tiling-direction"
)

// Message types carried in the messageType field of inbound messages.
const (
	MessageTypeClientResponse    = "client_response"
	MessageTypeEventSubscription = "event_subscription"
)

// Standard error messages
const (
	// Protocol errors
	ErrInvalidMessageFormat = "invalid message format"
	ErrUnknownMessageType   = "unknown message type"
	ErrPayloadTooLarge      = "payload too large"
	ErrNoEventTypes         = "at least one event type is required"
	ErrEmptyRequest         = "request text is empty"

	// Connection errors
	ErrConnectionFailed = "ipc connection error"
	ErrClientIsClosed   = "client connection is closed"
	ErrStreamEnded      = "stream disconnected"

	// Request errors
	ErrRemoteCommand   = "remote command failed"
	ErrRequestTimedOut = "request timed out"
	ErrDecodeReply     = "failed to decode reply"
)
