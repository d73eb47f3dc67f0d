package glazeipc

import "encoding/json"

// ServerMessage is a decoded inbound message.
//
// Replies carry the request text they answer in ClientMessage. Events carry
// the id of the subscription they belong to and an event type read from Data.
type ServerMessage struct {
	MessageType    string          `json:"messageType"`
	ClientMessage  string          `json:"clientMessage,omitempty"`
	SubscriptionID string          `json:"subscriptionId,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Error          string          `json:"error,omitempty"`
	Success        bool            `json:"success"`

	// EventType is filled in by the decoder for event messages.
	EventType EventType `json:"-"`
}

// IsReply reports whether the message answers a client request.
func (m *ServerMessage) IsReply() bool {
	return m.MessageType == MessageTypeClientResponse
}

// IsEvent reports whether the message is a subscription event.
func (m *ServerMessage) IsEvent() bool {
	return m.MessageType == MessageTypeEventSubscription
}

// Event is delivered to subscription handlers.
type Event struct {
	Type           EventType
	SubscriptionID string
	Data           json.RawMessage
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// EventType names a class of window manager events.
type EventType string

const (
	EventAll                    EventType = "all"
	EventApplicationExiting     EventType = "application_exiting"
	EventBindingModesChanged    EventType = "binding_modes_changed"
	EventFocusChanged           EventType = "focus_changed"
	EventFocusedContainerMoved  EventType = "focused_container_moved"
	EventMonitorAdded           EventType = "monitor_added"
	EventMonitorRemoved         EventType = "monitor_removed"
	EventMonitorUpdated         EventType = "monitor_updated"
	EventPauseChanged           EventType = "pause_changed"
	EventTilingDirectionChanged EventType = "tiling_direction_changed"
	EventUserConfigChanged      EventType = "user_config_changed"
	EventWindowManaged          EventType = "window_managed"
	EventWindowUnmanaged        EventType = "window_unmanaged"
	EventWorkspaceActivated     EventType = "workspace_activated"
	EventWorkspaceDeactivated   EventType = "workspace_deactivated"
	EventWorkspaceUpdated       EventType = "workspace_updated"
)

// ContainerType identifies the kind of node in the window tree.
type ContainerType string

const (
	ContainerRoot      ContainerType = "root"
	ContainerMonitor   ContainerType = "monitor"
	ContainerWorkspace ContainerType = "workspace"
	ContainerSplit     ContainerType = "split"
	ContainerWindow    ContainerType = "window"
)

// Container is a node of the window tree. Fields that do not apply to a given
// ContainerType are left empty.
type Container struct {
	ID              string        `json:"id"`
	Type            ContainerType `json:"type"`
	ParentID        string        `json:"parentId,omitempty"`
	HasFocus        bool          `json:"hasFocus"`
	X               int           `json:"x"`
	Y               int           `json:"y"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	Children        []Container   `json:"children,omitempty"`
	ChildFocusOrder []string      `json:"childFocusOrder,omitempty"`

	// monitor
	DeviceName  string  `json:"deviceName,omitempty"`
	ScaleFactor float64 `json:"scaleFactor,omitempty"`

	// workspace
	Name            string `json:"name,omitempty"`
	DisplayName     string `json:"displayName,omitempty"`
	IsDisplayed     bool   `json:"isDisplayed,omitempty"`
	TilingDirection string `json:"tilingDirection,omitempty"`

	// window
	Handle       int64  `json:"handle,omitempty"`
	Title        string `json:"title,omitempty"`
	ProcessName  string `json:"processName,omitempty"`
	ClassName    string `json:"className,omitempty"`
	DisplayState string `json:"displayState,omitempty"`
}

// BindingMode is an active keybinding mode.
type BindingMode struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

type MonitorsResponse struct {
	Monitors []Container `json:"monitors"`
}

type WorkspacesResponse struct {
	Workspaces []Container `json:"workspaces"`
}

type WindowsResponse struct {
	Windows []Container `json:"windows"`
}

type FocusedResponse struct {
	Focused Container `json:"focused"`
}

type BindingModesResponse struct {
	BindingModes []BindingMode `json:"bindingModes"`
}

type AppMetadataResponse struct {
	Version string `json:"version"`
}

type PausedResponse struct {
	Paused bool `json:"paused"`
}

type TilingDirectionResponse struct {
	TilingDirection    string    `json:"tilingDirection"`
	DirectionContainer Container `json:"directionContainer"`
}

type RunCommandResponse struct {
	SubjectContainerID string `json:"subjectContainerId"`
}

// SubscribeResponse is the reply payload of a subscribe request.
type SubscribeResponse struct {
	SubscriptionID string `json:"subscriptionId"`
}
