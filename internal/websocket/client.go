package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/protocol"
)

// Client implements the glazeipc.Client interface
type Client struct {
	id   string
	conn *Conn
	corr *Correlator
	subs *Subscriber
}

var _ glazeipc.Client = (*Client)(nil)

// NewClient creates a client. The stream is opened on first use.
func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = NewWebsocketDialer(dialTimeout)
	}

	id := uuid.New().String()
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("client_id", id).Logger()
	}

	conn := NewConn(url, dialer, dialTimeout, newLimiter(cfg.RateLimitConfig), logger)
	corr := NewCorrelator(conn, cfg.RequestTimeout, logger)

	return &Client{
		id:   id,
		conn: conn,
		corr: corr,
		subs: NewSubscriber(conn, corr, logger),
	}
}

// ID returns a unique identifier for this client
func (c *Client) ID() string {
	return c.id
}

// State returns the stream lifecycle state
func (c *Client) State() glazeipc.ConnState {
	return c.conn.State()
}

// Connect opens the stream if it is not open yet
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

// Close closes the stream
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send sends a raw request and returns the reply payload
func (c *Client) Send(ctx context.Context, request string) (json.RawMessage, error) {
	return c.corr.SendAndWait(ctx, request)
}

// Query sends a query by name and returns the reply payload
func (c *Client) Query(ctx context.Context, name string) (json.RawMessage, error) {
	return c.corr.SendAndWait(ctx, protocol.Query(name))
}

func (c *Client) QueryMonitors(ctx context.Context) (*glazeipc.MonitorsResponse, error) {
	return request[glazeipc.MonitorsResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNameMonitors))
}

func (c *Client) QueryWorkspaces(ctx context.Context) (*glazeipc.WorkspacesResponse, error) {
	return request[glazeipc.WorkspacesResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNameWorkspaces))
}

func (c *Client) QueryWindows(ctx context.Context) (*glazeipc.WindowsResponse, error) {
	return request[glazeipc.WindowsResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNameWindows))
}

func (c *Client) QueryFocused(ctx context.Context) (*glazeipc.FocusedResponse, error) {
	return request[glazeipc.FocusedResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNameFocused))
}

func (c *Client) QueryBindingModes(ctx context.Context) (*glazeipc.BindingModesResponse, error) {
	return request[glazeipc.BindingModesResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNameBindingModes))
}

func (c *Client) QueryAppMetadata(ctx context.Context) (*glazeipc.AppMetadataResponse, error) {
	return request[glazeipc.AppMetadataResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNameAppMetadata))
}

func (c *Client) QueryPaused(ctx context.Context) (*glazeipc.PausedResponse, error) {
	return request[glazeipc.PausedResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNamePaused))
}

func (c *Client) QueryTilingDirection(ctx context.Context) (*glazeipc.TilingDirectionResponse, error) {
	return request[glazeipc.TilingDirectionResponse](ctx, c.corr, protocol.Query(glazeipc.QueryNameTilingDirection))
}

// RunCommand runs a command against subjectContainerID, or the focused
// container when it is empty
func (c *Client) RunCommand(ctx context.Context, command string, subjectContainerID string) (*glazeipc.RunCommandResponse, error) {
	return request[glazeipc.RunCommandResponse](ctx, c.corr, protocol.Command(command, subjectContainerID))
}

// Subscribe listens for a single event type
func (c *Client) Subscribe(ctx context.Context, event glazeipc.EventType, handler glazeipc.EventHandler) (glazeipc.Unlisten, error) {
	return c.subs.Subscribe(ctx, []glazeipc.EventType{event}, handler)
}

// SubscribeMany listens for several event types with one handler
func (c *Client) SubscribeMany(ctx context.Context, events []glazeipc.EventType, handler glazeipc.EventHandler) (glazeipc.Unlisten, error) {
	return c.subs.Subscribe(ctx, events, handler)
}

func (c *Client) OnMessage(fn glazeipc.MessageHandler) func() {
	return c.conn.OnMessage(fn)
}

func (c *Client) OnConnect(fn glazeipc.ConnectHandler) func() {
	return c.conn.OnConnect(fn)
}

func (c *Client) OnDisconnect(fn glazeipc.DisconnectHandler) func() {
	return c.conn.OnDisconnect(fn)
}

func (c *Client) OnError(fn glazeipc.ErrorHandler) func() {
	return c.conn.OnError(fn)
}

// request sends text and decodes the reply payload into T.
func request[T any](ctx context.Context, corr *Correlator, text string) (*T, error) {
	data, err := corr.SendAndWait(ctx, text)
	if err != nil {
		return nil, err
	}

	var out T
	if len(data) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s for %q: %w", glazeipc.ErrDecodeReply, text, err)
	}
	return &out, nil
}
