// Package wmtest provides an in-process endpoint that speaks the window
// manager IPC wire format, for exercising clients in tests.
package wmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/protocol"
)

// Handler is called for every request text a client sends, in arrival order
// per connection.
type Handler func(conn *Conn, request string)

// Server accepts WebSocket connections on a loopback httptest server.
type Server struct {
	httpSrv  *httptest.Server
	upgrader websocket.Upgrader
	handler  Handler

	accepted atomic.Int32
	conns    sync.Map // map[string]*Conn
}

// NewServer starts a server that passes every request to handler.
func NewServer(handler Handler) *Server {
	s := &Server{
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.httpSrv = httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	return s
}

// URL returns the ws:// address of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpSrv.URL, "http")
}

// Accepted returns how many connections were upgraded so far.
func (s *Server) Accepted() int {
	return int(s.accepted.Load())
}

// Subscriptions returns the number of live subscriptions across connections.
func (s *Server) Subscriptions() int {
	total := 0
	s.conns.Range(func(key, value interface{}) bool {
		if conn, ok := value.(*Conn); ok {
			total += conn.Subscriptions()
		}
		return true
	})
	return total
}

// Drop closes every connection without a closure frame.
func (s *Server) Drop() {
	s.conns.Range(func(key, value interface{}) bool {
		if conn, ok := value.(*Conn); ok {
			conn.Drop()
		}
		return true
	})
}

// Close closes every connection and stops the server.
func (s *Server) Close() {
	s.conns.Range(func(key, value interface{}) bool {
		if conn, ok := value.(*Conn); ok {
			conn.Close()
		}
		return true
	})
	s.httpSrv.CloseClientConnections()
	s.httpSrv.Close()
}

// Broadcast emits an event to every subscription on every connection that
// listens for eventType.
func (s *Server) Broadcast(eventType glazeipc.EventType, fields map[string]any) {
	s.conns.Range(func(key, value interface{}) bool {
		if conn, ok := value.(*Conn); ok {
			conn.Broadcast(eventType, fields)
		}
		return true
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.accepted.Add(1)

	conn := &Conn{
		id:   uuid.New().String(),
		ws:   ws,
		subs: make(map[string][]glazeipc.EventType),
	}
	s.conns.Store(conn.id, conn)
	defer func() {
		s.conns.Delete(conn.id)
		conn.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if s.handler != nil {
			s.handler(conn, string(data))
		}
	}
}

// Conn is one accepted client connection.
type Conn struct {
	id string
	ws *websocket.Conn

	writeMu sync.Mutex
	closed  atomic.Bool

	mu   sync.Mutex
	subs map[string][]glazeipc.EventType
}

// ID returns the connection's identifier.
func (c *Conn) ID() string {
	return c.id
}

// Reply answers request with a payload.
func (c *Conn) Reply(request string, data any) error {
	raw, err := marshalData(data)
	if err != nil {
		return err
	}
	return c.write(&glazeipc.ServerMessage{
		MessageType:   glazeipc.MessageTypeClientResponse,
		ClientMessage: request,
		Data:          raw,
		Success:       true,
	})
}

// ReplyError answers request with an error message.
func (c *Conn) ReplyError(request string, message string) error {
	return c.write(&glazeipc.ServerMessage{
		MessageType:   glazeipc.MessageTypeClientResponse,
		ClientMessage: request,
		Error:         message,
	})
}

// Subscribe records a subscription for events and returns its new id.
func (c *Conn) Subscribe(events []glazeipc.EventType) string {
	id := uuid.New().String()
	c.mu.Lock()
	c.subs[id] = events
	c.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription. It reports whether the id was known.
func (c *Conn) Unsubscribe(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[id]; !ok {
		return false
	}
	delete(c.subs, id)
	return true
}

// Subscriptions returns the number of live subscriptions.
func (c *Conn) Subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Emit sends one event for subscriptionID. The eventType field is added to
// fields.
func (c *Conn) Emit(subscriptionID string, eventType glazeipc.EventType, fields map[string]any) error {
	data := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["eventType"] = eventType

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.write(&glazeipc.ServerMessage{
		MessageType:    glazeipc.MessageTypeEventSubscription,
		SubscriptionID: subscriptionID,
		Data:           raw,
		Success:        true,
	})
}

// Broadcast emits eventType to each subscription on this connection that
// listens for it.
func (c *Conn) Broadcast(eventType glazeipc.EventType, fields map[string]any) {
	c.mu.Lock()
	var targets []string
	for id, events := range c.subs {
		for _, ev := range events {
			if ev == eventType || ev == glazeipc.EventAll {
				targets = append(targets, id)
				break
			}
		}
	}
	c.mu.Unlock()

	for _, id := range targets {
		c.Emit(id, eventType, fields)
	}
}

// WriteRaw sends data as a text frame without encoding it.
func (c *Conn) WriteRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close closes the connection with a normal closure frame.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.ws.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
	return c.ws.Close()
}

// Drop closes the connection without a closure frame.
func (c *Conn) Drop() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.ws.Close()
}

func (c *Conn) write(msg *glazeipc.ServerMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return c.WriteRaw(data)
}

func marshalData(data any) (json.RawMessage, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
