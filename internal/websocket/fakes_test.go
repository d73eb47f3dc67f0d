package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/protocol"
)

const waitTimeout = 2 * time.Second

// fakeStream is an in-memory Stream. The test plays the server: it reads
// what the client wrote from out and feeds frames through in.
type fakeStream struct {
	in        chan []byte
	out       chan string
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		in:     make(chan []byte, 64),
		out:    make(chan string, 64),
		closed: make(chan struct{}),
	}
}

func (s *fakeStream) ReadMessage() ([]byte, error) {
	select {
	case data := <-s.in:
		return data, nil
	case <-s.closed:
		return nil, io.EOF
	}
}

func (s *fakeStream) WriteText(data []byte) error {
	select {
	case <-s.closed:
		return errors.New("write on closed stream")
	default:
	}
	select {
	case s.out <- string(data):
		return nil
	case <-s.closed:
		return errors.New("write on closed stream")
	}
}

func (s *fakeStream) WritePing() error { return nil }

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// expectSent waits for the next request text the client wrote.
func (s *fakeStream) expectSent(t *testing.T) string {
	t.Helper()
	select {
	case text := <-s.out:
		return text
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for the client to send")
		return ""
	}
}

func (s *fakeStream) push(t *testing.T, msg *glazeipc.ServerMessage) {
	t.Helper()
	data, err := protocol.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s.in <- data
}

func (s *fakeStream) reply(t *testing.T, request string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s.push(t, &glazeipc.ServerMessage{
		MessageType:   glazeipc.MessageTypeClientResponse,
		ClientMessage: request,
		Data:          raw,
		Success:       true,
	})
}

func (s *fakeStream) replyError(t *testing.T, request string, message string) {
	t.Helper()
	s.push(t, &glazeipc.ServerMessage{
		MessageType:   glazeipc.MessageTypeClientResponse,
		ClientMessage: request,
		Error:         message,
	})
}

func (s *fakeStream) event(t *testing.T, subscriptionID string, eventType glazeipc.EventType) {
	t.Helper()
	raw, _ := json.Marshal(map[string]any{"eventType": eventType})
	s.push(t, &glazeipc.ServerMessage{
		MessageType:    glazeipc.MessageTypeEventSubscription,
		SubscriptionID: subscriptionID,
		Data:           raw,
		Success:        true,
	})
}

// fakeDialer counts dials. When gate is non-nil every Dial blocks until it
// is closed.
type fakeDialer struct {
	gate chan struct{}
	err  error

	mu      sync.Mutex
	calls   int
	streams []*fakeStream
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Stream, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.err != nil {
		return nil, d.err
	}

	s := newFakeStream()
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

func (d *fakeDialer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *fakeDialer) stream(t *testing.T, i int) *fakeStream {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		d.mu.Lock()
		if i < len(d.streams) {
			s := d.streams[i]
			d.mu.Unlock()
			return s
		}
		d.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stream %d was never dialed", i)
	return nil
}

func newTestClient(d *fakeDialer, requestTimeout time.Duration) *Client {
	return NewClient(&ClientConfig{
		URL:            "ws://wm.test:6123",
		Dialer:         d,
		RequestTimeout: requestTimeout,
	})
}

// waitFor polls cond until it holds or the wait times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// readLoopIdle pushes a marker event and waits until the read loop has
// dispatched it, so every frame pushed earlier has been handled too.
func readLoopIdle(t *testing.T, c *Client, s *fakeStream) {
	t.Helper()
	seen := make(chan struct{})
	var once sync.Once
	unregister := c.OnMessage(func(msg *glazeipc.ServerMessage) {
		if msg.IsEvent() && msg.EventType == "test_marker" {
			once.Do(func() { close(seen) })
		}
	})
	defer unregister()

	s.event(t, "marker", "test_marker")
	select {
	case <-seen:
	case <-time.After(waitTimeout):
		t.Fatal("read loop did not reach the marker")
	}
}
