package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/protocol"
	"github.com/luciancaetano/glazeipc/internal/registry"
)

// Conn owns the single stream to the window manager.
//
// State moves Absent -> Connecting -> Open -> Closing -> Closed. Connecting
// holds the one in-flight attempt every concurrent caller waits on. From
// Closed (or Absent after a failed attempt) the next caller dials again.
type Conn struct {
	url         string
	dialer      Dialer
	dialTimeout time.Duration
	limiter     *rate.Limiter
	log         zerolog.Logger

	mu      sync.Mutex
	state   glazeipc.ConnState
	attempt *connectAttempt
	session *session

	messages    registry.Registry[glazeipc.MessageHandler]
	connects    registry.Registry[glazeipc.ConnectHandler]
	disconnects registry.Registry[glazeipc.DisconnectHandler]
	errs        registry.Registry[glazeipc.ErrorHandler]
	// ended runs before the stream is reported closed, while no new stream
	// can be opened yet.
	ended registry.Registry[func(err error)]
}

type connectAttempt struct {
	done chan struct{}
	err  error
}

// session is one opened stream and the pumps serving it.
type session struct {
	stream   Stream
	sendCh   chan []byte
	done     chan struct{} // closed when the stream stops accepting writes
	finished chan struct{} // closed once Conn no longer references the session
	stopOnce sync.Once
	closing  atomic.Bool
}

func newSession(stream Stream) *session {
	return &session{
		stream:   stream,
		sendCh:   make(chan []byte, 256),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

func (s *session) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.stream.Close()
	})
}

// NewConn creates a connection manager. Nothing is dialed until first use.
func NewConn(url string, dialer Dialer, dialTimeout time.Duration, limiter *rate.Limiter, logger zerolog.Logger) *Conn {
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	return &Conn{
		url:         url,
		dialer:      dialer,
		dialTimeout: dialTimeout,
		limiter:     limiter,
		log:         logger,
		state:       glazeipc.StateAbsent,
	}
}

// URL returns the endpoint this connection dials.
func (c *Conn) URL() string {
	return c.url
}

// State returns the current lifecycle state.
func (c *Conn) State() glazeipc.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect ensures the stream is open, dialing if needed.
func (c *Conn) Connect(ctx context.Context) error {
	for {
		c.mu.Lock()
		switch {
		case c.state == glazeipc.StateOpen:
			c.mu.Unlock()
			return nil
		case c.attempt != nil:
			a := c.attempt
			c.mu.Unlock()
			return c.await(ctx, a)
		case c.session != nil:
			// previous stream is still being torn down
			finished := c.session.finished
			c.mu.Unlock()
			select {
			case <-finished:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		a := &connectAttempt{done: make(chan struct{})}
		c.attempt = a
		c.state = glazeipc.StateConnecting
		c.mu.Unlock()

		go c.dial(a)
		return c.await(ctx, a)
	}
}

func (c *Conn) await(ctx context.Context, a *connectAttempt) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) dial(a *connectAttempt) {
	c.log.Debug().Str("url", c.url).Msg("connecting")

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	stream, err := c.dialer.Dial(ctx, c.url)
	cancel()

	c.mu.Lock()
	c.attempt = nil
	if err == nil && c.state == glazeipc.StateClosing {
		stream.Close()
		err = glazeipc.ErrClientClosed
	}
	if err != nil {
		if c.state == glazeipc.StateClosing {
			c.state = glazeipc.StateClosed
		} else {
			c.state = glazeipc.StateAbsent
		}
		a.err = &glazeipc.ConnectionError{URL: c.url, Err: err}
		c.mu.Unlock()
		close(a.done)

		c.log.Warn().Err(err).Str("url", c.url).Msg("connect failed")
		c.errs.Each(func(fn glazeipc.ErrorHandler) { fn(a.err) })
		return
	}

	s := newSession(stream)
	c.session = s
	c.state = glazeipc.StateOpen
	c.mu.Unlock()

	go c.writePump(s)
	go c.readPump(s)
	close(a.done)

	c.log.Info().Str("url", c.url).Msg("connected")
	c.connects.Each(func(fn glazeipc.ConnectHandler) { fn() })
}

// Close requests the stream to close. It does not wait for the read loop to
// finish; OnDisconnect listeners observe that.
func (c *Conn) Close() error {
	c.mu.Lock()
	switch c.state {
	case glazeipc.StateOpen:
		s := c.session
		c.state = glazeipc.StateClosing
		s.closing.Store(true)
		c.mu.Unlock()
		return s.stream.Close()
	case glazeipc.StateConnecting:
		// dial sees this and discards the stream
		c.state = glazeipc.StateClosing
		c.mu.Unlock()
		return nil
	default:
		c.mu.Unlock()
		return nil
	}
}

// Send queues text on the stream, connecting first when needed.
func (c *Conn) Send(ctx context.Context, text string) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	select {
	case <-s.done:
		return c.lost(s)
	default:
	}

	select {
	case s.sendCh <- []byte(text):
		return nil
	case <-s.done:
		return c.lost(s)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) openSession(ctx context.Context) (*session, error) {
	for {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		s, state := c.session, c.state
		c.mu.Unlock()
		if state == glazeipc.StateOpen && s != nil {
			return s, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (c *Conn) lost(s *session) error {
	if s.closing.Load() {
		return &glazeipc.ConnectionError{URL: c.url, Err: glazeipc.ErrClientClosed}
	}
	return &glazeipc.ConnectionError{URL: c.url, Err: glazeipc.ErrDisconnected}
}

// writePump pumps messages from the send channel to the stream
func (c *Conn) writePump(s *session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.sendCh:
			if err := s.stream.WriteText(message); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				// unblocks the read loop, which tears the session down
				s.stream.Close()
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			if err := s.stream.WritePing(); err != nil {
				s.stream.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// readPump decodes inbound frames in arrival order and fans each one out to
// the message listeners before reading the next.
func (c *Conn) readPump(s *session) {
	var readErr error
	for {
		data, err := s.stream.ReadMessage()
		if err != nil {
			readErr = err
			break
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed message")
			c.errs.Each(func(fn glazeipc.ErrorHandler) { fn(err) })
			continue
		}

		c.messages.Each(func(fn glazeipc.MessageHandler) { fn(msg) })
	}

	c.teardown(s, readErr)
}

func (c *Conn) teardown(s *session, readErr error) {
	voluntary := s.closing.Load()

	c.mu.Lock()
	if c.session == s {
		c.state = glazeipc.StateClosing
	}
	c.mu.Unlock()

	s.stop()
	lostErr := c.lost(s)
	c.ended.Each(func(fn func(error)) { fn(lostErr) })

	c.mu.Lock()
	if c.session == s {
		c.session = nil
		c.state = glazeipc.StateClosed
	}
	c.mu.Unlock()
	close(s.finished)

	if voluntary {
		c.log.Info().Str("url", c.url).Msg("disconnected")
	} else {
		c.log.Warn().Err(readErr).Str("url", c.url).Msg("connection lost")
		if isUnexpectedClose(readErr) {
			connErr := &glazeipc.ConnectionError{URL: c.url, Err: readErr}
			c.errs.Each(func(fn glazeipc.ErrorHandler) { fn(connErr) })
		}
	}
	c.disconnects.Each(func(fn glazeipc.DisconnectHandler) { fn(voluntary) })
}

// OnMessage registers a listener for decoded inbound messages.
func (c *Conn) OnMessage(fn glazeipc.MessageHandler) func() {
	return c.messages.Register(fn)
}

// OnConnect registers a listener for stream opens.
func (c *Conn) OnConnect(fn glazeipc.ConnectHandler) func() {
	return c.connects.Register(fn)
}

// OnDisconnect registers a listener for stream ends.
func (c *Conn) OnDisconnect(fn glazeipc.DisconnectHandler) func() {
	return c.disconnects.Register(fn)
}

// OnError registers a listener for stream and decode errors.
func (c *Conn) OnError(fn glazeipc.ErrorHandler) func() {
	return c.errs.Register(fn)
}

func (c *Conn) onEnded(fn func(err error)) func() {
	return c.ended.Register(fn)
}
