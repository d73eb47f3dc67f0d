package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/luciancaetano/glazeipc"
)

// Correlator matches replies to the requests that produced them.
//
// Each outstanding request gets a sequence number and is indexed by it. The
// server identifies a reply only by echoing the request text, so requests
// with the same text queue behind each other and resolve in send order.
// A request abandoned after it reached the stream keeps its place in that
// queue until its reply arrives, so the reply cannot resolve a newer request.
type Correlator struct {
	conn    *Conn
	timeout time.Duration
	log     zerolog.Logger

	seq atomic.Uint64

	mu        sync.Mutex
	pending   map[uint64]*pendingRequest
	abandoned map[uint64]*pendingRequest
	byText    map[string][]uint64
}

type pendingRequest struct {
	id      uint64
	text    string
	onReply func(msg *glazeipc.ServerMessage)
	onLate  func(msg *glazeipc.ServerMessage)
	result  chan replyResult
}

type replyResult struct {
	msg *glazeipc.ServerMessage
	err error
}

// NewCorrelator attaches a correlator to conn. A zero timeout waits forever.
func NewCorrelator(conn *Conn, timeout time.Duration, logger zerolog.Logger) *Correlator {
	c := &Correlator{
		conn:      conn,
		timeout:   timeout,
		log:       logger,
		pending:   make(map[uint64]*pendingRequest),
		abandoned: make(map[uint64]*pendingRequest),
		byText:    make(map[string][]uint64),
	}
	conn.OnMessage(c.dispatch)
	conn.onEnded(c.failAll)
	return c
}

// SendAndWait sends request and returns the payload of its reply.
//
// It returns a *glazeipc.RemoteCommandError when the reply carries an error,
// a *glazeipc.TimeoutError when the configured timeout passes, and a
// *glazeipc.ConnectionError when the stream cannot be opened or ends first.
func (c *Correlator) SendAndWait(ctx context.Context, request string) (json.RawMessage, error) {
	return c.send(ctx, request, nil, nil)
}

// send is SendAndWait with two read loop hooks. onReply runs when the reply
// is matched, before the caller wakes up. onLate runs instead when the reply
// arrives after the caller gave up waiting.
func (c *Correlator) send(ctx context.Context, request string, onReply, onLate func(*glazeipc.ServerMessage)) (json.RawMessage, error) {
	if strings.TrimSpace(request) == "" {
		return nil, errors.New(glazeipc.ErrEmptyRequest)
	}
	if err := c.conn.Connect(ctx); err != nil {
		return nil, err
	}

	p := c.track(request, onReply, onLate)
	if err := c.conn.Send(ctx, request); err != nil {
		c.forget(p)
		return nil, err
	}
	c.log.Debug().Uint64("seq", p.id).Str("request", request).Msg("request sent")

	var timeout <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var res replyResult
	select {
	case res = <-p.result:
	case <-timeout:
		if c.abandon(p) {
			return nil, &glazeipc.TimeoutError{Request: request, After: c.timeout}
		}
		res = <-p.result
	case <-ctx.Done():
		if c.abandon(p) {
			return nil, ctx.Err()
		}
		res = <-p.result
	}

	if res.err != nil {
		return nil, res.err
	}
	if res.msg.Error != "" {
		return nil, &glazeipc.RemoteCommandError{Request: request, Message: res.msg.Error}
	}
	return res.msg.Data, nil
}

// Pending returns the number of requests waiting for a reply.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Correlator) track(text string, onReply, onLate func(*glazeipc.ServerMessage)) *pendingRequest {
	p := &pendingRequest{
		id:      c.seq.Add(1),
		text:    text,
		onReply: onReply,
		onLate:  onLate,
		result:  make(chan replyResult, 1),
	}

	c.mu.Lock()
	c.pending[p.id] = p
	c.byText[text] = append(c.byText[text], p.id)
	c.mu.Unlock()
	return p
}

// forget drops a request that never reached the stream.
func (c *Correlator) forget(p *pendingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[p.id]; !ok {
		return
	}
	delete(c.pending, p.id)

	ids := c.byText[p.text]
	for i, id := range ids {
		if id == p.id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(c.byText, p.text)
	} else {
		c.byText[p.text] = ids
	}
}

// abandon stops waiting for a request that is already on the stream. It
// reports false when the request was resolved or rejected first, in which
// case the outcome is on p.result.
func (c *Correlator) abandon(p *pendingRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[p.id]; !ok {
		return false
	}
	delete(c.pending, p.id)
	c.abandoned[p.id] = p
	return true
}

// dispatch runs on the read loop for every inbound message.
func (c *Correlator) dispatch(msg *glazeipc.ServerMessage) {
	if !msg.IsReply() {
		return
	}

	c.mu.Lock()
	ids := c.byText[msg.ClientMessage]
	if len(ids) == 0 {
		c.mu.Unlock()
		c.log.Debug().Str("client_message", msg.ClientMessage).Msg("reply without pending request")
		return
	}
	id := ids[0]
	if len(ids) == 1 {
		delete(c.byText, msg.ClientMessage)
	} else {
		c.byText[msg.ClientMessage] = ids[1:]
	}
	p, live := c.pending[id]
	if live {
		delete(c.pending, id)
	} else {
		p = c.abandoned[id]
		delete(c.abandoned, id)
	}
	c.mu.Unlock()

	if p == nil {
		return
	}
	if !live {
		c.log.Debug().Uint64("seq", id).Str("client_message", msg.ClientMessage).Msg("late reply")
		if p.onLate != nil {
			p.onLate(msg)
		}
		return
	}
	if p.onReply != nil {
		p.onReply(msg)
	}
	p.result <- replyResult{msg: msg}
}

// failAll rejects every outstanding request with err.
func (c *Correlator) failAll(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]*pendingRequest)
	c.abandoned = make(map[uint64]*pendingRequest)
	c.byText = make(map[string][]uint64)
	c.mu.Unlock()

	for _, p := range pending {
		p.result <- replyResult{err: err}
	}
	if len(pending) > 0 {
		c.log.Debug().Int("count", len(pending)).Msg("rejected pending requests")
	}
}
