package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/protocol"
)

// releaseTimeout bounds the unsubscribe sent for an acknowledgement that
// arrived after Subscribe returned.
const releaseTimeout = 5 * time.Second

// Subscriber turns subscribe requests into standing event listeners.
type Subscriber struct {
	conn *Conn
	corr *Correlator
	log  zerolog.Logger
}

// NewSubscriber creates a Subscriber sending through corr.
func NewSubscriber(conn *Conn, corr *Correlator, logger zerolog.Logger) *Subscriber {
	return &Subscriber{conn: conn, corr: corr, log: logger}
}

type subscription struct {
	id      string
	all     bool
	events  map[glazeipc.EventType]struct{}
	handler glazeipc.EventHandler

	active  atomic.Bool
	stopped atomic.Bool
}

func newSubscription(events []glazeipc.EventType, handler glazeipc.EventHandler) *subscription {
	sub := &subscription{
		events:  make(map[glazeipc.EventType]struct{}, len(events)),
		handler: handler,
	}
	for _, ev := range events {
		if ev == glazeipc.EventAll {
			sub.all = true
		}
		sub.events[ev] = struct{}{}
	}
	return sub
}

// activate runs on the read loop when the subscribe reply arrives, so the
// listener is live before the next frame is read.
func (s *subscription) activate(msg *glazeipc.ServerMessage) {
	id := subscriptionID(msg)
	if id == "" {
		return
	}
	s.id = id
	s.active.Store(true)
}

// subscriptionID returns the id granted by a subscribe reply, or "".
func subscriptionID(msg *glazeipc.ServerMessage) string {
	if msg.Error != "" {
		return ""
	}
	var resp glazeipc.SubscribeResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return ""
	}
	return resp.SubscriptionID
}

func (s *subscription) matches(ev glazeipc.EventType) bool {
	if s.all {
		return true
	}
	_, ok := s.events[ev]
	return ok
}

func (s *subscription) dispatch(msg *glazeipc.ServerMessage) {
	if !msg.IsEvent() || !s.active.Load() || s.stopped.Load() {
		return
	}
	if msg.SubscriptionID != "" && msg.SubscriptionID != s.id {
		return
	}
	if !s.matches(msg.EventType) {
		return
	}
	s.handler(&glazeipc.Event{
		Type:           msg.EventType,
		SubscriptionID: s.id,
		Data:           msg.Data,
	})
}

// Subscribe sends a subscribe request for events and routes matching events
// to handler until the returned Unlisten is called.
func (s *Subscriber) Subscribe(ctx context.Context, events []glazeipc.EventType, handler glazeipc.EventHandler) (glazeipc.Unlisten, error) {
	if handler == nil {
		return nil, errors.New("nil event handler")
	}
	request, err := protocol.Subscribe(events)
	if err != nil {
		return nil, err
	}

	sub := newSubscription(events, handler)
	unregister := s.conn.OnMessage(sub.dispatch)

	if _, err := s.corr.send(ctx, request, sub.activate, s.release); err != nil {
		unregister()
		return nil, err
	}
	if !sub.active.Load() {
		unregister()
		return nil, fmt.Errorf("%s for %q: missing subscriptionId", glazeipc.ErrDecodeReply, request)
	}
	s.log.Debug().Str("subscription_id", sub.id).Str("request", request).Msg("subscribed")

	var done atomic.Bool
	return func(ctx context.Context) error {
		if !done.CompareAndSwap(false, true) {
			return nil
		}
		sub.stopped.Store(true)
		unregister()

		if _, err := s.corr.SendAndWait(ctx, protocol.Unsubscribe(sub.id)); err != nil {
			return err
		}
		s.log.Debug().Str("subscription_id", sub.id).Msg("unsubscribed")
		return nil
	}, nil
}

// release cancels a subscription the server granted after Subscribe stopped
// waiting. It runs on the read loop, so the unsubscribe goes out from its own
// goroutine. Nothing is sent once the stream has left the open state.
func (s *Subscriber) release(msg *glazeipc.ServerMessage) {
	id := subscriptionID(msg)
	if id == "" || s.conn.State() != glazeipc.StateOpen {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if _, err := s.corr.SendAndWait(ctx, protocol.Unsubscribe(id)); err != nil {
			s.log.Debug().Err(err).Str("subscription_id", id).Msg("release of late subscription failed")
			return
		}
		s.log.Debug().Str("subscription_id", id).Msg("released late subscription")
	}()
}
