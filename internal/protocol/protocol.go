package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/luciancaetano/glazeipc"
)

// MaxPayloadSize is the largest frame Decode accepts.
const MaxPayloadSize = 10 * 1024 * 1024 // 10MB max payload size

// Command encodes a command request. An empty subjectContainerID targets the
// focused container.
func Command(command string, subjectContainerID string) string {
	var b strings.Builder
	b.WriteString("command ")
	b.WriteString(strconv.Quote(command))
	if subjectContainerID != "" {
		b.WriteString(" -c ")
		b.WriteString(subjectContainerID)
	}
	return b.String()
}

// Query encodes a query request.
func Query(name string) string {
	return "query " + name
}

// Subscribe encodes a subscribe request for the given event types.
// Duplicate event types are sent once, in first-seen order.
func Subscribe(events []glazeipc.EventType) (string, error) {
	if len(events) == 0 {
		return "", errors.New(glazeipc.ErrNoEventTypes)
	}

	seen := make(map[glazeipc.EventType]struct{}, len(events))
	names := make([]string, 0, len(events))
	for _, ev := range events {
		if ev == "" {
			return "", fmt.Errorf("%s: empty event type", glazeipc.ErrNoEventTypes)
		}
		if _, ok := seen[ev]; ok {
			continue
		}
		seen[ev] = struct{}{}
		names = append(names, string(ev))
	}
	return "subscribe -e " + strings.Join(names, ","), nil
}

// Unsubscribe encodes an unsubscribe request.
func Unsubscribe(subscriptionID string) string {
	return "unsubscribe " + subscriptionID
}

// Decode parses one inbound frame into a ServerMessage.
//
// For event messages the event type is read from data.eventType. Any failure
// is returned as a *glazeipc.ProtocolDecodeError.
func Decode(data []byte) (*glazeipc.ServerMessage, error) {
	if len(data) > MaxPayloadSize {
		return nil, decodeErr(data, fmt.Errorf("%s: %d exceeds maximum %d bytes", glazeipc.ErrPayloadTooLarge, len(data), MaxPayloadSize))
	}

	var msg glazeipc.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, decodeErr(data, err)
	}

	switch msg.MessageType {
	case glazeipc.MessageTypeClientResponse:
	case glazeipc.MessageTypeEventSubscription:
		ev, err := eventType(msg.Data)
		if err != nil {
			return nil, decodeErr(data, err)
		}
		msg.EventType = ev
	default:
		return nil, decodeErr(data, fmt.Errorf("%s %q", glazeipc.ErrUnknownMessageType, msg.MessageType))
	}

	if isNull(msg.Data) {
		msg.Data = nil
	}
	return &msg, nil
}

// Encode serializes a ServerMessage the way the window manager writes it.
func Encode(msg *glazeipc.ServerMessage) ([]byte, error) {
	out, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if len(out) > MaxPayloadSize {
		return nil, fmt.Errorf("%s: %d exceeds maximum %d bytes", glazeipc.ErrPayloadTooLarge, len(out), MaxPayloadSize)
	}
	return out, nil
}

func eventType(data json.RawMessage) (glazeipc.EventType, error) {
	if isNull(data) {
		return "", errors.New("event message without data")
	}
	var head struct {
		EventType glazeipc.EventType `json:"eventType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("event data: %w", err)
	}
	if head.EventType == "" {
		return "", errors.New("event data without eventType")
	}
	return head.EventType, nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeErr(payload []byte, err error) error {
	// Keep a bounded copy; the read buffer is reused by the stream.
	const keep = 256
	n := len(payload)
	if n > keep {
		n = keep
	}
	cp := make([]byte, n)
	copy(cp, payload[:n])
	return &glazeipc.ProtocolDecodeError{Payload: cp, Err: err}
}
