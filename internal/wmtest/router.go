package wmtest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luciancaetano/glazeipc"
)

// CommandFunc answers a parsed command request.
type CommandFunc func(command, subjectContainerID string) (any, error)

// Router is a Handler that answers the four request kinds the way the window
// manager does: canned query results, a pluggable command handler, and real
// subscription bookkeeping.
type Router struct {
	Queries map[string]any
	Command CommandFunc
}

// Handle implements Handler.
func (r *Router) Handle(conn *Conn, request string) {
	kind, rest, _ := strings.Cut(request, " ")

	switch kind {
	case "query":
		result, ok := r.Queries[rest]
		if !ok {
			conn.ReplyError(request, fmt.Sprintf("unknown query %q", rest))
			return
		}
		conn.Reply(request, result)

	case "command":
		command, subject, err := ParseCommand(rest)
		if err != nil {
			conn.ReplyError(request, err.Error())
			return
		}
		if r.Command == nil {
			conn.Reply(request, glazeipc.RunCommandResponse{SubjectContainerID: subject})
			return
		}
		result, err := r.Command(command, subject)
		if err != nil {
			conn.ReplyError(request, err.Error())
			return
		}
		conn.Reply(request, result)

	case "subscribe":
		events, err := ParseSubscribe(rest)
		if err != nil {
			conn.ReplyError(request, err.Error())
			return
		}
		id := conn.Subscribe(events)
		conn.Reply(request, glazeipc.SubscribeResponse{SubscriptionID: id})

	case "unsubscribe":
		if !conn.Unsubscribe(rest) {
			conn.ReplyError(request, fmt.Sprintf("no subscription %q", rest))
			return
		}
		conn.Reply(request, nil)

	default:
		conn.ReplyError(request, fmt.Sprintf("unknown request %q", kind))
	}
}

// ParseCommand splits the arguments of a command request into the command
// text and the optional -c container id.
func ParseCommand(args string) (command string, subjectContainerID string, err error) {
	quoted, err := strconv.QuotedPrefix(args)
	if err != nil {
		return "", "", fmt.Errorf("command text must be quoted: %w", err)
	}
	command, err = strconv.Unquote(quoted)
	if err != nil {
		return "", "", err
	}

	rest := strings.TrimSpace(args[len(quoted):])
	if rest == "" {
		return command, "", nil
	}
	flag, value, _ := strings.Cut(rest, " ")
	if flag != "-c" || value == "" {
		return "", "", fmt.Errorf("unexpected arguments %q", rest)
	}
	return command, value, nil
}

// ParseSubscribe reads the event list of a subscribe request.
func ParseSubscribe(args string) ([]glazeipc.EventType, error) {
	list, ok := strings.CutPrefix(args, "-e ")
	if !ok || strings.TrimSpace(list) == "" {
		return nil, fmt.Errorf("missing -e <events>")
	}
	var events []glazeipc.EventType
	for _, name := range strings.Split(list, ",") {
		events = append(events, glazeipc.EventType(strings.TrimSpace(name)))
	}
	return events, nil
}
