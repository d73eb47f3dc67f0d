// Package glazeipc is a client for the GlazeWM window manager IPC protocol.
//
// The window manager exposes a WebSocket endpoint (port 6123 by default) that
// accepts text requests and answers with JSON messages. A client keeps one
// stream open, correlates each reply with the request that produced it, and
// fans server-pushed events out to independently registered subscriptions.
//
// # Quick Start
//
//	import (
//	    "github.com/luciancaetano/glazeipc"
//	    "github.com/luciancaetano/glazeipc/wm"
//	)
//
//	client := wm.New(wm.NewConfig(glazeipc.DefaultPort))
//	defer client.Close()
//
//	workspaces, err := client.QueryWorkspaces(ctx)
//
//	// Run a command against the focused container
//	client.RunCommand(ctx, "focus --workspace 2", "")
//
//	// Listen for events until unlisten is called
//	unlisten, err := client.SubscribeMany(ctx,
//	    []glazeipc.EventType{glazeipc.EventWindowManaged, glazeipc.EventWindowUnmanaged},
//	    func(e *glazeipc.Event) {
//	        log.Printf("%s: %s", e.Type, e.Data)
//	    })
//	defer unlisten(ctx)
//
// # Protocol Format
//
// Requests are plain text:
//
//	command "<command>" [-c <containerId>]
//	query <name>
//	subscribe -e <event>,<event>,...
//	unsubscribe <subscriptionId>
//
// Every inbound frame is a JSON object:
//
//	{"messageType": "client_response", "clientMessage": "query monitors", "data": {...}, "error": null}
//	{"messageType": "event_subscription", "subscriptionId": "...", "data": {"eventType": "focus_changed", ...}}
//
// A reply is matched to its request by the echoed clientMessage text. Requests
// with identical text that are in flight at the same time resolve in the order
// they were sent.
//
// # Errors
//
//   - *ConnectionError: the stream could not be opened, or ended while a request was pending
//   - *RemoteCommandError: the server answered with an error message
//   - *TimeoutError: no reply within the configured request timeout
//   - *ProtocolDecodeError: a malformed inbound frame (reported to OnError listeners, then dropped)
//
// # Important
//
//   - Event handlers run on the read loop; never wait on a reply from inside one
//   - There is no automatic reconnect; the next request after a disconnect dials again
//   - Requests are not retried
package glazeipc
