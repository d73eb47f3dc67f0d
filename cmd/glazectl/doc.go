// Command glazectl queries, commands and watches a running GlazeWM instance
// over its WebSocket IPC endpoint.
package main
