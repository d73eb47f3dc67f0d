// Package wm constructs GlazeWM IPC clients.
//
// The client implementation lives in an internal package; wm exposes the
// constructors and configuration helpers callers need.
package wm
