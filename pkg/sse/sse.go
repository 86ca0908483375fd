// Package sse provides the line-level plumbing for parley's chat streams: a
// Framer that reassembles newline-terminated lines from arbitrarily sized
// byte chunks, and a Writer that wraps payloads in the "data: " envelope.
//
// The wire format is a relaxed subset of Server-Sent Events. Every payload
// sits on its own line, optionally prefixed with "data: ". Lines starting
// with ':' are comments and blank lines separate events. Multi-line data
// fields, "event:" and "id:" fields are not used.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

const (
	// DataPrefix is the envelope prefix wrapping an event payload.
	DataPrefix = "data: "

	// CommentPrefix marks a comment (keep-alive) line.
	CommentPrefix = ":"
)
