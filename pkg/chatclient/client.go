// Package chatclient drives a streamed chat exchange against a parley server.
//
// A reply body is read chunk by chunk and pushed through three stages:
//
//	┌───────────┐  lines  ┌─────────────┐  events  ┌──────────────┐
//	│ sse.Framer│ ──────▶ │ chat.Decoder│ ───────▶ │ onEvent /    │
//	│           │         │             │          │ chat.Reduce  │
//	└───────────┘         └─────────────┘          └──────────────┘
//
// Each call owns its own framer state; a Client may serve many calls but a
// single stream is consumed sequentially.
package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/logger"
	"github.com/papercomputeco/parley/pkg/sse"
)

const (
	// DefaultReadSize is the buffer size used for each body read.
	DefaultReadSize = 32 * 1024

	// maxErrorBody bounds how much of a failed response body is reported.
	maxErrorBody = 64 * 1024
)

const errNoBody = "no response body available for streaming"

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithReadSize sets the buffer size for body reads.
func WithReadSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// WithMalformedHandler replaces the default handling of lines that fail to
// parse, which logs them at debug level and moves on.
func WithMalformedHandler(h chat.MalformedHandler) Option {
	return func(c *Client) {
		c.onMalformed = h
	}
}

// Client sends chat requests and decodes the streamed replies.
type Client struct {
	transport Transport
	tokens    TokenSource
	logger    *slog.Logger
	readSize  int

	onMalformed chat.MalformedHandler
	decoder     *chat.Decoder
}

// New creates a Client. tokens may be nil when no credentials are available.
func New(transport Transport, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		tokens:    tokens,
		logger:    logger.Nop(),
		readSize:  DefaultReadSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.onMalformed == nil {
		c.onMalformed = func(line string, err error) {
			c.logger.Debug("skipping malformed stream line",
				"line", line,
				"error", err,
			)
		}
	}
	c.decoder = chat.NewDecoder(chat.WithMalformedHandler(c.onMalformed))

	return c
}

// SendAndStream posts payload as JSON and calls onEvent once for every event
// in the reply, in order, before the next chunk is read. It returns once the
// stream ends, an end event arrives, or the exchange fails. Events delivered
// before a failure are not retracted.
func (c *Client) SendAndStream(ctx context.Context, payload any, onEvent func(chat.Event)) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return failed(fmt.Sprintf("encoding request: %v", err))
	}

	header, err := c.header()
	if err != nil {
		return failed(err.Error())
	}

	reply, err := c.transport.Send(ctx, body, header)
	if err != nil {
		c.logger.Debug("chat request failed", "error", err)
		return failed(err.Error())
	}
	if reply == nil {
		return failed(errNoBody)
	}
	if reply.Body != nil {
		defer reply.Body.Close()
	}

	if !reply.OK() {
		return failed(statusMessage(reply))
	}
	if reply.Body == nil {
		return failed(errNoBody)
	}

	return c.stream(ctx, reply.Body, onEvent)
}

// stream runs the framing and decoding loop over body.
func (c *Client) stream(ctx context.Context, body io.Reader, onEvent func(chat.Event)) Result {
	framer := sse.NewFramer()
	buf := make([]byte, c.readSize)

	for {
		if err := ctx.Err(); err != nil {
			return failed(err.Error())
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, line := range framer.Feed(buf[:n]) {
				if c.dispatch(line, onEvent) {
					c.logger.Debug("stream ended by server")
					return succeeded()
				}
			}
		}

		if errors.Is(err, io.EOF) {
			if line, ok := framer.Finish(); ok {
				c.dispatch(line, onEvent)
			}
			c.logger.Debug("stream closed without end event")
			return succeeded()
		}
		if err != nil {
			c.logger.Debug("reading stream failed", "error", err)
			return failed(err.Error())
		}
	}
}

// dispatch decodes line and delivers the event. It reports whether the event
// ends the stream.
func (c *Client) dispatch(line string, onEvent func(chat.Event)) bool {
	ev, ok := c.decoder.Decode(line)
	if !ok {
		return false
	}

	if onEvent != nil {
		onEvent(ev)
	}

	_, end := ev.(chat.EndEvent)
	return end
}

func (c *Client) header() (http.Header, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "text/event-stream")

	if c.tokens == nil {
		return header, nil
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	return header, nil
}

func statusMessage(reply *Reply) string {
	var text string
	if reply.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(reply.Body, maxErrorBody))
		text = strings.TrimSpace(string(b))
	}
	return fmt.Sprintf("server returned status %d: %s", reply.StatusCode, text)
}
