package chat

import (
	"encoding/json"
	"strings"

	"github.com/papercomputeco/parley/pkg/sse"
)

// MalformedHandler is notified of a line whose payload is not valid JSON.
// The line is skipped either way; the handler only decides whether and how
// the failure is surfaced.
type MalformedHandler func(line string, err error)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMalformedHandler sets the handler for lines that fail to parse.
// The default drops them silently.
func WithMalformedHandler(h MalformedHandler) DecoderOption {
	return func(d *Decoder) {
		d.onMalformed = h
	}
}

// Decoder turns framed lines into Events. It holds no per-stream state and
// may be reused across streams.
type Decoder struct {
	onMalformed MalformedHandler
}

// NewDecoder returns a Decoder configured with opts.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode returns the Event carried by line. The boolean is false when the
// line must be skipped: blank lines, comments, empty envelopes, malformed
// JSON and unrecognized event types.
func (d *Decoder) Decode(line string) (Event, bool) {
	payload := strings.TrimSpace(line)
	if payload == "" {
		return nil, false
	}

	payload = strings.TrimPrefix(payload, sse.DataPrefix)
	if payload == "" || strings.HasPrefix(payload, sse.CommentPrefix) {
		return nil, false
	}

	var w wireEvent
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		if d.onMalformed != nil {
			d.onMalformed(line, err)
		}
		return nil, false
	}

	switch w.Type {
	case TypeMessage:
		return MessageEvent{Content: w.Content}, true

	case TypeGraph:
		return GraphEvent{
			GraphType:   w.GraphType,
			GraphData:   w.GraphData,
			Description: w.Description,
		}, true

	case TypeError:
		content := w.Content
		if content == "" {
			content = w.Message
		}
		return ErrorEvent{Content: content, Data: rawText(w.Data)}, true

	case TypeEnd:
		return EndEvent{}, true

	default:
		// Unknown types are forward compatible: ignore them.
		return nil, false
	}
}

// rawText returns a JSON string value unquoted, any other JSON value as its
// literal text, and "" for an absent or null value.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(raw)
}
