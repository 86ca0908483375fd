// Package chat defines the events carried by a parley chat stream, the
// decoder that turns framed lines into events, and the fold that accumulates
// events into a single assistant message.
package chat

import (
	"encoding/json"
	"fmt"
)

// Wire values of the "type" field.
const (
	TypeMessage = "message"
	TypeGraph   = "graph"
	TypeError   = "error"
	TypeEnd     = "end"
)

// Event is a sealed interface over the decoded stream events. The unexported
// marker method prevents implementations outside this package, so a type
// switch over the four variants below is exhaustive.
type Event interface {
	event()
}

// MessageEvent is an incremental text fragment.
type MessageEvent struct {
	Content string
}

func (MessageEvent) event() {}

// GraphEvent is a complete visual artifact. GraphData is passed through
// untouched for the presentation layer.
type GraphEvent struct {
	GraphType   string
	GraphData   json.RawMessage
	Description string
}

func (GraphEvent) event() {}

// ErrorEvent is an application-level failure reported in-band by the server.
type ErrorEvent struct {
	Content string
	Data    string
}

func (ErrorEvent) event() {}

// EndEvent explicitly terminates the stream.
type EndEvent struct{}

func (EndEvent) event() {}

// Interface compliance checks.
var (
	_ Event = MessageEvent{}
	_ Event = GraphEvent{}
	_ Event = ErrorEvent{}
	_ Event = EndEvent{}
)

// TypeOf returns the wire type tag for ev.
func TypeOf(ev Event) string {
	switch ev.(type) {
	case MessageEvent:
		return TypeMessage
	case GraphEvent:
		return TypeGraph
	case ErrorEvent:
		return TypeError
	case EndEvent:
		return TypeEnd
	}
	return ""
}

// wireEvent is the JSON object carried on each stream line. Every field other
// than Type is optional.
type wireEvent struct {
	Type        string          `json:"type"`
	Content     string          `json:"content,omitempty"`
	GraphType   string          `json:"graphType,omitempty"`
	GraphData   json.RawMessage `json:"graphData,omitempty"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`

	// Message is what some producers send on failures instead of content.
	Message string `json:"message,omitempty"`
}

// Marshal encodes ev as the JSON object written on the wire.
func Marshal(ev Event) ([]byte, error) {
	w := wireEvent{Type: TypeOf(ev)}
	if w.Type == "" {
		return nil, fmt.Errorf("unsupported event %T", ev)
	}

	switch e := ev.(type) {
	case MessageEvent:
		w.Content = e.Content
	case GraphEvent:
		w.GraphType = e.GraphType
		w.GraphData = e.GraphData
		w.Description = e.Description
	case ErrorEvent:
		w.Content = e.Content
		if e.Data != "" {
			data, err := json.Marshal(e.Data)
			if err != nil {
				return nil, fmt.Errorf("encoding error data: %w", err)
			}
			w.Data = data
		}
	}

	return json.Marshal(w)
}

// Request is the body a client posts to start a chat stream.
type Request struct {
	Message string `json:"message"`
}
