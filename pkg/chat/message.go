package chat

import (
	"encoding/json"
	"strings"
)

// ContentType describes how a Message body is rendered.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentGraph ContentType = "graph"
)

// DefaultGraphType is used when a graph event does not name its renderer.
const DefaultGraphType = "plotly"

// ErrorDisplayPrefix is prepended to error text when a message is shown.
const ErrorDisplayPrefix = "Error: "

const unknownErrorText = "Unknown error"

// Message is the assistant reply accumulated from a stream of Events.
//
// Once ContentType becomes ContentGraph it never reverts, and once Streaming
// is false no further event changes the message.
type Message struct {
	Text        string          `json:"text"`
	ContentType ContentType     `json:"contentType"`
	GraphType   string          `json:"graphType,omitempty"`
	GraphData   json.RawMessage `json:"graphData,omitempty"`
	Streaming   bool            `json:"isStreaming"`
	Error       bool            `json:"isError"`

	// Synthetic reports that Text was composed from a failure rather than
	// streamed content.
	Synthetic bool `json:"-"`
}

// NewMessage returns an empty streaming text message.
func NewMessage() Message {
	return Message{
		ContentType: ContentText,
		Streaming:   true,
	}
}

// Reduce applies ev to m and returns the result. It does not modify m.
// A finalized message is returned unchanged.
func Reduce(m Message, ev Event) Message {
	if !m.Streaming {
		return m
	}

	switch e := ev.(type) {
	case MessageEvent:
		if e.Content == "" {
			return m
		}
		if m.Text == "" {
			m.Text = e.Content + "\n"
		} else {
			m.Text = m.Text + "\n" + e.Content + "\n"
		}

	case GraphEvent:
		m.ContentType = ContentGraph
		m.GraphType = e.GraphType
		if m.GraphType == "" {
			m.GraphType = DefaultGraphType
		}
		m.GraphData = e.GraphData

		// The trailing break of the last fragment doubles as the separator.
		switch {
		case m.Text != "" && e.Description != "":
			m.Text = strings.TrimRight(m.Text, "\n") + "\n" + e.Description
		case m.Text == "":
			m.Text = e.Description
		}
		m = m.Finalize()

	case ErrorEvent:
		if m.Text == "" {
			switch {
			case e.Content != "":
				m.Text = e.Content
			case e.Data != "":
				m.Text = e.Data
			default:
				m.Text = unknownErrorText
			}
			m.Synthetic = true
		}
		m.Error = true
		m = m.Finalize()

	case EndEvent:
		m = m.Finalize()
	}

	return m
}

// Finalize returns m with streaming cleared.
func (m Message) Finalize() Message {
	m.Streaming = false
	return m
}

// Fold reduces events into a fresh message.
func Fold(events ...Event) Message {
	m := NewMessage()
	for _, ev := range events {
		m = Reduce(m, ev)
	}
	return m
}

// Failed returns a finalized error message describing a failed exchange.
func Failed(reason string) Message {
	if reason == "" {
		reason = unknownErrorText
	}
	return Message{
		Text:        reason,
		ContentType: ContentText,
		Error:       true,
		Synthetic:   true,
	}
}

// DisplayText returns the text as it should be shown to a person. Synthetic
// error text carries ErrorDisplayPrefix.
func (m Message) DisplayText() string {
	if m.Synthetic {
		return ErrorDisplayPrefix + m.Text
	}
	return m.Text
}
