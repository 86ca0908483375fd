// Package transcript defines the record kept for each completed chat exchange.
package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/parley/pkg/chat"
)

// Exchange is one prompt and the assistant reply streamed back for it.
type Exchange struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	Prompt      string           `json:"prompt"`
	Reply       string           `json:"reply"`
	ContentType chat.ContentType `json:"contentType"`
	GraphType   string           `json:"graphType,omitempty"`
	IsError     bool             `json:"isError"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// New builds an Exchange for username from the prompt and the folded reply.
func New(username, prompt string, reply chat.Message) *Exchange {
	return &Exchange{
		ID:          uuid.NewString(),
		Username:    username,
		Prompt:      prompt,
		Reply:       reply.Text,
		ContentType: reply.ContentType,
		GraphType:   reply.GraphType,
		IsError:     reply.Error,
		CreatedAt:   time.Now().UTC(),
	}
}

// Message returns the exchange reply as a finalized chat.Message.
// Graph data is not retained in transcripts.
func (e *Exchange) Message() chat.Message {
	contentType := e.ContentType
	if contentType == "" {
		contentType = chat.ContentText
	}
	return chat.Message{
		Text:        e.Reply,
		ContentType: contentType,
		GraphType:   e.GraphType,
		Error:       e.IsError,
		// Folded fragments always end in a line break; error text that
		// replaced an empty reply does not.
		Synthetic: e.IsError && !strings.HasSuffix(e.Reply, "\n"),
	}
}

// List is the body returned when listing exchanges.
type List struct {
	Exchanges []*Exchange `json:"exchanges"`
	Count     int         `json:"count"`
}

// NewList wraps exchanges, never encoding a null array.
func NewList(exchanges []*Exchange) *List {
	if exchanges == nil {
		exchanges = []*Exchange{}
	}
	return &List{Exchanges: exchanges, Count: len(exchanges)}
}
