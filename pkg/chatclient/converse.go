package chatclient

import (
	"context"

	"github.com/papercomputeco/parley/pkg/chat"
)

// Converse sends text and folds the reply into a chat.Message. onUpdate, when
// set, sees the message after every event. The returned message is always
// finalized; when the exchange fails it is replaced by an error message
// carrying the failure.
func (c *Client) Converse(ctx context.Context, text string, onUpdate func(chat.Message)) (chat.Message, Result) {
	m := chat.NewMessage()

	result := c.SendAndStream(ctx, chat.Request{Message: text}, func(ev chat.Event) {
		m = chat.Reduce(m, ev)
		if onUpdate != nil {
			onUpdate(m)
		}
	})

	if !result.Success {
		return chat.Failed(result.Error), result
	}

	return m.Finalize(), result
}
