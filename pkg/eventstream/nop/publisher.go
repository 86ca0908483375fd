// Package nop provides the eventstream publisher used when parley serve runs
// with --eventstream none. Events are validated, counted and dropped.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/parley/pkg/eventstream"
)

// Publisher discards exchange events.
type Publisher struct {
	published atomic.Int64
}

var _ eventstream.Publisher = (*Publisher)(nil)

func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishExchange rejects nil events and cancelled contexts, the same as a
// real publisher would, and otherwise drops the event.
func (p *Publisher) PublishExchange(ctx context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.published.Add(1)
	return nil
}

// Published returns how many events were accepted.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

func (p *Publisher) Close() error {
	return nil
}
