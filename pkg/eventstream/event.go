package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/parley/pkg/transcript"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeRecorded is emitted after a chat exchange is stored.
	EventTypeExchangeRecorded = "parley.exchange.recorded"
)

// ExchangeRecordedEvent is a transport-neutral event payload for a stored
// exchange.
type ExchangeRecordedEvent struct {
	SchemaVersion int                  `json:"schema_version"`
	EventType     string               `json:"event_type"`
	EventID       string               `json:"event_id"`
	EmittedAt     time.Time            `json:"emitted_at"`
	Source        EventSource          `json:"source"`
	Exchange      *transcript.Exchange `json:"exchange"`
}

// EventSource identifies where the exchange originated.
type EventSource struct {
	Service    string `json:"service"`
	RemoteAddr string `json:"remote_addr,omitempty"`
}

// NewExchangeRecordedEvent wraps ex in a freshly identified event.
func NewExchangeRecordedEvent(source EventSource, ex *transcript.Exchange) *ExchangeRecordedEvent {
	return &ExchangeRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeExchangeRecorded,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Exchange:      ex,
	}
}

// Key returns the partitioning key for the event.
func (e *ExchangeRecordedEvent) Key() string {
	if e.Exchange != nil {
		return e.Exchange.ID
	}
	return e.EventID
}
