// Package storage defines how chat exchanges are persisted.
package storage

import (
	"context"

	"github.com/papercomputeco/parley/pkg/transcript"
)

// DefaultListLimit bounds List when a Query does not set a limit.
const DefaultListLimit = 100

// Query filters exchanges returned by List.
type Query struct {
	// Username restricts results to one user. Empty matches every user.
	Username string

	// Limit caps the number of results. Zero or negative uses DefaultListLimit.
	Limit int
}

// EffectiveLimit returns the limit List should apply.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultListLimit
	}
	return q.Limit
}

// Driver defines the interface for persisting and retrieving exchanges in a
// storage backend.
type Driver interface {
	// Put stores an exchange. Storing an ID that already exists is a no-op
	// and reports false.
	Put(ctx context.Context, ex *transcript.Exchange) (bool, error)

	// Get retrieves an exchange by ID.
	Get(ctx context.Context, id string) (*transcript.Exchange, error)

	// List returns exchanges matching q, most recent first.
	List(ctx context.Context, q Query) ([]*transcript.Exchange, error)

	// Close closes the store and releases any resources.
	Close() error
}
