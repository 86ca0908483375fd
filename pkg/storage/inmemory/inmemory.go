// Package inmemory provides a storage driver backed by a map.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/papercomputeco/parley/pkg/storage"
	"github.com/papercomputeco/parley/pkg/transcript"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards exchanges
	mu sync.RWMutex

	// exchanges is keyed by exchange ID
	exchanges map[string]*transcript.Exchange
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		exchanges: make(map[string]*transcript.Exchange),
	}
}

// Put stores a copy of ex.
func (d *Driver) Put(_ context.Context, ex *transcript.Exchange) (bool, error) {
	if ex == nil {
		return false, storage.ErrNilExchange
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.exchanges[ex.ID]; ok {
		return false, nil
	}

	stored := *ex
	d.exchanges[ex.ID] = &stored
	return true, nil
}

// Get retrieves an exchange by ID.
func (d *Driver) Get(_ context.Context, id string) (*transcript.Exchange, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ex, ok := d.exchanges[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	found := *ex
	return &found, nil
}

// List returns exchanges matching q, most recent first.
func (d *Driver) List(_ context.Context, q storage.Query) ([]*transcript.Exchange, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*transcript.Exchange, 0, len(d.exchanges))
	for _, ex := range d.exchanges {
		if q.Username != "" && ex.Username != q.Username {
			continue
		}
		found := *ex
		result = append(result, &found)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit := q.EffectiveLimit(); len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
