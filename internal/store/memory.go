// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for ephemeral runs (DB_PATH=memory) and tests.
//
// Characteristics:
//   - Records are deep-copied on save and on load, so callers never share memory with the store.
//   - Concurrency-safe via RWMutex (concurrent loads allowed, saves exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/wordle/apps/engine/internal/player"
)

// Store is the account persistence contract.
// Implementations may be backed by memory (this file), SQLite, etc.
type Store interface {
	// LoadAll returns every account keyed by username.
	LoadAll(ctx context.Context) (map[string]*player.Record, error)

	// SaveAll replaces the stored account collection with accounts.
	SaveAll(ctx context.Context, accounts map[string]*player.Record) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex              // guards accounts map
	accounts map[string]*player.Record // keyed by username
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{accounts: make(map[string]*player.Record)}
}

// LoadAll returns copies of every stored record.
func (m *memory) LoadAll(ctx context.Context) (map[string]*player.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.accounts), nil
}

// SaveAll swaps in copies of accounts.
func (m *memory) SaveAll(ctx context.Context, accounts map[string]*player.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = cloneAll(accounts)
	return nil
}

func cloneAll(in map[string]*player.Record) map[string]*player.Record {
	out := make(map[string]*player.Record, len(in))
	for k, r := range in {
		out[k] = r.Clone()
	}
	return out
}
