// Package snapshot persists the last-fetched stock list.
//
// The snapshot exists so the product/category workspace can resolve a stock
// name from the location path back to a StockID without issuing its own
// list fetch. It is written only by the stock workspace's successful list
// fetch and carries no invalidation protocol; staleness relative to the
// server is accepted, and a failed lookup is a recoverable state for the
// reader, not an error.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
)

// Snapshot is the persisted stock list with the time it was taken.
type Snapshot struct {
	TakenAt time.Time   `json:"TakenAt"`
	Stocks  []api.Stock `json:"Stocks"`
}

// Lookup resolves a stock by name, case-insensitively and ignoring
// surrounding whitespace on both sides.
func (s *Snapshot) Lookup(name string) (api.Stock, bool) {
	if s == nil {
		return api.Stock{}, false
	}
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return api.Stock{}, false
	}
	for _, stock := range s.Stocks {
		if strings.ToLower(strings.TrimSpace(stock.StockName)) == want {
			return stock, true
		}
	}
	return api.Stock{}, false
}

// Store persists the snapshot as one JSON file, fail-soft on read like the
// session store.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a snapshot store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Put stamps and persists the stock list as the new snapshot.
func (s *Store) Put(stocks []api.Stock) error {
	snap := Snapshot{TakenAt: s.now(), Stocks: stocks}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// Get returns the persisted snapshot, or (nil, nil) when absent. A corrupt
// snapshot is purged and reported as absent.
func (s *Store) Get() (*Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		_ = os.Remove(s.path)
		return nil, nil
	}
	return &snap, nil
}
