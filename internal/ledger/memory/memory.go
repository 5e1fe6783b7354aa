// Package memory is an in-process ledger backend for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"minder/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	entries []ledger.Entry
}

var (
	_ ledger.Writer  = (*Store)(nil)
	_ ledger.Remover = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append upserts the entry keyed by session id, mirroring the sheet
// behavior: a re-sync of the same session overwrites its row.
func (s *Store) Append(ctx context.Context, e ledger.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.entries {
		if existing.SessionID == e.SessionID {
			s.entries[i] = e
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

func (s *Store) Remove(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.entries {
		if existing.SessionID == sessionID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil // removing an absent row is a no-op
}

// Entries returns a copy of the current ledger rows.
func (s *Store) Entries() []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ledger.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
