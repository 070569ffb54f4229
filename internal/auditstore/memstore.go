// internal/auditstore/memstore.go
package auditstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/hydrolix-assistant/internal/types"
)

// MemoryStore is an in-process Store for local runs and tests. Records are
// held per turn in insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[types.TurnID][]Record
	now     func() time.Time
	seq     int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[types.TurnID][]Record),
		now:     time.Now,
	}
}

// Put appends a record. Identical wall-clock timestamps are disambiguated
// with a monotonic offset so ResultsForTurn keeps insertion order.
func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stampRecord(rec, s.now())
	s.seq++
	if len(s.records[rec.TurnID]) > 0 {
		last := s.records[rec.TurnID][len(s.records[rec.TurnID])-1]
		if rec.Timestamp <= last.Timestamp {
			rec.Timestamp = last.Timestamp + 1
		}
	}
	s.records[rec.TurnID] = append(s.records[rec.TurnID], *rec)
	return nil
}

// ResultsForTurn returns the turn's records in ascending timestamp order.
func (s *MemoryStore) ResultsForTurn(_ context.Context, turnID types.TurnID) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records[turnID]))
	copy(out, s.records[turnID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*DynamoStore)(nil)
