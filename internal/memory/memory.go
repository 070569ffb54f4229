// Package memory persists conversation turns per actor and session so the
// orchestrator can rebuild context across requests. The file store mirrors
// the retention semantics of a managed memory service: turns are kept for a
// fixed window and served back as a bounded recent slice.
package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/hydrolix-assistant/internal/types"
)

// DefaultRetention is how long turns are kept before being dropped on read.
const DefaultRetention = 30 * 24 * time.Hour

// FileStore is a JSONL-backed MemoryStore. Turns are stored per
// (actor, session) in memory/<actor>/<session>.jsonl, one JSON turn per line.
type FileStore struct {
	root      string
	retention time.Duration
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	now       func() time.Time
}

// NewFileStore creates a file-backed store rooted at the given directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{
		root:      root,
		retention: DefaultRetention,
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

func (s *FileStore) turnsPath(actorID string, sessionID types.SessionID) string {
	return filepath.Join(s.root, "memory", actorID, string(sessionID)+".jsonl")
}

// getLock returns the per-conversation mutex, creating one if needed.
func (s *FileStore) getLock(actorID string, sessionID types.SessionID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := actorID + "/" + string(sessionID)
	if lock, ok := s.locks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[key] = lock
	return lock
}

// SaveTurn appends a turn to the conversation's log.
func (s *FileStore) SaveTurn(_ context.Context, actorID string, sessionID types.SessionID, turn types.Turn) error {
	lock := s.getLock(actorID, sessionID)
	lock.Lock()
	defer lock.Unlock()

	if turn.At.IsZero() {
		turn.At = s.now()
	}

	path := s.turnsPath(actorID, sessionID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open memory file: %w", err)
	}
	defer f.Close()

	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write turn: %w", err)
	}
	return nil
}

// Recent returns the last K conversation turns (a turn here is one stored
// message), oldest first, dropping anything outside the retention window.
func (s *FileStore) Recent(_ context.Context, actorID string, sessionID types.SessionID, lastK int) ([]types.Turn, error) {
	lock := s.getLock(actorID, sessionID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(s.turnsPath(actorID, sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open memory file: %w", err)
	}
	defer f.Close()

	cutoff := s.now().Add(-s.retention)

	var turns []types.Turn
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var turn types.Turn
		if err := json.Unmarshal(scanner.Bytes(), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		if turn.At.Before(cutoff) {
			continue
		}
		turns = append(turns, turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan memory file: %w", err)
	}

	if lastK > 0 && len(turns) > lastK {
		turns = turns[len(turns)-lastK:]
	}
	return turns, nil
}

var _ types.MemoryStore = (*FileStore)(nil)
