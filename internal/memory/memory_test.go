// internal/memory/memory_test.go
package memory

import (
	"testing"
	"time"

	"github.com/user/hydrolix-assistant/internal/types"
)

func TestSaveAndRecent(t *testing.T) {
	s := NewFileStore(t.TempDir())
	sid := types.SessionID("sess-1")

	for _, text := range []string{"one", "two", "three"} {
		turn := types.Turn{Role: "user", Text: text}
		if err := s.SaveTurn(t.Context(), "alice", sid, turn); err != nil {
			t.Fatal(err)
		}
	}

	turns, err := s.Recent(t.Context(), "alice", sid, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Text != "one" || turns[2].Text != "three" {
		t.Errorf("turns out of order: %v", turns)
	}
}

func TestRecentLastK(t *testing.T) {
	s := NewFileStore(t.TempDir())
	sid := types.SessionID("sess-1")

	for i := 0; i < 10; i++ {
		turn := types.Turn{Role: "user", Text: string(rune('a' + i))}
		if err := s.SaveTurn(t.Context(), "alice", sid, turn); err != nil {
			t.Fatal(err)
		}
	}

	turns, err := s.Recent(t.Context(), "alice", sid, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	if turns[0].Text != "g" || turns[3].Text != "j" {
		t.Errorf("expected last 4 turns, got %v", turns)
	}
}

func TestRecentRetentionWindow(t *testing.T) {
	s := NewFileStore(t.TempDir())
	sid := types.SessionID("sess-1")

	now := time.Now()
	old := types.Turn{Role: "user", Text: "stale", At: now.Add(-DefaultRetention - time.Hour)}
	fresh := types.Turn{Role: "user", Text: "fresh", At: now}
	for _, turn := range []types.Turn{old, fresh} {
		if err := s.SaveTurn(t.Context(), "alice", sid, turn); err != nil {
			t.Fatal(err)
		}
	}

	turns, err := s.Recent(t.Context(), "alice", sid, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 1 || turns[0].Text != "fresh" {
		t.Errorf("expected only the fresh turn, got %v", turns)
	}
}

func TestRecentMissingSession(t *testing.T) {
	s := NewFileStore(t.TempDir())

	turns, err := s.Recent(t.Context(), "nobody", types.SessionID("none"), 20)
	if err != nil {
		t.Fatal(err)
	}
	if turns != nil {
		t.Errorf("expected nil for unknown session, got %v", turns)
	}
}

func TestSessionsIsolated(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if err := s.SaveTurn(t.Context(), "alice", "s1", types.Turn{Role: "user", Text: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTurn(t.Context(), "alice", "s2", types.Turn{Role: "user", Text: "other"}); err != nil {
		t.Fatal(err)
	}

	turns, err := s.Recent(t.Context(), "alice", "s1", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 1 || turns[0].Text != "hello" {
		t.Errorf("sessions leaked: %v", turns)
	}
}
