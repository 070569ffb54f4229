package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/user/hydrolix-assistant/internal/state"
	"github.com/user/hydrolix-assistant/internal/types"
)

func TestGatewayHandleInbound(t *testing.T) {
	sessions := state.NewSessionStore(t.TempDir())

	gw := New(sessions)
	ctx := context.Background()
	gw.Start(ctx)
	defer gw.Stop()

	inbound := &types.InboundEvent{
		Source:     "test",
		SessionKey: types.NewSessionKey("test", "123"),
		UserID:     "user1",
		Text:       "hello",
	}

	err := gw.HandleInbound(ctx, inbound)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	sessionList, err := sessions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessionList) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessionList))
	}
}

func TestGatewayMultipleEvents(t *testing.T) {
	sessions := state.NewSessionStore(t.TempDir())

	gw := New(sessions)
	ctx := context.Background()
	gw.Start(ctx)
	defer gw.Stop()

	// Send two events with the same session key -- should create only one session
	for i := 0; i < 2; i++ {
		inbound := &types.InboundEvent{
			Source:     "test",
			SessionKey: types.NewSessionKey("test", "same-key"),
			UserID:     "user1",
			Text:       "msg",
		}
		if err := gw.HandleInbound(ctx, inbound); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(100 * time.Millisecond)

	sessionList, err := sessions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessionList) != 1 {
		t.Errorf("expected 1 session (same key), got %d", len(sessionList))
	}
}

func TestGatewayOnCompleteDeliversAnswer(t *testing.T) {
	sessions := state.NewSessionStore(t.TempDir())

	gw := New(sessions)
	ctx := context.Background()
	gw.Start(ctx)
	defer gw.Stop()

	gw.Queue.SetProcessor(func(run *Run) error {
		if run.OnComplete != nil {
			run.OnComplete(&types.Answer{TurnID: run.TurnID, Text: "answer text"})
		}
		return nil
	})

	got := make(chan *types.Answer, 1)
	inbound := &types.InboundEvent{
		Source:     "test",
		SessionKey: types.NewSessionKey("test", "cb"),
		UserID:     "user1",
		Text:       "question",
	}
	err := gw.HandleInbound(ctx, inbound, WithOnComplete(func(ans *types.Answer) {
		got <- ans
	}))
	if err != nil {
		t.Fatal(err)
	}

	select {
	case ans := <-got:
		if ans.Text != "answer text" {
			t.Errorf("unexpected answer: %q", ans.Text)
		}
		if ans.TurnID == "" {
			t.Error("expected a turn ID on the answer")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for answer")
	}
}

func TestGatewayRunKeepsEventTurnID(t *testing.T) {
	turnID := types.NewTurnID()
	event := &types.InboundEvent{
		SessionKey: types.NewSessionKey("test", "id"),
		TurnID:     turnID,
	}
	run := NewRun("session-1", event)
	if run.TurnID != turnID {
		t.Errorf("expected run to keep event turn ID, got %s", run.TurnID)
	}

	run2 := NewRun("session-1", &types.InboundEvent{SessionKey: "k"})
	if run2.TurnID == "" {
		t.Error("expected generated turn ID when event has none")
	}
}
