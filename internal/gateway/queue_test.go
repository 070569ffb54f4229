package gateway

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/hydrolix-assistant/internal/types"
)

// fastRetry keeps backoff delays negligible in tests.
func fastRetry() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     10 * time.Millisecond,
	}
}

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue(2)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var running int32
	var maxSeen int32

	queue.processor = func(run *Run) error {
		current := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&maxSeen)
			if current <= old || atomic.CompareAndSwapInt32(&maxSeen, old, current) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	}

	for i := 0; i < 5; i++ {
		run := &Run{
			ID:        types.NewRunID(),
			SessionID: types.SessionID(fmt.Sprintf("session-%d", i)),
			Status:    RunStatusQueued,
		}
		if err := queue.Enqueue(run); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(500 * time.Millisecond)

	if m := atomic.LoadInt32(&maxSeen); m > 2 {
		t.Errorf("expected max 2 concurrent, saw %d", m)
	}
}

func TestQueueProcessorCalled(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var processed int32

	queue.SetProcessor(func(run *Run) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})

	run := &Run{
		ID:        types.NewRunID(),
		SessionID: types.SessionID("test-session"),
		Status:    RunStatusQueued,
	}
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&processed) != 1 {
		t.Errorf("expected 1 processed run, got %d", processed)
	}
}

func TestQueueSameSessionOrdering(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	queue.SetProcessor(func(run *Run) error {
		seq, err := strconv.Atoi(run.Event.Text)
		if err != nil {
			return err
		}
		mu.Lock()
		order = append(order, seq)
		n := len(order)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
		return nil
	})

	sessionID := types.SessionID("same-session")
	for i := 0; i < 3; i++ {
		run := &Run{
			ID:        types.NewRunID(),
			SessionID: sessionID,
			Status:    RunStatusQueued,
			Event:     &types.InboundEvent{Text: strconv.Itoa(i)},
		}
		if err := queue.Enqueue(run); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for runs to process")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Errorf("expected order[%d] = %d, got %d", i, i, v)
		}
	}
}

func TestQueueRetriesTransientFailure(t *testing.T) {
	queue := NewQueue(1)
	queue.SetRetryPolicy(fastRetry())
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var calls int32
	done := make(chan *Run, 1)
	queue.SetProcessor(func(run *Run) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return fmt.Errorf("connection refused")
		}
		done <- run
		return nil
	})

	run := &Run{
		ID:        types.NewRunID(),
		SessionID: types.SessionID("retry-session"),
		Status:    RunStatusQueued,
	}
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-done:
		if got.Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", got.Attempts)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retried run to succeed")
	}
}

func TestQueueDoesNotRetryPermanentFailure(t *testing.T) {
	queue := NewQueue(1)
	queue.SetRetryPolicy(fastRetry())
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var calls int32
	queue.SetProcessor(func(run *Run) error {
		atomic.AddInt32(&calls, 1)
		return fmt.Errorf("invalid request")
	})

	got := make(chan *types.Answer, 1)
	run := &Run{
		ID:        types.NewRunID(),
		SessionID: types.SessionID("permanent-fail"),
		TurnID:    types.NewTurnID(),
		Status:    RunStatusQueued,
		OnComplete: func(ans *types.Answer) {
			got <- ans
		},
	}
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for failure callback")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 attempt for a non-retryable error, got %d", n)
	}
}

func TestQueueFailedRunNotifiesCaller(t *testing.T) {
	queue := NewQueue(1)
	queue.SetRetryPolicy(fastRetry())
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	queue.SetProcessor(func(run *Run) error {
		return fmt.Errorf("boom")
	})

	got := make(chan *types.Answer, 1)
	run := &Run{
		ID:        types.NewRunID(),
		SessionID: types.SessionID("fail-session"),
		TurnID:    types.NewTurnID(),
		Status:    RunStatusQueued,
		OnComplete: func(ans *types.Answer) {
			got <- ans
		},
	}
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	select {
	case ans := <-got:
		if ans.Text == "" {
			t.Error("expected fallback text on failure")
		}
		if ans.TurnID != run.TurnID {
			t.Error("expected failure answer to carry the run's turn ID")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for failure callback")
	}
}

func TestQueueNoProcessor(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	// Enqueue without setting a processor -- should not panic
	run := &Run{
		ID:        types.NewRunID(),
		SessionID: types.SessionID("no-proc"),
		Status:    RunStatusQueued,
	}
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
}
