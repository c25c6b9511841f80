package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialInterval: time.Millisecond}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	wantErr := errors.New("still down")
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last failure to propagate, got %v", err)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	wantErr := errors.New("bad request")
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return Permanent(wantErr)
	})
	if calls != 1 {
		t.Fatalf("expected a single attempt for a permanent error, got %d", calls)
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected permanent error to propagate, got %v", err)
	}
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{MaxAttempts: 3, InitialInterval: 50 * time.Millisecond}.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if err == nil {
		t.Fatalf("expected an error after cancellation")
	}
	if calls != 1 {
		t.Fatalf("expected no retries after cancellation, got %d calls", calls)
	}
}

func TestDo_ZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	err := Policy{InitialInterval: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("expected a single successful call, got calls=%d err=%v", calls, err)
	}
}
