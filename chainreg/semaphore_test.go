package chainreg

import (
	"context"
	"testing"
	"time"
)

func TestHostSemaphore_Limit(t *testing.T) {
	sem := newHostSemaphore(2)
	ctx := context.Background()

	if err := sem.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := sem.Acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if sem.Active() != 2 {
		t.Errorf("Active = %d, want 2", sem.Active())
	}

	// Third acquire must block until a slot is released
	acquired := make(chan struct{})
	go func() {
		_ = sem.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquire succeeded past the limit")
	case <-time.After(20 * time.Millisecond):
	}

	sem.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire did not proceed after release")
	}
}

func TestHostSemaphore_ContextCancel(t *testing.T) {
	sem := newHostSemaphore(1)
	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sem.Acquire(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestHostSemaphore_MinimumLimit(t *testing.T) {
	sem := newHostSemaphore(0)
	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire with clamped limit: %v", err)
	}
}
