package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDrain_WaitsForTokens(t *testing.T) {
	d := NewDrain()
	own := d.Token()
	workers := []*Token{d.Token(), d.Token()}

	done := make(chan error, 1)
	go func() {
		done <- d.Wait(context.Background())
	}()

	own.Release()
	workers[0].Release()

	select {
	case <-done:
		t.Fatal("Wait returned while a token was still held")
	case <-time.After(30 * time.Millisecond):
	}

	workers[1].Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after all tokens released")
	}
}

func TestDrain_ReleaseIdempotent(t *testing.T) {
	d := NewDrain()
	a := d.Token()
	b := d.Token()

	a.Release()
	a.Release() // must not release b's share

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want DeadlineExceeded", err)
	}

	b.Release()
	if err := d.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestDrain_Empty(t *testing.T) {
	if err := NewDrain().Wait(context.Background()); err != nil {
		t.Errorf("Wait() on empty drain error = %v", err)
	}
}

func TestDrain_CoordinatorTokenHoldsWait(t *testing.T) {
	d := NewDrain()
	coordinator := d.Token()

	// Work that has already finished must not end the drain early.
	d.Token().Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want DeadlineExceeded", err)
	}

	coordinator.Release()
	if err := d.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}
