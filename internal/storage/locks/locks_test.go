package locks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAcquireAndRelease(t *testing.T) {
	table := NewTable()

	handle, err := table.Acquire(context.Background(), "a", time.Second)
	if err != nil {
		t.Fatalf("unexpected error on Acquire: %v", err)
	}
	handle.Unlock()

	// Released locks can be re-acquired.
	handle, err = table.Acquire(context.Background(), "a", time.Second)
	if err != nil {
		t.Fatalf("unexpected error re-acquiring: %v", err)
	}
	handle.Unlock()
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	table := NewTable()

	handle, err := table.Acquire(context.Background(), "a", time.Second)
	if err != nil {
		t.Fatalf("unexpected error on Acquire: %v", err)
	}
	defer handle.Unlock()

	_, err = table.Acquire(context.Background(), "a", 20*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestAcquire_ContextCancel(t *testing.T) {
	table := NewTable()

	handle, err := table.Acquire(context.Background(), "a", time.Second)
	if err != nil {
		t.Fatalf("unexpected error on Acquire: %v", err)
	}
	defer handle.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = table.Acquire(ctx, "a", time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	table := NewTable()

	ha, err := table.Acquire(context.Background(), "a", time.Second)
	if err != nil {
		t.Fatalf("unexpected error acquiring a: %v", err)
	}
	defer ha.Unlock()

	hb, err := table.Acquire(context.Background(), "b", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("expected b to be free while a is held, got %v", err)
	}
	hb.Unlock()
}

func TestUnlockIsIdempotent(t *testing.T) {
	table := NewTable()

	handle, err := table.Acquire(context.Background(), "a", time.Second)
	if err != nil {
		t.Fatalf("unexpected error on Acquire: %v", err)
	}
	handle.Unlock()
	handle.Unlock() // must not panic or corrupt the lock

	h2, err := table.Acquire(context.Background(), "a", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("expected lock to be free, got %v", err)
	}
	h2.Unlock()
}

func TestMutualExclusion(t *testing.T) {
	table := NewTable()

	var counter, active int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				handle, err := table.Acquire(context.Background(), "shared", 5*time.Second)
				if err != nil {
					t.Errorf("unexpected error on Acquire: %v", err)
					return
				}

				mu.Lock()
				active++
				if active != 1 {
					t.Errorf("expected exactly one holder, found %d", active)
				}
				counter++
				active--
				mu.Unlock()

				handle.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != 800 {
		t.Errorf("expected 800 critical sections, got %d", counter)
	}
}
