package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestUploadLimiter_AcquireRelease(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Status(); got.Active != 0 || got.Available != 2 {
		t.Errorf("initial status = %+v, want 0 active, 2 available", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.Status(); got.Active != 2 || got.Available != 0 {
		t.Errorf("after two Acquires, status = %+v, want 2 active, 0 available", got)
	}

	limiter.Release()
	if got := limiter.Status(); got.Active != 1 || got.Available != 1 {
		t.Errorf("after Release, status = %+v, want 1 active, 1 available", got)
	}

	limiter.Release()
	if got := limiter.Status().Active; got != 0 {
		t.Errorf("after second Release, Active = %d, want 0", got)
	}
}

func TestUploadLimiter_BlocksWhenFull(t *testing.T) {
	limiter := NewUploadLimiter(1, 100*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTooManyUploads) {
		t.Errorf("expected ErrTooManyUploads, got %v", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("Acquire returned after %v, want about 100ms", elapsed)
	}
}

func TestUploadLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewUploadLimiter(maxConcurrent, 5*time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		current atomic.Int64
		peak    atomic.Int64
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(ctx); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > maxConcurrent {
		t.Errorf("peak concurrency = %d, want <= %d", got, maxConcurrent)
	}
	if got := limiter.Status().Active; got != 0 {
		t.Errorf("final Active = %d, want 0", got)
	}
}

func TestUploadLimiter_ContextCancellation(t *testing.T) {
	limiter := NewUploadLimiter(1, 5*time.Second)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancel")
	}
}

func TestUploadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	_ = limiter.Acquire(ctx)
	_ = limiter.Acquire(ctx)

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- limiter.WaitForDrain(context.Background())
	}()

	limiter.Release()
	select {
	case <-drainDone:
		t.Fatal("WaitForDrain returned with an upload still active")
	case <-time.After(100 * time.Millisecond):
	}

	limiter.Release()
	select {
	case err := <-drainDone:
		if err != nil {
			t.Errorf("WaitForDrain error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after all releases")
	}
}

func TestUploadLimiter_WaitForDrain_ContextCancelled(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	_ = limiter.Acquire(context.Background())
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestUploadLimiter_DefaultValues(t *testing.T) {
	limiter := NewUploadLimiter(0, 0)

	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrentUploads {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentUploads)
	}
	if limiter.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWaitTime)
	}
}

func TestUploadLimiter_UnblocksWaiter(t *testing.T) {
	limiter := NewUploadLimiter(1, 2*time.Second)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		err := limiter.Acquire(ctx)
		if err == nil {
			limiter.Release()
		}
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("waiter Acquire error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by Release")
	}
}
