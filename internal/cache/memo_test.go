package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoServesCachedValueWithinTTL(t *testing.T) {
	m := NewMemo[int](5 * time.Minute)
	now := time.Now()
	m.SetClock(func() time.Time { return now })

	var calls int
	load := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		v, err := m.Get(ctx, load)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != 42 {
			t.Fatalf("value: got %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Errorf("load calls: got %d, want 1", calls)
	}
}

func TestMemoRebuildsAfterTTL(t *testing.T) {
	m := NewMemo[int](5 * time.Minute)
	now := time.Now()
	m.SetClock(func() time.Time { return now })

	var calls int
	load := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	if v, _ := m.Get(ctx, load); v != 1 {
		t.Fatalf("first value: got %d, want 1", v)
	}

	// Just under the TTL: still cached.
	now = now.Add(5*time.Minute - time.Second)
	if v, _ := m.Get(ctx, load); v != 1 {
		t.Fatalf("value before expiry: got %d, want 1", v)
	}

	// Past the TTL: rebuilt.
	now = now.Add(2 * time.Second)
	if v, _ := m.Get(ctx, load); v != 2 {
		t.Fatalf("value after expiry: got %d, want 2", v)
	}
	if calls != 2 {
		t.Errorf("load calls: got %d, want 2", calls)
	}
}

func TestMemoInvalidate(t *testing.T) {
	m := NewMemo[string](5 * time.Minute)

	var calls int
	load := func(ctx context.Context) (string, error) {
		calls++
		return "snapshot", nil
	}

	ctx := context.Background()
	m.Get(ctx, load)
	m.Invalidate()
	m.Get(ctx, load)

	if calls != 2 {
		t.Errorf("load calls after invalidate: got %d, want 2", calls)
	}
}

func TestMemoFailsClosed(t *testing.T) {
	m := NewMemo[int](5 * time.Minute)
	boom := errors.New("storage down")

	ctx := context.Background()

	// Populate, then expire and fail the rebuild: the old value must not
	// be served.
	now := time.Now()
	m.SetClock(func() time.Time { return now })
	m.Get(ctx, func(ctx context.Context) (int, error) { return 7, nil })

	now = now.Add(10 * time.Minute)
	_, err := m.Get(ctx, func(ctx context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}

	// A later successful rebuild recovers.
	v, err := m.Get(ctx, func(ctx context.Context) (int, error) { return 9, nil })
	if err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
	if v != 9 {
		t.Errorf("value after recovery: got %d, want 9", v)
	}
}

// TestMemoRebuildDetachedFromCallerCancel verifies the shared rebuild is
// not torn down by the cancellation of the request that started it.
func TestMemoRebuildDetachedFromCallerCancel(t *testing.T) {
	m := NewMemo[int](5 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := m.Get(ctx, func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("Get with cancelled caller: %v", err)
	}
	if v != 7 {
		t.Errorf("value: got %d, want 7", v)
	}
}

// TestMemoColdCacheCoalesces verifies that concurrent callers arriving on
// a cold cache share a single rebuild.
func TestMemoColdCacheCoalesces(t *testing.T) {
	m := NewMemo[int](5 * time.Minute)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	load := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 99, nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]int, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Get(context.Background(), load)
		}(i)
	}

	// Let the goroutines pile up on the in-flight rebuild, then finish it.
	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != 99 {
			t.Errorf("worker %d: got %d, want 99", i, results[i])
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("load calls: got %d, want 1", got)
	}
}
