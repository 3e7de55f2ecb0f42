package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type item struct {
	SKU string `json:"sku"`
}

func TestFetchCachesResult(t *testing.T) {
	c := New(NewMemoryBackend(), time.Minute, nil)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]item, error) {
		calls++
		return []item{{SKU: "ALI-001"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, KeyInventoryItems, load)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(got) != 1 || got[0].SKU != "ALI-001" {
			t.Fatalf("unexpected result %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 load, got %d", calls)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New(NewMemoryBackend(), time.Minute, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	if _, err := Fetch(ctx, c, "k", load); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, err := Fetch(ctx, c, "k", load)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != 7 || calls != 2 {
		t.Errorf("expected 7 after 2 loads, got %d after %d", got, calls)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := New(NewMemoryBackend(), time.Minute, nil)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	Fetch(ctx, c, KeyFlocks, load)
	if err := c.Invalidate(ctx, KeyFlocks); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	got, _ := Fetch(ctx, c, KeyFlocks, load)
	if got != 2 {
		t.Errorf("expected refetched value 2, got %d", got)
	}
}

func TestStaleEntriesExpire(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return now }
	c := New(backend, DefaultStaleTime, nil)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	Fetch(ctx, c, KeyDashboardStats, load)
	now = now.Add(4 * time.Minute)
	Fetch(ctx, c, KeyDashboardStats, load)
	if calls != 1 {
		t.Errorf("expected cached value within stale time, got %d loads", calls)
	}

	now = now.Add(2 * time.Minute)
	Fetch(ctx, c, KeyDashboardStats, load)
	if calls != 2 {
		t.Errorf("expected refetch after stale time, got %d loads", calls)
	}
}

func TestConcurrentFetchesShareOneLoad(t *testing.T) {
	c := New(NewMemoryBackend(), time.Minute, nil)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "ok", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := Fetch(ctx, c, KeyChartOfAccounts, load); err != nil || got != "ok" {
				t.Errorf("unexpected result %q %v", got, err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 load, got %d", n)
	}
}

func TestInvalidateDuringFetchSkipsStore(t *testing.T) {
	c := New(NewMemoryBackend(), time.Minute, nil)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	load := func(context.Context) (int, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			close(started)
			<-release
		}
		return int(n), nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		Fetch(ctx, c, KeyFlocks, load)
	}()

	<-started
	c.Invalidate(ctx, KeyFlocks)
	close(release)
	<-done

	got, _ := Fetch(ctx, c, KeyFlocks, load)
	if got != 2 {
		t.Errorf("expected a fresh load after invalidation, got %d", got)
	}
}

func TestPurge(t *testing.T) {
	c := New(NewMemoryBackend(), time.Minute, nil)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	Fetch(ctx, c, KeyFlocks, load)
	if err := c.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	Fetch(ctx, c, KeyFlocks, load)
	if calls != 2 {
		t.Errorf("expected 2 loads after purge, got %d", calls)
	}
}
