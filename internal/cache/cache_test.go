package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestCache() (*Cache, *time.Time) {
	c := New(nil)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	c.nowFn = func() time.Time { return now }
	return c, &now
}

func TestGetReturnsValueBeforeTTL(t *testing.T) {
	c, now := newTestCache()
	c.Configure("tolls", Policy{TTL: time.Second, MaxSize: 10})

	c.Set("tolls", "k", "v")

	*now = now.Add(500 * time.Millisecond)
	v, ok := c.Get("tolls", "k")
	if !ok {
		t.Fatalf("expected hit at 0.5s")
	}
	if v != "v" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestGetExpiresAfterTTL(t *testing.T) {
	c, now := newTestCache()
	c.Configure("tolls", Policy{TTL: time.Second, MaxSize: 10})

	c.Set("tolls", "k", "v")

	*now = now.Add(1100 * time.Millisecond)
	if _, ok := c.Get("tolls", "k"); ok {
		t.Fatalf("expected miss at 1.1s")
	}
	if c.Len("tolls") != 0 {
		t.Fatalf("expired entry should be gone, len=%d", c.Len("tolls"))
	}
}

func TestEvictionUnderPressureIsFIFO(t *testing.T) {
	c, _ := newTestCache()
	c.Configure("ns", Policy{TTL: time.Hour, MaxSize: 2})

	c.Set("ns", "k1", 1)
	c.Set("ns", "k2", 2)
	c.Set("ns", "k3", 3)

	if _, ok := c.Get("ns", "k1"); ok {
		t.Fatalf("k1 should have been evicted")
	}
	if v, ok := c.Get("ns", "k2"); !ok || v != 2 {
		t.Fatalf("k2 lost: %v %v", v, ok)
	}
	if v, ok := c.Get("ns", "k3"); !ok || v != 3 {
		t.Fatalf("k3 lost: %v %v", v, ok)
	}
}

func TestEvictionPrefersExpiredEntries(t *testing.T) {
	c, now := newTestCache()
	c.Configure("ns", Policy{TTL: time.Second, MaxSize: 2})

	c.Set("ns", "old", 1)
	*now = now.Add(2 * time.Second)
	c.Set("ns", "k2", 2)
	c.Set("ns", "k3", 3)

	// "old" expired before pressure hit, so k2 must survive the sweep.
	if v, ok := c.Get("ns", "k2"); !ok || v != 2 {
		t.Fatalf("k2 should survive, got %v %v", v, ok)
	}
	if v, ok := c.Get("ns", "k3"); !ok || v != 3 {
		t.Fatalf("k3 should survive, got %v %v", v, ok)
	}
}

func TestOverwriteKeepsInsertionOrder(t *testing.T) {
	c, _ := newTestCache()
	c.Configure("ns", Policy{TTL: time.Hour, MaxSize: 2})

	c.Set("ns", "k1", 1)
	c.Set("ns", "k2", 2)
	c.Set("ns", "k1", 11) // overwrite must not refresh k1's queue position
	c.Set("ns", "k3", 3)

	if _, ok := c.Get("ns", "k1"); ok {
		t.Fatalf("k1 is still the oldest insert and should be evicted")
	}
}

type flakyTier struct {
	mu     sync.Mutex
	store  map[string][]byte
	failed bool
}

func newFlakyTier() *flakyTier { return &flakyTier{store: map[string][]byte{}} }

func (f *flakyTier) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return nil, false, errors.New("connection refused")
	}
	v, ok := f.store[key]
	return v, ok, nil
}

func (f *flakyTier) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("connection refused")
	}
	f.store[key] = payload
	return nil
}

func (f *flakyTier) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, key)
	return nil
}

func (f *flakyTier) DeleteAll(_ context.Context, _ string) error { return nil }

func TestRemoteSetFailureDoesNotAffectLocalTier(t *testing.T) {
	tier := newFlakyTier()
	tier.failed = true

	c := New(tier)
	done := make(chan struct{}, 8)
	c.remoteErr = func(string, error) { done <- struct{}{} }

	c.Set("ns", "k", "v")

	v, ok := c.Get("ns", "k")
	if !ok || v != "v" {
		t.Fatalf("local tier must serve the value despite remote failure, got %v %v", v, ok)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("remote failure was never recorded")
	}
}

func TestRemoteHitRepopulatesLocalTier(t *testing.T) {
	tier := newFlakyTier()
	payload, _ := json.Marshal("remote-value")
	tier.store["ns:k"] = payload

	c := New(tier)

	v, ok := c.Get("ns", "k")
	if !ok || v != "remote-value" {
		t.Fatalf("expected remote hit, got %v %v", v, ok)
	}

	// Second read must come from the local tier even if remote dies.
	tier.mu.Lock()
	tier.failed = true
	tier.mu.Unlock()

	v, ok = c.Get("ns", "k")
	if !ok || v != "remote-value" {
		t.Fatalf("expected repopulated local hit, got %v %v", v, ok)
	}
}

func TestRemoteRepopulationHonorsMaxSize(t *testing.T) {
	tier := newFlakyTier()
	keys := []string{"k1", "k2", "k3", "k4", "k5"}
	for _, k := range keys {
		payload, _ := json.Marshal(k + "-value")
		tier.store["ns:"+k] = payload
	}

	c := New(tier)
	c.Configure("ns", Policy{TTL: time.Hour, MaxSize: 2})

	// Every read misses locally and repopulates from the remote tier; the
	// local tier must still respect its size bound.
	for _, k := range keys {
		if v, ok := c.Get("ns", k); !ok || v != k+"-value" {
			t.Fatalf("expected remote hit for %s, got %v %v", k, v, ok)
		}
	}

	c.mu.Lock()
	stored := len(c.namespaces["ns"].entries)
	c.mu.Unlock()
	if stored > 2 {
		t.Fatalf("local tier exceeded MaxSize after remote repopulation: %d entries", stored)
	}
	if v, ok := c.Get("ns", "k5"); !ok || v != "k5-value" {
		t.Fatalf("newest repopulated key must survive, got %v %v", v, ok)
	}
}

func TestGetOrSetPropagatesProducerError(t *testing.T) {
	c, _ := newTestCache()
	boom := errors.New("provider down")

	_, err := c.GetOrSet(context.Background(), "ns", "k", func(context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("producer error must propagate untouched, got %v", err)
	}
	if _, ok := c.Get("ns", "k"); ok {
		t.Fatalf("failed producer result must not be cached")
	}
}

func TestGetOrSetCachesOnSuccess(t *testing.T) {
	c, _ := newTestCache()

	var calls int32
	producer := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "built", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet(context.Background(), "ns", "k", producer)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "built" {
			t.Fatalf("unexpected value %v", v)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("producer should run once, ran %d times", got)
	}
}

func TestGetOrSetConcurrentMissesRunProducerOnce(t *testing.T) {
	c := New(nil)

	var calls int32
	start := make(chan struct{})
	producer := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return "built", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := c.GetOrSet(context.Background(), "ns", "k", producer); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("concurrent misses must share one producer run, ran %d times", got)
	}
}

func TestDeleteAndClearNamespace(t *testing.T) {
	c, _ := newTestCache()

	c.Set("a", "k1", 1)
	c.Set("a", "k2", 2)
	c.Set("b", "k1", 3)

	c.Delete("a", "k1")
	if _, ok := c.Get("a", "k1"); ok {
		t.Fatalf("k1 should be deleted")
	}

	c.ClearNamespace("a")
	if c.Len("a") != 0 {
		t.Fatalf("namespace a should be empty")
	}
	if v, ok := c.Get("b", "k1"); !ok || v != 3 {
		t.Fatalf("namespace b must be untouched, got %v %v", v, ok)
	}
}

func TestCleanupSweepsExpired(t *testing.T) {
	c, now := newTestCache()
	c.Configure("ns", Policy{TTL: time.Second, MaxSize: 10})

	c.Set("ns", "k1", 1)
	*now = now.Add(2 * time.Second)
	c.Set("ns", "k2", 2)

	c.Cleanup()

	c.mu.Lock()
	stored := len(c.namespaces["ns"].entries)
	c.mu.Unlock()
	if stored != 1 {
		t.Fatalf("cleanup should physically remove expired entries, have %d", stored)
	}
}
