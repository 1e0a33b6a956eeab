// Package cache is a namespaced two-tier TTL cache: a fast in-process tier
// plus an optional shared remote tier (redis). The local tier is
// authoritative for correctness; the remote tier is best-effort and its
// failures never reach callers.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Policy controls expiry and size bounds for one namespace.
type Policy struct {
	TTL     time.Duration
	MaxSize int
}

// DefaultPolicy applies to namespaces that were never configured.
var DefaultPolicy = Policy{TTL: 300 * time.Second, MaxSize: 1000}

type entry struct {
	value     any
	createdAt time.Time
}

// namespace keeps its entries plus the insertion order queue used for
// FIFO-under-pressure eviction. The queue tracks first insertion only;
// overwriting a key does not move it.
type namespace struct {
	entries map[string]*entry
	queue   []string
}

// Cache is safe for concurrent use. All local-tier mutation happens under mu;
// remote-tier traffic happens outside it.
type Cache struct {
	mu         sync.Mutex
	policies   map[string]Policy
	namespaces map[string]*namespace

	remote     RemoteTier
	remoteDown bool
	remoteErr  func(op string, err error)

	group singleflight.Group
	nowFn func() time.Time
}

// New builds a cache. remote may be nil for local-only operation.
func New(remote RemoteTier) *Cache {
	return &Cache{
		policies:   map[string]Policy{},
		namespaces: map[string]*namespace{},
		remote:     remote,
		nowFn:      time.Now,
	}
}

// Configure registers or overrides the policy for a namespace.
func (c *Cache) Configure(ns string, p Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.TTL <= 0 {
		p.TTL = DefaultPolicy.TTL
	}
	if p.MaxSize <= 0 {
		p.MaxSize = DefaultPolicy.MaxSize
	}
	c.policies[ns] = p
}

func (c *Cache) policy(ns string) Policy {
	if p, ok := c.policies[ns]; ok {
		return p
	}
	return DefaultPolicy
}

func (c *Cache) bucket(ns string) *namespace {
	b, ok := c.namespaces[ns]
	if !ok {
		b = &namespace{entries: map[string]*entry{}}
		c.namespaces[ns] = b
	}
	return b
}

func (c *Cache) expired(ns string, e *entry) bool {
	return c.nowFn().Sub(e.createdAt) > c.policy(ns).TTL
}

// setLocalLocked is the single write path into the local tier; every insert,
// including remote-hit repopulation, goes through the same sweep/eviction so
// the MaxSize bound holds. Returns the namespace TTL for remote mirroring.
func (c *Cache) setLocalLocked(ns, key string, value any) time.Duration {
	b := c.bucket(ns)
	p := c.policy(ns)

	if _, exists := b.entries[key]; !exists && len(b.entries) >= p.MaxSize {
		c.sweepLocked(ns, b)
		if len(b.entries) >= p.MaxSize {
			c.evictOldestLocked(b)
		}
	}

	if _, exists := b.entries[key]; !exists {
		b.queue = append(b.queue, key)
	}
	b.entries[key] = &entry{value: value, createdAt: c.nowFn()}
	return p.TTL
}

// Set writes to the local tier synchronously and mirrors to the remote tier
// in the background. Remote failures are logged, never returned.
func (c *Cache) Set(ns, key string, value any) {
	c.mu.Lock()
	ttl := c.setLocalLocked(ns, key, value)
	c.mu.Unlock()

	if c.remote != nil {
		go c.mirrorSet(ns, key, value, ttl)
	}
}

// Get checks the local tier first, then the remote tier. A remote hit
// repopulates the local tier. A total miss returns (nil, false).
func (c *Cache) Get(ns, key string) (any, bool) {
	c.mu.Lock()
	b := c.bucket(ns)
	if e, ok := b.entries[key]; ok {
		if !c.expired(ns, e) {
			v := e.value
			c.mu.Unlock()
			return v, true
		}
		c.removeLocked(b, key)
	}
	c.mu.Unlock()

	if c.remote == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, ok, err := c.remote.Get(ctx, remoteKey(ns, key))
	if err != nil {
		c.noteRemoteFailure("get", err)
		return nil, false
	}
	c.noteRemoteRecovery()
	if !ok {
		return nil, false
	}

	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		c.noteRemoteFailure("decode", err)
		return nil, false
	}

	// Repopulate the local tier so the next read is a local hit.
	c.mu.Lock()
	c.setLocalLocked(ns, key, value)
	c.mu.Unlock()

	return value, true
}

// GetOrSet returns the cached value or runs producer on a miss. Concurrent
// misses for the same key run producer once. Producer errors propagate
// untouched and are never cached.
func (c *Cache) GetOrSet(ctx context.Context, ns, key string, producer func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(ns, key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(remoteKey(ns, key), func() (any, error) {
		if v, ok := c.Get(ns, key); ok {
			return v, nil
		}
		produced, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ns, key, produced)
		return produced, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes from the local tier synchronously; removal from the remote
// tier is best-effort and may be eventually consistent.
func (c *Cache) Delete(ns, key string) {
	c.mu.Lock()
	if b, ok := c.namespaces[ns]; ok {
		c.removeLocked(b, key)
	}
	c.mu.Unlock()

	if c.remote != nil {
		go c.mirrorDelete(remoteKey(ns, key))
	}
}

// ClearNamespace drops every local entry in the namespace. Remote cleanup is
// best-effort.
func (c *Cache) ClearNamespace(ns string) {
	c.mu.Lock()
	delete(c.namespaces, ns)
	c.mu.Unlock()

	if c.remote != nil {
		go c.mirrorClear(ns)
	}
}

// Cleanup proactively sweeps expired entries from every namespace.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ns, b := range c.namespaces {
		c.sweepLocked(ns, b)
	}
}

// Len reports the live (non-expired) entry count of a namespace.
func (c *Cache) Len(ns string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.namespaces[ns]
	if !ok {
		return 0
	}
	n := 0
	for _, e := range b.entries {
		if !c.expired(ns, e) {
			n++
		}
	}
	return n
}

func (c *Cache) sweepLocked(ns string, b *namespace) {
	for key, e := range b.entries {
		if c.expired(ns, e) {
			c.removeLocked(b, key)
		}
	}
}

func (c *Cache) evictOldestLocked(b *namespace) {
	for len(b.queue) > 0 {
		oldest := b.queue[0]
		b.queue = b.queue[1:]
		if _, ok := b.entries[oldest]; ok {
			delete(b.entries, oldest)
			return
		}
		// stale queue slot for an already-removed key, keep going
	}
}

func (c *Cache) removeLocked(b *namespace, key string) {
	if _, ok := b.entries[key]; !ok {
		return
	}
	delete(b.entries, key)
	for i, k := range b.queue {
		if k == key {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			break
		}
	}
}

func remoteKey(ns, key string) string {
	return ns + ":" + key
}
