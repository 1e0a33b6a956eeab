package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RemoteTier is the shared out-of-process tier. Implementations must treat a
// missing key as (nil, false, nil), not an error.
type RemoteTier interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context, prefix string) error
}

func (c *Cache) mirrorSet(ns, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.noteRemoteFailure("encode", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.remote.Set(ctx, remoteKey(ns, key), payload, ttl); err != nil {
		c.noteRemoteFailure("set", err)
		return
	}
	c.noteRemoteRecovery()
}

func (c *Cache) mirrorDelete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.remote.Delete(ctx, key); err != nil {
		c.noteRemoteFailure("delete", err)
		return
	}
	c.noteRemoteRecovery()
}

func (c *Cache) mirrorClear(ns string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.remote.DeleteAll(ctx, ns+":"); err != nil {
		c.noteRemoteFailure("clear", err)
		return
	}
	c.noteRemoteRecovery()
}

// noteRemoteFailure logs the first failure of an outage, then stays quiet
// until the tier recovers. The cache keeps serving from the local tier.
func (c *Cache) noteRemoteFailure(op string, err error) {
	c.mu.Lock()
	first := !c.remoteDown
	c.remoteDown = true
	hook := c.remoteErr
	c.mu.Unlock()
	if first {
		log.Printf("[CACHE] remote tier unavailable, continuing local-only: op=%s err=%v", op, err)
	}
	if hook != nil {
		hook(op, err)
	}
}

func (c *Cache) noteRemoteRecovery() {
	c.mu.Lock()
	recovered := c.remoteDown
	c.remoteDown = false
	c.mu.Unlock()
	if recovered {
		log.Printf("[CACHE] remote tier recovered")
	}
}

// RedisTier backs the remote tier with redis. Values are JSON payloads.
type RedisTier struct {
	client *redis.Client
}

func NewRedisTier(addr string) *RedisTier {
	return &RedisTier{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		}),
	}
}

func (r *RedisTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (r *RedisTier) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, payload, ttl).Err()
}

func (r *RedisTier) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisTier) DeleteAll(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisTier) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisTier) Close() error {
	return r.client.Close()
}
