// Package cache stores the latest combat snapshot and a short event log,
// and fans combat events out to subscribers, either in-process or through
// Redis.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/tilecombat/cache/local"
	cacheredis "github.com/kasuganosora/tilecombat/cache/redis"
)

// Keys and channels shared by the simulation host and the API.
const (
	SnapshotKey   = "combat:snapshot"
	EventLogKey   = "combat:log"
	EventsChannel = "combat:events"
)

// Cache defines the KV and list operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub defines channel publish/subscribe operations.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

// IsNotFound reports whether err means the key does not exist, whichever
// backend produced it.
func IsNotFound(err error) bool {
	return errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound)
}

// PushCapped prepends value to the list at key and trims the list to its
// newest keep entries.
func PushCapped(ctx context.Context, c Cache, key, value string, keep int64) error {
	if err := c.LPush(ctx, key, value); err != nil {
		return err
	}
	return c.LTrim(ctx, key, 0, keep-1)
}

// CacheConfig holds configuration for both Redis and LocalCache.
type CacheConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	LocalGCInterval time.Duration
	LocalPubSubBuf  int
}

// New returns a Cache and a PubSub, backed by one Redis client if
// RedisAddr is set, otherwise in-process. The returned closer releases
// whichever backend was opened.
func New(cfg CacheConfig) (Cache, PubSub, func() error, error) {
	if cfg.RedisAddr != "" {
		client, err := cacheredis.NewClient(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return client, &redisPubSub{c: client}, client.Close, nil
	}

	lc, err := local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval})
	if err != nil {
		return nil, nil, nil, err
	}
	ps := &localPubSub{ps: local.NewPubSub(cfg.LocalPubSubBuf)}
	return lc, ps, func() error { lc.Close(); return nil }, nil
}

// ---- adapters to bridge sub-package message types to cache.Message ----

func relay[T any](in <-chan T, conv func(T) *Message) <-chan *Message {
	out := make(chan *Message, cap(in))
	go func() {
		defer close(out)
		for msg := range in {
			out <- conv(msg)
		}
	}()
	return out
}

type localPubSub struct {
	ps *local.LocalPubSub
}

func (a *localPubSub) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *localPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(in, func(m *local.LocalMessage) *Message {
		return &Message{Channel: m.Channel, Payload: m.Payload}
	}), cancel, nil
}

type redisPubSub struct {
	c *cacheredis.Client
}

func (a *redisPubSub) Publish(ctx context.Context, channel, message string) error {
	return a.c.Publish(ctx, channel, message)
}

func (a *redisPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := a.c.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(in, func(m *cacheredis.Message) *Message {
		return &Message{Channel: m.Channel, Payload: m.Payload}
	}), cancel, nil
}
