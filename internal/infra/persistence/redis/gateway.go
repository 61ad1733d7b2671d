// Package redis stores each snapshot bucket under its own key.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"frontdesk/internal/infra/persistence/snapshot"
	"frontdesk/pkg/domain"
)

var _ domain.Gateway = (*Gateway)(nil)

// DefaultPrefix namespaces bucket keys.
const DefaultPrefix = "frontdesk"

// Options configures the client.
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Gateway writes all buckets in one MULTI/EXEC pipeline.
type Gateway struct {
	client *goredis.Client
	prefix string
}

// Open dials redis and pings it.
func Open(ctx context.Context, opts Options) (*Gateway, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, opts.KeyPrefix), nil
}

// New wraps an existing client.
func New(client *goredis.Client, prefix string) *Gateway {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Gateway{client: client, prefix: prefix}
}

func (g *Gateway) key(bucket string) string {
	return g.prefix + ":state:" + bucket
}

// Load reads every bucket key. ok is false when none exist.
func (g *Gateway) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	keys := make([]string, len(snapshot.Buckets))
	for i, b := range snapshot.Buckets {
		keys[i] = g.key(b)
	}
	vals, err := g.client.MGet(ctx, keys...).Result()
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("mget state: %w", err)
	}
	raw := map[string][]byte{}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		raw[snapshot.Buckets[i]] = []byte(s)
	}
	if len(raw) == 0 {
		return domain.Snapshot{}, false, nil
	}
	snap, err := snapshot.Decode(raw)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Save writes every bucket atomically.
func (g *Gateway) Save(ctx context.Context, snap domain.Snapshot) error {
	buckets, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	_, err = g.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, b := range buckets {
			pipe.Set(ctx, g.key(b.Name), b.Payload, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Close closes the client.
func (g *Gateway) Close() error { return g.client.Close() }
