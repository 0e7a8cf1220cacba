package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

// RedisBackend stores one JSON value per record under a "record:<kind>:<id>"
// key. It is an alternative remote backend for deployments without Postgres.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a backend from a redis connection URL.
func NewRedisBackend(redisURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisBackend{client: redis.NewClient(opts)}, nil
}

// Name identifies the backend in logs and health output.
func (r *RedisBackend) Name() string {
	return "redis"
}

// Ping verifies the server is reachable.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func recordKey(kind Kind, id int64) string {
	return fmt.Sprintf("record:%s:%d", kind, id)
}

// Get retrieves the document for an id.
func (r *RedisBackend) Get(ctx context.Context, kind Kind, id int64) (Document, error) {
	raw, err := r.client.Get(ctx, recordKey(kind, id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record %d: %w", kind, id, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s record %d: %w", kind, id, err)
	}
	return doc, nil
}

// Put upserts the document for an id.
func (r *RedisBackend) Put(ctx context.Context, kind Kind, id int64, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s record %d: %w", kind, id, err)
	}

	if err := r.client.Set(ctx, recordKey(kind, id), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to upsert %s record %d: %w", kind, id, err)
	}
	return nil
}

// All returns every stored document of a kind, keyed by id. Keys are walked
// with SCAN so a large keyspace doesn't block the server.
func (r *RedisBackend) All(ctx context.Context, kind Kind) (map[int64]Document, error) {
	out := make(map[int64]Document)
	pattern := fmt.Sprintf("record:%s:*", kind)

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := idFromKey(key)
		if err != nil {
			return nil, err
		}

		doc, err := r.Get(ctx, kind, id)
		if err == ErrNotFound {
			// Key disappeared between SCAN and GET.
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = doc
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s records: %w", kind, err)
	}
	return out, nil
}

// Count returns the number of stored documents of a kind.
func (r *RedisBackend) Count(ctx context.Context, kind Kind) (int64, error) {
	var count int64
	pattern := fmt.Sprintf("record:%s:*", kind)

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", kind, err)
	}
	return count, nil
}

// Close closes the client connection.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func idFromKey(key string) (int64, error) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return 0, fmt.Errorf("malformed record key %q", key)
	}
	id, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed record key %q: %w", key, err)
	}
	return id, nil
}
