package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryBackend is the in-process fallback cache. It is always reachable and
// thread-safe; documents are deep-copied on the way in and out so callers
// can't mutate cached state behind the lock.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[Kind]map[int64]Document
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: map[Kind]map[int64]Document{
			KindUser:  {},
			KindGuild: {},
		},
	}
}

// Name identifies the backend in logs and health output.
func (m *MemoryBackend) Name() string {
	return "memory"
}

// Ping always succeeds; the cache lives in this process.
func (m *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

// Get retrieves a copy of the document for an id.
func (m *MemoryBackend) Get(ctx context.Context, kind Kind, id int64) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.data[kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc)
}

// Put upserts a copy of the document for an id.
func (m *MemoryBackend) Put(ctx context.Context, kind Kind, id int64, doc Document) error {
	stored, err := copyDocument(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[kind] == nil {
		m.data[kind] = map[int64]Document{}
	}
	m.data[kind][id] = stored
	return nil
}

// All returns copies of every stored document of a kind.
func (m *MemoryBackend) All(ctx context.Context, kind Kind) (map[int64]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]Document, len(m.data[kind]))
	for id, doc := range m.data[kind] {
		copied, err := copyDocument(doc)
		if err != nil {
			return nil, err
		}
		out[id] = copied
	}
	return out, nil
}

// Count returns the number of stored documents of a kind.
func (m *MemoryBackend) Count(ctx context.Context, kind Kind) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.data[kind])), nil
}

// Close is a no-op for the in-process backend.
func (m *MemoryBackend) Close() error {
	return nil
}

// copyDocument deep-copies a document through its JSON form. This also
// normalizes values to JSON types, so a document read back from the cache
// looks identical to one read back from a remote backend.
func copyDocument(doc Document) (Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}
	return out, nil
}
