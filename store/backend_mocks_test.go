package store

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string {
	return "mock"
}

func (m *MockBackend) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) Get(ctx context.Context, kind Kind, id int64) (Document, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockBackend) Put(ctx context.Context, kind Kind, id int64, doc Document) error {
	args := m.Called(ctx, kind, id, doc)
	return args.Error(0)
}

func (m *MockBackend) All(ctx context.Context, kind Kind) (map[int64]Document, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]Document), args.Error(1)
}

func (m *MockBackend) Count(ctx context.Context, kind Kind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBackend) Close() error {
	args := m.Called()
	return args.Error(0)
}

// flakyBackend wraps a MemoryBackend and fails every call while fail is set.
// It stands in for a remote store that goes away and comes back.
type flakyBackend struct {
	inner *MemoryBackend

	mu   sync.Mutex
	fail bool
}

var errBackendDown = errors.New("backend down")

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{inner: NewMemoryBackend()}
}

func (f *flakyBackend) setFailing(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *flakyBackend) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *flakyBackend) Name() string {
	return "flaky"
}

func (f *flakyBackend) Ping(ctx context.Context) error {
	if f.failing() {
		return errBackendDown
	}
	return nil
}

func (f *flakyBackend) Get(ctx context.Context, kind Kind, id int64) (Document, error) {
	if f.failing() {
		return nil, errBackendDown
	}
	return f.inner.Get(ctx, kind, id)
}

func (f *flakyBackend) Put(ctx context.Context, kind Kind, id int64, doc Document) error {
	if f.failing() {
		return errBackendDown
	}
	return f.inner.Put(ctx, kind, id, doc)
}

func (f *flakyBackend) All(ctx context.Context, kind Kind) (map[int64]Document, error) {
	if f.failing() {
		return nil, errBackendDown
	}
	return f.inner.All(ctx, kind)
}

func (f *flakyBackend) Count(ctx context.Context, kind Kind) (int64, error) {
	if f.failing() {
		return 0, errBackendDown
	}
	return f.inner.Count(ctx, kind)
}

func (f *flakyBackend) Close() error {
	return f.inner.Close()
}
