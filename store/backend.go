package store

import (
	"context"
	"errors"
)

// Document is the generic tree form of a record as held by a backend.
// Nested sub-documents are map[string]any, collections are []any; numbers
// decoded from JSON arrive as float64.
type Document map[string]any

// Kind namespaces records by entity type.
type Kind string

const (
	KindUser  Kind = "user"
	KindGuild Kind = "guild"
)

// ErrNotFound is returned by a backend when no record exists for an id.
var ErrNotFound = errors.New("record not found")

// Backend is a document store keyed by kind and integer id. Both the remote
// stores and the in-process cache satisfy it, so the record store can swap
// one for the other transparently.
type Backend interface {
	// Name identifies the backend in logs and health output.
	Name() string

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Get retrieves the document for an id. Returns ErrNotFound if absent.
	Get(ctx context.Context, kind Kind, id int64) (Document, error)

	// Put upserts the document for an id.
	Put(ctx context.Context, kind Kind, id int64, doc Document) error

	// All returns every stored document of a kind, keyed by id.
	All(ctx context.Context, kind Kind) (map[int64]Document, error)

	// Count returns the number of stored documents of a kind.
	Count(ctx context.Context, kind Kind) (int64, error)

	// Close releases backend resources.
	Close() error
}
