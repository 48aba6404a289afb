package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the document does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Document is a single key/value write used in batch commits.
type Document struct {
	Key   string
	Value []byte
}

// DocumentStore defines the storage operations interface following hexagonal
// architecture. This is a port that can be implemented by different document
// stores (Redis, in-memory, etc.).
type DocumentStore interface {
	// Get retrieves a document by key. Returns ErrKeyNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a document under the given key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// SetBatch writes all documents as a single atomic commit. Either every
	// document is written or none is.
	SetBatch(ctx context.Context, docs []Document) error

	// Delete removes a document by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// AddToSet adds a member to the set stored under key.
	AddToSet(ctx context.Context, key, member string) error

	// SetMembers returns all members of the set stored under key.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
