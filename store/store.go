package store

import (
	"context"
	"errors"

	"github.com/marktlinn/kvstore/record"
)

// Kind names a Store backend.
type Kind string

const (
	MYSQL  Kind = "mysql"
	MEMORY Kind = "memory"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("key not found")

// Store defines the data-access operations the service needs from a backend.
// Every method performs a single statement against the backend; consistency
// across calls is left to the backend itself.
type Store interface {
	// Put inserts a record for key, or updates the value and UpdatedAt of the
	// existing one.
	Put(ctx context.Context, key, value string) error
	// Get returns the record for key or ErrNotFound.
	Get(ctx context.Context, key string) (*record.Record, error)
	// List returns every record, newest first.
	List(ctx context.Context) ([]*record.Record, error)
	// Delete removes the record for key, or returns ErrNotFound if there was none.
	Delete(ctx context.Context, key string) error
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the backend's connections.
	Close() error
}
