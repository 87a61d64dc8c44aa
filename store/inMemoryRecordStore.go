package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marktlinn/kvstore/record"
)

// InMemoryRecordStore is a map structure store of Records held in memory.
// It is meant for local development and tests; nothing survives a restart.
type InMemoryRecordStore struct {
	mu     sync.RWMutex
	DB     map[string]*record.Record
	nextID uint
	now    func() time.Time
}

// NewInMemoryRecordStore creates a new InMemoryRecordStore and returns a reference to it.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{
		DB: make(map[string]*record.Record),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Put inserts key into the store, or refreshes the value and UpdatedAt of an existing entry.
func (i *InMemoryRecordStore) Put(_ context.Context, key, value string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if rec, ok := i.DB[key]; ok {
		rec.Value = value
		rec.UpdatedAt = now
		return nil
	}

	i.nextID++
	rec := record.New(key, value, now)
	rec.ID = i.nextID
	i.DB[key] = rec
	return nil
}

// Get returns a copy so callers cannot mutate stored records.
func (i *InMemoryRecordStore) Get(_ context.Context, key string) (*record.Record, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	rec, ok := i.DB[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// List copies every record into a slice ordered newest first.
func (i *InMemoryRecordStore) List(_ context.Context) ([]*record.Record, error) {
	i.mu.RLock()
	records := make([]*record.Record, 0, len(i.DB))
	for _, rec := range i.DB {
		cp := *rec
		records = append(records, &cp)
	}
	i.mu.RUnlock()

	sort.Slice(records, func(a, b int) bool {
		return record.Less(records[a], records[b])
	})
	return records, nil
}

func (i *InMemoryRecordStore) Delete(_ context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.DB[key]; !ok {
		return ErrNotFound
	}
	delete(i.DB, key)
	return nil
}

// Count returns the number of records in the InMemoryRecordStore DB.
func (i *InMemoryRecordStore) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.DB), nil
}

func (i *InMemoryRecordStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (i *InMemoryRecordStore) Close() error {
	return nil
}
