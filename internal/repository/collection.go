package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Locks hands out one mutex per collection name. Holding it across
// load → mutate → save is what keeps concurrent writers from losing updates.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the collection is free and returns its unlock func.
func (l *Locks) Lock(collection string) func() {
	l.mu.Lock()
	m, ok := l.locks[collection]
	if !ok {
		m = &sync.Mutex{}
		l.locks[collection] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Collection gives typed access to one named collection of a RecordStore.
type Collection[T any] struct {
	name  string
	store RecordStore
	locks *Locks
}

func NewCollection[T any](name string, store RecordStore, locks *Locks) *Collection[T] {
	return &Collection[T]{name: name, store: store, locks: locks}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// All returns every item in stored order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	unlock := c.locks.Lock(c.name)
	defer unlock()

	return c.load(ctx)
}

// Update runs the full read-modify-write cycle under the collection lock.
// fn receives a fresh copy of the collection and returns its replacement.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	unlock := c.locks.Lock(c.name)
	defer unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		if errors.Is(err, ErrNoChanges) {
			return nil
		}
		return err
	}
	return c.save(ctx, updated)
}

// Drop removes the whole collection.
func (c *Collection[T]) Drop(ctx context.Context) error {
	unlock := c.locks.Lock(c.name)
	defer unlock()

	return c.store.Drop(ctx, c.name)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	records, err := c.store.Load(ctx, c.name)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(records))
	for i, record := range records {
		var item T
		if err := json.Unmarshal(record, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %d: %w", c.name, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		record, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode %s record %d: %w", c.name, i, err)
		}
		records = append(records, record)
	}
	return c.store.Save(ctx, c.name, records)
}
