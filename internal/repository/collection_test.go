package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	N int `json:"n"`
}

// countingStore records how often Save reaches the backend
type countingStore struct {
	RecordStore
	mu    sync.Mutex
	saves int
}

func (s *countingStore) Save(ctx context.Context, collection string, records []Record) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.RecordStore.Save(ctx, collection, records)
}

func TestCollection_ConcurrentUpdatesAreNotLost(t *testing.T) {
	store, _ := newFileStore(t)
	items := NewCollection[item]("items", store, NewLocks())
	ctx := context.Background()

	const writers = 25
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- items.Update(ctx, func(all []item) ([]item, error) {
				return append(all, item{N: n}), nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := items.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers)
}

func TestCollection_NoChangesSkipsSave(t *testing.T) {
	base, _ := newFileStore(t)
	store := &countingStore{RecordStore: base}
	items := NewCollection[item]("items", store, NewLocks())
	ctx := context.Background()

	require.NoError(t, items.Update(ctx, func(all []item) ([]item, error) {
		return nil, ErrNoChanges
	}))
	assert.Equal(t, 0, store.saves)

	require.NoError(t, items.Update(ctx, func(all []item) ([]item, error) {
		return append(all, item{N: 1}), nil
	}))
	assert.Equal(t, 1, store.saves)
}

func TestCollection_CallbackErrorAbortsSave(t *testing.T) {
	base, _ := newFileStore(t)
	store := &countingStore{RecordStore: base}
	items := NewCollection[item]("items", store, NewLocks())
	boom := errors.New("boom")

	err := items.Update(context.Background(), func(all []item) ([]item, error) {
		return append(all, item{N: 1}), fmt.Errorf("wrapped: %w", boom)
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.saves)

	all, err := items.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCollection_Drop(t *testing.T) {
	store, _ := newFileStore(t)
	items := NewCollection[item]("items", store, NewLocks())
	ctx := context.Background()

	require.NoError(t, items.Update(ctx, func(all []item) ([]item, error) {
		return append(all, item{N: 7}), nil
	}))
	require.NoError(t, items.Drop(ctx))

	all, err := items.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, "items", items.Name())
}
