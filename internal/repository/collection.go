package repository

import (
	"context"

	"dispetcher/backend/internal/store"
)

// collection is the read-modify-write helper shared by the typed repositories.
// tx is nil when the collection is already bound to a store unit.
type collection[T any] struct {
	st   store.Store
	tx   store.Transactor
	key  string
	idOf func(*T) string
}

// write runs fn as its own store unit, so the load and the save inside fn
// cannot interleave with another writer. Bound collections run fn inline.
func (c collection[T]) write(ctx context.Context, fn func(c collection[T]) error) error {
	if c.tx == nil {
		return fn(c)
	}
	return c.tx.Atomic(ctx, func(s store.Store) error {
		return fn(collection[T]{st: s, key: c.key, idOf: c.idOf})
	})
}

func (c collection[T]) all(ctx context.Context) ([]T, bool, error) {
	var items []T
	found, err := c.st.Load(ctx, c.key, &items)
	if err != nil {
		return nil, false, err
	}
	if items == nil {
		items = []T{}
	}
	return items, found, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.st.Save(ctx, c.key, items)
}

func (c collection[T]) index(items []T, id string) int {
	for i := range items {
		if c.idOf(&items[i]) == id {
			return i
		}
	}
	return -1
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	items, _, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	i := c.index(items, id)
	if i < 0 {
		return nil, ErrRecordNotFound
	}
	return &items[i], nil
}

// update applies fn to the entity and writes the collection back. Nothing is
// written when fn fails.
func (c collection[T]) update(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var out T
	err := c.write(ctx, func(c collection[T]) error {
		items, _, err := c.all(ctx)
		if err != nil {
			return err
		}
		i := c.index(items, id)
		if i < 0 {
			return ErrRecordNotFound
		}
		if err := fn(&items[i]); err != nil {
			return err
		}
		out = items[i]
		return c.save(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// replace overwrites the whole collection.
func (c collection[T]) replace(ctx context.Context, items []T) error {
	return c.write(ctx, func(c collection[T]) error {
		return c.save(ctx, items)
	})
}
