package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a typed view over one named collection.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](store Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) FindAll(ctx context.Context) ([]T, error) {
	raw, err := c.store.FindAll(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", c.name, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return c.store.Insert(ctx, c.name, b)
}

func (c *Collection[T]) DeleteAll(ctx context.Context) error {
	return c.store.DeleteAll(ctx, c.name)
}
