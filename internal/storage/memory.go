package storage

import (
	"context"
	"encoding/json"
	"sync"
)

type memoryStore struct {
	mu     sync.Mutex
	closed bool
	docs   map[string][]json.RawMessage
}

// NewMemory returns an in-process store.
func NewMemory() Store {
	return &memoryStore{docs: map[string][]json.RawMessage{}}
}

func (m *memoryStore) FindAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if err := validName(collection); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	src := m.docs[collection]
	out := make([]json.RawMessage, len(src))
	for i, d := range src {
		out[i] = append(json.RawMessage(nil), d...)
	}
	return out, nil
}

func (m *memoryStore) Insert(ctx context.Context, collection string, doc json.RawMessage) error {
	if err := validName(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.docs[collection] = append(m.docs[collection], append(json.RawMessage(nil), doc...))
	return nil
}

func (m *memoryStore) DeleteAll(ctx context.Context, collection string) error {
	if err := validName(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.docs, collection)
	return nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
