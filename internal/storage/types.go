package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrClosed        = errors.New("storage closed")
	ErrInvalidName   = errors.New("invalid collection name")
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrPathRequired  = errors.New("storage path is required")
)

// Config configures storage.
//
// Driver values: "file" (default), "sqlite", "memory".
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the document API the collections are built on.
type Store interface {
	FindAll(ctx context.Context, collection string) ([]json.RawMessage, error)
	Insert(ctx context.Context, collection string, doc json.RawMessage) error
	DeleteAll(ctx context.Context, collection string) error
	Close() error
}
