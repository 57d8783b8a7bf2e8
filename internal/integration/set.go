package integration

import (
	"context"
	"fmt"
	"sync"

	"commander/internal/report"
	"commander/internal/storage"
	logx "commander/pkg/logx"
)

// itemSet is the persisted, installable set shared by every handler.
type itemSet[T any] struct {
	kind     string
	coll     *storage.Collection[T]
	exec     Executor
	reporter report.Reporter
	log      logx.Logger

	install   func(ctx context.Context, items []T) error
	uninstall func(ctx context.Context, items []T) error

	mu    sync.RWMutex
	items []T
}

func newItemSet[T any](kind, collection string, store storage.Store, exec Executor, reporter report.Reporter, log logx.Logger) *itemSet[T] {
	if reporter == nil {
		reporter = report.Discard
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &itemSet[T]{
		kind:     kind,
		coll:     storage.NewCollection[T](store, collection),
		exec:     exec,
		reporter: reporter,
		log:      log.With(logx.String("comp", "integration"), logx.String("kind", kind)),
	}
}

// set uninstalls what the store says was installed last time, replaces the
// stored items, installs the new ones, then swaps the in-memory set.
// Installer failures are reported; store failures are returned.
func (s *itemSet[T]) set(ctx context.Context, items []T) error {
	prev, err := s.coll.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("%s: load previous: %w", s.kind, err)
	}
	if s.uninstall != nil && len(prev) > 0 {
		if err := s.uninstall(ctx, prev); err != nil {
			s.reporter.ShowError(fmt.Sprintf("%s: uninstall: %v", s.kind, err))
		}
	}
	if err := s.coll.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%s: clear: %w", s.kind, err)
	}
	for _, it := range items {
		if err := s.coll.Insert(ctx, it); err != nil {
			return fmt.Errorf("%s: store: %w", s.kind, err)
		}
	}
	if s.install != nil && len(items) > 0 {
		if err := s.install(ctx, items); err != nil {
			s.reporter.ShowError(fmt.Sprintf("%s: install: %v", s.kind, err))
		}
	}

	next := append([]T(nil), items...)
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
	s.log.Info("installed", logx.Int("count", len(next)))
	return nil
}

func (s *itemSet[T]) find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (s *itemSet[T]) list() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}
