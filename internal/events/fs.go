package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FSEvent is the payload of a filesystem notification.
type FSEvent struct {
	Name string `json:"name"`
	Op   string `json:"op"`
}

// FSSource watches a file or directory. The filter is the path, optionally
// followed by "|" and a comma-separated list of operations to keep
// (create, write, remove, rename, chmod).
type FSSource struct{}

func (FSSource) Subscribe(ctx context.Context, filter string) (Subscription, error) {
	path, ops, err := parseFSFilter(filter)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &fsSubscription{w: w, ops: ops}, nil
}

type fsSubscription struct {
	w   *fsnotify.Watcher
	ops fsnotify.Op
}

func (s *fsSubscription) Next(ctx context.Context) (any, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-s.w.Events:
			if !ok {
				return nil, ErrSourceClosed
			}
			if s.ops != 0 && ev.Op&s.ops == 0 {
				continue
			}
			return FSEvent{Name: ev.Name, Op: ev.Op.String()}, nil
		case err, ok := <-s.w.Errors:
			if !ok {
				return nil, ErrSourceClosed
			}
			return nil, err
		}
	}
}

func (s *fsSubscription) Close() error { return s.w.Close() }

func parseFSFilter(filter string) (string, fsnotify.Op, error) {
	path, opsRaw, _ := strings.Cut(filter, "|")
	path = strings.TrimSpace(path)
	if path == "" {
		return "", 0, errors.New("fs filter needs a path")
	}
	var ops fsnotify.Op
	for _, name := range strings.Split(opsRaw, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "create":
			ops |= fsnotify.Create
		case "write":
			ops |= fsnotify.Write
		case "remove":
			ops |= fsnotify.Remove
		case "rename":
			ops |= fsnotify.Rename
		case "chmod":
			ops |= fsnotify.Chmod
		default:
			return "", 0, fmt.Errorf("unknown fs operation %q", name)
		}
	}
	return path, ops, nil
}
