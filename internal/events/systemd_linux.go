//go:build linux

package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
)

// SystemdSource reports unit state changes. The filter is a unit name
// pattern as accepted by systemctl (for example "backup-*.service").
type SystemdSource struct{}

func (SystemdSource) Subscribe(ctx context.Context, filter string) (Subscription, error) {
	pattern := strings.TrimSpace(filter)
	if pattern == "" {
		return nil, errors.New("systemd filter needs a unit pattern")
	}
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	s := &systemdSubscription{conn: conn, pattern: pattern}
	initial, err := s.list(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.tracker = newUnitTracker(initial)
	return s, nil
}

type systemdSubscription struct {
	conn    *dbus.Conn
	pattern string
	tracker *unitTracker
	pending []UnitState
}

// Next lists matching units once per call and returns the first change.
func (s *systemdSubscription) Next(ctx context.Context) (any, error) {
	if len(s.pending) == 0 {
		cur, err := s.list(ctx)
		if err != nil {
			return nil, err
		}
		s.pending = s.tracker.diff(cur)
	}
	if len(s.pending) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	u := s.pending[0]
	s.pending = s.pending[1:]
	return u, nil
}

func (s *systemdSubscription) list(ctx context.Context) ([]UnitState, error) {
	units, err := s.conn.ListUnitsByPatternsContext(ctx, nil, []string{s.pattern})
	if err != nil {
		return nil, err
	}
	out := make([]UnitState, 0, len(units))
	for _, u := range units {
		out = append(out, UnitState{Unit: u.Name, ActiveState: u.ActiveState, SubState: u.SubState})
	}
	return out, nil
}

func (s *systemdSubscription) Close() error {
	s.conn.Close()
	return nil
}
