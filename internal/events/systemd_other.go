//go:build !linux

package events

import (
	"context"
	"errors"
)

var ErrUnsupported = errors.New("events: systemd source requires linux")

type SystemdSource struct{}

func (SystemdSource) Subscribe(context.Context, string) (Subscription, error) {
	return nil, ErrUnsupported
}
