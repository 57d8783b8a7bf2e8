package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"commander/internal/action"
	logx "commander/pkg/logx"
)

func TestLifecycleFiresOwnEvents(t *testing.T) {
	t.Parallel()
	exec := &recordingExec{}
	lp := NewLifecycleProvider()
	d := NewDispatcher(exec, nil, logx.Nop(), lp)
	d.SetEvents(context.Background(), []Event{
		{ID: 1, Category: CategoryCommander, Event: EventStart, Action: action.Action{Name: "start"}},
		{ID: 2, Category: CategoryCommander, Event: EventStart, Action: action.Action{Name: "start-dup"}},
		{ID: 3, Category: CategoryCommander, Event: EventStop, Action: action.Action{Name: "stop"}},
		{ID: 4, Category: CategoryCommander, Event: "Reboot", Action: action.Action{Name: "ignored"}},
		{ID: 5, Category: CategoryWindows, Event: EventStart, Action: action.Action{Name: "not-mine"}},
	})

	lp.Start()
	lp.Stop()
	lp.Error("nobody listens")

	assert.Equal(t, []call{{"start", nil}, {"stop", nil}}, exec.snapshot())
}

func TestLifecycleErrorActionFailureIsLogged(t *testing.T) {
	t.Parallel()
	exec := &recordingExec{fail: map[string]error{"on-error": errors.New("notify-send missing")}}
	lp := NewLifecycleProvider()
	var reported []string
	rep := reporterFunc(func(m string) {
		reported = append(reported, m)
		lp.Error(m)
	})
	d := NewDispatcher(exec, rep, logx.Nop(), lp)
	d.SetEvents(context.Background(), []Event{
		{ID: 9, Category: CategoryCommander, Event: EventError, Action: action.Action{Name: "on-error"}},
	})

	lp.Error("disk full")
	assert.Equal(t, []call{{"on-error", []any{"disk full"}}}, exec.snapshot())
	assert.Empty(t, reported)

	lp.Error("again")
	assert.Len(t, exec.snapshot(), 2)
	assert.Empty(t, reported)
}

// gateExec blocks the first action until release is closed.
type gateExec struct {
	mu      sync.Mutex
	args    []any
	entered chan struct{}
	release chan struct{}
}

func (e *gateExec) Execute(ctx context.Context, a action.Action, args ...any) error {
	e.mu.Lock()
	e.args = append(e.args, args...)
	first := len(e.args) == 1
	e.mu.Unlock()
	if first {
		close(e.entered)
		<-e.release
	}
	return nil
}

func TestLifecycleConcurrentErrorsEachFire(t *testing.T) {
	t.Parallel()
	exec := &gateExec{entered: make(chan struct{}), release: make(chan struct{})}
	lp := NewLifecycleProvider()
	d := NewDispatcher(exec, nil, logx.Nop(), lp)
	d.SetEvents(context.Background(), []Event{
		{ID: 9, Category: CategoryCommander, Event: EventError, Action: action.Action{Name: "on-error"}},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		lp.Error("cron job failed")
	}()
	<-exec.entered

	lp.Error("poll failed")
	close(exec.release)
	<-done

	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.ElementsMatch(t, []any{"cron job failed", "poll failed"}, exec.args)
}
