package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"commander/internal/eventbus"
	logx "commander/pkg/logx"
)

type generation struct {
	id     string
	cancel context.CancelFunc
	wg     sync.WaitGroup
	jobs   []*job
}

// nexter is the part of a parsed expression the job needs.
type nexter interface {
	Next(time.Time) time.Time
}

type job struct {
	sched Schedule
	spec  nexter

	mu      sync.Mutex
	next    time.Time
	prev    time.Time
	runs    uint64
	dormant bool
}

func (j *job) info() JobInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobInfo{
		Name:    j.sched.label(),
		Cron:    j.sched.Cron,
		Next:    j.next,
		Prev:    j.prev,
		Runs:    j.runs,
		Dormant: j.dormant,
	}
}

// run is the per-job loop. base scopes action execution, gen scopes the loop.
func (s *Scheduler) run(base, gen context.Context, j *job) {
	for {
		if gen.Err() != nil {
			return
		}
		next, delay, ok := s.nextDelay(j)
		if !ok {
			j.mu.Lock()
			j.dormant = true
			j.next = time.Time{}
			j.mu.Unlock()
			s.log.Info("job dormant: no next occurrence", logx.String("job", j.sched.label()))
			return
		}
		t := s.clock.NewTimer(delay)
		j.mu.Lock()
		j.next = next
		j.mu.Unlock()

		select {
		case <-gen.Done():
			t.Stop()
			return
		case <-t.Chan():
		}

		if gen.Err() != nil {
			return
		}
		s.fire(base, j, next)
	}
}

// nextDelay computes the next occurrence with a strictly positive delay.
// An occurrence already in the past is skipped, never fired.
func (s *Scheduler) nextDelay(j *job) (time.Time, time.Duration, bool) {
	from := s.clock.Now().In(s.loc)
	for {
		next := j.spec.Next(from)
		if next.IsZero() {
			return time.Time{}, 0, false
		}
		if d := next.Sub(s.clock.Now()); d > 0 {
			return next, d, true
		}
		if !next.After(from) {
			// Guard against an expression that does not advance.
			from = from.Add(time.Second)
			continue
		}
		from = next
	}
}

func (s *Scheduler) fire(ctx context.Context, j *job, at time.Time) {
	label := j.sched.label()
	j.mu.Lock()
	j.prev = at
	j.runs++
	j.mu.Unlock()

	s.log.Debug("job firing", logx.String("job", label), logx.Time("at", at))
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: eventbus.TypeScheduleFired, Data: map[string]any{"job": label, "cron": j.sched.Cron}})
	}
	if s.exec == nil {
		return
	}
	if err := s.exec.Execute(ctx, j.sched.Action); err != nil {
		s.reporter.ShowError(fmt.Sprintf("cron: %s: %v", label, err))
	}
}
