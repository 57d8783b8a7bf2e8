package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commander/internal/action"
	logx "commander/pkg/logx"
)

type fakeExec struct {
	mu    sync.Mutex
	calls []string
	fired chan string
	err   error
}

func newFakeExec() *fakeExec { return &fakeExec{fired: make(chan string, 16)} }

func (f *fakeExec) Execute(ctx context.Context, a action.Action, args ...any) error {
	f.mu.Lock()
	f.calls = append(f.calls, a.Name)
	f.mu.Unlock()
	f.fired <- a.Name
	return f.err
}

func (f *fakeExec) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type reporterFunc func(string)

func (r reporterFunc) ShowError(m string) { r(m) }

func waitFired(t *testing.T, f *fakeExec) string {
	t.Helper()
	select {
	case n := <-f.fired:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("action did not fire")
		return ""
	}
}

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestJobFiresAndRearms(t *testing.T) {
	t.Parallel()
	clk := clockwork.NewFakeClockAt(t0)
	exec := newFakeExec()
	s := New(exec, nil, logx.Nop(), WithClock(clk), WithLocation(time.UTC))

	n := s.Schedule(context.Background(), []Schedule{{Cron: "* * * * *", Action: action.Action{Name: "tick"}}})
	require.Equal(t, 1, n)
	defer s.Stop(context.Background())

	for i := 0; i < 3; i++ {
		clk.BlockUntil(1)
		clk.Advance(time.Minute)
		assert.Equal(t, "tick", waitFired(t, exec))
	}
	clk.BlockUntil(1)
	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, uint64(3), jobs[0].Runs)
	assert.Equal(t, t0.Add(4*time.Minute), jobs[0].Next)
}

func TestFailureIsReportedAndJobContinues(t *testing.T) {
	t.Parallel()
	clk := clockwork.NewFakeClockAt(t0)
	exec := newFakeExec()
	exec.err = errors.New("exit status 1")
	reported := make(chan string, 4)
	s := New(exec, reporterFunc(func(m string) { reported <- m }), logx.Nop(), WithClock(clk), WithLocation(time.UTC))
	s.Schedule(context.Background(), []Schedule{{Name: "backup", Cron: "@every 10s", Action: action.Action{Name: "backup"}}})
	defer s.Stop(context.Background())

	for i := 0; i < 2; i++ {
		clk.BlockUntil(1)
		clk.Advance(10 * time.Second)
		waitFired(t, exec)
		assert.Contains(t, <-reported, "backup")
	}
}

func TestInvalidExpressionIsSkipped(t *testing.T) {
	t.Parallel()
	var msgs []string
	s := New(newFakeExec(), reporterFunc(func(m string) { msgs = append(msgs, m) }), logx.Nop(), WithClock(clockwork.NewFakeClockAt(t0)))
	n := s.Schedule(context.Background(), []Schedule{
		{Cron: "not a cron"},
		{Cron: "*/5 * * * *"},
	})
	defer s.Stop(context.Background())
	assert.Equal(t, 1, n)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "invalid expression")
}

func TestReplacingScheduleCancelsOldGeneration(t *testing.T) {
	t.Parallel()
	clk := clockwork.NewFakeClockAt(t0)
	exec := newFakeExec()
	s := New(exec, nil, logx.Nop(), WithClock(clk), WithLocation(time.UTC))

	s.Schedule(context.Background(), []Schedule{{Cron: "* * * * *", Action: action.Action{Name: "old"}}})
	clk.BlockUntil(1)
	s.mu.Lock()
	old := s.gen
	s.mu.Unlock()

	s.Schedule(context.Background(), []Schedule{{Cron: "* * * * *", Action: action.Action{Name: "new"}}})
	defer s.Stop(context.Background())
	old.wg.Wait()
	require.Eventually(t, func() bool {
		jobs := s.Jobs()
		return len(jobs) == 1 && !jobs[0].Next.IsZero()
	}, 2*time.Second, 5*time.Millisecond)
	clk.BlockUntil(1)

	clk.Advance(time.Minute)
	assert.Equal(t, "new", waitFired(t, exec))
	clk.BlockUntil(1)
	assert.Equal(t, []string{"new"}, exec.names())
}

func TestStopWaitsForJobs(t *testing.T) {
	t.Parallel()
	clk := clockwork.NewFakeClockAt(t0)
	s := New(newFakeExec(), nil, logx.Nop(), WithClock(clk))
	s.Schedule(context.Background(), []Schedule{{Cron: "@hourly"}, {Cron: "@daily"}})
	clk.BlockUntil(2)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Nil(t, s.Jobs())
}

type fixedSchedule []time.Time

func (f *fixedSchedule) Next(time.Time) time.Time {
	if len(*f) == 0 {
		return time.Time{}
	}
	n := (*f)[0]
	*f = (*f)[1:]
	return n
}

func TestNextDelaySkipsPastOccurrences(t *testing.T) {
	t.Parallel()
	clk := clockwork.NewFakeClockAt(t0)
	s := New(nil, nil, logx.Nop(), WithClock(clk), WithLocation(time.UTC))

	spec := fixedSchedule{t0.Add(-time.Minute), t0, t0.Add(30 * time.Second)}
	j := &job{spec: &spec}
	next, d, ok := s.nextDelay(j)
	require.True(t, ok)
	assert.Equal(t, t0.Add(30*time.Second), next)
	assert.Equal(t, 30*time.Second, d)
}

func TestNoNextOccurrenceMakesJobDormant(t *testing.T) {
	t.Parallel()
	clk := clockwork.NewFakeClockAt(t0)
	exec := newFakeExec()
	s := New(exec, nil, logx.Nop(), WithClock(clk))

	spec := fixedSchedule{}
	gctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	j := &job{sched: Schedule{Name: "once"}, spec: &spec}
	s.run(context.Background(), gctx, j)

	info := j.info()
	assert.True(t, info.Dormant)
	assert.Zero(t, info.Runs)
	assert.Empty(t, exec.names())
}

func TestLoadLocation(t *testing.T) {
	t.Parallel()
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = LoadLocation("Nowhere/Special")
	assert.Error(t, err)
}
