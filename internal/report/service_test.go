package report

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commander/internal/eventbus"
	logx "commander/pkg/logx"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []Report
	sent chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(ctx context.Context, r Report) error {
	s.mu.Lock()
	s.got = append(s.got, r)
	s.mu.Unlock()
	s.sent <- struct{}{}
	return nil
}

func TestShowErrorDeduplicatesWithinWindow(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	bus := eventbus.New(16)
	s := New(Config{Enabled: true, DedupWindow: time.Minute}, logx.Nop(), bus, WithClock(func() time.Time { return now }))

	var hooked []string
	s.OnError(func(msg string) { hooked = append(hooked, msg) })

	s.ShowError("disk full")
	s.ShowError("disk full")
	s.ShowError("  ")
	now = now.Add(2 * time.Minute)
	s.ShowError("disk full")

	assert.Equal(t, []string{"disk full", "disk full"}, hooked)
	assert.Len(t, s.History(), 2)

	var types []string
	for _, e := range bus.Recent(0) {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{eventbus.TypeErrorReported, eventbus.TypeErrorSuppressed, eventbus.TypeErrorReported}, types)
}

func TestShowErrorWithoutWindowNeverSuppresses(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop(), nil)
	for i := 0; i < 3; i++ {
		s.ShowError("same")
	}
	assert.Len(t, s.History(), 3)
}

func TestSinkReceivesReports(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{sent: make(chan struct{}, 4)}
	s := New(Config{Enabled: true, RatePerSec: 100}, logx.Nop(), nil, WithSink(sink))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	s.ShowError("first")
	select {
	case <-sink.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("sink did not receive the report")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.got, 1)
	assert.Equal(t, "first", sink.got[0].Message)
	assert.NotEmpty(t, sink.got[0].ID)
}

func TestShowErrorNeverBlocksWhenStopped(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true, QueueSize: 1}, logx.Nop(), nil)
	for i := 0; i < 10; i++ {
		s.ShowError("x" + strings.Repeat("!", i))
	}
	assert.Len(t, s.History(), 10)
}

func TestFormatTelegramTruncates(t *testing.T) {
	t.Parallel()
	r := Report{At: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Message: strings.Repeat("a", 5000)}
	got := formatTelegram("box", r)
	assert.True(t, strings.HasPrefix(got, "commander error on box\n2024-01-01 00:00:00\n\n"))
	assert.Len(t, got, telegramTextLimit)
}

func TestHookMayRegisterHooks(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop(), nil)

	var calls []string
	s.OnError(func(msg string) {
		calls = append(calls, "outer:"+msg)
		s.OnError(func(msg string) { calls = append(calls, "inner:"+msg) })
	})

	s.ShowError("a")
	assert.Equal(t, []string{"outer:a"}, calls)

	s.ShowError("b")
	assert.Equal(t, []string{"outer:a", "outer:b", "inner:b"}, calls)
}

type panickySink struct {
	calls atomic.Int32
	ok    chan struct{}
}

func (s *panickySink) Name() string { return "panicky" }

func (s *panickySink) Send(ctx context.Context, r Report) error {
	if s.calls.Add(1) == 1 {
		panic("sink blew up")
	}
	select {
	case s.ok <- struct{}{}:
	default:
	}
	return nil
}

func TestSinkWorkerRestartsAfterPanic(t *testing.T) {
	t.Parallel()
	sink := &panickySink{ok: make(chan struct{}, 1)}
	s := New(Config{Enabled: true, RatePerSec: 100}, logx.Nop(), nil, WithSink(sink))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	s.ShowError("first")
	require.Eventually(t, func() bool { return sink.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// The restarted worker drains the next report.
	require.Eventually(t, func() bool {
		s.ShowError("again")
		select {
		case <-sink.ok:
			return true
		default:
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)
}
