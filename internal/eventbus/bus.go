package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Topics published by commander components.
const (
	TypeCommandReceived   = "command.received"
	TypeErrorReported     = "error.reported"
	TypeErrorSuppressed   = "error.suppressed"
	TypeDataSourceUpdated = "datasource.updated"
	TypeScheduleFired     = "schedule.fired"
	TypeEventDispatched   = "event.dispatched"
	TypeConfigApplied     = "config.applied"
)

// Event is a lightweight, in-memory signal used to decouple components.
//
// Contract:
//   - Publish MUST be non-blocking.
//   - Subscribers MUST use buffered channels.
//   - Slow subscribers may drop events.
type Event struct {
	ID   uint64
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
	// Recent returns up to n buffered events, oldest first.
	Recent(n int) []Event
}

// New returns an in-memory fanout bus that keeps the last capacity events
// for late readers. It does not own any goroutines.
func New(capacity int) Bus {
	if capacity <= 0 {
		capacity = 128
	}
	return &memBus{
		subs: map[uint64]chan Event{},
		ring: make([]Event, capacity),
	}
}

type memBus struct {
	seq    atomic.Uint64
	subSeq atomic.Uint64

	mu   sync.RWMutex
	subs map[uint64]chan Event

	rmu   sync.Mutex
	ring  []Event
	start int
	size  int
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.ID = b.seq.Add(1)

	b.rmu.Lock()
	b.pushLocked(e)
	b.rmu.Unlock()

	b.mu.RLock()
	chs := make([]chan Event, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		// A concurrent unsubscribe may close ch; recover from send on closed channel.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- e:
			default:
			}
		}()
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.subSeq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}

func (b *memBus) Recent(n int) []Event {
	b.rmu.Lock()
	defer b.rmu.Unlock()
	if n <= 0 || n > b.size {
		n = b.size
	}
	out := make([]Event, 0, n)
	for i := b.size - n; i < b.size; i++ {
		out = append(out, b.ring[(b.start+i)%len(b.ring)])
	}
	return out
}

func (b *memBus) pushLocked(e Event) {
	capacity := len(b.ring)
	if b.size < capacity {
		b.ring[(b.start+b.size)%capacity] = e
		b.size++
		return
	}
	// Overwrite oldest.
	b.ring[b.start] = e
	b.start = (b.start + 1) % capacity
}
