package events

import "sync"

// LifecycleProvider fires the agent's own Start, Stop and Error events when
// the host calls the matching method.
type LifecycleProvider struct {
	mu     sync.Mutex
	gen    uint64
	ids    map[string]int
	notify Notify
}

func NewLifecycleProvider() *LifecycleProvider {
	return &LifecycleProvider{ids: map[string]int{}}
}

func (p *LifecycleProvider) Name() string { return "lifecycle" }

func (p *LifecycleProvider) SetEvents(gen uint64, events []Event, notify Notify) {
	ids := map[string]int{}
	for _, ev := range events {
		if ev.Category != CategoryCommander {
			continue
		}
		switch ev.Event {
		case EventStart, EventStop, EventError:
			if _, ok := ids[ev.Event]; !ok {
				ids[ev.Event] = ev.ID
			}
		}
	}
	p.mu.Lock()
	p.gen = gen
	p.ids = ids
	p.notify = notify
	p.mu.Unlock()
}

func (p *LifecycleProvider) Start() { p.fire(EventStart, false) }

func (p *LifecycleProvider) Stop() { p.fire(EventStop, false) }

// Error fires the Error event with message as its only argument. Every call
// fires, including concurrent ones. A failure of the Error action itself is
// logged, not reported, so it never fires Error again.
func (p *LifecycleProvider) Error(message string) {
	p.fire(EventError, true, message)
}

func (p *LifecycleProvider) fire(name string, logOnly bool, args ...any) {
	p.mu.Lock()
	id, ok := p.ids[name]
	gen := p.gen
	notify := p.notify
	p.mu.Unlock()
	if !ok || notify == nil {
		return
	}
	notify(Notification{Gen: gen, ID: id, Args: args, LogOnly: logOnly})
}
