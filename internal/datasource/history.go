package datasource

import (
	"sort"
	"time"
)

// Sample is one captured value.
type Sample struct {
	At    time.Time `json:"at"`
	Value any       `json:"value"`
}

// history is an ordered timestamp->value mapping, oldest first.
type history struct {
	samples []Sample
}

// put stores v at ts. An existing entry for ts is replaced; otherwise, once
// the history holds limit entries, the oldest is evicted first. limit <= 0
// keeps nothing.
func (h *history) put(ts time.Time, v any, limit int) {
	if limit <= 0 {
		h.samples = nil
		return
	}
	i := sort.Search(len(h.samples), func(i int) bool { return !h.samples[i].At.Before(ts) })
	if i < len(h.samples) && h.samples[i].At.Equal(ts) {
		h.samples[i].Value = v
		return
	}
	for len(h.samples) >= limit {
		h.samples = h.samples[1:]
		if i > 0 {
			i--
		}
	}
	h.samples = append(h.samples, Sample{})
	copy(h.samples[i+1:], h.samples[i:])
	h.samples[i] = Sample{At: ts, Value: v}
}

func (h *history) len() int { return len(h.samples) }

func (h *history) copy() []Sample {
	return append([]Sample(nil), h.samples...)
}
