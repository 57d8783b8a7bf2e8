package datasource

import (
	"testing"
	"time"
)

func TestHistoryKeepsMostRecent(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		name  string
		polls int
		limit int
	}{
		{"under", 2, 5},
		{"exact", 5, 5},
		{"over", 12, 5},
		{"one", 3, 1},
		{"zero", 4, 0},
		{"negative", 4, -1},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var h history
			for i := 0; i < tc.polls; i++ {
				h.put(base.Add(time.Duration(i)*time.Second), i, tc.limit)
			}
			want := tc.polls
			if tc.limit < want {
				want = tc.limit
			}
			if want < 0 {
				want = 0
			}
			if h.len() != want {
				t.Fatalf("len = %d, want %d", h.len(), want)
			}
			for k, s := range h.copy() {
				wantVal := tc.polls - want + k
				if s.Value != wantVal {
					t.Fatalf("sample %d = %v, want %d", k, s.Value, wantVal)
				}
			}
		})
	}
}

func TestHistorySameTimestampReplaces(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var h history
	h.put(ts, "a", 3)
	h.put(ts, "b", 3)
	if h.len() != 1 || h.copy()[0].Value != "b" {
		t.Fatalf("got %+v", h.copy())
	}
}

func TestHistoryOrdersOutOfOrderInserts(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var h history
	h.put(base.Add(2*time.Second), 2, 5)
	h.put(base, 0, 5)
	h.put(base.Add(time.Second), 1, 5)
	for i, s := range h.copy() {
		if s.Value != i {
			t.Fatalf("sample %d = %v", i, s.Value)
		}
	}
}
