package events

// UnitState is the payload of a systemd unit notification.
type UnitState struct {
	Unit        string `json:"unit"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
	Previous    string `json:"previous"`
}

// unitTracker turns successive unit listings into state changes.
type unitTracker struct {
	seen map[string]UnitState
}

func newUnitTracker(initial []UnitState) *unitTracker {
	t := &unitTracker{seen: make(map[string]UnitState, len(initial))}
	for _, u := range initial {
		t.seen[u.Unit] = u
	}
	return t
}

// diff records the listing and returns units whose sub-state changed or that
// appeared since the previous listing. Units that vanished report "gone".
func (t *unitTracker) diff(current []UnitState) []UnitState {
	var out []UnitState
	now := make(map[string]UnitState, len(current))
	for _, u := range current {
		now[u.Unit] = u
		prev, ok := t.seen[u.Unit]
		switch {
		case !ok:
			out = append(out, u)
		case prev.SubState != u.SubState || prev.ActiveState != u.ActiveState:
			u.Previous = prev.SubState
			out = append(out, u)
		}
	}
	for name, prev := range t.seen {
		if _, ok := now[name]; !ok {
			out = append(out, UnitState{Unit: name, ActiveState: "inactive", SubState: "gone", Previous: prev.SubState})
		}
	}
	t.seen = now
	return out
}
