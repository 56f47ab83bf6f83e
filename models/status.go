package models

// StatusReport is a snapshot of one actor's per-operation counters. The
// counters are only ever mutated by the actor's own worker goroutine, so a
// snapshot is taken by copying the map inside the worker before handing it
// to the caller.
type StatusReport struct {
	Counters map[string]uint64
}

// Clone returns a deep copy of the report so the receiver can keep mutating
// its own counters after replying.
func (s StatusReport) Clone() StatusReport {
	out := StatusReport{Counters: make(map[string]uint64, len(s.Counters))}
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	return out
}
