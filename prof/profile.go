// Package prof records how long the phases of an attack run take.
package prof

import (
	"sync"
	"time"
)

// Phase labels used by attack experiments.
const (
	PhaseSecret   = "secret"
	PhaseSampling = "sampling"
	PhaseRecovery = "recovery"
	PhaseEval     = "evaluation"
)

// Entry represents a single timing measurement.
type Entry struct {
	Label string
	Dur   time.Duration
}

// Recorder collects entries. The zero value is ready to use and safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	record []Entry
}

// Track records the duration since start under name.
func (r *Recorder) Track(start time.Time, name string) {
	elapsed := time.Since(start)
	r.mu.Lock()
	r.record = append(r.record, Entry{Label: name, Dur: elapsed})
	r.mu.Unlock()
}

// Snapshot returns a copy of the collected entries.
func (r *Recorder) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.record))
	copy(out, r.record)
	return out
}

// SnapshotAndReset returns the collected entries and clears them.
func (r *Recorder) SnapshotAndReset() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.record
	r.record = nil
	return out
}

// Total sums the durations of entries with the given label.
func Total(entries []Entry, label string) time.Duration {
	var d time.Duration
	for _, e := range entries {
		if e.Label == label {
			d += e.Dur
		}
	}
	return d
}
