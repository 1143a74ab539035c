package fence

import (
	"fmt"
	"sync/atomic"
)

// Fence tracks the most recent reading of one beacon identity.
//
// RecordIfMatching must be called from a single goroutine at a time.
// All other methods are safe to call concurrently with it.
type Fence struct {
	identity Identity
	last     atomic.Pointer[Reading]
}

// New creates a Fence for the given identity with no reading recorded.
func New(id Identity) *Fence {
	return &Fence{identity: id}
}

// Identity returns the fence's beacon identity.
func (f *Fence) Identity() Identity {
	return f.identity
}

// RecordIfMatching stores r as the last reading if it belongs to this fence.
// It returns false and leaves the fence untouched otherwise.
func (f *Fence) RecordIfMatching(r Reading) bool {
	if !f.identity.Matches(r) {
		return false
	}
	snapshot := r
	f.last.Store(&snapshot)
	return true
}

// LastReading returns the most recent matching reading.
// The boolean is false when nothing has been recorded yet.
func (f *Fence) LastReading() (Reading, bool) {
	r := f.last.Load()
	if r == nil {
		return Reading{}, false
	}
	return *r, true
}

// Describe returns the location status line, for example "Location: Near ~3.46m".
func (f *Fence) Describe() string {
	r := f.last.Load()
	if r == nil || r.Proximity == ProximityUnknown || !r.Proximity.Valid() {
		return "Location: Unknown"
	}
	return fmt.Sprintf("Location: %s ~%.2fm", r.Proximity, r.Distance)
}
