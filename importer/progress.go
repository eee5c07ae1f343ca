package importer

import (
	"sync/atomic"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

// progressTracker publishes import progress snapshots. Writers replace the
// whole snapshot atomically so pollers never observe a half-updated state,
// and the running flag doubles as the single-import admission gate.
type progressTracker struct {
	current atomic.Value // entities.ImportProgress
	running atomic.Bool
}

// begin claims the import slot. It returns false when another import is
// already in flight.
func (t *progressTracker) begin(p entities.ImportProgress) bool {
	if !t.running.CompareAndSwap(false, true) {
		return false
	}
	t.current.Store(p)
	return true
}

// update publishes a new snapshot of the in-flight import.
func (t *progressTracker) update(p entities.ImportProgress) {
	t.current.Store(p)
}

// finish publishes the terminal snapshot and releases the import slot.
func (t *progressTracker) finish(p entities.ImportProgress) {
	p.Done = true
	t.current.Store(p)
	t.running.Store(false)
}

// snapshot returns a copy of the latest progress, or nil when no import has
// ever run.
func (t *progressTracker) snapshot() *entities.ImportProgress {
	v := t.current.Load()
	if v == nil {
		return nil
	}
	p := v.(entities.ImportProgress)
	return &p
}

func (t *progressTracker) isRunning() bool {
	return t.running.Load()
}
