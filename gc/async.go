package gc

import (
	"math/rand"
	"sync"

	"github.com/flashkeep/spiffat/internal/scheduler"
)

// Guard is the collecting flag the spec calls for: a bool owned by
// the caller (spiffat.FileSystem) that Async sets before scheduling
// its first step and clears only when the walk ends, so only one
// async sweep is ever in flight.
type Guard struct {
	mu         sync.Mutex
	collecting bool
}

// TryStart reports whether a sweep may begin, and if so marks
// collecting true.
func (g *Guard) TryStart() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.collecting {
		return false
	}
	g.collecting = true
	return true
}

// Finish clears collecting.
func (g *Guard) Finish() {
	g.mu.Lock()
	g.collecting = false
	g.mu.Unlock()
}

// Collecting reports whether a sweep is currently running.
func (g *Guard) Collecting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.collecting
}

// Async runs a cooperative, one-sector-at-a-time background sweep
// (spec.md §4.5). total is the page-map's length, supplied by the
// caller rather than read via pm.Len(): Async is frequently started
// from a context that already holds whatever lock a locking PageMap's
// Len would need, and calling it here — before anything is handed off
// to sched — would re-enter that lock synchronously. The walk visits
// index positions, not a frozen copy of statuses, so a page erased by
// a concurrent synchronous Sync is simply skipped when Async reaches
// it — and yields between sectors via sched, so it never blocks the
// caller and never runs two sectors back to back without going
// through the scheduler.
//
// Async returns immediately, doing nothing, if guard is already
// collecting. done, if non-nil, is called exactly once when the sweep
// finishes (after guard.Finish), with the error (if any) that stopped
// it early.
func Async(total int, pm PageMap, er Eraser, rng *rand.Rand, sched scheduler.Scheduler, guard *Guard, done func(collected int, err error)) {
	if !guard.TryStart() {
		return
	}

	if total == 0 {
		guard.Finish()
		if done != nil {
			done(0, nil)
		}
		return
	}

	start := rng.Intn(total)
	collected := 0

	var step func(i int)
	step = func(i int) {
		if i >= total {
			guard.Finish()
			if done != nil {
				done(collected, nil)
			}
			return
		}

		idx := (start + i) % total
		if isDirty(pm.StatusAt(idx)) {
			if err := er.ErasePage(idx); err != nil {
				guard.Finish()
				if done != nil {
					done(collected, err)
				}
				return
			}
			pm.MarkFree(idx)
			collected++
		}

		sched.Schedule(func() { step(i + 1) })
	}

	sched.Schedule(func() { step(0) })
}
