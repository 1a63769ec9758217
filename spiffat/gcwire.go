package spiffat

import (
	"github.com/flashkeep/spiffat/gc"
	"github.com/flashkeep/spiffat/page"
)

// unlockedPageMap/unlockedEraser assume the caller already holds
// fs.mu — used for the synchronous GC path, which always runs inside
// an already-locked method (or as fat.GetFreePage's escalation
// callback, itself called from inside one).
type unlockedPageMap struct{ fs *FileSystem }

func (m unlockedPageMap) Len() int                     { return m.fs.fat.PageCount() }
func (m unlockedPageMap) StatusAt(idx int) page.Status { return m.fs.fat.PageStatus(idx) }
func (m unlockedPageMap) MarkFree(idx int)             { m.fs.fat.MarkPage(idx, page.Free) }

type unlockedEraser struct{ fs *FileSystem }

func (e unlockedEraser) ErasePage(idx int) error {
	return e.fs.dev.EraseSector(e.fs.pageAddr(idx))
}

// lockingPageMap/lockingEraser take fs.mu for the duration of each
// call — used by the asynchronous GC path, whose step callbacks run
// later, outside of whatever call originally triggered the sweep.
type lockingPageMap struct{ fs *FileSystem }

func (m lockingPageMap) Len() int {
	m.fs.mu.Lock()
	defer m.fs.mu.Unlock()
	return m.fs.fat.PageCount()
}

func (m lockingPageMap) StatusAt(idx int) page.Status {
	m.fs.mu.Lock()
	defer m.fs.mu.Unlock()
	return m.fs.fat.PageStatus(idx)
}

func (m lockingPageMap) MarkFree(idx int) {
	m.fs.mu.Lock()
	defer m.fs.mu.Unlock()
	m.fs.fat.MarkPage(idx, page.Free)
}

type lockingEraser struct{ fs *FileSystem }

func (e lockingEraser) ErasePage(idx int) error {
	e.fs.mu.Lock()
	defer e.fs.mu.Unlock()
	return e.fs.dev.EraseSector(e.fs.pageAddr(idx))
}

// gcSyncLocked runs a bounded synchronous sweep and is also the
// callback fat.GetFreePage escalates to when allocation runs dry.
// Caller must hold fs.mu.
func (fs *FileSystem) gcSyncLocked(n int) (int, error) {
	collected, err := gc.Sync(unlockedPageMap{fs}, unlockedEraser{fs}, fs.rng, n)
	if err != nil {
		return collected, wrapErr(CodeValidation, "gc erase failed", err)
	}
	return collected, nil
}

// gcAsyncLocked starts (or no-ops on top of) an async sweep. Caller
// must hold fs.mu while calling this, but the sweep's own steps run
// later, unlocked at schedule time and re-locking per step via
// lockingPageMap/lockingEraser. The page count is read through the
// unlocked adapter here, while the lock is already held by the
// caller — gc.Async never calls back into fs.mu itself before handing
// its first step to the scheduler, so passing a locking adapter for
// that read would deadlock on fs.mu's non-reentrant lock.
func (fs *FileSystem) gcAsyncLocked(done func(collected int, err error)) {
	total := unlockedPageMap{fs}.Len()
	gc.Async(total, lockingPageMap{fs}, lockingEraser{fs}, fs.rng, fs.sched, fs.gcGuard, done)
}

// GC runs garbage collection. With n > 0, it's a bounded synchronous
// pass (spec.md §4.5's gc(n)); with n == 0, it starts a cooperative
// asynchronous sweep and returns immediately.
func (fs *FileSystem) GC(n int) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if n > 0 {
		return fs.gcSyncLocked(n)
	}

	fs.gcAsyncLocked(nil)
	return 0, nil
}
