// Package gc implements the garbage collector (component C5):
// physically erasing dirty sectors (ERASED or BAD pages) so the FAT's
// page-map can mark them FREE again. It never decides *when* to run —
// that auto-trigger policy lives in spiffat, which is the one package
// that knows about open handles.
package gc

import (
	"math/rand"

	"github.com/flashkeep/spiffat/page"
)

// PageMap is the slice of per-page statuses the collector scans and
// updates. spiffat's fat.FAT satisfies this through a thin adapter
// (see spiffat's wiring), keeping gc decoupled from the fat package.
type PageMap interface {
	Len() int
	StatusAt(idx int) page.Status
	MarkFree(idx int)
}

// Eraser physically erases one page's backing sector. idx is a page
// index; the caller is responsible for translating to a flash
// address.
type Eraser interface {
	ErasePage(idx int) error
}

// isDirty reports whether a page status must be physically erased
// before it can become FREE again.
func isDirty(s page.Status) bool {
	return s == page.Erased || s == page.Bad
}

// Sync runs a bounded, synchronous GC pass (spec.md §4.5): starting
// from a uniformly random sector index, walk the page-map circularly;
// for each dirty sector, erase it and mark it FREE; stop after n pages
// have been collected or the scan completes a full circle. n <= 0
// means "no limit — sweep the whole map once."
func Sync(pm PageMap, er Eraser, rng *rand.Rand, n int) (int, error) {
	total := pm.Len()
	if total == 0 {
		return 0, nil
	}

	start := rng.Intn(total)
	collected := 0

	for i := 0; i < total; i++ {
		if n > 0 && collected >= n {
			break
		}
		idx := (start + i) % total
		if !isDirty(pm.StatusAt(idx)) {
			continue
		}
		if err := er.ErasePage(idx); err != nil {
			return collected, err
		}
		pm.MarkFree(idx)
		collected++
	}

	return collected, nil
}
