// Package fat implements the in-memory file allocation table
// (component C3): the index from filenames/ids to ordered page lists
// and per-page sizes, the page-status map, and the free-page
// allocator. It knows nothing about flash I/O directly — callers hand
// it already-decoded page.Header/page.Status values during a scan,
// and everything else is bookkeeping over in-memory maps.
package fat

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/flashkeep/spiffat/page"
)

// ErrFileNotFound is returned by Get/RemoveFile when the requested
// name or id has no entry.
var ErrFileNotFound = errors.New("fat: file not found")

// ErrNoFreeSpace is returned by GetFreePage when no FREE page can be
// found even after the GC-and-retry escalation.
var ErrNoFreeSpace = errors.New("fat: no free space")

// ErrIDSpaceExhausted is returned by GetFileID if every id in
// [MinID, MaxID] is already in use — practically unreachable given
// one page holds at least one id, but guarded against an infinite
// rolling search.
var ErrIDSpaceExhausted = errors.New("fat: file id space exhausted")

// Entry is the flattened, read-only view of one file returned by Get
// and FileList.
type Entry struct {
	ID      uint16
	Name    string
	Pages   []int // page indices, ascending span order
	Sizes   []int // payload bytes per page, parallel to Pages
	Created uint32
}

// SizeTotal sums Sizes: the logical file size.
func (e Entry) SizeTotal() int {
	total := 0
	for _, s := range e.Sizes {
		total += s
	}
	return total
}

// record is the mutable per-file bookkeeping the FAT maintains
// internally; Entry is derived from it on demand.
type record struct {
	name    string
	pages   []int
	sizes   []int
	spans   []uint16 // parallel to pages; ascending, unique
	created uint32
}

// FAT is the in-memory file allocation table.
type FAT struct {
	names map[string]uint16
	files map[uint16]*record
	pageMap []page.Status

	rng   *rand.Rand
	nextID uint16
}

// NewBlank builds a FAT over pageCount pages, all marked FREE, with no
// files. rng drives the random starting index used by GetFreePage; if
// nil, a deterministically-seeded generator is used (seed should be
// explicit in tests per the source's wear-leveling design note).
func NewBlank(pageCount int, rng *rand.Rand) *FAT {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	pm := make([]page.Status, pageCount)
	for i := range pm {
		pm[i] = page.Free
	}
	return &FAT{
		names:  make(map[string]uint16),
		files:  make(map[uint16]*record),
		pageMap: pm,
		rng:    rng,
		nextID: page.MinID,
	}
}

// PageCount returns the number of pages the FAT's page-map covers.
func (f *FAT) PageCount() int { return len(f.pageMap) }

// PageStatus returns the current status of page index idx.
func (f *FAT) PageStatus(idx int) page.Status { return f.pageMap[idx] }

func (f *FAT) entryFromRecord(id uint16, r *record) Entry {
	return Entry{
		ID:      id,
		Name:    r.name,
		Pages:   append([]int(nil), r.pages...),
		Sizes:   append([]int(nil), r.sizes...),
		Created: r.created,
	}
}

// Get looks up a file by name (string) or id (uint16 or int). Any
// other ref type is a programmer error and panics.
func (f *FAT) Get(ref any) (Entry, error) {
	id, ok := f.resolve(ref)
	if !ok {
		return Entry{}, ErrFileNotFound
	}
	return f.entryFromRecord(id, f.files[id]), nil
}

func (f *FAT) resolve(ref any) (uint16, bool) {
	switch v := ref.(type) {
	case string:
		id, ok := f.names[v]
		return id, ok
	case uint16:
		_, ok := f.files[v]
		return v, ok
	case int:
		id := uint16(v)
		_, ok := f.files[id]
		return id, ok
	default:
		panic("fat: ref must be a string name or a uint16/int id")
	}
}

// FileExists reports whether ref names a present file.
func (f *FAT) FileExists(ref any) bool {
	_, ok := f.resolve(ref)
	return ok
}

// FileList returns every file's Entry, sorted by name by default or
// by creation time when byDate is true. Ties break by name for a
// stable order.
func (f *FAT) FileList(byDate bool) []Entry {
	out := make([]Entry, 0, len(f.files))
	for id, r := range f.files {
		out = append(out, f.entryFromRecord(id, r))
	}
	sort.Slice(out, func(i, j int) bool {
		if byDate && out[i].Created != out[j].Created {
			return out[i].Created < out[j].Created
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Stats counts pages per status.
func (f *FAT) Stats() map[page.Status]int {
	counts := map[page.Status]int{page.Free: 0, page.Used: 0, page.Erased: 0, page.Bad: 0}
	for _, s := range f.pageMap {
		counts[s]++
	}
	return counts
}

// MarkPage updates the page-map entry for idx. It performs no I/O.
func (f *FAT) MarkPage(idx int, status page.Status) {
	f.pageMap[idx] = status
}

// AddPage appends pageIdx to id's page sequence with a 0-size
// placeholder, and records span as one past the current highest span
// (0 if this is the file's first page).
func (f *FAT) AddPage(id uint16, pageIdx int) {
	r := f.files[id]
	var span uint16
	if len(r.spans) > 0 {
		span = r.spans[len(r.spans)-1] + 1
	}
	r.pages = append(r.pages, pageIdx)
	r.sizes = append(r.sizes, 0)
	r.spans = append(r.spans, span)
}

// AddSizeToLastSpan increments the final element of id's size
// sequence by n bytes.
func (f *FAT) AddSizeToLastSpan(id uint16, n int) {
	r := f.files[id]
	r.sizes[len(r.sizes)-1] += n
}

// SetLastSpanSize overwrites (rather than increments) the final
// element of id's size sequence.
func (f *FAT) SetLastSpanSize(id uint16, n int) {
	r := f.files[id]
	r.sizes[len(r.sizes)-1] = n
}

// LastPage returns the most recently added page index and its current
// span for id.
func (f *FAT) LastPage(id uint16) (pageIdx int, span uint16) {
	r := f.files[id]
	n := len(r.pages)
	return r.pages[n-1], r.spans[n-1]
}

// LastSpanSize returns the current payload byte count of id's most
// recently added page.
func (f *FAT) LastSpanSize(id uint16) int {
	r := f.files[id]
	return r.sizes[len(r.sizes)-1]
}

// HasPages reports whether id has had at least one page allocated.
func (f *FAT) HasPages(id uint16) bool {
	r, ok := f.files[id]
	return ok && len(r.pages) > 0
}

// RemoveFile drops all FAT entries for name.
func (f *FAT) RemoveFile(name string) error {
	id, ok := f.names[name]
	if !ok {
		return ErrFileNotFound
	}
	delete(f.names, name)
	delete(f.files, id)
	return nil
}

// ForEachPage invokes cb(pageIdx) for every page of ref, in ascending
// span order, stopping at the first error.
func (f *FAT) ForEachPage(ref any, cb func(pageIdx int) error) error {
	id, ok := f.resolve(ref)
	if !ok {
		return ErrFileNotFound
	}
	for _, p := range f.files[id].pages {
		if err := cb(p); err != nil {
			return err
		}
	}
	return nil
}
