package fat

import (
	"math/rand"
	"sort"

	"github.com/flashkeep/spiffat/page"
)

// ScannedPage is one page's decoded header/status, as produced by the
// caller iterating the flash region through the page codec. Header is
// meaningful only when Status == page.Used.
type ScannedPage struct {
	Status page.Status
	Header page.Header
}

// scanEntry accumulates a file's pages during Scan, keyed by span
// until the flatten-and-sort step at the end.
type scanEntry struct {
	name    string
	hasName bool
	created uint32
	byspan  map[uint16]scannedPagePayload
}

type scannedPagePayload struct {
	pageIdx int
	size    int
	headerLen int
}

// Scan builds a FAT from a full iteration of the region's pages,
// exactly as spec.md §4.3 describes: record each page's status, and
// for USED pages insert into per-id tables keyed by span; afterward
// flatten each file's pages/sizes into ascending-span sequences.
//
// If a file's head page (span 0) was never observed — e.g. a prior
// partial erase zeroed it but left continuation pages intact — that
// id's pages are still tracked (so they remain reachable for GC) but
// it is not inserted into the name index, matching the "orphans are
// eventually collected" behavior of spec.md §4.3.
func Scan(pages []ScannedPage, pageSize int, opts page.DecodeOptions, rng *rand.Rand) *FAT {
	f := NewBlank(len(pages), rng)

	entries := make(map[uint16]*scanEntry)

	for idx, sp := range pages {
		f.pageMap[idx] = sp.Status
		if sp.Status != page.Used {
			continue
		}

		h := sp.Header
		e, ok := entries[h.ID]
		if !ok {
			e = &scanEntry{byspan: make(map[uint16]scannedPagePayload)}
			entries[h.ID] = e
		}

		headerLen := page.ContinuationHeaderLen
		if h.Span == 0 {
			e.hasName = true
			e.name = h.Name
			e.created = h.Created
			headerLen = page.HeadHeaderLen(h.Name)
		}

		// A page whose size is still provisional was never closed —
		// a crash orphaned it mid-write. Its true payload length is
		// unknowable, so it contributes 0 bytes rather than the
		// nonsensical 0xFFFF literal value.
		size := 0
		if h.Size != page.SizeProvisional {
			size = page.PayloadLen(h, headerLen, pageSize)
		}

		e.byspan[h.Span] = scannedPagePayload{
			pageIdx:   idx,
			size:      size,
			headerLen: headerLen,
		}
	}

	for id, e := range entries {
		spans := make([]uint16, 0, len(e.byspan))
		for s := range e.byspan {
			spans = append(spans, s)
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i] < spans[j] })

		r := &record{name: e.name, created: e.created}
		for _, s := range spans {
			p := e.byspan[s]
			r.pages = append(r.pages, p.pageIdx)
			r.sizes = append(r.sizes, p.size)
			r.spans = append(r.spans, s)
		}

		f.files[id] = r
		if e.hasName {
			f.names[e.name] = id
		}
		if id >= f.nextID {
			f.advanceCursorPast(id)
		}
	}

	return f
}
