package fat

import "github.com/flashkeep/spiffat/page"

// GetFileID returns name's existing id, or mints a fresh one if the
// name is unknown: a tentative record is inserted (no pages yet) with
// Created set to now, and the new id is returned. The search for an
// unused id rolls through [MinID, MaxID] starting from the FAT's
// internal cursor, which then advances past the id it returned.
func (f *FAT) GetFileID(name string, now uint32) (uint16, error) {
	if id, ok := f.names[name]; ok {
		return id, nil
	}

	id, err := f.mintID()
	if err != nil {
		return 0, err
	}

	f.names[name] = id
	f.files[id] = &record{name: name, created: now}
	return id, nil
}

func (f *FAT) mintID() (uint16, error) {
	start := f.nextID
	id := start
	for {
		if _, used := f.files[id]; !used {
			f.advanceCursorPast(id)
			return id, nil
		}
		id = f.rollID(id)
		if id == start {
			return 0, ErrIDSpaceExhausted
		}
	}
}

func (f *FAT) rollID(id uint16) uint16 {
	if id >= page.MaxID {
		return page.MinID
	}
	return id + 1
}

func (f *FAT) advanceCursorPast(id uint16) {
	f.nextID = f.rollID(id)
}

// GetFreePage finds a FREE page, per the random-start wear-leveling
// policy: scan the page-map circularly starting from a uniformly
// random index. If the first full pass finds nothing (shouldn't
// normally happen since it wraps), retry once more from zero for
// clarity, then — if still nothing — invoke gc(maxReclaim) and retry a
// final time. gc may be nil, in which case that escalation step is
// skipped.
func (f *FAT) GetFreePage(maxReclaim int, gc func(n int) (int, error)) (int, error) {
	if idx, ok := f.scanForFree(f.rng.Intn(len(f.pageMap))); ok {
		return idx, nil
	}
	if idx, ok := f.scanForFree(0); ok {
		return idx, nil
	}

	if gc != nil {
		if _, err := gc(maxReclaim); err != nil {
			return 0, err
		}
		if idx, ok := f.scanForFree(0); ok {
			return idx, nil
		}
	}

	return 0, ErrNoFreeSpace
}

func (f *FAT) scanForFree(start int) (int, bool) {
	n := len(f.pageMap)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if f.pageMap[idx] == page.Free {
			return idx, true
		}
	}
	return 0, false
}
