package spiffat

import (
	"github.com/flashkeep/spiffat/flash"
	"github.com/flashkeep/spiffat/page"
)

// pageCapacity returns the payload byte count available in a page
// given whether it's the head page (span 0, carries name) or a
// continuation page.
func (fs *FileSystem) pageCapacity(isHead bool, name string) int {
	if isHead {
		return fs.pageSize - page.HeadHeaderLen(name)
	}
	return fs.pageSize - page.ContinuationHeaderLen
}

func (fs *FileSystem) headerLen(isHead bool, name string) int {
	if isHead {
		return page.HeadHeaderLen(name)
	}
	return page.ContinuationHeaderLen
}

// reclaimBudget is how many dirty pages GetFreePage's escalation may
// ask the synchronous collector to reclaim when allocation runs dry.
func (fs *FileSystem) reclaimBudget() int {
	if fs.autoGCThr > 0 {
		return 2 * fs.autoGCThr
	}
	return 2 * DefaultAutoGCThreshold
}

// writeLocked implements spec.md §4.4's _write: it consumes data page
// by page, allocating a fresh page whenever the current one is full
// (or none exists yet), programming a provisional header on a new
// page, and finalizing a page's size to SizeFullPage the instant it's
// completely filled. Caller must hold fs.mu.
func (fs *FileSystem) writeLocked(id uint16, name string, data []byte) error {
	for len(data) > 0 {
		var pageIdx, used int
		needNewPage := !fs.fat.HasPages(id)

		if !needNewPage {
			lastIdx, span := fs.fat.LastPage(id)
			used = fs.fat.LastSpanSize(id)
			if used >= fs.pageCapacity(span == 0, name) {
				needNewPage = true
			} else {
				pageIdx = lastIdx
			}
		}

		if needNewPage {
			var err error
			pageIdx, err = fs.allocatePageLocked(id, name)
			if err != nil {
				return err
			}
			used = 0
		}

		_, span := fs.fat.LastPage(id)
		headIsThisPage := span == 0
		capacity := fs.pageCapacity(headIsThisPage, name)
		hdrLen := fs.headerLen(headIsThisPage, name)

		n := min(capacity-used, len(data))
		addr := fs.pageAddr(pageIdx) + hdrLen + used
		if err := fs.dev.WriteAt(addr, data[:n], flash.VerifyPost, 0, n); err != nil {
			return wrapErr(CodeValidation, "write payload failed", err)
		}
		fs.fat.AddSizeToLastSpan(id, n)
		used += n
		data = data[n:]

		if used == capacity {
			finAddr := fs.pageAddr(pageIdx) + page.SizeFieldOffset
			if err := fs.dev.WriteAt(finAddr, page.EncodeSize(page.SizeFullPage), flash.VerifyNone, 0, 2); err != nil {
				return wrapErr(CodeValidation, "finalize full page failed", err)
			}
		}
	}
	return nil
}

// allocatePageLocked gets a free page (escalating to synchronous GC on
// exhaustion, per GetFreePage), appends it to id's span sequence,
// marks it USED, and programs its provisional header.
func (fs *FileSystem) allocatePageLocked(id uint16, name string) (int, error) {
	pageIdx, err := fs.fat.GetFreePage(fs.reclaimBudget(), fs.gcSyncLocked)
	if err != nil {
		return 0, newErr(CodeNoFreeSpace, name)
	}

	fs.fat.AddPage(id, pageIdx)
	fs.fat.MarkPage(pageIdx, page.Used)

	_, span := fs.fat.LastPage(id)
	var hdr []byte
	if span == 0 {
		hdr, err = page.EncodeHead(id, page.SizeProvisional, fs.clock.Now(), name)
		if err != nil {
			return 0, wrapErr(CodeValidation, "encode head header failed", err)
		}
	} else {
		hdr = page.EncodeContinuation(id, span, page.SizeProvisional)
	}
	if err := fs.dev.WriteAt(fs.pageAddr(pageIdx), hdr, flash.VerifyPost, 0, len(hdr)); err != nil {
		return 0, wrapErr(CodeValidation, "write page header failed", err)
	}
	return pageIdx, nil
}

// readLocked implements spec.md §4.4's _read: it walks id's pages in
// span order, tracking the cumulative payload offset before each
// page, and copies out whatever portion of [start, start+length)
// falls within each page's range.
func (fs *FileSystem) readLocked(id uint16, start, length int) ([]byte, error) {
	entry, err := fs.fat.Get(id)
	if err != nil {
		return nil, newErr(CodeFileNotFound, "")
	}

	total := entry.SizeTotal()
	if start >= total {
		return []byte{}, nil
	}
	end := start + length
	if end > total {
		end = total
	}

	out := make([]byte, 0, end-start)
	pos := 0
	for i, pageIdx := range entry.Pages {
		sz := entry.Sizes[i]
		pageStart, pageEnd := pos, pos+sz
		pos = pageEnd
		if pageEnd <= start || pageStart >= end {
			continue
		}
		readFrom := max(start, pageStart) - pageStart
		readTo := min(end, pageEnd) - pageStart

		hdrLen := fs.headerLen(i == 0, entry.Name)
		buf, err := fs.dev.ReadAt(fs.pageAddr(pageIdx)+hdrLen+readFrom, readTo-readFrom)
		if err != nil {
			return nil, wrapErr(CodeValidation, "read payload failed", err)
		}
		out = append(out, buf...)
	}
	return out, nil
}

// closeLocked implements spec.md §4.4's _close: if dirty, finalize the
// last page's size field with the in-memory byte count, drop the
// handle, and trigger auto-GC. A handle that minted an id but never
// wrote a byte (HasPages false) leaves its tentative FAT record behind
// on open; per spec.md §3's lifecycle rule ("a file closed with zero
// bytes is not persisted"), that tentative record is dropped here.
func (fs *FileSystem) closeLocked(idx int, id uint16, name string, dirty bool) error {
	if _, ok := fs.handles[idx]; !ok {
		return newErr(CodeFileClosed, name)
	}

	switch {
	case dirty:
		lastIdx, span := fs.fat.LastPage(id)
		lastSize := fs.fat.LastSpanSize(id)
		capacity := fs.pageCapacity(span == 0, name)

		size := uint16(lastSize)
		if lastSize == capacity {
			size = page.SizeFullPage
		}
		finAddr := fs.pageAddr(lastIdx) + page.SizeFieldOffset
		if err := fs.dev.WriteAt(finAddr, page.EncodeSize(size), flash.VerifyNone, 0, 2); err != nil {
			return wrapErr(CodeValidation, "finalize size on close failed", err)
		}

	case !fs.fat.HasPages(id):
		_ = fs.fat.RemoveFile(name)
	}

	delete(fs.handles, idx)
	fs.maybeAutoGCLocked()
	return nil
}
