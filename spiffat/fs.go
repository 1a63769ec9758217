// Package spiffat is the file system core (components C4 and C6): it
// composes the flash, page, fat, and gc packages into the public
// open/read/write/erase API described by spec.md §6.
package spiffat

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/flashkeep/spiffat/fat"
	"github.com/flashkeep/spiffat/flash"
	"github.com/flashkeep/spiffat/gc"
	"github.com/flashkeep/spiffat/internal/clock"
	"github.com/flashkeep/spiffat/internal/logx"
	"github.com/flashkeep/spiffat/internal/scheduler"
	"github.com/flashkeep/spiffat/page"
	"github.com/rs/zerolog"
)

// DefaultPageSize is the page/sector size assumed when Options.PageSize
// is left at zero, matching spec.md §3's "the design assumes 4096".
const DefaultPageSize = 4096

// DefaultAutoGCThreshold is the default minimum FREE-page count below
// which auto-GC sweeps, per spec.md §4.5.
const DefaultAutoGCThreshold = 4

// Options configures a FileSystem. Every field is optional; the zero
// value of Options is a usable default.
type Options struct {
	PageSize        int
	AutoGCThreshold int
	Logger          *zerolog.Logger
	Clock           clock.Clock
	Scheduler       scheduler.Scheduler
	Rand            *rand.Rand
	Legacy          bool // decode on-medium headers in the pre-timestamp layout (spec.md §9)
}

// FileSystem is a log-structured, wear-leveling file system bound to a
// region of a flash.Device.
type FileSystem struct {
	mu sync.Mutex

	dev   *flash.RefCountedDevice
	start int
	end   int

	pageSize int
	legacy   bool

	fat *fat.FAT
	rng *rand.Rand

	clock     clock.Clock
	sched     scheduler.Scheduler
	gcGuard   *gc.Guard
	autoGCThr int

	log zerolog.Logger

	handles    map[int]*openHandle
	nextHandle int
}

type openHandle struct {
	id   uint16
	name string
}

// New validates start/end against dev's size and sector alignment and
// returns a FileSystem with a blank FAT. Call Init to scan existing
// content instead of starting from an empty region.
func New(start, end int, dev flash.Device, opts Options) (*FileSystem, error) {
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	if start < 0 || end <= start || end > dev.Size() ||
		start%pageSize != 0 || end%pageSize != 0 {
		return nil, newErr(CodeInvalidSPIFlashAddress,
			"region must be sector-aligned, non-empty, and within the device")
	}

	var threshold int
	switch {
	case opts.AutoGCThreshold < 0:
		threshold = 0
	case opts.AutoGCThreshold == 0:
		threshold = DefaultAutoGCThreshold
	default:
		threshold = opts.AutoGCThreshold
	}

	cl := opts.Clock
	if cl == nil {
		cl = clock.Real{}
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = scheduler.NewReal()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(cl.Now())))
	}

	log := opts.Logger
	var lg zerolog.Logger
	if log != nil {
		lg = *log
	} else {
		lg = logx.Default()
	}

	pageCount := (end - start) / pageSize

	return &FileSystem{
		dev:       flash.NewRefCounted(dev),
		start:     start,
		end:       end,
		pageSize:  pageSize,
		legacy:    opts.Legacy,
		fat:       fat.NewBlank(pageCount, rng),
		rng:       rng,
		clock:     cl,
		sched:     sched,
		gcGuard:   &gc.Guard{},
		autoGCThr: threshold,
		log:       lg,
		handles:   make(map[int]*openHandle),
	}, nil
}

// Dimensions reports the region's geometry.
type Dims struct {
	Size  int // dev.Size()
	Len   int // end - start
	Start int
	End   int
	Pages int
}

func (fs *FileSystem) Dimensions() Dims {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return Dims{
		Size:  fs.dev.Size(),
		Len:   fs.end - fs.start,
		Start: fs.start,
		End:   fs.end,
		Pages: fs.fat.PageCount(),
	}
}

// Init rescans the region and replaces the in-memory FAT with what it
// finds. If cb is non-nil, it's invoked synchronously with the
// resulting file list, sorted by name.
func (fs *FileSystem) Init(cb func([]fat.Entry)) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if len(fs.handles) > 0 {
		return newErr(CodeFileOpen, "cannot init while files are open")
	}

	scanned, err := fs.scanPages()
	if err != nil {
		return err
	}

	fs.fat = fat.Scan(scanned, fs.pageSize, page.DecodeOptions{Legacy: fs.legacy}, fs.rng)

	if cb != nil {
		list := fs.fat.FileList(false)
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		cb(list)
	}
	return nil
}

func (fs *FileSystem) scanPages() ([]fat.ScannedPage, error) {
	n := (fs.end - fs.start) / fs.pageSize
	out := make([]fat.ScannedPage, n)
	readLen := min(page.MaxHeadHeaderLen, fs.pageSize)
	for i := 0; i < n; i++ {
		buf, err := fs.dev.ReadAt(fs.pageAddr(i), readLen)
		if err != nil {
			return nil, wrapErr(CodeValidation, "scan read failed", err)
		}
		h, status, err := page.Decode(buf, page.DecodeOptions{Legacy: fs.legacy})
		if err != nil {
			return nil, wrapErr(CodeValidation, "scan decode failed", err)
		}
		out[i] = fat.ScannedPage{Status: status, Header: h}
	}
	return out, nil
}

func (fs *FileSystem) pageAddr(idx int) int {
	return fs.start + idx*fs.pageSize
}

// EraseAll replaces the FAT with a blank one and physically erases
// every sector in the region.
func (fs *FileSystem) EraseAll() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if len(fs.handles) > 0 {
		return newErr(CodeFileOpen, "cannot erase_all while files are open")
	}

	n := (fs.end - fs.start) / fs.pageSize
	for i := 0; i < n; i++ {
		if err := fs.dev.EraseSector(fs.pageAddr(i)); err != nil {
			return wrapErr(CodeValidation, "erase_all failed", err)
		}
	}
	fs.fat = fat.NewBlank(n, fs.rng)
	return nil
}

// EraseFile destroys name: its pages' headers are zeroed (turning them
// ERASED) and its FAT entries are dropped. The sectors themselves are
// only reclaimed to FREE by a later GC.
func (fs *FileSystem) EraseFile(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.eraseFileLocked(name)
}

func (fs *FileSystem) eraseFileLocked(name string) error {
	entry, err := fs.fat.Get(name)
	if err != nil {
		return newErr(CodeFileNotFound, name)
	}
	if fs.isIDOpenLocked(entry.ID) {
		return newErr(CodeFileOpen, name)
	}

	zero := make([]byte, min(page.MaxHeadHeaderLen, fs.pageSize))
	for _, idx := range entry.Pages {
		if err := fs.dev.WriteAt(fs.pageAddr(idx), zero, flash.VerifyPost, 0, page.ContinuationHeaderLen); err != nil {
			return wrapErr(CodeValidation, "erase_file header zero failed", err)
		}
		fs.fat.MarkPage(idx, page.Erased)
	}
	if err := fs.fat.RemoveFile(name); err != nil {
		return newErr(CodeFileNotFound, name)
	}

	fs.maybeAutoGCLocked()
	return nil
}

func (fs *FileSystem) isIDOpenLocked(id uint16) bool {
	for _, h := range fs.handles {
		if h.id == id {
			return true
		}
	}
	return false
}

// EraseFiles erases every current file. Unlike EraseAll, it does not
// throw when handles are open: it logs and silently refuses, matching
// the source asymmetry documented in spec.md §9's open question.
func (fs *FileSystem) EraseFiles() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if len(fs.handles) > 0 {
		fs.log.Error().Msg("erase_files: refusing, files are open")
		return
	}

	for _, e := range fs.fat.FileList(false) {
		if err := fs.eraseFileLocked(e.Name); err != nil {
			fs.log.Error().Err(err).Str("file", e.Name).Msg("erase_files: failed to erase file")
		}
	}
}

// FreeSpace is the conservative free-space estimate from
// spec.md §6's get_free_space.
type FreeSpace struct {
	Free     int // free_pages * heuristic
	Freeable int // (free+erased) * heuristic
}

// heuristicPayloadBytes is the conservative per-page payload estimate
// used for GetFreeSpace, matching spec.md §6's "~4000 B" heuristic.
const heuristicPayloadBytes = 4000

func (fs *FileSystem) GetFreeSpace() FreeSpace {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	stats := fs.fat.Stats()
	return FreeSpace{
		Free:     stats[page.Free] * heuristicPayloadBytes,
		Freeable: (stats[page.Free] + stats[page.Erased]) * heuristicPayloadBytes,
	}
}

// SetAutoGC sets the auto-GC threshold; 0 disables it.
func (fs *FileSystem) SetAutoGC(n int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if n < 0 {
		n = 0
	}
	fs.autoGCThr = n
}

func (fs *FileSystem) maybeAutoGCLocked() {
	if len(fs.handles) > 0 || fs.autoGCThr <= 0 || fs.gcGuard.Collecting() {
		return
	}
	stats := fs.fat.Stats()
	if stats[page.Free] > fs.autoGCThr || stats[page.Erased] == 0 {
		return
	}
	fs.log.Debug().Int("free", stats[page.Free]).Msg("auto-gc: triggering async sweep")
	fs.gcAsyncLocked(nil)
}

// FileExists reports whether ref (a name or id) names a present file.
func (fs *FileSystem) FileExists(ref any) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.fat.FileExists(ref)
}

// IsFileOpen reports whether name currently has an open handle.
func (fs *FileSystem) IsFileOpen(name string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, h := range fs.handles {
		if h.name == name {
			return true
		}
	}
	return false
}

// FileSize returns ref's logical size in bytes.
func (fs *FileSystem) FileSize(ref any) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	e, err := fs.fat.Get(ref)
	if err != nil {
		return 0, newErr(CodeFileNotFound, "")
	}
	return e.SizeTotal(), nil
}

// Created returns ref's creation timestamp.
func (fs *FileSystem) Created(ref any) (uint32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	e, err := fs.fat.Get(ref)
	if err != nil {
		return 0, newErr(CodeFileNotFound, "")
	}
	return e.Created, nil
}

// FileList returns every file, sorted by name or by creation time.
func (fs *FileSystem) FileList(byDate bool) []fat.Entry {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.fat.FileList(byDate)
}

// Stat bundles the common per-file FAT lookups (existence, open state,
// size, creation time) into one call.
type Stat struct {
	Exists  bool
	Open    bool
	Size    int
	Created uint32
}

func (fs *FileSystem) Stat(name string) Stat {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	e, err := fs.fat.Get(name)
	if err != nil {
		return Stat{}
	}
	return Stat{Exists: true, Open: fs.isIDOpenLocked(e.ID), Size: e.SizeTotal(), Created: e.Created}
}
