package spiffat

import (
	"math/rand"

	"github.com/flashkeep/spiffat/flash"
	"github.com/flashkeep/spiffat/internal/clock"
	"github.com/flashkeep/spiffat/internal/scheduler"
)

// newTestFS builds a FileSystem over a fresh in-memory device sized
// pageCount*pageSize, with a deterministic clock/scheduler/rng so
// tests are reproducible and can drive async GC by hand.
func newTestFS(pageSize, pageCount, autoGCThreshold int) (*FileSystem, *flash.MemFlash, *clock.Fixed, *scheduler.Manual) {
	dev := flash.NewMemFlash(pageSize*pageCount, pageSize)
	cl := clock.NewFixed(1700000000)
	sched := scheduler.NewManual()

	fs, err := New(0, pageSize*pageCount, dev, Options{
		PageSize:        pageSize,
		AutoGCThreshold: autoGCThreshold,
		Clock:           cl,
		Scheduler:       sched,
		Rand:            rand.New(rand.NewSource(1)),
	})
	if err != nil {
		panic(err)
	}
	return fs, dev, cl, sched
}

func isCode(err error, code Code) bool {
	fe, ok := err.(*FsError)
	return ok && fe.Code == code
}
