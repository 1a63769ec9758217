package spiffat

import (
	"bytes"
	"testing"

	"github.com/flashkeep/spiffat/page"
	"github.com/stretchr/testify/require"
)

func TestS4WriteAcrossTwoPages(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(4096, 4, -1)

	data := bytes.Repeat([]byte{'x'}, 6232)
	f, err := fs.Open("test.txt", "w")
	r.NoError(err)
	r.NoError(f.Write(data))
	r.NoError(f.Close())

	e, err := fs.fat.Get("test.txt")
	r.NoError(err)
	r.Len(e.Pages, 2)
	r.Equal(4096-page.HeadHeaderLen("test.txt"), e.Sizes[0])
	r.Equal(6232-e.Sizes[0], e.Sizes[1])
	r.Equal(6232, e.SizeTotal())
}

func TestS5RoundTripsAcrossReinit(t *testing.T) {
	r := require.New(t)
	fs, dev, cl, sched := newTestFS(4096, 4, -1)

	data := bytes.Repeat([]byte{'y'}, 6232)
	f, err := fs.Open("test.txt", "w")
	r.NoError(err)
	r.NoError(f.Write(data))
	r.NoError(f.Close())

	fs2, err := New(0, fs.end, dev, Options{
		PageSize: fs.pageSize, Clock: cl, Scheduler: sched, Rand: fs.rng,
	})
	r.NoError(err)
	r.NoError(fs2.Init(nil))

	f2, err := fs2.Open("test.txt", "r")
	r.NoError(err)
	got, err := f2.Read(-1)
	r.NoError(err)
	r.Equal(data, got)

	created, err := f2.Created()
	r.NoError(err)
	r.Equal(uint32(1700000000), created)
}

func TestS5RoundTripsAcrossReinitWithSmallPages(t *testing.T) {
	r := require.New(t)
	fs, dev, cl, sched := newTestFS(64, 4, -1)

	writeFile(t, fs, "a.txt", "hello")
	writeFile(t, fs, "b.txt", "world")

	fs2, err := New(0, fs.end, dev, Options{
		PageSize: fs.pageSize, Clock: cl, Scheduler: sched, Rand: fs.rng,
	})
	r.NoError(err)
	r.NoError(fs2.Init(nil))

	f, err := fs2.Open("a.txt", "r")
	r.NoError(err)
	got, err := f.Read(-1)
	r.NoError(err)
	r.Equal("hello", string(got))
	r.NoError(f.Close())

	r.True(fs2.FileExists("b.txt"))
}

func TestS6NoFreeSpaceWhenFull(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 3, -1)

	for _, name := range []string{"a", "b", "c"} {
		f, err := fs.Open(name, "w")
		r.NoError(err)
		r.NoError(f.Write("x"))
		r.NoError(f.Close())
	}

	f, err := fs.Open("extra", "w")
	r.NoError(err)
	err = f.Write("y")
	r.True(isCode(err, CodeNoFreeSpace))
}

func TestS9SecondWriterLosesLastFreePage(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 1, -1)

	fa, err := fs.Open("a", "w")
	r.NoError(err)
	fb, err := fs.Open("b", "w")
	r.NoError(err)

	r.NoError(fa.Write("1"))
	err = fb.Write("2")
	r.True(isCode(err, CodeNoFreeSpace))
}

func TestExactlyOnePageFillRecordsSizeZeroOnMedium(t *testing.T) {
	r := require.New(t)
	fs, dev, _, _ := newTestFS(64, 2, -1)

	name := "f.txt"
	capacity := 64 - page.HeadHeaderLen(name)
	data := bytes.Repeat([]byte{'z'}, capacity)

	f, err := fs.Open(name, "w")
	r.NoError(err)
	r.NoError(f.Write(data))
	r.NoError(f.Close())

	e, err := fs.fat.Get(name)
	r.NoError(err)
	r.Equal(capacity, e.Sizes[0])

	buf, err := dev.ReadAt(0, 64)
	r.NoError(err)
	h, status, err := page.Decode(buf, page.DecodeOptions{})
	r.NoError(err)
	r.Equal(page.Used, status)
	r.Equal(page.SizeFullPage, h.Size)
}

func TestReadPartialRangeAcrossPages(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	name := "r.txt"
	data := bytes.Repeat([]byte{'a'}, 40)
	data = append(data, bytes.Repeat([]byte{'b'}, 40)...)

	f, err := fs.Open(name, "w")
	r.NoError(err)
	r.NoError(f.Write(data))
	r.NoError(f.Close())

	got, err := fs.readLocked(mustID(fs, name), 44, 10)
	r.NoError(err)
	r.Equal(data[44:54], got)
}

func mustID(fs *FileSystem, name string) uint16 {
	e, err := fs.fat.Get(name)
	if err != nil {
		panic(err)
	}
	return e.ID
}
