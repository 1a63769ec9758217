package spiffat

import (
	"testing"

	"github.com/flashkeep/spiffat/flash"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMisalignedRegion(t *testing.T) {
	r := require.New(t)
	dev := flash.NewMemFlash(4096*4, 4096)

	_, err := New(10, 4096*4, dev, Options{PageSize: 4096})
	r.True(isCode(err, CodeInvalidSPIFlashAddress))

	_, err = New(0, 4096*4+1, dev, Options{PageSize: 4096})
	r.True(isCode(err, CodeInvalidSPIFlashAddress))

	_, err = New(0, 4096*10, dev, Options{PageSize: 4096})
	r.True(isCode(err, CodeInvalidSPIFlashAddress))
}

func TestS1EmptyInitHasNoFiles(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	r.NoError(fs.Init(nil))
	r.Empty(fs.FileList(false))
}

func TestS2EmptyFileNotPersisted(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	f, err := fs.Open("a.txt", "w")
	r.NoError(err)
	r.NoError(f.Close())

	r.Empty(fs.FileList(false))
	r.False(fs.FileExists("a.txt"))
}

func TestS3WriteThenFileSize(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	f, err := fs.Open("b.txt", "w")
	r.NoError(err)
	r.NoError(f.Write("hello"))
	r.NoError(f.Close())

	sz, err := fs.FileSize("b.txt")
	r.NoError(err)
	r.Equal(5, sz)
}

func TestOpenValidatesNameAndMode(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	_, err := fs.Open("", "w")
	r.True(isCode(err, CodeInvalidFilename))

	longName := make([]byte, 65)
	for i := range longName {
		longName[i] = 'x'
	}
	_, err = fs.Open(string(longName), "w")
	r.True(isCode(err, CodeInvalidFilename))

	_, err = fs.Open("nope.txt", "r")
	r.True(isCode(err, CodeFileNotFound))

	_, err = fs.Open("dup.txt", "a")
	r.True(isCode(err, CodeUnknownMode))

	f, err := fs.Open("dup.txt", "w")
	r.NoError(err)
	r.NoError(f.Write("x"))
	r.NoError(f.Close())

	_, err = fs.Open("dup.txt", "w")
	r.True(isCode(err, CodeFileExists))
}

func TestIsFileOpenAndStat(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	f, err := fs.Open("c.txt", "w")
	r.NoError(err)
	r.True(fs.IsFileOpen("c.txt"))

	r.NoError(f.Write("abc"))
	r.NoError(f.Close())
	r.False(fs.IsFileOpen("c.txt"))

	st := fs.Stat("c.txt")
	r.True(st.Exists)
	r.Equal(3, st.Size)
	r.False(st.Open)
}

func TestGetFreeSpaceAndSetAutoGC(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	fsp := fs.GetFreeSpace()
	r.Equal(4*heuristicPayloadBytes, fsp.Free)
	r.Equal(4*heuristicPayloadBytes, fsp.Freeable)

	fs.SetAutoGC(0)
	r.Equal(0, fs.autoGCThr)
	fs.SetAutoGC(-5)
	r.Equal(0, fs.autoGCThr)
	fs.SetAutoGC(2)
	r.Equal(2, fs.autoGCThr)
}

func TestEraseAllRejectsWithOpenHandle(t *testing.T) {
	r := require.New(t)
	fs, _, _, _ := newTestFS(64, 4, -1)

	f, err := fs.Open("d.txt", "w")
	r.NoError(err)

	err = fs.EraseAll()
	r.True(isCode(err, CodeFileOpen))

	r.NoError(f.Close())
	r.NoError(fs.EraseAll())
}
