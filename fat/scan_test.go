package fat

import (
	"math/rand"
	"testing"

	"github.com/flashkeep/spiffat/page"
	"github.com/stretchr/testify/require"
)

func TestScanRebuildsFAT(t *testing.T) {
	r := require.New(t)

	const pageSize = 128

	head, err := page.EncodeHead(5, 10, 1000, "f.txt")
	r.NoError(err)
	cont := page.EncodeContinuation(5, 1, page.SizeFullPage)

	pages := []ScannedPage{
		{Status: page.Free},
		{Status: page.Used, Header: mustDecode(t, head)},
		{Status: page.Used, Header: mustDecode(t, cont)},
		{Status: page.Erased},
	}

	f := Scan(pages, pageSize, page.DecodeOptions{}, rand.New(rand.NewSource(1)))

	r.Equal(page.Free, f.PageStatus(0))
	r.Equal(page.Used, f.PageStatus(1))
	r.Equal(page.Used, f.PageStatus(2))
	r.Equal(page.Erased, f.PageStatus(3))

	e, err := f.Get("f.txt")
	r.NoError(err)
	r.Equal([]int{1, 2}, e.Pages)
	r.Equal(10, e.Sizes[0])
	r.Equal(pageSize-page.ContinuationHeaderLen, e.Sizes[1])
	r.Equal(uint32(1000), e.Created)
}

func TestScanOrphansContinuationOnlyFile(t *testing.T) {
	r := require.New(t)

	cont := page.EncodeContinuation(9, 1, 4)

	pages := []ScannedPage{
		{Status: page.Used, Header: mustDecode(t, cont)},
	}

	f := Scan(pages, 128, page.DecodeOptions{}, rand.New(rand.NewSource(1)))

	r.Empty(f.names, "orphan with no head page must not be name-reachable")
	_, ok := f.files[9]
	r.True(ok, "orphan's pages are still tracked internally")
}

func TestScanTreatsProvisionalSizeAsZero(t *testing.T) {
	r := require.New(t)

	head, err := page.EncodeHead(3, page.SizeProvisional, 0, "open.txt")
	r.NoError(err)

	pages := []ScannedPage{
		{Status: page.Used, Header: mustDecode(t, head)},
	}

	f := Scan(pages, 128, page.DecodeOptions{}, rand.New(rand.NewSource(1)))
	e, err := f.Get("open.txt")
	r.NoError(err)
	r.Equal(0, e.Sizes[0])
}

func mustDecode(t *testing.T, buf []byte) page.Header {
	t.Helper()
	h, status, err := page.Decode(buf, page.DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, page.Used, status)
	return h
}
