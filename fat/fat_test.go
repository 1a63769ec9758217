package fat

import (
	"math/rand"
	"testing"

	"github.com/flashkeep/spiffat/page"
	"github.com/stretchr/testify/require"
)

func TestBlankFATAllFree(t *testing.T) {
	r := require.New(t)

	f := NewBlank(16, rand.New(rand.NewSource(1)))
	r.Equal(16, f.PageCount())
	for i := 0; i < 16; i++ {
		r.Equal(page.Free, f.PageStatus(i))
	}
	r.Empty(f.FileList(false))
}

func TestGetFileIDMintsAndReuses(t *testing.T) {
	r := require.New(t)

	f := NewBlank(16, rand.New(rand.NewSource(1)))

	id1, err := f.GetFileID("a.txt", 100)
	r.NoError(err)
	r.GreaterOrEqual(id1, page.MinID)
	r.LessOrEqual(id1, page.MaxID)

	id2, err := f.GetFileID("a.txt", 200)
	r.NoError(err)
	r.Equal(id1, id2, "same name must return the same id")

	id3, err := f.GetFileID("b.txt", 300)
	r.NoError(err)
	r.NotEqual(id1, id3)
}

func TestGetFileIDSkipsSentinels(t *testing.T) {
	r := require.New(t)

	f := NewBlank(4, rand.New(rand.NewSource(1)))
	for i := 0; i < 100; i++ {
		id, err := f.GetFileID(string(rune('a'+i)), 0)
		r.NoError(err)
		r.NotEqual(page.IDErased, id)
		r.NotEqual(page.IDFree, id)
	}
}

func TestAddPageOrdersSpans(t *testing.T) {
	r := require.New(t)

	f := NewBlank(8, rand.New(rand.NewSource(1)))
	id, err := f.GetFileID("f.txt", 0)
	r.NoError(err)

	f.AddPage(id, 3)
	f.AddSizeToLastSpan(id, 100)
	f.AddPage(id, 5)
	f.AddSizeToLastSpan(id, 50)

	e, err := f.Get(id)
	r.NoError(err)
	r.Equal([]int{3, 5}, e.Pages)
	r.Equal([]int{100, 50}, e.Sizes)
	r.Equal(150, e.SizeTotal())
}

func TestGetByNameAndByID(t *testing.T) {
	r := require.New(t)

	f := NewBlank(8, rand.New(rand.NewSource(1)))
	id, err := f.GetFileID("f.txt", 42)
	r.NoError(err)

	byName, err := f.Get("f.txt")
	r.NoError(err)
	byID, err := f.Get(id)
	r.NoError(err)
	r.Equal(byName, byID)
	r.Equal(uint32(42), byName.Created)
}

func TestGetMissingFails(t *testing.T) {
	r := require.New(t)

	f := NewBlank(8, rand.New(rand.NewSource(1)))
	_, err := f.Get("nope")
	r.ErrorIs(err, ErrFileNotFound)
}

func TestRemoveFile(t *testing.T) {
	r := require.New(t)

	f := NewBlank(8, rand.New(rand.NewSource(1)))
	_, err := f.GetFileID("f.txt", 0)
	r.NoError(err)

	r.NoError(f.RemoveFile("f.txt"))
	r.False(f.FileExists("f.txt"))
	r.ErrorIs(f.RemoveFile("f.txt"), ErrFileNotFound)
}

func TestFileListSortOrders(t *testing.T) {
	r := require.New(t)

	f := NewBlank(8, rand.New(rand.NewSource(1)))
	_, _ = f.GetFileID("banana.txt", 300)
	_, _ = f.GetFileID("apple.txt", 100)
	_, _ = f.GetFileID("cherry.txt", 200)

	byName := f.FileList(false)
	r.Equal([]string{"apple.txt", "banana.txt", "cherry.txt"}, names(byName))

	byDate := f.FileList(true)
	r.Equal([]string{"apple.txt", "cherry.txt", "banana.txt"}, names(byDate))
}

func names(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func TestStatsCountsAllStatuses(t *testing.T) {
	r := require.New(t)

	f := NewBlank(4, rand.New(rand.NewSource(1)))
	f.MarkPage(0, page.Used)
	f.MarkPage(1, page.Erased)
	f.MarkPage(2, page.Bad)

	stats := f.Stats()
	r.Equal(1, stats[page.Free])
	r.Equal(1, stats[page.Used])
	r.Equal(1, stats[page.Erased])
	r.Equal(1, stats[page.Bad])
}

func TestForEachPageVisitsInSpanOrder(t *testing.T) {
	r := require.New(t)

	f := NewBlank(8, rand.New(rand.NewSource(1)))
	id, err := f.GetFileID("f.txt", 0)
	r.NoError(err)
	f.AddPage(id, 7)
	f.AddPage(id, 2)

	var visited []int
	r.NoError(f.ForEachPage(id, func(idx int) error {
		visited = append(visited, idx)
		return nil
	}))
	r.Equal([]int{7, 2}, visited, "insertion order, not numeric order: span order")
}
