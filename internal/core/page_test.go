package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

func sampleRows(n int) []facet.Record {
	return ingest.GenerateSample(n, facet.DefaultSchema()).Records()
}

func TestPaginate(t *testing.T) {
	rows := sampleRows(250)

	tests := []struct {
		name      string
		number    int
		wantPage  int
		wantFirst int
		wantLen   int
	}{
		{name: "first page", number: 1, wantPage: 1, wantFirst: 1, wantLen: 100},
		{name: "middle page", number: 2, wantPage: 2, wantFirst: 101, wantLen: 100},
		{name: "last partial page", number: 3, wantPage: 3, wantFirst: 201, wantLen: 50},
		{name: "past the end clamps", number: 9, wantPage: 3, wantFirst: 201, wantLen: 50},
		{name: "zero reads as first", number: 0, wantPage: 1, wantFirst: 1, wantLen: 100},
		{name: "negative reads as first", number: -4, wantPage: 1, wantFirst: 1, wantLen: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(rows, tt.number, 100)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, 3, p.TotalPages)
			assert.Equal(t, 250, p.TotalRows)
			require.Len(t, p.Rows, tt.wantLen)
			assert.Equal(t, tt.wantFirst, p.Rows[0].ID)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 3, 100)

	assert.Equal(t, 1, p.Number)
	assert.Zero(t, p.TotalPages)
	assert.Empty(t, p.Rows)
	assert.Empty(t, p.Links)
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestPaginateDefaultSize(t *testing.T) {
	p := Paginate(sampleRows(1000), 1, 0)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, 10, p.TotalPages)
	assert.True(t, p.HasNext())
}

func TestPageLinks(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 0, []int{}},
		{1, 1, []int{1}},
		{2, 3, []int{1, 2, 3}},
		{5, 5, []int{1, 2, 3, 4, 5}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{3, 10, []int{1, 2, 3, 4, 5}},
		{4, 10, []int{2, 3, 4, 5, 6}},
		{7, 10, []int{5, 6, 7, 8, 9}},
		{8, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		got := PageLinks(tt.current, tt.total)
		assert.Equal(t, tt.want, got, "PageLinks(%d, %d)", tt.current, tt.total)
	}
}

func TestVisibleWindow(t *testing.T) {
	rows := sampleRows(100)

	t.Run("top", func(t *testing.T) {
		w := VisibleWindow(rows, 0, 40, 20)
		assert.Equal(t, 0, w.Start)
		assert.Len(t, w.Rows, 20)
		assert.Equal(t, 0, w.TopSpacer)
		assert.Equal(t, 80*40, w.BottomSpacer)
	})

	t.Run("scrolled part way into a row", func(t *testing.T) {
		w := VisibleWindow(rows, 415, 40, 20)
		assert.Equal(t, 10, w.Start)
		assert.Equal(t, 11, w.Rows[0].ID)
		assert.Equal(t, 400, w.TopSpacer)
		assert.Equal(t, 70*40, w.BottomSpacer)
	})

	t.Run("near the bottom", func(t *testing.T) {
		w := VisibleWindow(rows, 90*40, 40, 20)
		assert.Len(t, w.Rows, 10)
		assert.Zero(t, w.BottomSpacer)
	})

	t.Run("past the end", func(t *testing.T) {
		w := VisibleWindow(rows, 1_000_000, 40, 20)
		assert.Empty(t, w.Rows)
		assert.Equal(t, 100, w.Start)
	})

	t.Run("defaults", func(t *testing.T) {
		w := VisibleWindow(rows, -5, 0, 0)
		assert.Equal(t, 0, w.Start)
		assert.Len(t, w.Rows, DefaultVisibleRows)
	})
}

func TestSearchOptions(t *testing.T) {
	options := []int{0, 1, 2, 10, 11, 21, 100}

	assert.Equal(t, options, SearchOptions(options, ""))
	assert.Equal(t, options, SearchOptions(options, "  "))
	assert.Equal(t, []int{1, 10, 11, 21, 100}, SearchOptions(options, "1"))
	assert.Equal(t, []int{0, 10, 100}, SearchOptions(options, "0"))
	assert.Equal(t, []int{}, SearchOptions(options, "7"))
}

func TestBadges(t *testing.T) {
	assert.Equal(t, []string{}, Badges(nil))
	assert.Equal(t, []string{"1", "2"}, Badges([]int{1, 2}))
	assert.Equal(t, []string{"1", "2", "3"}, Badges([]int{1, 2, 3}))
	assert.Equal(t, []string{"0", "1", "2", "+2 more"}, Badges([]int{0, 1, 2, 3, 4}))
}
