package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

func newTestSession(t *testing.T, n, indexThreshold int) *Session {
	t.Helper()
	ds := ingest.GenerateSample(n, facet.DefaultSchema())
	return NewSession("test", ds, "sample", indexThreshold, NewMetrics(nil))
}

func TestSessionFilters(t *testing.T) {
	s := newTestSession(t, 1000, 0)

	require.NoError(t, s.SetFilter("mod3", []int{1}))
	res := s.Result()
	assert.Len(t, res.Rows, 334)
	assert.Equal(t, []int{0, 1, 2}, res.Options["mod3"])

	require.NoError(t, s.SetFilter("mod4", []int{0}))
	for _, r := range s.Rows() {
		assert.Equal(t, 1, r.Number%3)
		assert.Equal(t, 0, r.Number%4)
	}

	require.NoError(t, s.ClearFilter("mod3"))
	assert.Empty(t, s.Selection().Values("mod3"))
	assert.Equal(t, []int{0}, s.Selection().Values("mod4"))

	s.ClearAll()
	assert.True(t, s.Selection().IsEmpty())
	assert.Len(t, s.Rows(), 1000)
}

func TestSessionRejectsBadFilters(t *testing.T) {
	s := newTestSession(t, 10, 0)

	err := s.SetFilter("mod9", []int{1})
	assert.ErrorIs(t, err, facet.ErrUnknownDimension)

	err = s.SetFilter("mod3", []int{-1})
	assert.ErrorIs(t, err, facet.ErrInvalidValue)

	assert.ErrorIs(t, s.ClearFilter("nope"), facet.ErrUnknownDimension)
	assert.True(t, s.Selection().IsEmpty())
}

func TestSessionToggleValue(t *testing.T) {
	s := newTestSession(t, 100, 0)

	got, err := s.ToggleValue("mod5", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got)

	got, err = s.ToggleValue("mod5", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got)

	got, err = s.ToggleValue("mod5", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestSessionSelectAll(t *testing.T) {
	s := newTestSession(t, 1000, 0)

	// mod6 = 0 restricts mod4 to {0, 2}.
	require.NoError(t, s.SetFilter("mod6", []int{0}))

	got, err := s.SelectAll("mod4", "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)

	got, err = s.SelectAll("mod6", "4")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, got)

	_, err = s.SelectAll("bogus", "")
	assert.ErrorIs(t, err, facet.ErrUnknownDimension)
}

func TestSessionOptionsSearchIsDisplayOnly(t *testing.T) {
	s := newTestSession(t, 1000, 0)

	opts := s.Options("5")
	assert.Equal(t, []int{}, opts["mod3"])
	assert.Equal(t, []int{5}, opts["mod6"])

	assert.True(t, s.Selection().IsEmpty())
	assert.Equal(t, []int{0, 1, 2}, s.Options("")["mod3"])
}

func TestSessionReplaceClearsSelection(t *testing.T) {
	s := newTestSession(t, 100, 0)
	require.NoError(t, s.SetFilter("mod3", []int{2}))

	s.Replace(ingest.GenerateSample(10, facet.DefaultSchema()), "other.csv", &ingest.Report{Rows: 10})

	sum := s.Summary()
	assert.Equal(t, 10, sum.Rows)
	assert.Equal(t, 10, sum.Filtered)
	assert.Equal(t, "other.csv", sum.Source)
	assert.Empty(t, sum.Selection["mod3"])
	require.NotNil(t, sum.Report)
	assert.Equal(t, 10, sum.Report.Rows)
}

func TestSessionEngineChoice(t *testing.T) {
	assert.Equal(t, EngineScan, newTestSession(t, 100, 0).Summary().Engine)
	assert.Equal(t, EngineScan, newTestSession(t, 100, 100).Summary().Engine)
	assert.Equal(t, EngineIndex, newTestSession(t, 101, 100).Summary().Engine)
}

func TestSessionIndexedMatchesScan(t *testing.T) {
	scan := newTestSession(t, 5000, 0)
	index := newTestSession(t, 5000, 1)

	for _, s := range []*Session{scan, index} {
		require.NoError(t, s.SetFilter("mod4", []int{1, 3}))
		require.NoError(t, s.SetFilter("mod5", []int{0}))
	}

	assert.Equal(t, scan.Result(), index.Result())
	assert.Equal(t, scan.Page(2, 100), index.Page(2, 100))
}

func TestSessionSummaryCounts(t *testing.T) {
	s := newTestSession(t, 60, 0)
	require.NoError(t, s.SetFilter("mod3", []int{0}))

	sum := s.Summary()
	assert.Equal(t, "test", sum.ID)
	assert.Equal(t, 60, sum.Rows)
	assert.Equal(t, 20, sum.Filtered)
	assert.Equal(t, []int{0}, sum.Selection["mod3"])
	assert.False(t, sum.Loading)
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := newTestSession(t, 2000, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.SetFilter("mod3", []int{(v + j) % 3})
				_, _ = s.ToggleValue("mod6", j%6)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				res := s.Result()
				sel := s.Selection()
				_ = res
				_ = sel.Map()
			}
		}()
	}
	wg.Wait()

	// Whatever the interleaving, the final view matches a fresh computation.
	sel := s.Selection()
	ds := ingest.GenerateSample(2000, facet.DefaultSchema())
	assert.Equal(t, facet.FilteredRows(ds, sel), s.Rows())
}

func TestSessionSnapshot(t *testing.T) {
	s := newTestSession(t, 1000, 0)
	require.NoError(t, s.SetFilter("mod4", []int{2}))

	snap := s.Snapshot()
	assert.Equal(t, []int{2}, snap.Selection.Values("mod4"))
	assert.Len(t, snap.Result.Rows, 250)
	assert.Equal(t, 250, snap.Summary.Filtered)
	assert.Equal(t, map[string][]int{"mod4": {2}}, snap.Summary.Selection)

	page := snap.Page(3, 100)
	assert.Len(t, page.Rows, 50)
	assert.Equal(t, 3, page.TotalPages)

	opts := snap.Options("4")
	assert.Equal(t, []int{4}, opts["mod5"])
	assert.Equal(t, []int{0, 1, 2, 3, 4}, snap.Result.Options["mod5"], "search leaves the result untouched")
}

func TestSessionSnapshotConsistentUnderWrites(t *testing.T) {
	s := newTestSession(t, 600, 0)
	scan := facet.NewScan(ingest.GenerateSample(600, facet.DefaultSchema()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			_, _ = s.ToggleValue("mod4", j%4)
			_ = s.SetFilter("mod3", []int{j % 3})
		}
	}()
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			snap := s.Snapshot()
			want := facet.Compute(scan, snap.Selection)
			assert.Equal(t, want, snap.Result)
			assert.Equal(t, len(want.Rows), snap.Summary.Filtered)
			assert.Equal(t, snap.Selection.Map(), snap.Summary.Selection)
		}
	}()
	wg.Wait()
}
