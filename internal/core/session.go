package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

// Engine names reported in summaries and metrics.
const (
	EngineScan  = "scan"
	EngineIndex = "index"
)

// Session owns one dataset and the selection applied to it. Mutations take
// the write lock; every derived view is computed under the read lock, so a
// reader never sees a selection from one dataset applied to another.
type Session struct {
	id      string
	created time.Time

	// lastSeen is unix nanoseconds, read by the reaper without the lock.
	lastSeen atomic.Int64
	loading  atomic.Bool
	progress atomic.Pointer[ingest.CountingReader]

	indexThreshold int
	metrics        *Metrics

	mu         sync.RWMutex
	ds         *facet.Dataset
	engine     facet.Engine
	engineName string
	sel        facet.Selection
	source     string
	report     *ingest.Report
	loadedAt   time.Time
}

// NewSession returns a session over ds. Datasets larger than indexThreshold
// rows are queried through a bitmap index; 0 disables the index.
func NewSession(id string, ds *facet.Dataset, source string, indexThreshold int, m *Metrics) *Session {
	s := &Session{
		id:             id,
		created:        time.Now(),
		indexThreshold: indexThreshold,
		metrics:        m,
	}
	s.touch()
	s.replace(ds, source, nil)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Loading reports whether an ingestion into this session is running.
func (s *Session) Loading() bool {
	return s.loading.Load()
}

// beginLoad marks the session as loading. It fails if a load is already running.
func (s *Session) beginLoad() bool {
	return s.loading.CompareAndSwap(false, true)
}

func (s *Session) endLoad() {
	s.progress.Store(nil)
	s.loading.Store(false)
}

// trackProgress reports c's read progress in summaries until endLoad.
func (s *Session) trackProgress(c *ingest.CountingReader) {
	s.progress.Store(c)
}

// LoadProgress returns the percentage of the running load read so far.
// It is 0 when no load is running or its size is unknown.
func (s *Session) LoadProgress() int {
	if c := s.progress.Load(); c != nil {
		return c.Progress()
	}
	return 0
}

// Replace swaps in a new dataset and clears the selection. The previous
// dataset and any index built for it are dropped.
func (s *Session) Replace(ds *facet.Dataset, source string, rep *ingest.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(ds, source, rep)
}

func (s *Session) replace(ds *facet.Dataset, source string, rep *ingest.Report) {
	s.ds = ds
	s.sel = facet.NewSelection(ds.Schema())
	s.source = source
	s.report = rep
	s.loadedAt = time.Now()

	if s.indexThreshold > 0 && ds.Len() > s.indexThreshold {
		s.engine = facet.NewIndex(ds)
		s.engineName = EngineIndex
	} else {
		s.engine = facet.NewScan(ds)
		s.engineName = EngineScan
	}
}

// Schema returns the current dataset's schema.
func (s *Session) Schema() facet.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds.Schema()
}

// SetFilter replaces one dimension's selected values.
func (s *Session) SetFilter(dimension string, values []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sel.Set(dimension, values); err != nil {
		return err
	}
	s.metrics.filterChanged("set")
	return nil
}

// ToggleValue adds value to a dimension's selection, or removes it if present.
// It returns the dimension's selection afterwards.
func (s *Session) ToggleValue(dimension string, value int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.sel.Values(dimension)
	next := make([]int, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == value {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}

	if err := s.sel.Set(dimension, next); err != nil {
		return nil, err
	}
	s.metrics.filterChanged("toggle")
	return s.sel.Values(dimension), nil
}

// SelectAll selects every currently available option of a dimension whose
// decimal form contains search, replacing the dimension's selection.
// It returns the values selected.
func (s *Session) SelectAll(dimension, search string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ds.Schema().Lookup(dimension); !ok {
		return nil, fmt.Errorf("%w: %q", facet.ErrUnknownDimension, dimension)
	}

	options := s.engine.AvailableOptions(s.sel)[dimension]
	values := SearchOptions(options, search)
	if err := s.sel.Set(dimension, values); err != nil {
		return nil, err
	}
	s.metrics.filterChanged("select_all")
	return s.sel.Values(dimension), nil
}

// ClearFilter empties one dimension's selection.
func (s *Session) ClearFilter(dimension string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sel.Set(dimension, nil); err != nil {
		return err
	}
	s.metrics.filterChanged("clear")
	return nil
}

// ClearAll empties every dimension's selection.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel.Clear()
	s.metrics.filterChanged("clear_all")
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() facet.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel.Clone()
}

// Result computes filtered rows and available options for the current state.
func (s *Session) Result() facet.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timer := s.metrics.computeTimer(s.engineName)
	defer timer.ObserveDuration()
	return facet.Compute(s.engine, s.sel)
}

// Rows returns every filtered row.
func (s *Session) Rows() []facet.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timer := s.metrics.computeTimer(s.engineName)
	defer timer.ObserveDuration()
	return s.engine.FilteredRows(s.sel)
}

// Page returns one page of the filtered rows.
func (s *Session) Page(number, size int) Page {
	return Paginate(s.Rows(), number, size)
}

// Options returns the available options per dimension. A non-empty search
// narrows each list to values whose decimal form contains it; this affects
// only what is returned, never the selection.
func (s *Session) Options(search string) map[string][]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timer := s.metrics.computeTimer(s.engineName)
	defer timer.ObserveDuration()

	return searchAll(s.engine.AvailableOptions(s.sel), search)
}

// searchAll narrows every option list in place.
func searchAll(options map[string][]int, search string) map[string][]int {
	for name, values := range options {
		options[name] = SearchOptions(values, search)
	}
	return options
}

// Snapshot is one consistent view of a session: the selection, the result it
// produces and the summary describing both.
type Snapshot struct {
	Summary   Summary
	Selection facet.Selection
	Result    facet.Result
}

// Snapshot computes the result and copies the selection under one read lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timer := s.metrics.computeTimer(s.engineName)
	res := facet.Compute(s.engine, s.sel)
	timer.ObserveDuration()

	return Snapshot{
		Summary:   s.summaryLocked(len(res.Rows)),
		Selection: s.sel.Clone(),
		Result:    res,
	}
}

// Page returns one page of the snapshot's rows.
func (v Snapshot) Page(number, size int) Page {
	return Paginate(v.Result.Rows, number, size)
}

// Options returns the snapshot's options narrowed by search.
func (v Snapshot) Options(search string) map[string][]int {
	options := make(map[string][]int, len(v.Result.Options))
	for name, values := range v.Result.Options {
		options[name] = SearchOptions(values, search)
	}
	return options
}

// Summary describes a session for status output.
type Summary struct {
	ID        string           `json:"id"`
	Source    string           `json:"source"`
	Rows      int              `json:"rows"`
	Filtered  int              `json:"filtered"`
	Loading   bool             `json:"loading"`
	Progress  int              `json:"progress"`
	Engine    string           `json:"engine"`
	Schema    facet.Schema     `json:"schema"`
	Selection map[string][]int `json:"selection"`
	Report    *ingest.Report   `json:"report,omitempty"`
	Created   time.Time        `json:"created"`
	LoadedAt  time.Time        `json:"loaded_at"`
}

// Summary returns counts and state for the session.
func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := s.ds.Len()
	if !s.sel.IsEmpty() {
		filtered = len(s.engine.FilteredRows(s.sel))
	}
	return s.summaryLocked(filtered)
}

func (s *Session) summaryLocked(filtered int) Summary {
	return Summary{
		ID:        s.id,
		Source:    s.source,
		Rows:      s.ds.Len(),
		Filtered:  filtered,
		Loading:   s.loading.Load(),
		Progress:  s.LoadProgress(),
		Engine:    s.engineName,
		Schema:    s.ds.Schema(),
		Selection: s.sel.Map(),
		Report:    s.report,
		Created:   s.created,
		LoadedAt:  s.loadedAt,
	}
}
