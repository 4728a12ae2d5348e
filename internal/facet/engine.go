package facet

import "slices"

// Result is the derived view of a dataset under a selection.
type Result struct {
	Rows    []Record
	Options map[string][]int
}

// Engine computes filtered rows and available options for one dataset.
// Implementations must be safe for concurrent use by multiple readers.
type Engine interface {
	FilteredRows(sel Selection) []Record
	AvailableOptions(sel Selection) map[string][]int
}

// Scan is the reference engine: it walks every record on each call.
type Scan struct {
	ds *Dataset
}

// NewScan returns a scanning engine over ds.
func NewScan(ds *Dataset) *Scan {
	return &Scan{ds: ds}
}

// FilteredRows returns the records that match sel, in dataset order.
func (e *Scan) FilteredRows(sel Selection) []Record {
	return FilteredRows(e.ds, sel)
}

// AvailableOptions returns, per dimension, the values reachable under every
// other dimension's filter.
func (e *Scan) AvailableOptions(sel Selection) map[string][]int {
	return AvailableOptions(e.ds, sel)
}

// FilteredRows returns the subsequence of ds matching sel. A record is kept
// when, for every dimension, the selected set is empty or contains the
// record's value. Output order is dataset order.
//
// sel must have been built from ds.Schema().
func FilteredRows(ds *Dataset, sel Selection) []Record {
	if sel.IsEmpty() {
		return slices.Clone(ds.records)
	}

	rows := make([]Record, 0)
	for _, r := range ds.records {
		if sel.Matches(r) {
			rows = append(rows, r)
		}
	}
	return rows
}

// AvailableOptions returns, for each dimension d, the sorted distinct values
// of d across the records that match sel with d's own filter removed.
// Selecting a value in d therefore never shrinks d's own options.
//
// Every dimension is present in the result; an empty dataset yields an empty
// slice for each.
func AvailableOptions(ds *Dataset, sel Selection) map[string][]int {
	options := make(map[string][]int, ds.schema.Len())
	for i, d := range ds.schema.Dimensions {
		options[d.Name] = distinctValues(ds.records, sel.without(i), i)
	}
	return options
}

// Compute returns both filtered rows and available options.
func Compute(e Engine, sel Selection) Result {
	return Result{
		Rows:    e.FilteredRows(sel),
		Options: e.AvailableOptions(sel),
	}
}

func distinctValues(records []Record, restricted Selection, dim int) []int {
	seen := make(map[int]struct{})
	for _, r := range records {
		if !restricted.Matches(r) {
			continue
		}
		seen[r.Values[dim]] = struct{}{}
	}

	values := make([]int, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}
