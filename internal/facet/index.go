package facet

import (
	"slices"

	"github.com/RoaringBitmap/roaring"
)

// Index answers the same queries as Scan from per-value posting bitmaps.
// Bit i of a posting is set when the record at position i holds that value.
// An Index is read-only after NewIndex and safe for concurrent use.
type Index struct {
	ds       *Dataset
	postings []map[int]*roaring.Bitmap // per dimension, value -> positions
}

// NewIndex builds posting bitmaps for every dimension of ds.
func NewIndex(ds *Dataset) *Index {
	postings := make([]map[int]*roaring.Bitmap, ds.schema.Len())
	for i := range postings {
		postings[i] = make(map[int]*roaring.Bitmap)
	}

	for pos, r := range ds.records {
		for dim, v := range r.Values {
			bm, ok := postings[dim][v]
			if !ok {
				bm = roaring.New()
				postings[dim][v] = bm
			}
			bm.Add(uint32(pos))
		}
	}

	for _, byValue := range postings {
		for _, bm := range byValue {
			bm.RunOptimize()
		}
	}

	return &Index{ds: ds, postings: postings}
}

// Dataset returns the indexed dataset.
func (x *Index) Dataset() *Dataset {
	return x.ds
}

// FilteredRows returns the records that match sel, in dataset order.
func (x *Index) FilteredRows(sel Selection) []Record {
	if sel.IsEmpty() {
		return slices.Clone(x.ds.records)
	}

	match := x.restrict(sel, -1)
	rows := make([]Record, 0, match.GetCardinality())
	it := match.Iterator()
	for it.HasNext() {
		rows = append(rows, x.ds.records[it.Next()])
	}
	return rows
}

// AvailableOptions returns, per dimension, the values whose posting intersects
// the positions matched by every other dimension's filter.
func (x *Index) AvailableOptions(sel Selection) map[string][]int {
	options := make(map[string][]int, x.ds.schema.Len())
	for dim, d := range x.ds.schema.Dimensions {
		others := x.restrict(sel, dim)

		values := make([]int, 0, len(x.postings[dim]))
		for v, bm := range x.postings[dim] {
			if others == nil || bm.Intersects(others) {
				values = append(values, v)
			}
		}
		slices.Sort(values)
		options[d.Name] = values
	}
	return options
}

// restrict intersects the filters of every dimension except skip.
// It returns nil when none of them restricts anything.
func (x *Index) restrict(sel Selection, skip int) *roaring.Bitmap {
	var acc *roaring.Bitmap
	for dim, set := range sel.sets {
		if dim == skip || len(set) == 0 {
			continue
		}

		parts := make([]*roaring.Bitmap, 0, len(set))
		for _, v := range set {
			if bm, ok := x.postings[dim][v]; ok {
				parts = append(parts, bm)
			}
		}
		union := roaring.FastOr(parts...)

		if acc == nil {
			acc = union
		} else {
			acc.And(union)
		}
		if acc.IsEmpty() {
			return acc
		}
	}
	return acc
}
