// Package facet implements cross-filtering over an in-memory numeric dataset.
//
// A [Dataset] is an ordered, immutable sequence of [Record] values sharing one
// [Schema]. A [Selection] holds the chosen values per filter dimension. The
// engine derives two things from the pair:
//
//   - the filtered rows: records where every dimension either has no selected
//     values or holds one of them (AND across dimensions, OR within one)
//   - the available options: for each dimension, the sorted distinct values
//     reachable when every other dimension's filter is applied but its own is
//     not
//
// Both derivations are pure. They never mutate their inputs and always return
// freshly allocated results, so callers can hold the dataset behind a read
// lock and recompute on every change.
//
// Two engines implement the same contract. [Scan] walks every record on each
// call. [Index] keeps one roaring bitmap per (dimension, value) and answers by
// intersecting bitmaps, which pays off once datasets reach the tens of
// thousands of rows. Results are identical.
package facet
