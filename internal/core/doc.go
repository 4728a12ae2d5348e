// Package core holds the session layer of the cross-filter service.
//
// It sits between the transports (web handlers, the CLI) and the pure engine
// in package facet. Nothing here knows about HTTP.
//
// # Sessions
//
// A [Session] owns one dataset and one selection. New sessions start with the
// generated sample. Loading a file replaces the dataset wholesale and clears
// the selection; a failed load leaves both untouched. Large datasets are
// served from a bitmap index instead of a scan, chosen when the dataset is
// swapped in.
//
// The [Service] keeps live sessions keyed by UUID and expires idle ones
// (see [Service.StartReaper]).
//
// # Loading
//
// Parsing is bounded across all sessions by a [LoadLimiter]. A session
// reports [Session.Loading] while a load runs, and a second load into the
// same session fails with [ErrLoadInProgress].
//
// # Views
//
// [Paginate], [PageLinks] and [VisibleWindow] shape filtered rows for the
// table view. [SearchOptions] narrows displayed options without touching the
// selection.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each message has a code (e.g. "FILE002") that users can quote to support.
package core
