package ingest

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned when the input cannot produce a dataset at all,
// for example when it has no data line after the header.
var ErrMalformedInput = errors.New("malformed input")

// ErrUnsupportedFormat is returned for file names that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// RowSkipped records a data line dropped because its field count did not
// match the header.
type RowSkipped struct {
	Line   int    `json:"line"` // 1-based physical line in the input
	Got    int    `json:"got"`
	Want   int    `json:"want"`
	Reason string `json:"reason,omitempty"`
}

func (r RowSkipped) Error() string {
	if r.Reason != "" {
		return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
	}
	return fmt.Sprintf("line %d: has %d fields, header has %d", r.Line, r.Got, r.Want)
}

// Report summarizes one ingestion.
type Report struct {
	Format  string       `json:"format"`
	Lines   int          `json:"lines"`   // records read, header included
	Rows    int          `json:"rows"`    // records kept
	Skipped []RowSkipped `json:"skipped"` // never nil
	Coerced int          `json:"coerced"` // cells replaced by a coerced value
	Bytes   int64        `json:"bytes"`
}
