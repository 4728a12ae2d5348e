package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/logging"
)

// ParseCSV reads comma-separated text into a dataset over schema.
//
// The first record is the header; its contents are ignored and its width is
// the expected width of every data row. Columns are positional: number, then
// one column per schema dimension. Extra columns are ignored and missing
// trailing ones read as 0. A row with a different field count than the header
// is skipped and listed in the report. Fields follow RFC 4180 quoting, so a
// quoted comma stays inside one field. Record IDs are the data line index
// (header is line 0) and are not renumbered after skips.
//
// Input with fewer than two records returns ErrMalformedInput.
func ParseCSV(ctx context.Context, r io.Reader, schema facet.Schema) (*facet.Dataset, *Report, error) {
	cr := Wrap(r)

	reader := csv.NewReader(cr)
	reader.FieldsPerRecord = -1 // widths are checked against the header below
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	b := newBuilder(ctx, schema, "csv")
	headerLine := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, nil, fmt.Errorf("read csv: %w", err)
			}
			b.report.Lines++
			b.skip(RowSkipped{Line: perr.StartLine, Want: b.width, Reason: perr.Err.Error()})
			continue
		}

		line, _ := reader.FieldPos(0)
		if b.report.Lines == 0 {
			headerLine = line
			b.header(len(row))
			continue
		}
		b.add(line, line-headerLine, row)
	}
	b.report.Bytes = cr.Count()

	return b.finish()
}

// builder accumulates records from positional string rows.
type builder struct {
	ctx     context.Context
	schema  facet.Schema
	width   int
	records []facet.Record
	report  *Report
}

func newBuilder(ctx context.Context, schema facet.Schema, format string) *builder {
	return &builder{
		ctx:    ctx,
		schema: schema,
		report: &Report{Format: format, Skipped: []RowSkipped{}},
	}
}

func (b *builder) header(width int) {
	b.report.Lines++
	b.width = width
}

// add appends a data row read from physical line, or skips it when its width
// does not match the header.
func (b *builder) add(line, id int, row []string) {
	b.report.Lines++
	if len(row) != b.width {
		b.skip(RowSkipped{Line: line, Got: len(row), Want: b.width})
		return
	}

	rec := facet.Record{ID: id, Values: make([]int, b.schema.Len())}
	rec.Number = b.cell(line, "number", row, 0)
	for i, d := range b.schema.Dimensions {
		rec.Values[i] = b.cell(line, d.Name, row, i+1)
	}
	b.records = append(b.records, rec)
}

func (b *builder) cell(line int, column string, row []string, pos int) int {
	if pos >= len(row) {
		return 0
	}
	v, exact := ParseValue(row[pos])
	if !exact {
		b.report.Coerced++
		logging.FromContext(b.ctx).Debug("value coerced",
			"line", line,
			"column", column,
			"raw", row[pos],
			"value", v,
		)
	}
	return v
}

func (b *builder) skip(s RowSkipped) {
	b.report.Skipped = append(b.report.Skipped, s)
	logging.FromContext(b.ctx).Warn("row skipped",
		"format", b.report.Format,
		"line", s.Line,
		"got", s.Got,
		"want", s.Want,
		"reason", s.Reason,
	)
}

func (b *builder) finish() (*facet.Dataset, *Report, error) {
	if b.report.Lines < 2 {
		return nil, nil, fmt.Errorf("%w: need a header and at least one data line, got %d line(s)",
			ErrMalformedInput, b.report.Lines)
	}

	ds, err := facet.NewDataset(b.schema, b.records)
	if err != nil {
		return nil, nil, err
	}
	b.report.Rows = ds.Len()

	logging.FromContext(b.ctx).Info("dataset parsed",
		"format", b.report.Format,
		"lines", b.report.Lines,
		"rows", b.report.Rows,
		"skipped", len(b.report.Skipped),
		"coerced", b.report.Coerced,
	)
	return ds, b.report, nil
}

// ParseValue converts a cell to a dimension value using leading-integer
// rules: surrounding whitespace and a sign are accepted, parsing stops at the
// first non-digit, and no digits at all yields 0. Negative results become 0.
// exact reports whether the cell was already a plain non-negative integer.
func ParseValue(s string) (v int, exact bool) {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n, true
	}

	t := strings.TrimLeft(s, " \t\r\n\v\f")
	neg := false
	if t != "" && (t[0] == '+' || t[0] == '-') {
		neg = t[0] == '-'
		t = t[1:]
	}

	end := 0
	for end < len(t) && t[end] >= '0' && t[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0, false
	}

	n, err := strconv.Atoi(t[:end])
	if err != nil {
		return 0, false
	}
	return n, false
}
