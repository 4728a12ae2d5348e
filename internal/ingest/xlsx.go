package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/crossfilter/internal/facet"
)

// ParseXLSX reads the first sheet of an Excel workbook with the same rules as
// ParseCSV. Spreadsheets drop trailing empty cells, so a row shorter than the
// header is padded with zeros instead of skipped. Longer rows are skipped.
// Fully empty rows are ignored.
func ParseXLSX(ctx context.Context, r io.Reader, schema facet.Schema) (*facet.Dataset, *Report, error) {
	cr := NewCountingReader(r, 0)

	f, err := excelize.OpenReader(cr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open workbook: %v", ErrMalformedInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedInput)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	b := newBuilder(ctx, schema, "xlsx")
	headerLine := 0
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if len(row) == 0 {
			continue
		}

		line := i + 1
		if b.report.Lines == 0 {
			headerLine = line
			b.header(len(row))
			continue
		}
		if len(row) < b.width {
			padded := make([]string, b.width)
			copy(padded, row)
			row = padded
		}
		b.add(line, line-headerLine, row)
	}
	b.report.Bytes = cr.Count()

	return b.finish()
}
