package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/crossfilter/internal/facet"
)

// exportFlushInterval is how many rows are buffered before the CSV writer flushes.
const exportFlushInterval = 1000

// Header returns the export column names: number, then each dimension.
// Files written with it read back through ParseCSV and ParseXLSX unchanged.
func Header(schema facet.Schema) []string {
	return append([]string{"number"}, schema.Names()...)
}

// WriteCSV writes rows as CSV with a header line. If w has a Flush method
// (http.Flusher), it is called after each batch of rows.
func WriteCSV(w io.Writer, schema facet.Schema, rows []facet.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(schema)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, schema.Len()+1)
	for i, r := range rows {
		record[0] = strconv.Itoa(r.Number)
		for d, v := range r.Values {
			record[d+1] = strconv.Itoa(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r.ID, err)
		}

		if (i+1)%exportFlushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if f, ok := w.(interface{ Flush() }); ok {
				f.Flush()
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes rows to the first sheet of a new workbook.
func WriteXLSX(w io.Writer, schema facet.Schema, rows []facet.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := Header(schema)
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cells := make([]interface{}, 0, len(r.Values)+1)
		cells = append(cells, r.Number)
		for _, v := range r.Values {
			cells = append(cells, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", r.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
