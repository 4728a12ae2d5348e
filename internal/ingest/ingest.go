// Package ingest turns external input into facet datasets and back.
//
// CSV and XLSX sources share one set of row rules (see ParseCSV). Every
// source passes through the BOM and UTF-8 readers in streaming.go first.
// GenerateSample builds the residue-class dataset a new session starts with.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/crossfilter/internal/facet"
)

// Format identifies an accepted input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a file name to its format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, name)
	}
}

// Parse reads r in the given format.
func Parse(ctx context.Context, format Format, r io.Reader, schema facet.Schema) (*facet.Dataset, *Report, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(ctx, r, schema)
	case FormatXLSX:
		return ParseXLSX(ctx, r, schema)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
