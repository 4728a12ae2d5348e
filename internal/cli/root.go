// Package cli implements facetctl, a command-line front end to the filter engine.
// It loads a dataset locally, applies --filter selections and prints rows or
// options; no server is involved.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crossfilter/internal/core"
	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
	"github.com/JonMunkholm/crossfilter/internal/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// options are the flags shared by every command.
type options struct {
	file           string
	schemaFile     string
	filters        []string
	format         string
	logLevel       string
	sampleSize     int
	indexThreshold int
}

// NewRootCmd builds the facetctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "facetctl",
		Short:         "Cross-filter numeric CSV data from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, formatText))
			if opts.format != formatText && opts.format != formatJSON {
				return fmt.Errorf("unknown --format %q (want text or json)", opts.format)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.file, "file", "f", "", "CSV or XLSX file to load (default: generated sample)")
	pf.StringVar(&opts.schemaFile, "schema", "", "YAML file describing the filter dimensions")
	pf.StringArrayVar(&opts.filters, "filter", nil, "selection as dim=v1,v2 (repeatable)")
	pf.StringVarP(&opts.format, "format", "o", formatText, "output format: text or json")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	pf.IntVar(&opts.sampleSize, "sample-size", ingest.DefaultSampleSize, "records in the generated sample when no --file is given")
	pf.IntVar(&opts.indexThreshold, "index-threshold", 50000, "use the bitmap index above this many records (0 disables)")

	root.AddCommand(newRowsCmd(opts), newOptionsCmd(opts), newSampleCmd(opts))
	return root
}

// Execute runs the command tree and reports errors on stderr.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		fmt.Fprintln(cmd.ErrOrStderr(), core.FormatUserError(err))
		return 1
	}
	return 0
}

// session loads the dataset and applies the --filter flags.
func (o *options) session(ctx context.Context) (*core.Session, error) {
	schema, err := ingest.LoadSchema(o.schemaFile)
	if err != nil {
		return nil, err
	}

	ds, source, err := o.load(ctx, schema)
	if err != nil {
		return nil, err
	}

	sess := core.NewSession("cli", ds, source, o.indexThreshold, core.NewMetrics(nil))
	for _, f := range o.filters {
		dim, values, err := parseFilter(f)
		if err != nil {
			return nil, err
		}
		if err := sess.SetFilter(dim, values); err != nil {
			return nil, fmt.Errorf("filter %q: %w", f, err)
		}
	}
	return sess, nil
}

func (o *options) load(ctx context.Context, schema facet.Schema) (*facet.Dataset, string, error) {
	if o.file == "" {
		return ingest.GenerateSample(o.sampleSize, schema), "sample", nil
	}

	format, err := ingest.DetectFormat(o.file)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(o.file)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	ds, _, err := ingest.Parse(ctx, format, f, schema)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", o.file, err)
	}
	return ds, o.file, nil
}

// parseFilter splits "mod3=1,2" into a dimension and its values.
// "mod3=" selects nothing, which leaves the dimension unrestricted.
func parseFilter(s string) (string, []int, error) {
	dim, list, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(dim) == "" {
		return "", nil, fmt.Errorf("filter %q: want dim=v1,v2", s)
	}

	values := []int{}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return "", nil, fmt.Errorf("filter %q: %w: %s", s, facet.ErrInvalidValue, part)
		}
		values = append(values, v)
	}
	return strings.TrimSpace(dim), values, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
