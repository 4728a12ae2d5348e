package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crossfilter/internal/core"
	"github.com/JonMunkholm/crossfilter/internal/facet"
)

type rowsOutput struct {
	Source     string           `json:"source"`
	Records    int              `json:"records"`
	Filtered   int              `json:"filtered"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Selection  map[string][]int `json:"selection"`
	Rows       []map[string]int `json:"rows"`
}

func newRowsCmd(o *options) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Print a page of the filtered rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := o.session(cmd.Context())
			if err != nil {
				return err
			}

			sum := sess.Summary()
			p := sess.Page(page, size)

			if o.format == formatJSON {
				rows := make([]map[string]int, len(p.Rows))
				for i, r := range p.Rows {
					rows[i] = r.Fields(sum.Schema)
				}
				return writeJSON(cmd.OutOrStdout(), rowsOutput{
					Source:     sum.Source,
					Records:    sum.Rows,
					Filtered:   sum.Filtered,
					Page:       p.Number,
					TotalPages: p.TotalPages,
					Selection:  sum.Selection,
					Rows:       rows,
				})
			}
			return writeRowsText(cmd.OutOrStdout(), sum, p)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number (clamped to the last page)")
	cmd.Flags().IntVar(&size, "page-size", core.DefaultPageSize, "rows per page")
	return cmd
}

func writeRowsText(w io.Writer, sum core.Summary, p core.Page) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Interactive filtering with %d records, %d shown\n", sum.Rows, sum.Filtered)
	fmt.Fprintf(&b, "Page %d of %d\n", p.Number, p.TotalPages)

	fmt.Fprintf(&b, "%6s %8s", "id", "number")
	for _, name := range sum.Schema.Names() {
		fmt.Fprintf(&b, " %6s", name)
	}
	b.WriteByte('\n')

	for _, r := range p.Rows {
		writeRecord(&b, r)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRecord(b *strings.Builder, r facet.Record) {
	fmt.Fprintf(b, "%6d %8d", r.ID, r.Number)
	for _, v := range r.Values {
		fmt.Fprintf(b, " %6d", v)
	}
	b.WriteByte('\n')
}
