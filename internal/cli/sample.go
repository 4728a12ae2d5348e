package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

func newSampleCmd(o *options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write generated sample records as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := ingest.LoadSchema(o.schemaFile)
			if err != nil {
				return err
			}
			ds := ingest.GenerateSample(count, schema)
			return ingest.WriteCSV(cmd.OutOrStdout(), schema, ds.Records())
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", ingest.DefaultSampleSize, "number of records")
	return cmd
}
