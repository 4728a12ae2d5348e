package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crossfilter/internal/core"
)

type optionsOutput struct {
	Options   map[string][]int `json:"options"`
	Selection map[string][]int `json:"selection"`
}

func newOptionsCmd(o *options) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print the values still available in each dimension",
		Long: `Print, for every dimension, the values that appear in rows matching the
other dimensions' selections. --search only narrows what is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := o.session(cmd.Context())
			if err != nil {
				return err
			}

			opts := sess.Options(search)
			sel := sess.Selection().Map()
			if o.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), optionsOutput{Options: opts, Selection: sel})
			}

			var b strings.Builder
			for _, name := range sess.Schema().Names() {
				fmt.Fprintf(&b, "%s: %s", name, joinInts(opts[name]))
				if selected := sel[name]; len(selected) > 0 {
					fmt.Fprintf(&b, "  selected: %s", strings.Join(core.Badges(selected), " "))
				}
				b.WriteByte('\n')
			}
			_, err = io.WriteString(cmd.OutOrStdout(), b.String())
			return err
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only print options containing this text")
	return cmd
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "(none)"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
