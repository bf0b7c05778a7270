package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
)

var ionsCmd = &cobra.Command{
	Use:   "ions",
	Short: "List the fragment ion types and whether annotation supports them",
	RunE: func(cmd *cobra.Command, args []string) error {
		types := annotate.IonTypes()
		if jsonOutput {
			return printJSON(os.Stdout, types)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "label\tterminus\tsupported\tcolor")
		for _, t := range types {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", t.Label, t.Terminus, t.Supported, t.Color)
		}
		return tw.Flush()
	},
}

func init() {
	ionsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the table as JSON")
}
