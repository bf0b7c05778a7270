package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <usi>",
	Short: "Download a spectrum from the PROXI repositories and print it as a peak list",
	Long: `Query every configured PROXI repository in parallel and print the spectrum of
the first repository, in priority order, that returns it.

The output is a peak list, sorted by m/z, that the match and annotate commands
read back.`,
	Example: `  peakmatch fetch mzspec:PXD000561:Adult_Frontalcortex_bRP_Elite_85_f09:scan:17555 > spectrum.txt`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		if !isUSI(source) {
			return fmt.Errorf("not a USI: %q", source)
		}
		spec, err := loadSpectrum(cmd.Context(), source, "", "")
		if err != nil {
			return err
		}
		if !spec.ArePeaksSorted() {
			spec.SortPeaks()
		}
		if jsonOutput {
			return printJSON(os.Stdout, spec)
		}
		printPeaks(os.Stdout, spec)
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the spectrum as JSON")
}
