package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "List the modification names accepted by --mods",
	Long: `List the built-in modifications and those loaded from unimod_custom.csv in the
working directory, with their monoisotopic mass shifts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modDB := loadModDatabase()
		names := modDB.Names()

		if jsonOutput {
			out := make(map[string]float64, len(names))
			for _, name := range names {
				out[name], _ = modDB.GetMass(name)
			}
			return printJSON(os.Stdout, out)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "name\tmass shift")
		for _, name := range names {
			mass, _ := modDB.GetMass(name)
			fmt.Fprintf(tw, "%s\t%+.6f\n", name, mass)
		}
		return tw.Flush()
	},
}

func init() {
	modsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the modifications as JSON")
}
