// PeakMatch - peak matching and fragment annotation for MS/MS spectra
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/PeakMatch/cmd/peakmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
