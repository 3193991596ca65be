// Command quakemap classifies a live earthquake feed against country
// boundaries and serves the result, or prints it once.
//
// Usage:
//
//	quakemap serve
//	quakemap report --feed-file data/mock/quakes_week.atom --top 5
//	quakemap validate --feed-file data/mock/quakes_week.atom
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quakemap",
	Short: "Earthquake feed land/ocean classifier",
	Long: `quakemap fetches an Atom earthquake feed, attributes each quake to the
first country boundary that contains it, and reports per-country counts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd(), newReportCmd(), newValidateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
