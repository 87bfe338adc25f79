package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jpxpred",
	Short: "TOPIX Core30/Large70 fundamental ranking and momentum analyzer",
	Long: `jpxpred ranks the TOPIX Core30 and Large70 constituents by
fundamental percentile scores (EPS growth, revenue growth, ROE, PER, PBR)
and computes price momentum for the top-ranked stocks.

Usage:
  go run ./cmd/jpxpred [command]

Examples:
  go run ./cmd/jpxpred analyze
  go run ./cmd/jpxpred universe show
  go run ./cmd/jpxpred api
  go run ./cmd/jpxpred scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
