package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis pass",
	Long: `Runs the full analysis pipeline once:

- Load the TOPIX Core30/Large70 universe (cached or scraped)
- Fetch fundamentals for every ticker concurrently
- Rank by weighted percentile scores
- Compute momentum for the top-ranked stocks
- Write the HTML report

Example:
  go run ./cmd/jpxpred analyze
  go run ./cmd/jpxpred analyze --top 10`,
	RunE: runAnalyze,
}

var analyzeTopN int

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", 0, "override the number of top-ranked stocks")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}

	if analyzeTopN > 0 {
		d.cfg.Analysis.TopN = analyzeTopN
		d.pipeline = rebuildPipeline(d)
	}

	// Ctrl+C cancels the in-flight fetches
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := d.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	path, err := d.reporter.Write(result)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printResult(result, d.cfg.Analysis.TopN)
	fmt.Printf("\nReport written to %s\n", path)

	return nil
}

func printResult(result *analysis.Result, topN int) {
	fmt.Printf("\nUniverse: %d tickers (%d failed)\n", result.Universe, result.Failed)
	if !result.AsOf.IsZero() {
		fmt.Printf("Prices as of %s\n", result.AsOf.Format("2006-01-02"))
	}

	momentumByTicker := make(map[string]contracts.MomentumRecord, len(result.Momentum))
	for _, m := range result.Momentum {
		momentumByTicker[m.Ticker] = m
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "\n#\tTICKER\tSCORE")
	for _, h := range contracts.Horizons {
		fmt.Fprintf(w, "\t%s", h)
	}
	fmt.Fprintln(w)

	for i, s := range result.Scores {
		if i >= topN {
			break
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f", i+1, s.Ticker, s.ScoreTotal)

		m, ok := momentumByTicker[s.Ticker]
		for _, h := range contracts.Horizons {
			cell := "-"
			if ok {
				if score := m.Horizons[h].Score; score != nil {
					cell = fmt.Sprintf("%+.2f%%", *score*100)
				}
			}
			fmt.Fprintf(w, "\t%s", cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
