package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Manage the ticker universe",
	Long: `Manage the TOPIX Core30/Large70 ticker universe.

Subcommands:
  show     - print the current universe (cached or freshly scraped)
  refresh  - force a re-scrape of the constituent list

Example:
  go run ./cmd/jpxpred universe show
  go run ./cmd/jpxpred universe refresh`,
}

var (
	universeShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the current universe",
		RunE:  showUniverse,
	}

	universeRefreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Force a universe re-scrape",
		RunE:  refreshUniverse,
	}
)

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeShowCmd)
	universeCmd.AddCommand(universeRefreshCmd)
}

func showUniverse(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tickers, err := d.manager.Load(ctx)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	fmt.Printf("Universe: %d tickers\n\n", len(tickers))
	for _, ticker := range tickers {
		fmt.Println(ticker)
	}

	return nil
}

func refreshUniverse(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tickers, err := d.manager.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh universe: %w", err)
	}

	fmt.Printf("Universe refreshed: %d tickers cached at %s\n", len(tickers), d.cfg.Universe.CachePath)
	return nil
}
