package commands

import (
	"fmt"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/external/yahoo"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/report"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/universe"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/config"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/httputil"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// deps wires the full application graph for the CLI commands.
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	manager  *universe.Manager
	provider *yahoo.Client
	pipeline *analysis.Pipeline
	reporter *report.Writer
}

// rebuildPipeline recreates the pipeline after a config override.
func rebuildPipeline(d *deps) *analysis.Pipeline {
	return analysis.NewPipeline(d.cfg, d.manager, d.provider, d.log)
}

// initDeps loads configuration and builds the pipeline with its providers.
func initDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	// Universe scrape goes through the HTTP-level retry; per-ticker
	// retries for the provider are handled by the fetch pool instead.
	scrapeClient := httputil.NewWithTimeout(log, cfg.Fetch.Timeout).
		WithUserAgent(userAgent)

	providerClient := httputil.NewWithTimeout(log, cfg.Fetch.Timeout).
		DisableRetry().
		WithRateLimit(cfg.Fetch.RateLimit, 1).
		WithUserAgent(userAgent)

	manager := universe.NewManager(cfg.Universe, scrapeClient, log)
	provider := yahoo.NewClient(providerClient, log)
	pipeline := analysis.NewPipeline(cfg, manager, provider, log)
	reporter := report.NewWriter(cfg.Report.OutputDir, log)

	return &deps{
		cfg:      cfg,
		log:      log,
		manager:  manager,
		provider: provider,
		pipeline: pipeline,
		reporter: reporter,
	}, nil
}
