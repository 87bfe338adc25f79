// Package analysis orchestrates the full run: universe, fundamentals fetch,
// scoring, and the momentum pass over the top-ranked names.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/fetcher"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/fundamentals"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/momentum"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/scoring"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/config"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

var (
	// ErrNoFundamentals is returned when not a single ticker produced a
	// fundamental record.
	ErrNoFundamentals = errors.New("no fundamental data retrieved")

	// ErrNoScoredRecords is returned when every record was filtered out of
	// scoring, leaving nothing to rank.
	ErrNoScoredRecords = errors.New("no records survived scoring filters")
)

// UniverseSource supplies the ticker universe for a run.
type UniverseSource interface {
	Load(ctx context.Context) ([]string, error)
}

// Provider supplies per-ticker fundamentals and price history.
type Provider interface {
	FetchFundamentals(ctx context.Context, ticker string) (contracts.ProviderFundamentals, error)
	FetchPrices(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PriceBar, error)
}

// Result is the output of one full analysis run: the complete ranking and
// the momentum table for the top-ranked names. The two tables join on
// ticker; tickers that were dropped from the momentum pass simply have no
// momentum row.
type Result struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	AsOf        time.Time                 `json:"as_of"`
	Universe    int                       `json:"universe_size"`
	Failed      int                       `json:"failed_tickers"`
	Scores      []contracts.ScoredRecord  `json:"scores"`
	Momentum    []contracts.MomentumRecord `json:"momentum"`
}

// Pipeline wires the components of one analysis run together.
type Pipeline struct {
	universe   UniverseSource
	provider   Provider
	normalizer *fundamentals.Normalizer
	engine     *scoring.Engine
	calculator *momentum.Calculator

	fetchCfg config.FetchConfig
	topN     int
	lookback time.Duration

	logger *logger.Logger
	now    func() time.Time
}

// NewPipeline builds a pipeline from configuration.
func NewPipeline(cfg *config.Config, universe UniverseSource, provider Provider, log *logger.Logger) *Pipeline {
	weights := scoring.Weights{
		EPS:     cfg.Analysis.WeightEPS,
		Revenue: cfg.Analysis.WeightRevenue,
		ROE:     cfg.Analysis.WeightROE,
		PER:     cfg.Analysis.WeightPER,
		PBR:     cfg.Analysis.WeightPBR,
	}

	return &Pipeline{
		universe:   universe,
		provider:   provider,
		normalizer: fundamentals.NewNormalizer(cfg.Analysis.Years, log),
		engine:     scoring.NewEngine(weights, log),
		calculator: momentum.NewCalculator(log),
		fetchCfg:   cfg.Fetch,
		topN:       cfg.Analysis.TopN,
		lookback:   time.Duration(cfg.Analysis.PriceLookbackDays) * 24 * time.Hour,
		logger:     log.WithField("module", "analysis"),
		now:        time.Now,
	}
}

// Run executes the full pipeline. A single ticker's failure shrinks the
// population but never aborts the run; only an empty universe or a total
// absence of data is fatal.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	tickers, err := p.universe.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	p.logger.WithField("tickers", len(tickers)).Info("Starting analysis run")

	records, failed, err := p.fetchFundamentals(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoFundamentals
	}

	scored := p.engine.Score(records)
	if len(scored) == 0 {
		return nil, ErrNoScoredRecords
	}

	result := &Result{
		GeneratedAt: p.now(),
		Universe:    len(tickers),
		Failed:      failed,
		Scores:      scored,
	}

	topN := p.topN
	if topN > len(scored) {
		topN = len(scored)
	}
	top := make([]string, topN)
	for i := 0; i < topN; i++ {
		top[i] = scored[i].Ticker
	}

	bars, asOf := p.fetchPrices(ctx, top)
	if len(bars) == 0 {
		p.logger.Warn("No price data retrieved, skipping momentum pass")
		return result, nil
	}

	result.AsOf = asOf
	result.Momentum = p.calculator.Compute(bars, asOf)

	p.logger.WithFields(map[string]interface{}{
		"scored":   len(result.Scores),
		"momentum": len(result.Momentum),
		"as_of":    asOf.Format("2006-01-02"),
	}).Info("Analysis run completed")

	return result, nil
}

// fetchFundamentals runs the concurrent fundamentals fetch and normalizes
// every successful outcome, preserving the universe order so that later
// tie-breaks stay deterministic.
func (p *Pipeline) fetchFundamentals(ctx context.Context, tickers []string) ([]contracts.FundamentalRecord, int, error) {
	outcomes, err := fetcher.Run(ctx, tickers, p.provider.FetchFundamentals, fetcher.Config{
		MaxConcurrency: p.fetchCfg.Concurrency,
		MaxRetries:     p.fetchCfg.MaxRetries,
		RetryDelay:     p.fetchCfg.RetryDelay,
		OnProgress:     p.progressLogger("fundamentals"),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetch fundamentals: %w", err)
	}

	records := make([]contracts.FundamentalRecord, 0, len(tickers))
	failed := 0
	for _, ticker := range tickers {
		outcome, ok := outcomes[ticker]
		if !ok || !outcome.OK() {
			failed++
			if ok {
				p.logger.WithError(outcome.Err).WithFields(map[string]interface{}{
					"ticker":   ticker,
					"attempts": outcome.Attempts,
				}).Warn("Dropping ticker after failed fundamentals fetch")
			}
			continue
		}
		records = append(records, p.normalizer.Normalize(ticker, outcome.Value))
	}

	return records, failed, nil
}

// fetchPrices runs the concurrent price fetch for the top-ranked tickers and
// returns the per-ticker bars plus the latest trading date seen anywhere.
func (p *Pipeline) fetchPrices(ctx context.Context, tickers []string) (map[string][]contracts.PriceBar, time.Time) {
	to := p.now()
	from := to.Add(-p.lookback)

	outcomes, err := fetcher.Run(ctx, tickers,
		func(ctx context.Context, ticker string) ([]contracts.PriceBar, error) {
			return p.provider.FetchPrices(ctx, ticker, from, to)
		},
		fetcher.Config{
			MaxConcurrency: p.fetchCfg.Concurrency,
			MaxRetries:     p.fetchCfg.MaxRetries,
			RetryDelay:     p.fetchCfg.RetryDelay,
			OnProgress:     p.progressLogger("prices"),
		})
	if err != nil {
		p.logger.WithError(err).Warn("Price fetch aborted")
		return nil, time.Time{}
	}

	bars := make(map[string][]contracts.PriceBar)
	var asOf time.Time
	for _, outcome := range outcomes {
		if !outcome.OK() {
			p.logger.WithError(outcome.Err).WithField("ticker", outcome.Key).Warn("Dropping ticker after failed price fetch")
			continue
		}
		if len(outcome.Value) == 0 {
			continue
		}
		bars[outcome.Key] = outcome.Value
		for _, bar := range outcome.Value {
			if bar.Date.After(asOf) {
				asOf = bar.Date
			}
		}
	}

	return bars, asOf
}

func (p *Pipeline) progressLogger(phase string) func(done, total int) {
	return func(done, total int) {
		p.logger.WithFields(map[string]interface{}{
			"phase": phase,
			"done":  done,
			"total": total,
		}).Debug("Fetch progress")
	}
}
