// Package momentum computes trailing returns and dividend-blended momentum
// scores over fixed trading-day horizons.
package momentum

import (
	"sort"
	"time"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Calculator derives momentum records from per-ticker price bars.
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a momentum calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log.WithField("module", "momentum"),
	}
}

// Compute builds one MomentumRecord per ticker whose bar series contains the
// asOf trading day. A ticker without a bar on asOf is skipped entirely rather
// than extrapolated from stale data. Input bars may arrive in any order; the
// calculator sorts a copy and never mutates the caller's slices. Output is
// ordered by ticker for determinism.
func (c *Calculator) Compute(bars map[string][]contracts.PriceBar, asOf time.Time) []contracts.MomentumRecord {
	tickers := make([]string, 0, len(bars))
	for ticker := range bars {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	records := make([]contracts.MomentumRecord, 0, len(tickers))
	skipped := 0
	for _, ticker := range tickers {
		rec, ok := c.computeOne(ticker, bars[ticker], asOf)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	c.logger.WithFields(map[string]interface{}{
		"as_of":   asOf.Format("2006-01-02"),
		"tickers": len(bars),
		"skipped": skipped,
	}).Info("Momentum calculation completed")

	return records
}

// computeOne calculates all horizons for a single ticker. The bool result is
// false when the ticker has no bar on the asOf date.
func (c *Calculator) computeOne(ticker string, series []contracts.PriceBar, asOf time.Time) (contracts.MomentumRecord, bool) {
	sorted := make([]contracts.PriceBar, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// The as-of bar anchors every window; everything after it is ignored.
	anchor := -1
	for i, bar := range sorted {
		if sameDay(bar.Date, asOf) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		c.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"as_of":  asOf.Format("2006-01-02"),
		}).Debug("No bar on as-of date, skipping ticker")
		return contracts.MomentumRecord{}, false
	}
	window := sorted[:anchor+1]

	rec := contracts.MomentumRecord{
		Ticker:   ticker,
		Horizons: make(map[contracts.Horizon]contracts.HorizonMomentum, len(contracts.Horizons)),
	}

	for _, horizon := range contracts.Horizons {
		rec.Horizons[horizon] = c.horizonMomentum(window, contracts.HorizonTradingDays[horizon])
	}

	return rec, true
}

// horizonMomentum computes the trailing return and momentum score for one
// horizon of n trading days. The score adds the window's summed dividends as
// a simple yield on the base price; the dividend is deliberately not
// reinvested, so this is not a total-return figure.
func (c *Calculator) horizonMomentum(window []contracts.PriceBar, n int) contracts.HorizonMomentum {
	if len(window) < n+1 {
		return contracts.HorizonMomentum{}
	}

	current := window[len(window)-1].AdjClose
	base := window[len(window)-1-n].AdjClose

	ret := (current - base) / base

	var divSum float64
	for _, bar := range window[len(window)-1-n:] {
		divSum += bar.Dividend
	}

	divYield := 0.0
	if base > 0 {
		divYield = divSum / base
	}

	score := ret + divYield
	return contracts.HorizonMomentum{Return: &ret, Score: &score}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
