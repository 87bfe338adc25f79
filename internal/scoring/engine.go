// Package scoring ranks fundamental records by blended percentile scores.
package scoring

import (
	"sort"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Weights defines the per-metric weights for the composite score.
type Weights struct {
	EPS     float64
	Revenue float64
	ROE     float64
	PER     float64
	PBR     float64
}

// DefaultWeights returns equal weighting across all five metrics.
func DefaultWeights() Weights {
	return Weights{EPS: 1.0, Revenue: 1.0, ROE: 1.0, PER: 1.0, PBR: 1.0}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.EPS + w.Revenue + w.ROE + w.PER + w.PBR
}

// Engine computes percentile-rank scores and the weighted total ranking.
type Engine struct {
	weights Weights
	logger  *logger.Logger
}

// NewEngine creates a scoring engine with the given weights.
func NewEngine(weights Weights, log *logger.Logger) *Engine {
	return &Engine{
		weights: weights,
		logger:  log.WithField("module", "scoring"),
	}
}

// Score filters out unusable records, assigns each surviving record a
// percentile-rank score per metric and a weighted total, and returns the
// table sorted by total score descending. Ties keep their original fetch
// order. Growth and profitability metrics score ascending (higher is
// better); the valuation multiples PER and PBR score descending (a smaller
// multiple is cheaper).
func (e *Engine) Score(records []contracts.FundamentalRecord) []contracts.ScoredRecord {
	// Stage one: drop records the normalizer flagged.
	// Stage two: drop records where any metric is still null.
	usable := make([]contracts.FundamentalRecord, 0, len(records))
	droppedFlagged, droppedNull := 0, 0
	for _, rec := range records {
		if rec.HasMissingData {
			droppedFlagged++
			continue
		}
		if !rec.Complete() {
			droppedNull++
			continue
		}
		usable = append(usable, rec)
	}

	scoreEPS := percentileRanks(column(usable, func(r contracts.FundamentalRecord) float64 { return *r.EPSGrowth }), true)
	scoreRev := percentileRanks(column(usable, func(r contracts.FundamentalRecord) float64 { return *r.RevenueGrowth }), true)
	scoreROE := percentileRanks(column(usable, func(r contracts.FundamentalRecord) float64 { return *r.ROE }), true)
	scorePER := percentileRanks(column(usable, func(r contracts.FundamentalRecord) float64 { return *r.PER }), false)
	scorePBR := percentileRanks(column(usable, func(r contracts.FundamentalRecord) float64 { return *r.PBR }), false)

	totalWeight := e.weights.Sum()
	scored := make([]contracts.ScoredRecord, len(usable))
	for i, rec := range usable {
		s := contracts.ScoredRecord{
			FundamentalRecord: rec,
			ScoreEPS:          scoreEPS[i],
			ScoreRev:          scoreRev[i],
			ScoreROE:          scoreROE[i],
			ScorePER:          scorePER[i],
			ScorePBR:          scorePBR[i],
		}
		weightedSum := s.ScoreEPS*e.weights.EPS +
			s.ScoreRev*e.weights.Revenue +
			s.ScoreROE*e.weights.ROE +
			s.ScorePER*e.weights.PER +
			s.ScorePBR*e.weights.PBR
		s.ScoreTotal = weightedSum / totalWeight
		scored[i] = s
	}

	// Stable: equal totals keep fetch order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ScoreTotal > scored[j].ScoreTotal
	})

	e.logger.WithFields(map[string]interface{}{
		"input":           len(records),
		"dropped_flagged": droppedFlagged,
		"dropped_null":    droppedNull,
		"scored":          len(scored),
	}).Info("Scoring completed")

	return scored
}

func column(records []contracts.FundamentalRecord, metric func(contracts.FundamentalRecord) float64) []float64 {
	values := make([]float64, len(records))
	for i, rec := range records {
		values[i] = metric(rec)
	}
	return values
}

// percentileRanks assigns each value its fractional rank in (0, 1], with tied
// values sharing the average rank of their tie group. With ascending=true a
// larger value ranks higher; with ascending=false a smaller value ranks
// higher. A single-element population ranks 1.0 either way.
func percentileRanks(values []float64, ascending bool) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}

	for i, v := range values {
		below, equal := 0, 0
		for _, other := range values {
			switch {
			case other == v:
				equal++
			case ascending && other < v:
				below++
			case !ascending && other > v:
				below++
			}
		}
		// Average rank of the tie group, as a fraction of the population
		avgRank := float64(below) + (float64(equal)+1)/2
		ranks[i] = avgRank / float64(n)
	}

	return ranks
}
