// Package fundamentals turns raw provider payloads into fixed-schema records
// ready for scoring. Missing or partial data never produces an error here:
// it is flagged on the record so that downstream filtering stays auditable.
package fundamentals

import (
	"math"
	"sort"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Normalizer converts ProviderFundamentals into FundamentalRecords.
type Normalizer struct {
	years  int
	logger *logger.Logger
}

// NewNormalizer creates a normalizer that computes growth rates over the
// given number of years (requires years+1 fiscal periods of history).
func NewNormalizer(years int, log *logger.Logger) *Normalizer {
	return &Normalizer{
		years:  years,
		logger: log.WithField("module", "fundamentals"),
	}
}

// ChangeRate computes the simple change rate over the given number of years
// from a chronologically ascending series with nulls already removed. It
// returns nil when fewer than years+1 observations exist, or when the base
// value is exactly zero. The denominator uses the absolute base value so a
// negative base does not flip the sign of the rate.
func ChangeRate(values []float64, years int) *float64 {
	if len(values) < years+1 {
		return nil
	}

	past := values[len(values)-(years+1)]
	latest := values[len(values)-1]
	if past == 0 {
		return nil
	}

	rate := (latest - past) / math.Abs(past)
	return &rate
}

// Normalize builds the fixed-schema record for one ticker. A ticker whose
// statements are entirely unavailable still yields a record with the missing
// flag set, never a dropped key.
func (n *Normalizer) Normalize(ticker string, raw contracts.ProviderFundamentals) contracts.FundamentalRecord {
	rec := contracts.FundamentalRecord{Ticker: ticker}

	if len(raw.Statements) == 0 {
		rec.HasMissingData = true
		n.applySnapshot(&rec, raw.Snapshot)
		return rec
	}

	// Most recent period first for the recency check below
	rows := make([]contracts.StatementRow, len(raw.Statements))
	copy(rows, raw.Statements)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].PeriodEnd.After(rows[j].PeriodEnd)
	})

	rec.EPSGrowth = n.growthRate(rows, func(r contracts.StatementRow) *float64 { return r.DilutedEPS })
	rec.RevenueGrowth = n.growthRate(rows, func(r contracts.StatementRow) *float64 { return r.TotalRevenue })

	if metricAbsent(rows, func(r contracts.StatementRow) *float64 { return r.DilutedEPS }) ||
		metricAbsent(rows, func(r contracts.StatementRow) *float64 { return r.TotalRevenue }) {
		rec.HasMissingData = true
	}

	if recentGap(rows, func(r contracts.StatementRow) *float64 { return r.DilutedEPS }) ||
		recentGap(rows, func(r contracts.StatementRow) *float64 { return r.TotalRevenue }) {
		rec.HasMissingData = true
	}

	n.applySnapshot(&rec, raw.Snapshot)

	n.logger.WithFields(map[string]interface{}{
		"ticker":       ticker,
		"periods":      len(rows),
		"missing_data": rec.HasMissingData,
	}).Debug("Normalized fundamentals")

	return rec
}

// growthRate extracts one metric's non-null values in chronological order and
// computes its change rate.
func (n *Normalizer) growthRate(rows []contracts.StatementRow, metric func(contracts.StatementRow) *float64) *float64 {
	// rows are most-recent-first; walk backwards for ascending order
	values := make([]float64, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if v := metric(rows[i]); v != nil {
			values = append(values, *v)
		}
	}

	return ChangeRate(values, n.years)
}

// applySnapshot copies valuation metrics onto the record, flagging missing
// data when the snapshot or any of its values is absent.
func (n *Normalizer) applySnapshot(rec *contracts.FundamentalRecord, snap *contracts.SnapshotMetrics) {
	if snap == nil {
		rec.HasMissingData = true
		return
	}

	rec.PER = snap.PER
	rec.PBR = snap.PBR
	rec.ROE = snap.ROE

	if snap.PER == nil || snap.PBR == nil || snap.ROE == nil {
		rec.HasMissingData = true
	}
}

// metricAbsent reports whether a metric carries no value in any period,
// the equivalent of the whole statement column being missing.
func metricAbsent(rows []contracts.StatementRow, metric func(contracts.StatementRow) *float64) bool {
	for _, r := range rows {
		if metric(r) != nil {
			return false
		}
	}
	return true
}

// recentGap reports whether either of the two most recent periods is missing
// the metric. Fewer than two periods counts as a gap.
func recentGap(rows []contracts.StatementRow, metric func(contracts.StatementRow) *float64) bool {
	if len(rows) < 2 {
		return true
	}
	return metric(rows[0]) == nil || metric(rows[1]) == nil
}
