package contracts

import "time"

// StatementRow is one fiscal period of income-statement data for a ticker.
// Pointer fields are nil when the provider omitted the value for that period.
type StatementRow struct {
	PeriodEnd    time.Time `json:"period_end"`
	DilutedEPS   *float64  `json:"diluted_eps"`
	TotalRevenue *float64  `json:"total_revenue"`
}

// SnapshotMetrics are the point-in-time valuation metrics for a ticker.
type SnapshotMetrics struct {
	PER *float64 `json:"per"` // trailing price/earnings
	PBR *float64 `json:"pbr"` // price/book
	ROE *float64 `json:"roe"` // return on equity
}

// ProviderFundamentals is the raw per-ticker payload from the fundamentals
// provider. An empty Statements slice means the statement table was absent;
// a nil Snapshot means the valuation metrics were unavailable. Both are
// legitimate fetch results, not errors.
type ProviderFundamentals struct {
	Statements []StatementRow   `json:"statements"`
	Snapshot   *SnapshotMetrics `json:"snapshot"`
}

// FundamentalRecord is the fixed-schema normalized row for one ticker.
// Nil fields mean the underlying value was absent or could not be computed.
type FundamentalRecord struct {
	Ticker         string   `json:"ticker"`
	EPSGrowth      *float64 `json:"eps_growth"`
	RevenueGrowth  *float64 `json:"revenue_growth"`
	PER            *float64 `json:"per"`
	PBR            *float64 `json:"pbr"`
	ROE            *float64 `json:"roe"`
	HasMissingData bool     `json:"has_missing_data"`
}

// Complete reports whether every metric needed for scoring carries a value.
func (r FundamentalRecord) Complete() bool {
	return r.EPSGrowth != nil && r.RevenueGrowth != nil &&
		r.PER != nil && r.PBR != nil && r.ROE != nil
}

// ScoredRecord extends a FundamentalRecord with per-metric percentile scores
// and the weighted total. Every score lies in [0, 1].
type ScoredRecord struct {
	FundamentalRecord

	ScoreEPS   float64 `json:"score_eps"`
	ScoreRev   float64 `json:"score_rev"`
	ScorePER   float64 `json:"score_per"`
	ScorePBR   float64 `json:"score_pbr"`
	ScoreROE   float64 `json:"score_roe"`
	ScoreTotal float64 `json:"score_total"`
}
