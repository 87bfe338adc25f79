package fundamentals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

func fp(v float64) *float64 { return &v }

func period(year int) time.Time {
	return time.Date(year, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestChangeRate(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		years  int
		want   *float64
	}{
		{
			name:   "insufficient history",
			values: []float64{100, 110, 120},
			years:  3,
			want:   nil,
		},
		{
			name:   "empty series",
			values: nil,
			years:  3,
			want:   nil,
		},
		{
			name:   "zero base value",
			values: []float64{0, 50, 80, 100},
			years:  3,
			want:   nil,
		},
		{
			name:   "simple growth",
			values: []float64{100, 110, 130, 150},
			years:  3,
			want:   fp(0.5),
		},
		{
			name:   "decline",
			values: []float64{200, 180, 160, 100},
			years:  3,
			want:   fp(-0.5),
		},
		{
			name: "negative base keeps sign of the move",
			// from -100 to 50: improved, so the rate must be positive
			values: []float64{-100, -50, 0.5, 50},
			years:  3,
			want:   fp(1.5),
		},
		{
			name:   "one year horizon",
			values: []float64{100, 120},
			years:  1,
			want:   fp(0.2),
		},
		{
			name:   "uses last years+1 observations of a longer series",
			values: []float64{5, 5, 100, 110, 130, 150},
			years:  3,
			want:   fp(0.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChangeRate(tt.values, tt.years)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func fullStatements() []contracts.StatementRow {
	return []contracts.StatementRow{
		{PeriodEnd: period(2022), DilutedEPS: fp(100), TotalRevenue: fp(1000)},
		{PeriodEnd: period(2023), DilutedEPS: fp(110), TotalRevenue: fp(1100)},
		{PeriodEnd: period(2024), DilutedEPS: fp(130), TotalRevenue: fp(1150)},
		{PeriodEnd: period(2025), DilutedEPS: fp(150), TotalRevenue: fp(1200)},
	}
}

func fullSnapshot() *contracts.SnapshotMetrics {
	return &contracts.SnapshotMetrics{PER: fp(15), PBR: fp(1.2), ROE: fp(0.11)}
}

func TestNormalizeComplete(t *testing.T) {
	n := NewNormalizer(3, logger.NewNop())

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: fullStatements(),
		Snapshot:   fullSnapshot(),
	})

	assert.Equal(t, "7203.T", rec.Ticker)
	assert.False(t, rec.HasMissingData)
	require.NotNil(t, rec.EPSGrowth)
	assert.InDelta(t, 0.5, *rec.EPSGrowth, 1e-9)
	require.NotNil(t, rec.RevenueGrowth)
	assert.InDelta(t, 0.2, *rec.RevenueGrowth, 1e-9)
	require.NotNil(t, rec.PER)
	assert.Equal(t, 15.0, *rec.PER)
	assert.True(t, rec.Complete())
}

func TestNormalizeSortsStatementsByPeriod(t *testing.T) {
	n := NewNormalizer(3, logger.NewNop())

	// Same data as the complete case, shuffled
	rows := fullStatements()
	rows[0], rows[3] = rows[3], rows[0]
	rows[1], rows[2] = rows[2], rows[1]

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: rows,
		Snapshot:   fullSnapshot(),
	})

	require.NotNil(t, rec.EPSGrowth)
	assert.InDelta(t, 0.5, *rec.EPSGrowth, 1e-9)
	assert.False(t, rec.HasMissingData)
}

func TestNormalizeEmptyStatements(t *testing.T) {
	n := NewNormalizer(3, logger.NewNop())

	rec := n.Normalize("9999.T", contracts.ProviderFundamentals{})

	assert.Equal(t, "9999.T", rec.Ticker)
	assert.True(t, rec.HasMissingData, "record must be produced and flagged, not dropped")
	assert.Nil(t, rec.EPSGrowth)
	assert.Nil(t, rec.RevenueGrowth)
	assert.Nil(t, rec.PER)
}

func TestNormalizeRecentGapFlags(t *testing.T) {
	n := NewNormalizer(3, logger.NewNop())

	rows := fullStatements()
	rows[3].DilutedEPS = nil // most recent period has no EPS

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: rows,
		Snapshot:   fullSnapshot(),
	})

	assert.True(t, rec.HasMissingData)
}

func TestNormalizeMissingMetricColumn(t *testing.T) {
	n := NewNormalizer(3, logger.NewNop())

	rows := fullStatements()
	for i := range rows {
		rows[i].TotalRevenue = nil
	}

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: rows,
		Snapshot:   fullSnapshot(),
	})

	assert.True(t, rec.HasMissingData)
	assert.Nil(t, rec.RevenueGrowth)
	require.NotNil(t, rec.EPSGrowth)
}

func TestNormalizeMissingSnapshot(t *testing.T) {
	n := NewNormalizer(3, logger.NewNop())

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: fullStatements(),
	})

	assert.True(t, rec.HasMissingData)
	assert.Nil(t, rec.PER)
	assert.Nil(t, rec.PBR)
	assert.Nil(t, rec.ROE)
}

func TestNormalizePartialSnapshot(t *testing.T) {
	n := NewNormalizer(3, logger.NewNop())

	snap := fullSnapshot()
	snap.ROE = nil

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: fullStatements(),
		Snapshot:   snap,
	})

	assert.True(t, rec.HasMissingData)
	require.NotNil(t, rec.PER)
	assert.Nil(t, rec.ROE)
}

func TestNormalizeShortHistoryIsNotFlagged(t *testing.T) {
	// Only two complete periods: growth cannot be computed over three years,
	// but nothing is missing in the recent data, so the flag stays false and
	// the scoring layer's null filter handles the exclusion.
	n := NewNormalizer(3, logger.NewNop())

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: []contracts.StatementRow{
			{PeriodEnd: period(2024), DilutedEPS: fp(100), TotalRevenue: fp(1000)},
			{PeriodEnd: period(2025), DilutedEPS: fp(120), TotalRevenue: fp(1100)},
		},
		Snapshot: fullSnapshot(),
	})

	assert.False(t, rec.HasMissingData)
	assert.Nil(t, rec.EPSGrowth)
	assert.False(t, rec.Complete())
}

func TestNormalizeGrowthSkipsInteriorNulls(t *testing.T) {
	n := NewNormalizer(2, logger.NewNop())

	rec := n.Normalize("7203.T", contracts.ProviderFundamentals{
		Statements: []contracts.StatementRow{
			{PeriodEnd: period(2021), DilutedEPS: fp(100), TotalRevenue: fp(1000)},
			{PeriodEnd: period(2022), DilutedEPS: nil, TotalRevenue: fp(1050)},
			{PeriodEnd: period(2023), DilutedEPS: fp(110), TotalRevenue: fp(1100)},
			{PeriodEnd: period(2024), DilutedEPS: fp(120), TotalRevenue: fp(1150)},
			{PeriodEnd: period(2025), DilutedEPS: fp(150), TotalRevenue: fp(1200)},
		},
		Snapshot: fullSnapshot(),
	})

	// EPS non-null series is [100, 110, 120, 150]; 2-year rate = (150-110)/110
	require.NotNil(t, rec.EPSGrowth)
	assert.InDelta(t, 40.0/110.0, *rec.EPSGrowth, 1e-9)
	// The interior null is outside the two most recent periods
	assert.False(t, rec.HasMissingData)
}
