package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
)

// quoteSummaryResponse mirrors the quoteSummary envelope for the modules we
// request. Absent modules simply decode to nil.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistory *struct {
				Statements []incomeStatement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			SummaryDetail *struct {
				TrailingPE rawValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				PriceToBook rawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				ReturnOnEquity rawValue `json:"returnOnEquity"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type incomeStatement struct {
	EndDate      rawValue `json:"endDate"` // unix seconds
	DilutedEPS   rawValue `json:"dilutedEPS"`
	TotalRevenue rawValue `json:"totalRevenue"`
}

// FetchFundamentals fetches financial statements and valuation snapshot
// metrics for one ticker. A ticker with no statements or no snapshot still
// returns a well-formed payload with those parts absent; only transport and
// API errors are returned as errors, so the fetch layer can retry them.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (contracts.ProviderFundamentals, error) {
	var raw contracts.ProviderFundamentals

	fullURL := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=incomeStatementHistory,summaryDetail,defaultKeyStatistics,financialData",
		c.baseURL, url.PathEscape(ticker),
	)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return raw, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return raw, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return raw, fmt.Errorf("read response body failed: %w", err)
	}

	var parsed quoteSummaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return raw, fmt.Errorf("parse response failed: %w", err)
	}

	if parsed.QuoteSummary.Error != nil {
		return raw, fmt.Errorf("quoteSummary API error: %s", parsed.QuoteSummary.Error.Description)
	}

	if len(parsed.QuoteSummary.Result) == 0 {
		// Well-formed but empty: the caller treats this as missing data
		c.logger.WithField("ticker", ticker).Debug("Empty quoteSummary result")
		return raw, nil
	}
	result := parsed.QuoteSummary.Result[0]

	if result.IncomeStatementHistory != nil {
		for _, stmt := range result.IncomeStatementHistory.Statements {
			if stmt.EndDate.Raw == nil {
				continue
			}
			raw.Statements = append(raw.Statements, contracts.StatementRow{
				PeriodEnd:    time.Unix(int64(*stmt.EndDate.Raw), 0).UTC(),
				DilutedEPS:   stmt.DilutedEPS.Raw,
				TotalRevenue: stmt.TotalRevenue.Raw,
			})
		}
	}

	if result.SummaryDetail != nil || result.DefaultKeyStatistics != nil || result.FinancialData != nil {
		snap := &contracts.SnapshotMetrics{}
		if result.SummaryDetail != nil {
			snap.PER = result.SummaryDetail.TrailingPE.Raw
		}
		if result.DefaultKeyStatistics != nil {
			snap.PBR = result.DefaultKeyStatistics.PriceToBook.Raw
		}
		if result.FinancialData != nil {
			snap.ROE = result.FinancialData.ReturnOnEquity.Raw
		}
		raw.Snapshot = snap
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"statements": len(raw.Statements),
		"snapshot":   raw.Snapshot != nil,
	}).Debug("Fetched fundamentals")

	return raw, nil
}
