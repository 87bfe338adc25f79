package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
)

// chartResponse mirrors the v8 chart endpoint. OHLCV arrays are positionally
// aligned with the timestamp array and may contain nulls on holidays.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
			Events *struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrices fetches daily price bars with dividend events for one ticker.
// Null bars (market holidays) are dropped and the result is sorted ascending
// by date. A ticker with no bars in the range returns an empty slice, not an
// error.
func (c *Client) FetchPrices(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PriceBar, error) {
	fullURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div",
		c.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix(),
	)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s", parsed.Chart.Error.Description)
	}

	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Timestamp) == 0 {
		c.logger.WithField("ticker", ticker).Debug("Empty chart result")
		return []contracts.PriceBar{}, nil
	}
	result := parsed.Chart.Result[0]

	if len(result.Indicators.Quote) == 0 {
		return []contracts.PriceBar{}, nil
	}
	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	// Dividends keyed by trading date for constant-time lookup
	dividends := make(map[string]float64)
	if result.Events != nil {
		for _, div := range result.Events.Dividends {
			date := time.Unix(div.Date, 0).UTC().Format("2006-01-02")
			dividends[date] += div.Amount
		}
	}

	bars := make([]contracts.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := at(quote.Close, i)
		if closePrice == nil {
			continue // holiday / null bar
		}

		date := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		bar := contracts.PriceBar{
			Date:     date,
			Close:    *closePrice,
			AdjClose: *closePrice,
			Dividend: dividends[date.Format("2006-01-02")],
		}
		if v := at(quote.Open, i); v != nil {
			bar.Open = *v
		}
		if v := at(quote.High, i); v != nil {
			bar.High = *v
		}
		if v := at(quote.Low, i); v != nil {
			bar.Low = *v
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		if v := at(adjClose, i); v != nil {
			bar.AdjClose = *v
		}

		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(bars),
	}).Debug("Fetched prices")

	return bars, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
