// Package yahoo implements the fundamentals and price providers against the
// Yahoo Finance public endpoints. Exchange-qualified tickers (e.g. "7203.T")
// pass through unchanged.
package yahoo

import (
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/httputil"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Client handles communication with Yahoo Finance.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "yahoo"),
		baseURL:    "https://query1.finance.yahoo.com",
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// rawValue is Yahoo's number envelope: {"raw": 12.3, "fmt": "12.30"}.
// Raw stays nil when the field is present but empty.
type rawValue struct {
	Raw *float64 `json:"raw"`
}
