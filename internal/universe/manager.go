// Package universe discovers and caches the TOPIX 100 ticker universe.
// Constituents (Core30 + Large70) are scraped from the JPX listed-issues
// page and cached locally; the scrape only reruns when the cache goes stale.
package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/config"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/httputil"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Manager loads the ticker universe, refreshing the cached list from JPX
// when it is missing or older than the configured interval.
type Manager struct {
	cfg        config.UniverseConfig
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewManager creates a universe manager.
func NewManager(cfg config.UniverseConfig, httpClient *httputil.Client, log *logger.Logger) *Manager {
	return &Manager{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log.WithField("module", "universe"),
	}
}

// Load returns the ticker universe. A fresh cache is used as-is; a stale or
// missing cache triggers a refresh from JPX. When the refresh fails but a
// stale cache exists, the stale list is used with a warning rather than
// aborting the run.
func (m *Manager) Load(ctx context.Context) ([]string, error) {
	if !m.needsRefresh() {
		return m.readCache()
	}

	m.logger.Info("Ticker universe cache is stale, refreshing from JPX")
	tickers, err := m.Refresh(ctx)
	if err == nil {
		return tickers, nil
	}

	if _, statErr := os.Stat(m.cfg.CachePath); statErr == nil {
		m.logger.WithError(err).Warn("Universe refresh failed, falling back to stale cache")
		return m.readCache()
	}

	return nil, fmt.Errorf("universe refresh failed with no cache to fall back to: %w", err)
}

// Refresh scrapes the constituent list from JPX and rewrites the cache.
func (m *Manager) Refresh(ctx context.Context) ([]string, error) {
	resp, err := m.httpClient.Get(ctx, m.cfg.ListURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listed issues page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tickers, err := parseConstituents(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listed issues page: %w", err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no TOPIX 100 constituents found, page format may have changed")
	}

	if err := m.writeCache(tickers); err != nil {
		return nil, fmt.Errorf("write ticker cache: %w", err)
	}

	m.logger.WithField("count", len(tickers)).Info("Ticker universe refreshed")
	return tickers, nil
}

// needsRefresh reports whether the cache is missing or past its refresh
// interval.
func (m *Manager) needsRefresh() bool {
	info, err := os.Stat(m.cfg.CachePath)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > m.cfg.RefreshInterval
}

func (m *Manager) readCache() ([]string, error) {
	f, err := os.Open(m.cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open ticker cache: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ticker cache: %w", err)
	}

	tickers := make([]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		if row[0] != "" {
			tickers = append(tickers, row[0])
		}
	}

	m.logger.WithField("count", len(tickers)).Debug("Loaded tickers from cache")
	return tickers, nil
}

func (m *Manager) writeCache(tickers []string) error {
	if dir := filepath.Dir(m.cfg.CachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(m.cfg.CachePath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ticker"}); err != nil {
		return err
	}
	for _, ticker := range tickers {
		if err := w.Write([]string{ticker}); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}
