package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/config"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/httputil"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

const listedIssuesPage = `<html><body>
<table>
  <tr><th>コード</th><th>銘柄名</th><th>市場区分</th><th>規模区分</th></tr>
  <tr><td>7203</td><td>トヨタ自動車</td><td>プライム</td><td>TOPIX Core30</td></tr>
  <tr><td>9432</td><td>日本電信電話</td><td>プライム</td><td>TOPIX Core30</td></tr>
  <tr><td>6861</td><td>キーエンス</td><td>プライム</td><td>TOPIX Large70</td></tr>
  <tr><td>2914</td><td>日本たばこ産業</td><td>プライム</td><td>TOPIX Large70</td></tr>
  <tr><td>1234</td><td>中型株</td><td>プライム</td><td>TOPIX Mid400</td></tr>
  <tr><td>5678</td><td>小型株</td><td>スタンダード</td><td>-</td></tr>
</table>
</body></html>`

func newManager(t *testing.T, serverURL, cachePath string, refreshInterval time.Duration) *Manager {
	t.Helper()
	cfg := config.UniverseConfig{
		ListURL:         serverURL,
		CachePath:       cachePath,
		RefreshInterval: refreshInterval,
	}
	hc := httputil.New(logger.NewNop()).DisableRetry()
	return NewManager(cfg, hc, logger.NewNop())
}

func TestParseConstituents(t *testing.T) {
	tickers, err := parseConstituents(strings.NewReader(listedIssuesPage))
	require.NoError(t, err)

	assert.Equal(t, []string{"7203.T", "9432.T", "6861.T", "2914.T"}, tickers)
}

func TestParseConstituentsEmptyPage(t *testing.T) {
	tickers, err := parseConstituents(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, tickers)
}

func TestLoadRefreshesWhenCacheMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listedIssuesPage))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "tickers.csv")
	m := newManager(t, server.URL, cachePath, time.Hour)

	tickers, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickers, 4)

	// Cache must now exist and round-trip
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ticker")
	assert.Contains(t, string(data), "7203.T")
}

func TestLoadUsesFreshCacheWithoutFetching(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(listedIssuesPage))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "tickers.csv")
	require.NoError(t, os.WriteFile(cachePath, []byte("ticker\n7203.T\n9432.T\n"), 0o644))

	m := newManager(t, server.URL, cachePath, time.Hour)

	tickers, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"7203.T", "9432.T"}, tickers)
	assert.Zero(t, calls, "fresh cache must not trigger a scrape")
}

func TestLoadRefreshesStaleCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listedIssuesPage))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "tickers.csv")
	require.NoError(t, os.WriteFile(cachePath, []byte("ticker\n0000.T\n"), 0o644))

	// Backdate the cache beyond the refresh interval
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(cachePath, old, old))

	m := newManager(t, server.URL, cachePath, time.Hour)

	tickers, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickers, 4)
	assert.NotContains(t, tickers, "0000.T")
}

func TestLoadFallsBackToStaleCacheOnFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "tickers.csv")
	require.NoError(t, os.WriteFile(cachePath, []byte("ticker\n7203.T\n"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(cachePath, old, old))

	m := newManager(t, server.URL, cachePath, time.Hour)

	tickers, err := m.Load(context.Background())
	require.NoError(t, err, "stale cache must win over a failed refresh")
	assert.Equal(t, []string{"7203.T"}, tickers)
}

func TestLoadFailsWithoutCacheOrNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "tickers.csv")
	m := newManager(t, server.URL, cachePath, time.Hour)

	_, err := m.Load(context.Background())
	require.Error(t, err)
}

func TestRefreshRejectsPageWithoutConstituents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><table><tr><td>no codes</td></tr></table></body></html>"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "tickers.csv")
	m := newManager(t, server.URL, cachePath, time.Hour)

	_, err := m.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constituents")
}
