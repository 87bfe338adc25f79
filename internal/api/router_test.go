package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/api/handlers"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

type fakeRunner struct {
	result *analysis.Result
	err    error
	calls  int
}

func (f *fakeRunner) Run(ctx context.Context) (*analysis.Result, error) {
	f.calls++
	return f.result, f.err
}

func newTestRouter(store *analysis.Store, runner *fakeRunner) http.Handler {
	h := handlers.NewAnalysisHandler(store, runner, logger.NewNop())
	return NewRouter(h, logger.NewNop())
}

func seededResult() *analysis.Result {
	return &analysis.Result{
		GeneratedAt: time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
		AsOf:        time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Universe:    100,
		Failed:      2,
		Scores: []contracts.ScoredRecord{
			{FundamentalRecord: contracts.FundamentalRecord{Ticker: "7203.T"}, ScoreTotal: 0.9},
		},
		Momentum: []contracts.MomentumRecord{
			{Ticker: "7203.T", Horizons: map[contracts.Horizon]contracts.HorizonMomentum{}},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(analysis.NewStore(), &fakeRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetRankingEmptyStore(t *testing.T) {
	router := newTestRouter(analysis.NewStore(), &fakeRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ranking", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRanking(t *testing.T) {
	store := analysis.NewStore()
	store.Set(seededResult())
	router := newTestRouter(store, &fakeRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ranking", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Universe int                      `json:"universe"`
		Failed   int                      `json:"failed"`
		Scores   []contracts.ScoredRecord `json:"scores"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 100, body.Universe)
	assert.Equal(t, 2, body.Failed)
	require.Len(t, body.Scores, 1)
	assert.Equal(t, "7203.T", body.Scores[0].Ticker)
}

func TestGetMomentum(t *testing.T) {
	store := analysis.NewStore()
	store.Set(seededResult())
	router := newTestRouter(store, &fakeRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/momentum", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "7203.T")
	assert.Contains(t, rec.Body.String(), "2025-06-02")
}

func TestAnalyzeStoresResult(t *testing.T) {
	store := analysis.NewStore()
	runner := &fakeRunner{result: seededResult()}
	router := newTestRouter(store, runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader("")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.calls)
	require.NotNil(t, store.Latest())
	assert.Equal(t, 100, store.Latest().Universe)
}

func TestAnalyzeRunFailure(t *testing.T) {
	store := analysis.NewStore()
	runner := &fakeRunner{err: errors.New("upstream broke")}
	router := newTestRouter(store, runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader("")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, store.Latest())
}

func TestAnalyzeNoFundamentalsMapsToBadGateway(t *testing.T) {
	runner := &fakeRunner{err: analysis.ErrNoFundamentals}
	router := newTestRouter(analysis.NewStore(), runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader("")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyzeWrongMethod(t *testing.T) {
	router := newTestRouter(analysis.NewStore(), &fakeRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/analyze", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
