package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/fetcher"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Runner executes a full analysis pass. Satisfied by *analysis.Pipeline.
type Runner interface {
	Run(ctx context.Context) (*analysis.Result, error)
}

// AnalysisHandler serves analysis results and triggers new runs.
type AnalysisHandler struct {
	store  *analysis.Store
	runner Runner
	logger *logger.Logger

	// guards against overlapping analysis runs
	running sync.Mutex
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(store *analysis.Store, runner Runner, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		store:  store,
		runner: runner,
		logger: log,
	}
}

// GetResult returns the latest full analysis result
// GET /api/result
func (h *AnalysisHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	result := h.store.Latest()
	if result == nil {
		respondError(w, http.StatusNotFound, "No analysis result available yet")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetRanking returns the latest fundamental ranking
// GET /api/ranking
func (h *AnalysisHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	result := h.store.Latest()
	if result == nil {
		respondError(w, http.StatusNotFound, "No analysis result available yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at": result.GeneratedAt,
		"universe":     result.Universe,
		"failed":       result.Failed,
		"scores":       result.Scores,
	})
}

// GetMomentum returns the latest momentum figures for the top-ranked tickers
// GET /api/momentum
func (h *AnalysisHandler) GetMomentum(w http.ResponseWriter, r *http.Request) {
	result := h.store.Latest()
	if result == nil {
		respondError(w, http.StatusNotFound, "No analysis result available yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"as_of":    result.AsOf,
		"momentum": result.Momentum,
	})
}

// AnalyzeResponse summarizes a completed analysis run
type AnalyzeResponse struct {
	Status   string `json:"status"`
	Universe int    `json:"universe"`
	Failed   int    `json:"failed"`
	Ranked   int    `json:"ranked"`
}

// Analyze runs a full analysis pass and stores the result
// POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !h.running.TryLock() {
		respondError(w, http.StatusConflict, "An analysis run is already in progress")
		return
	}
	defer h.running.Unlock()

	result, err := h.runner.Run(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Analysis run failed")

		status := http.StatusInternalServerError
		if errors.Is(err, fetcher.ErrNoKeys) || errors.Is(err, analysis.ErrNoFundamentals) {
			status = http.StatusBadGateway
		}
		respondError(w, status, "Analysis run failed")
		return
	}

	h.store.Set(result)

	respondJSON(w, http.StatusOK, AnalyzeResponse{
		Status:   "ok",
		Universe: result.Universe,
		Failed:   result.Failed,
		Ranked:   len(result.Scores),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
