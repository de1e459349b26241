package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/digit-pulse-bot/internal/analytics"
)

// AnalyticsHandler serves per-symbol digit analytics.
type AnalyticsHandler struct {
	engine *analytics.Engine
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(engine *analytics.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine}
}

// RegisterRoutes registers the analytics routes on the given router.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/symbols", h.GetSymbols)
	r.Get("/digits/{symbol}", h.GetDigits)
	r.Get("/heatmap/{symbol}", h.GetHeatmap)
	r.Get("/probability/{symbol}", h.GetProbability)
}

// GetSymbols lists the tracked symbols.
func (h *AnalyticsHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"symbols": h.engine.Symbols()})
}

// GetDigits returns the current digit analytics snapshot for one symbol.
func (h *AnalyticsHandler) GetDigits(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Snapshot(chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetHeatmap returns the recent digits arranged in rows of ten.
func (h *AnalyticsHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	rows, err := h.engine.Heatmap(symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "heatmap": rows})
}

// GetProbability estimates the win probability of a contract type from the
// observed digit distribution. The contract type is passed as a query
// parameter, e.g. ?contract_type=DIGITOVER.
func (h *AnalyticsHandler) GetProbability(w http.ResponseWriter, r *http.Request) {
	contractType := r.URL.Query().Get("contract_type")
	if contractType == "" {
		writeBadRequest(w, "contract_type query parameter is required")
		return
	}
	prob, err := h.engine.Probability(chi.URLParam(r, "symbol"), contractType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prob)
}
