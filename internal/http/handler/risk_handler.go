package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/digit-pulse-bot/internal/risk"
)

// RiskHandler serves capital protector verdicts and risk meter readings.
type RiskHandler struct {
	guard *risk.Guard
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(guard *risk.Guard) *RiskHandler {
	return &RiskHandler{guard: guard}
}

// RegisterRoutes registers the risk routes on the given router.
func (h *RiskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/risk/capital-protector", h.GetCapitalProtector)
	r.Get("/risk/meter", h.GetRiskMeter)
}

// GetCapitalProtector evaluates the halt conditions for a user.
func (h *RiskHandler) GetCapitalProtector(w http.ResponseWriter, r *http.Request) {
	verdict, err := h.guard.CheckCapitalProtector(userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

// GetRiskMeter reports what share of the user's balance one stake risks.
// The stake is passed as a query parameter, e.g. ?stake=10.
func (h *RiskHandler) GetRiskMeter(w http.ResponseWriter, r *http.Request) {
	stake, err := strconv.ParseFloat(r.URL.Query().Get("stake"), 64)
	if err != nil || stake <= 0 {
		writeBadRequest(w, "stake must be a positive number")
		return
	}
	meter, err := h.guard.RiskMeter(userID(r), stake)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meter)
}
