package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/digit-pulse-bot/internal/signal"
)

// SignalHandler serves on-demand trade signals.
type SignalHandler struct {
	engine *signal.Engine
}

// NewSignalHandler creates a new SignalHandler.
func NewSignalHandler(engine *signal.Engine) *SignalHandler {
	return &SignalHandler{engine: engine}
}

// RegisterRoutes registers the signal routes on the given router.
func (h *SignalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/signal/{symbol}", h.GetSignal)
}

// GetSignal evaluates and returns the current signal for one symbol.
func (h *SignalHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	sig, err := h.engine.Evaluate(chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}
