package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/pnl"
)

// AccountHandler serves session balances, trade history and payout
// proposals.
type AccountHandler struct {
	store *account.Store
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(store *account.Store) *AccountHandler {
	return &AccountHandler{store: store}
}

// RegisterRoutes registers the account routes on the given router.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/account/summary", h.GetSummary)
	r.Get("/account/history", h.GetHistory)
	r.Get("/account/performance", h.GetPerformance)
	r.Get("/account/proposal", h.GetProposal)
}

// GetSummary returns the user's balance and session statistics.
func (h *AccountHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.Summary(userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetHistory returns the user's settled trades, oldest first.
func (h *AccountHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.store.History(userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": history})
}

// GetPerformance summarizes the user's realized performance.
func (h *AccountHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	history, err := h.store.History(userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pnl.Compute(history))
}

// GetProposal prices a stake: the payout a winning digit contract would
// return. The stake is passed as a query parameter, e.g. ?stake=10.
func (h *AccountHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	stake, err := strconv.ParseFloat(r.URL.Query().Get("stake"), 64)
	if err != nil || stake <= 0 {
		writeBadRequest(w, "stake must be a positive number")
		return
	}
	writeJSON(w, http.StatusOK, account.MakeProposal(stake))
}
