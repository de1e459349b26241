package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
	"github.com/your-org/digit-pulse-bot/internal/notifier"
)

// TradeHandler exposes manual contract trading: buy a digit contract into
// the user's active set, settle it later and list what is still open.
type TradeHandler struct {
	gateway  deriv.Gateway
	store    *account.Store
	notifier notifier.Notifier
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(gateway deriv.Gateway, store *account.Store, notif notifier.Notifier) *TradeHandler {
	return &TradeHandler{gateway: gateway, store: store, notifier: notif}
}

// RegisterRoutes registers the trade routes on the given router.
func (h *TradeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/trade/buy", h.Buy)
	r.Post("/trade/sell", h.Sell)
	r.Get("/trade/active", h.GetActive)
}

type buyRequest struct {
	Symbol       string  `json:"symbol"`
	ContractType string  `json:"contract_type"`
	Stake        float64 `json:"stake"`
	Duration     int     `json:"duration"`
}

type contractResponse struct {
	ContractID   string  `json:"contract_id"`
	Symbol       string  `json:"symbol"`
	ContractType string  `json:"contract_type"`
	Stake        float64 `json:"stake"`
	Payout       float64 `json:"payout"`
}

// Buy purchases a digit contract for the user and tracks it as active until
// it is sold.
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Symbol == "" || req.ContractType == "" || req.Stake <= 0 {
		writeBadRequest(w, "symbol, contract_type and a positive stake are required")
		return
	}
	if req.Duration <= 0 {
		req.Duration = 5
	}

	uid := userID(r)
	h.store.EnsureSession(uid, "USD", account.DefaultBalance)

	contract, err := h.gateway.Buy(r.Context(), deriv.ContractParams{
		ContractType: req.ContractType,
		Symbol:       req.Symbol,
		Stake:        req.Stake,
		Duration:     req.Duration,
		DurationUnit: "t",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.OpenContract(uid, account.TradeRecord{
		ContractID: contract.ContractID,
		Symbol:     req.Symbol,
		Stake:      req.Stake,
		Timestamp:  contract.PurchaseTime,
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contractResponse{
		ContractID:   contract.ContractID,
		Symbol:       req.Symbol,
		ContractType: req.ContractType,
		Stake:        req.Stake,
		Payout:       contract.Payout,
	})
}

type sellRequest struct {
	ContractID string `json:"contract_id"`
}

// Sell settles one of the user's active contracts. The settled record moves
// into the trade history, the balance absorbs the profit and a
// contract_closed event is pushed to the user's clients.
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContractID == "" {
		writeBadRequest(w, "contract_id is required")
		return
	}

	uid := userID(r)
	active, err := h.store.ActiveContracts(uid)
	if err != nil {
		writeError(w, err)
		return
	}
	held := false
	for _, rec := range active {
		if rec.ContractID == req.ContractID {
			held = true
			break
		}
	}
	if !held {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown contract " + req.ContractID})
		return
	}

	outcome, err := h.gateway.Sell(r.Context(), req.ContractID)
	if err != nil {
		writeError(w, err)
		return
	}

	result := account.OutcomeLost
	if outcome.Status == "won" {
		result = account.OutcomeWon
	}
	settled, err := h.store.CloseContract(uid, req.ContractID, result, outcome.Profit)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.AdjustBalance(uid, settled.Profit); err != nil {
		writeError(w, err)
		return
	}
	h.notifier.Push(uid, notifier.Event{Type: notifier.EventContractClosed, Payload: settled})

	writeJSON(w, http.StatusOK, settled)
}

// GetActive lists the user's open contracts.
func (h *TradeHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.store.ActiveContracts(userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": active})
}
