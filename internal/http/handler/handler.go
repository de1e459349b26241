// Package handler exposes the trading core over HTTP: analytics snapshots,
// signals, risk checks, account data, bot management and the client
// websocket.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/analytics"
	"github.com/your-org/digit-pulse-bot/internal/bot"
	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
	"github.com/your-org/digit-pulse-bot/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encoding response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var (
		unknownSymbol *analytics.UnknownSymbolError
		unknownUser   *account.UnknownUserError
		unknownBot    *bot.UnknownBotError
		transition    *bot.StateTransitionError
		gateway       *deriv.GatewayError
	)
	switch {
	case errors.As(err, &unknownSymbol), errors.As(err, &unknownUser), errors.As(err, &unknownBot):
		status = http.StatusNotFound
	case errors.As(err, &transition):
		status = http.StatusConflict
	case errors.As(err, &gateway):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// userID reads the user_id query parameter, defaulting to the shared demo
// account.
func userID(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	return "demo"
}
