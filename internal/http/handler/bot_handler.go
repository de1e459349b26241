package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/digit-pulse-bot/internal/bot"
)

// BotHandler manages bot lifecycles over HTTP.
type BotHandler struct {
	engine *bot.Engine
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(engine *bot.Engine) *BotHandler {
	return &BotHandler{engine: engine}
}

// RegisterRoutes registers the bot routes on the given router.
func (h *BotHandler) RegisterRoutes(r chi.Router) {
	r.Post("/bots", h.CreateBot)
	r.Get("/bots", h.ListBots)
	r.Get("/bots/{id}", h.GetBot)
	r.Delete("/bots/{id}", h.RemoveBot)
	r.Get("/bots/{id}/logs", h.GetBotLogs)
	r.Post("/bots/{id}/start", h.control(func(e *bot.Engine, id string) error { return e.Start(id) }))
	r.Post("/bots/{id}/stop", h.control(func(e *bot.Engine, id string) error { return e.Stop(id) }))
	r.Post("/bots/{id}/pause", h.control(func(e *bot.Engine, id string) error { return e.Pause(id) }))
	r.Post("/bots/{id}/resume", h.control(func(e *bot.Engine, id string) error { return e.Resume(id) }))
}

type createBotRequest struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name"`
	Config bot.Config `json:"config"`
}

// CreateBot registers a new bot in the STOPPED state.
func (h *BotHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req createBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = "demo"
	}
	info, err := h.engine.Create(req.UserID, req.Name, req.Config)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// ListBots lists bots, filtered by user_id when given.
func (h *BotHandler) ListBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"bots": h.engine.List(r.URL.Query().Get("user_id"))})
}

// GetBot returns one bot's state, config and stats.
func (h *BotHandler) GetBot(w http.ResponseWriter, r *http.Request) {
	info, err := h.engine.Info(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RemoveBot deletes a stopped bot.
func (h *BotHandler) RemoveBot(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBotLogs returns a bot's retained log entries, oldest first.
func (h *BotHandler) GetBotLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.engine.Logs(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// control wraps a lifecycle transition into a handler returning the bot's
// post-transition snapshot.
func (h *BotHandler) control(op func(*bot.Engine, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := op(h.engine, id); err != nil {
			writeError(w, err)
			return
		}
		info, err := h.engine.Info(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
