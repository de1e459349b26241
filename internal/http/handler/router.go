package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/analytics"
	"github.com/your-org/digit-pulse-bot/internal/bot"
	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
	"github.com/your-org/digit-pulse-bot/internal/notifier"
	"github.com/your-org/digit-pulse-bot/internal/risk"
	"github.com/your-org/digit-pulse-bot/internal/signal"
)

// Deps collects the collaborators the HTTP surface exposes. Hub may be nil
// when no websocket push surface is wired; Notifier may be nil when nothing
// should receive pushes.
type Deps struct {
	Analytics *analytics.Engine
	Signals   *signal.Engine
	Guard     *risk.Guard
	Accounts  *account.Store
	Bots      *bot.Engine
	Gateway   deriv.Gateway
	Notifier  notifier.Notifier
	Hub       *notifier.Hub
}

// NewRouter assembles the API router.
func NewRouter(deps Deps) *chi.Mux {
	if deps.Notifier == nil {
		deps.Notifier = notifier.NewNoOpNotifier()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", HealthCheckHandler)

	r.Route("/api", func(api chi.Router) {
		NewAnalyticsHandler(deps.Analytics).RegisterRoutes(api)
		NewSignalHandler(deps.Signals).RegisterRoutes(api)
		NewRiskHandler(deps.Guard).RegisterRoutes(api)
		NewAccountHandler(deps.Accounts).RegisterRoutes(api)
		NewTradeHandler(deps.Gateway, deps.Accounts, deps.Notifier).RegisterRoutes(api)
		NewBotHandler(deps.Bots).RegisterRoutes(api)
	})

	if deps.Hub != nil {
		r.Get("/ws", NewWSHandler(deps.Hub).ServeWS)
	}
	return r
}
