// Package main is the entry point of the digit pulse trading bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/analytics"
	"github.com/your-org/digit-pulse-bot/internal/bot"
	"github.com/your-org/digit-pulse-bot/internal/config"
	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
	"github.com/your-org/digit-pulse-bot/internal/http/handler"
	"github.com/your-org/digit-pulse-bot/internal/metrics"
	"github.com/your-org/digit-pulse-bot/internal/notifier"
	"github.com/your-org/digit-pulse-bot/internal/risk"
	tradesignal "github.com/your-org/digit-pulse-bot/internal/signal"
	"github.com/your-org/digit-pulse-bot/pkg/logger"
)

func main() {
	// --- Configuration ---
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	simulate := flag.Bool("simulate", false, "Force the simulated tick source and order gateway")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	simulated := *simulate || bool(cfg.Gateway.Simulated)

	// --- Logger ---
	logger.SetGlobalLogLevel(cfg.LogLevel)
	logger.Info("Digit pulse bot starting...")
	logger.Infof("Loaded configuration from: %s", *configPath)
	logger.Infof("Tracking %d symbols", len(cfg.Symbols))

	var zapLogger *zap.Logger
	if cfg.LogLevel == "debug" {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		logger.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			// We can't use the logger here because it's being synced.
			// Print to stderr instead.
			fmt.Fprintf(os.Stderr, "Failed to sync zap logger: %v\n", err)
		}
	}()

	// --- Metrics Server ---
	metricsServer := metrics.Serve(cfg.Metrics.ListenAddr)
	logger.Infof("Metrics server starting on %s", cfg.Metrics.ListenAddr)

	// --- Core Engines ---
	analyticsEngine := analytics.NewEngine(cfg.Symbols)
	signalEngine := tradesignal.NewEngine(analyticsEngine, time.Duration(cfg.Signal.CacheTTLMs)*time.Millisecond)
	accounts := account.NewStore()
	guard := risk.NewGuard(accounts, cfg.Risk)

	hub := notifier.NewHub(zapLogger.Named("hub"))
	defer hub.Close()

	var gateway deriv.Gateway
	if simulated {
		gateway = deriv.NewSimulatedGateway(time.Now().UnixNano(), 0.5, zapLogger.Named("gateway"))
		logger.Info("Using simulated order gateway")
	} else {
		gateway = deriv.NewSimulatedGateway(time.Now().UnixNano(), 0.5, zapLogger.Named("gateway"))
		logger.Warn("Live order routing is not wired; orders fill through the simulated gateway")
	}

	botEngine := bot.NewEngine(signalEngine, guard, gateway, accounts, hub, cfg.Bot)

	// --- Tick Pipeline ---
	tickHandler := func(tick deriv.Tick) {
		if _, err := analyticsEngine.Ingest(tick.Symbol, tick.Quote); err != nil {
			logger.Debugf("Tick discarded for %s: %v", tick.Symbol, err)
			return
		}
		hub.Broadcast(notifier.Event{Type: notifier.EventTick, Payload: map[string]any{
			"symbol": tick.Symbol,
			"quote":  tick.Quote,
			"epoch":  tick.Epoch.Unix(),
		}})
	}

	symbols := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		symbols = append(symbols, s.Name)
	}

	// --- Graceful Shutdown Setup ---
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// --- Start Services ---
	if simulated {
		sim := deriv.NewSimulator(symbols, 500*time.Millisecond, time.Now().UnixNano(), tickHandler, zapLogger.Named("sim"))
		go func() {
			if err := sim.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Errorf("Tick simulator exited with error: %v", err)
				sigs <- syscall.SIGTERM
			}
		}()
		logger.Info("Simulated tick source started")
	} else {
		wsClient := deriv.NewWebSocketClient(cfg.Gateway.Endpoint, cfg.Gateway.AppID, symbols, tickHandler, zapLogger.Named("ws"))
		go func() {
			logger.Infof("Connecting to tick stream at %s", cfg.Gateway.Endpoint)
			if err := wsClient.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Errorf("Tick stream exited with error: %v", err)
				sigs <- syscall.SIGTERM
			}
		}()
	}

	apiServer := &http.Server{
		Addr: cfg.HTTP.ListenAddr,
		Handler: handler.NewRouter(handler.Deps{
			Analytics: analyticsEngine,
			Signals:   signalEngine,
			Guard:     guard,
			Accounts:  accounts,
			Bots:      botEngine,
			Gateway:   gateway,
			Notifier:  hub,
			Hub:       hub,
		}),
	}
	go func() {
		logger.Infof("API server starting on %s", cfg.HTTP.ListenAddr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("API server failed: %v", err)
			sigs <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-sigs
	logger.Infof("Received signal: %s, initiating shutdown...", sig)

	// Trigger graceful shutdown
	cancel()
	botEngine.StopAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API server shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Metrics server shutdown: %v", err)
	}
	logger.Info("Digit pulse bot shut down gracefully.")
}
