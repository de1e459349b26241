// Command export records a tick stream to a CSV file for offline analysis.
package main

import (
	"context"
	"flag"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/digit-pulse-bot/internal/config"
	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
	"github.com/your-org/digit-pulse-bot/internal/tickstore"
	"github.com/your-org/digit-pulse-bot/pkg/logger"
)

func main() {
	// --- Argument Parsing ---
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	outPath := flag.String("out", "ticks.csv", "Output CSV file")
	duration := flag.Duration("duration", time.Minute, "How long to record")
	simulate := flag.Bool("simulate", false, "Record from the simulated tick source")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		logger.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- Writer Setup ---
	writer, err := tickstore.NewWriter(*outPath, zapLogger.Named("tickstore"))
	if err != nil {
		logger.Fatalf("Failed to create tick writer: %v", err)
	}
	defer writer.Close()

	var recorded atomic.Int64
	tickHandler := func(tick deriv.Tick) {
		if err := writer.WriteTick(tick); err != nil {
			logger.Errorf("Failed to record tick: %v", err)
			return
		}
		recorded.Add(1)
	}

	symbols := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		symbols = append(symbols, s.Name)
	}

	// --- Record ---
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	logger.Infof("Recording %d symbols to %s for %s...", len(symbols), *outPath, *duration)
	if *simulate || bool(cfg.Gateway.Simulated) {
		sim := deriv.NewSimulator(symbols, 500*time.Millisecond, time.Now().UnixNano(), tickHandler, zapLogger.Named("sim"))
		_ = sim.Run(ctx)
	} else {
		wsClient := deriv.NewWebSocketClient(cfg.Gateway.Endpoint, cfg.Gateway.AppID, symbols, tickHandler, zapLogger.Named("ws"))
		if err := wsClient.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Fatalf("Tick stream failed: %v", err)
		}
	}

	logger.Infof("Successfully recorded %d ticks.", recorded.Load())
}
