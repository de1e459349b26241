// Package metrics exposes Prometheus instrumentation for the bot platform.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TicksIngested counts ticks accepted into per-symbol analytics.
	TicksIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "digit_ticks_ingested_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	// MalformedTicks counts ticks discarded because no digit could be extracted.
	MalformedTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "digit_ticks_malformed_total", Help: "Count of discarded malformed ticks"},
		[]string{"symbol"},
	)
	// PatternsDetected counts detected digit patterns.
	PatternsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "digit_patterns_detected_total", Help: "Count of detected digit patterns"},
		[]string{"symbol", "kind"},
	)
	// SignalsEvaluated counts signal evaluations by resulting signal kind.
	SignalsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "digit_signals_evaluated_total", Help: "Count of signal evaluations"},
		[]string{"symbol", "kind"},
	)
	// BotTrades counts completed bot trades by outcome.
	BotTrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "digit_bot_trades_total", Help: "Completed bot trades"},
		[]string{"outcome"},
	)
	// BotStops counts bot loop terminations by reason.
	BotStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "digit_bot_stops_total", Help: "Bot loop terminations"},
		[]string{"reason"},
	)
	// RunningBots tracks the number of bots currently in the RUNNING state.
	RunningBots = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "digit_bots_running", Help: "Bots currently running"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksIngested,
		MalformedTicks,
		PatternsDetected,
		SignalsEvaluated,
		BotTrades,
		BotStops,
		RunningBots,
	)
}

// Serve starts an HTTP server exposing /metrics on addr. The returned server
// can be shut down by the caller.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
