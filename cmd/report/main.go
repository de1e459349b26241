// Command report analyzes a recorded tick file and prints per-symbol digit
// statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/your-org/digit-pulse-bot/internal/analytics"
	"github.com/your-org/digit-pulse-bot/internal/config"
	"github.com/your-org/digit-pulse-bot/internal/tickstore"
	"github.com/your-org/digit-pulse-bot/pkg/logger"
)

func main() {
	// --- Argument Parsing ---
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	inPath := flag.String("in", "ticks.csv", "Recorded tick CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)

	ticks, err := tickstore.LoadTicks(*inPath)
	if err != nil {
		logger.Fatalf("Failed to load ticks: %v", err)
	}
	if len(ticks) == 0 {
		logger.Fatal("No ticks found in the input file.")
	}

	// --- Replay Through Analytics ---
	engine := analytics.NewEngine(cfg.Symbols)
	seen := make(map[string]struct{})
	for _, tick := range ticks {
		if _, err := engine.Ingest(tick.Symbol, tick.Quote); err != nil {
			logger.Debugf("Skipping tick for %s: %v", tick.Symbol, err)
			continue
		}
		seen[tick.Symbol] = struct{}{}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	// --- Report ---
	fmt.Printf("Digit report for %s (%d ticks)\n\n", *inPath, len(ticks))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "symbol\tticks\teven%\todd%\tover%\tunder%\thot\tcold")
	for _, symbol := range symbols {
		snap, err := engine.Snapshot(symbol)
		if err != nil {
			logger.Errorf("Snapshot for %s: %v", symbol, err)
			continue
		}
		printRow(w, snap)
	}
	w.Flush()
}

// printRow writes one symbol's digit distribution line.
func printRow(w *tabwriter.Writer, snap analytics.Snapshot) {
	if snap.TotalTicks == 0 {
		return
	}

	hot, cold := 0, 0
	for d := 1; d < 10; d++ {
		if snap.DigitFrequency[d] > snap.DigitFrequency[hot] {
			hot = d
		}
		if snap.DigitFrequency[d] < snap.DigitFrequency[cold] {
			cold = d
		}
	}

	pct := func(n int64) float64 { return float64(n) / float64(snap.TotalTicks) * 100 }
	fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%d\t%d\n",
		snap.Symbol,
		snap.TotalTicks,
		pct(snap.EvenCount),
		pct(snap.OddCount),
		pct(snap.OverCount),
		pct(snap.UnderCount),
		hot,
		cold,
	)
}
