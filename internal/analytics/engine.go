// Package analytics maintains per-symbol digit statistics derived from an
// incoming tick stream: cumulative digit frequencies, parity and over/under
// partitions, a bounded window of recent digits, and short-term patterns.
package analytics

import (
	"math"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/your-org/digit-pulse-bot/internal/config"
	"github.com/your-org/digit-pulse-bot/internal/metrics"
)

// Snapshot is an immutable copy of one symbol's analytics state.
type Snapshot struct {
	Symbol         string      `json:"symbol"`
	TotalTicks     int64       `json:"total_ticks"`
	DigitFrequency [10]int64   `json:"digit_frequency"`
	DigitPercent   [10]float64 `json:"digit_percentages"`
	EvenCount      int64       `json:"even_count"`
	OddCount       int64       `json:"odd_count"`
	OverCount      int64       `json:"over_count"`
	UnderCount     int64       `json:"under_count"`
	LastDigits     []int       `json:"last_digits"` // arrival order, oldest first
	Patterns       []Pattern   `json:"patterns"`    // most recent last
}

// HeatmapRow is one row of ten consecutive window digits with its
// over/under split.
type HeatmapRow struct {
	Row        int   `json:"row"`
	Digits     []int `json:"digits"`
	OverCount  int   `json:"over_count"`
	UnderCount int   `json:"under_count"`
}

// Probability is the empirical chance of a contract kind over the current
// window, with a sample-size confidence label.
type Probability struct {
	Symbol     string  `json:"symbol"`
	Contract   string  `json:"contract_type"`
	Value      float64 `json:"probability"`
	Confidence string  `json:"confidence"` // low, medium, high
	SampleSize int     `json:"sample_size"`
}

// symbolState is the unit of exclusive access for one symbol: window,
// counters and pattern list are only touched under mu.
type symbolState struct {
	mu        sync.RWMutex
	precision int32
	window    *DigitWindow
	freq      [10]int64
	even      int64
	odd       int64
	over      int64
	under     int64
	patterns  []Pattern
}

// Engine owns the analytics state of a fixed set of symbols. The symbol set
// is established at construction; Ingest is safe to call concurrently with
// any number of readers.
type Engine struct {
	symbols map[string]*symbolState
	names   []string
}

// NewEngine creates an Engine tracking the given symbols.
func NewEngine(symbols []config.SymbolConf) *Engine {
	e := &Engine{symbols: make(map[string]*symbolState, len(symbols))}
	for _, s := range symbols {
		e.symbols[s.Name] = &symbolState{
			precision: s.Precision,
			window:    NewDigitWindow(WindowCap),
		}
		e.names = append(e.names, s.Name)
	}
	return e
}

// Symbols returns the tracked symbol names in configuration order.
func (e *Engine) Symbols() []string {
	return append([]string(nil), e.names...)
}

// ExtractLastDigit renders a price at the given fixed-point precision and
// returns its final decimal digit.
func ExtractLastDigit(price float64, precision int32) (int, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &MalformedPriceError{Price: price}
	}
	s := decimal.NewFromFloat(price).StringFixed(precision)
	s = strings.NewReplacer(".", "", "-", "").Replace(s)
	if s == "" {
		return 0, &MalformedPriceError{Price: price}
	}
	c := s[len(s)-1]
	if c < '0' || c > '9' {
		return 0, &MalformedPriceError{Price: price}
	}
	return int(c - '0'), nil
}

// Ingest extracts the last digit of a tick's price and applies it to the
// symbol's analytics state. It returns the extracted digit. This is the hot
// path: it only takes the one symbol's lock and never blocks otherwise.
func (e *Engine) Ingest(symbol string, price float64) (int, error) {
	st, ok := e.symbols[symbol]
	if !ok {
		return 0, &UnknownSymbolError{Symbol: symbol}
	}

	digit, err := ExtractLastDigit(price, st.precision)
	if err != nil {
		metrics.MalformedTicks.WithLabelValues(symbol).Inc()
		if mpe, ok := err.(*MalformedPriceError); ok {
			mpe.Symbol = symbol
		}
		return 0, err
	}

	st.mu.Lock()
	st.freq[digit]++
	if digit%2 == 0 {
		st.even++
	} else {
		st.odd++
	}
	if digit > 5 {
		st.over++
	} else {
		st.under++
	}
	st.window.Push(digit)

	detected := DetectPatterns(st.window.Digits())
	if len(detected) > 0 {
		st.patterns = append(st.patterns, detected...)
		if len(st.patterns) > maxRetainedPatterns {
			st.patterns = st.patterns[len(st.patterns)-maxRetainedPatterns:]
		}
	}
	st.mu.Unlock()

	metrics.TicksIngested.WithLabelValues(symbol).Inc()
	for _, p := range detected {
		metrics.PatternsDetected.WithLabelValues(symbol, p.Kind.String()).Inc()
	}
	return digit, nil
}

// Snapshot returns a consistent copy of the symbol's analytics state.
func (e *Engine) Snapshot(symbol string) (Snapshot, error) {
	st, ok := e.symbols[symbol]
	if !ok {
		return Snapshot{}, &UnknownSymbolError{Symbol: symbol}
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	snap := Snapshot{
		Symbol:         symbol,
		DigitFrequency: st.freq,
		EvenCount:      st.even,
		OddCount:       st.odd,
		OverCount:      st.over,
		UnderCount:     st.under,
		LastDigits:     st.window.Digits(),
		Patterns:       append([]Pattern(nil), st.patterns...),
	}
	for _, n := range st.freq {
		snap.TotalTicks += n
	}
	if snap.TotalTicks > 0 {
		for d, n := range st.freq {
			snap.DigitPercent[d] = float64(n) / float64(snap.TotalTicks) * 100
		}
	}
	return snap, nil
}

// Heatmap splits the symbol's window into rows of ten digits, each with its
// over/under split, and returns at most the last ten complete rows.
func (e *Engine) Heatmap(symbol string) ([]HeatmapRow, error) {
	snap, err := e.Snapshot(symbol)
	if err != nil {
		return nil, err
	}

	var rows []HeatmapRow
	digits := snap.LastDigits
	for i := 0; i+10 <= len(digits); i += 10 {
		row := HeatmapRow{Row: i / 10, Digits: digits[i : i+10]}
		for _, d := range row.Digits {
			if d > 5 {
				row.OverCount++
			} else {
				row.UnderCount++
			}
		}
		rows = append(rows, row)
	}
	if len(rows) > 10 {
		rows = rows[len(rows)-10:]
	}
	return rows, nil
}

// Probability computes the empirical probability of a digit contract kind
// over the current window. Fewer than ten ticks yield the 0.5 prior with
// low confidence.
func (e *Engine) Probability(symbol, contractType string) (Probability, error) {
	snap, err := e.Snapshot(symbol)
	if err != nil {
		return Probability{}, err
	}

	prob := Probability{
		Symbol:     symbol,
		Contract:   contractType,
		Value:      0.5,
		Confidence: "low",
		SampleSize: len(snap.LastDigits),
	}
	if prob.SampleSize < 10 {
		return prob, nil
	}

	matched := 0
	for _, d := range snap.LastDigits {
		switch contractType {
		case "DIGITOVER":
			if d > 5 {
				matched++
			}
		case "DIGITUNDER":
			if d <= 5 {
				matched++
			}
		case "DIGITEVEN":
			if d%2 == 0 {
				matched++
			}
		case "DIGITODD":
			if d%2 != 0 {
				matched++
			}
		default:
			return prob, nil
		}
	}
	prob.Value = float64(matched) / float64(prob.SampleSize)

	switch {
	case prob.SampleSize >= 100:
		prob.Confidence = "high"
	case prob.SampleSize >= 50:
		prob.Confidence = "medium"
	}
	return prob, nil
}
