// Package signal provides the logic for generating trading signals.
package signal

import (
	"fmt"
	"time"

	"github.com/your-org/digit-pulse-bot/internal/analytics"
	"github.com/your-org/digit-pulse-bot/internal/metrics"
)

// Kind represents the directional recommendation of a signal.
type Kind int

const (
	// KindWait indicates no actionable recommendation.
	KindWait Kind = iota
	// KindDigitOver recommends a digit-over contract.
	KindDigitOver
	// KindDigitUnder recommends a digit-under contract.
	KindDigitUnder
	// KindDigitEven recommends a digit-even contract.
	KindDigitEven
	// KindDigitOdd recommends a digit-odd contract.
	KindDigitOdd
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindDigitOver:
		return "DIGIT_OVER"
	case KindDigitUnder:
		return "DIGIT_UNDER"
	case KindDigitEven:
		return "DIGIT_EVEN"
	case KindDigitOdd:
		return "DIGIT_ODD"
	case KindWait:
		return "WAIT"
	default:
		return "UNKNOWN"
	}
}

// ContractType returns the broker contract type for an actionable kind,
// or the empty string for WAIT.
func (k Kind) ContractType() string {
	switch k {
	case KindDigitOver:
		return "DIGITOVER"
	case KindDigitUnder:
		return "DIGITUNDER"
	case KindDigitEven:
		return "DIGITEVEN"
	case KindDigitOdd:
		return "DIGITODD"
	default:
		return ""
	}
}

// Signal is a directional recommendation with an attached confidence.
// Signals are ephemeral: computed on demand and only cached briefly.
type Signal struct {
	Symbol              string  `json:"symbol"`
	Kind                Kind    `json:"-"`
	KindLabel           string  `json:"signal"`
	Confidence          float64 `json:"confidence"`
	Reason              string  `json:"reason"`
	RecommendedDuration int     `json:"duration,omitempty"`
	RecommendedStake    float64 `json:"stake_recommendation,omitempty"`
}

// Evaluation thresholds. These are a reproducibility requirement of the
// signal rule set, not tunables.
const (
	minTicksForSignal = 10
	biasSpan          = 20 // digits inspected by the bias checks
	biasHigh          = 15
	biasLow           = 5

	recommendedDuration = 5 // ticks
	recommendedStake    = 1.0
)

// Engine evaluates per-symbol analytics snapshots into trading signals.
type Engine struct {
	analytics *analytics.Engine
	cache     *signalCache
}

// NewEngine creates a signal engine reading from the given analytics engine.
// cacheTTL bounds how stale a returned signal may be; zero disables caching.
func NewEngine(a *analytics.Engine, cacheTTL time.Duration) *Engine {
	return &Engine{
		analytics: a,
		cache:     newSignalCache(cacheTTL),
	}
}

// Evaluate produces the best current signal for a symbol. A symbol with
// fewer than ten window ticks yields WAIT at confidence zero; no candidate
// clearing its threshold yields WAIT at confidence 0.5.
func (e *Engine) Evaluate(symbol string) (Signal, error) {
	if sig, ok := e.cache.get(symbol); ok {
		return sig, nil
	}

	snap, err := e.analytics.Snapshot(symbol)
	if err != nil {
		return Signal{}, err
	}

	sig := evaluateSnapshot(snap)
	metrics.SignalsEvaluated.WithLabelValues(symbol, sig.Kind.String()).Inc()
	e.cache.put(symbol, sig)
	return sig, nil
}

// evaluateSnapshot applies the bias rules and the pattern override to a
// snapshot. Candidates are collected in a fixed order (even/odd bias,
// over/under bias, streak override) and the strictly highest confidence
// wins; ties keep the earlier candidate.
func evaluateSnapshot(snap analytics.Snapshot) Signal {
	if len(snap.LastDigits) < minTicksForSignal {
		return waitSignal(snap.Symbol, 0, "insufficient data")
	}

	tail := snap.LastDigits
	if len(tail) > biasSpan {
		tail = tail[len(tail)-biasSpan:]
	}

	var evenCount, overCount int
	for _, d := range tail {
		if d%2 == 0 {
			evenCount++
		}
		if d > 5 {
			overCount++
		}
	}

	var candidates []Signal

	// Even/odd bias.
	if evenCount >= biasHigh {
		candidates = append(candidates, actionable(snap.Symbol, KindDigitOdd, 0.75, "strong even bias, expect odd"))
	} else if evenCount <= biasLow {
		candidates = append(candidates, actionable(snap.Symbol, KindDigitEven, 0.75, "strong odd bias, expect even"))
	}

	// Over/under bias.
	if overCount >= biasHigh {
		candidates = append(candidates, actionable(snap.Symbol, KindDigitUnder, 0.70, "strong over bias, expect under"))
	} else if overCount <= biasLow {
		candidates = append(candidates, actionable(snap.Symbol, KindDigitOver, 0.70, "strong under bias, expect over"))
	}

	// Most-recent pattern override: fade a streak with the opposite class.
	if n := len(snap.Patterns); n > 0 {
		if p := snap.Patterns[n-1]; p.Kind == analytics.PatternStreak {
			kind := KindDigitOver
			if p.Digit > 5 {
				kind = KindDigitUnder
			}
			candidates = append(candidates, actionable(snap.Symbol, kind, p.Confidence,
				fmt.Sprintf("streak of %d detected", p.Digit)))
		}
	}

	if len(candidates) == 0 {
		return waitSignal(snap.Symbol, 0.5, "no strong pattern detected")
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}

func actionable(symbol string, kind Kind, confidence float64, reason string) Signal {
	return Signal{
		Symbol:              symbol,
		Kind:                kind,
		KindLabel:           kind.String(),
		Confidence:          confidence,
		Reason:              reason,
		RecommendedDuration: recommendedDuration,
		RecommendedStake:    recommendedStake,
	}
}

func waitSignal(symbol string, confidence float64, reason string) Signal {
	return Signal{
		Symbol:     symbol,
		Kind:       KindWait,
		KindLabel:  KindWait.String(),
		Confidence: confidence,
		Reason:     reason,
	}
}
