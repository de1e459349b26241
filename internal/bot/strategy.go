package bot

import (
	"fmt"

	"github.com/your-org/digit-pulse-bot/internal/signal"
)

// StrategyView is everything a strategy may consult when deciding the
// next trade. Logs are oldest first and already bounded.
type StrategyView struct {
	Config Config
	Stats  Stats
	Logs   []LogEntry
	Signal signal.Signal
}

// Decision is a strategy's instruction for the next trade.
type Decision struct {
	Stake        float64
	ContractType string
}

// Strategy decides stake and contract type for each iteration of a bot's
// run loop. Implementations must be pure with respect to the view.
type Strategy interface {
	Name() string
	Decide(view StrategyView) (Decision, error)
}

// StrategyError marks a strategy failure that transitions the bot to ERROR.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// NewStrategy builds a strategy from its descriptor. Unknown descriptors
// fall back to fixed stake.
func NewStrategy(descriptor string) Strategy {
	switch descriptor {
	case "martingale":
		return &Martingale{}
	default:
		return &FixedStake{}
	}
}

// FixedStake always trades the configured base stake, following the
// current signal's contract type.
type FixedStake struct{}

func (s *FixedStake) Name() string { return "fixed" }

func (s *FixedStake) Decide(view StrategyView) (Decision, error) {
	if view.Signal.Kind == signal.KindWait {
		return Decision{}, &StrategyError{Strategy: s.Name(), Err: fmt.Errorf("no actionable signal for %s", view.Config.Symbol)}
	}
	return Decision{
		Stake:        view.Config.Stake,
		ContractType: view.Signal.Kind.ContractType(),
	}, nil
}

// Martingale doubles the base stake after a loss and reverts to the base
// stake otherwise. Only the immediately preceding settled trade counts.
type Martingale struct{}

func (s *Martingale) Name() string { return "martingale" }

func (s *Martingale) Decide(view StrategyView) (Decision, error) {
	if view.Signal.Kind == signal.KindWait {
		return Decision{}, &StrategyError{Strategy: s.Name(), Err: fmt.Errorf("no actionable signal for %s", view.Config.Symbol)}
	}
	stake := view.Config.Stake
	if last, ok := lastTrade(view.Logs); ok && last.Result == ResultLoss {
		stake = view.Config.Stake * 2
	}
	return Decision{
		Stake:        stake,
		ContractType: view.Signal.Kind.ContractType(),
	}, nil
}

// lastTrade finds the most recent settled trade entry, skipping failed
// attempts and control events.
func lastTrade(logs []LogEntry) (LogEntry, bool) {
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Event == LogEventTrade {
			return logs[i], true
		}
	}
	return LogEntry{}, false
}
