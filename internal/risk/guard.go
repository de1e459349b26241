// Package risk implements the capital protector and the per-trade risk
// meter. It only reads account state and never mutates it.
package risk

import (
	"fmt"
	"time"

	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/config"
)

// Verdict is the capital protector's decision for a user.
type Verdict struct {
	ShouldStop        bool    `json:"active"`
	Reason            string  `json:"reason,omitempty"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	TotalLossToday    float64 `json:"total_loss_today"`
}

// Meter reports what share of the account one stake puts at risk.
type Meter struct {
	Stake      float64 `json:"stake"`
	Balance    float64 `json:"balance"`
	Percentage float64 `json:"percentage"`
	Level      string  `json:"risk_level"` // low, medium, high
}

// Guard evaluates halt conditions against a user's trade history and
// balance.
type Guard struct {
	store                *account.Store
	maxConsecutiveLosses int
	dailyLossLimit       float64 // negative
	now                  func() time.Time
}

// NewGuard creates a Guard reading from the given account store.
func NewGuard(store *account.Store, cfg config.RiskConf) *Guard {
	return &Guard{
		store:                store,
		maxConsecutiveLosses: cfg.MaxConsecutiveLosses,
		dailyLossLimit:       cfg.DailyLossLimit,
		now:                  time.Now,
	}
}

// CheckCapitalProtector evaluates both halt conditions for a user. Both
// checks always run; when both trigger the daily-loss reason wins because
// it is evaluated last (deterministic precedence, documented in DESIGN.md).
func (g *Guard) CheckCapitalProtector(userID string) (Verdict, error) {
	history, err := g.store.History(userID)
	if err != nil {
		return Verdict{}, err
	}

	var v Verdict

	// Consecutive losses, most recent backwards until the first non-loss.
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Outcome != account.OutcomeLost {
			break
		}
		v.ConsecutiveLosses++
	}
	if v.ConsecutiveLosses >= g.maxConsecutiveLosses {
		v.ShouldStop = true
		v.Reason = fmt.Sprintf("%d consecutive losses detected", v.ConsecutiveLosses)
	}

	// Negative contributions of today's trades.
	today := g.now()
	for _, rec := range history {
		if rec.Profit < 0 && sameDay(rec.Timestamp, today) {
			v.TotalLossToday += rec.Profit
		}
	}
	if v.TotalLossToday < g.dailyLossLimit {
		v.ShouldStop = true
		v.Reason = fmt.Sprintf("daily loss limit exceeded: $%.2f", -v.TotalLossToday)
	}

	return v, nil
}

// RiskMeter computes the share of the balance a stake exposes. A balance of
// zero or less never divides and yields zero exposure.
func (g *Guard) RiskMeter(userID string, stake float64) (Meter, error) {
	balance, err := g.store.Balance(userID)
	if err != nil {
		return Meter{}, err
	}

	m := Meter{Stake: stake, Balance: balance}
	if balance > 0 {
		m.Percentage = stake / balance * 100
	}
	switch {
	case m.Percentage < 2:
		m.Level = "low"
	case m.Percentage < 5:
		m.Level = "medium"
	default:
		m.Level = "high"
	}
	return m, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
