package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/config"
)

var testRiskConf = config.RiskConf{MaxConsecutiveLosses: 5, DailyLossLimit: -100}

func newTestGuard(t *testing.T) (*Guard, *account.Store) {
	t.Helper()
	store := account.NewStore()
	store.CreateSession("u1", "USD", 1000)
	g := NewGuard(store, testRiskConf)
	return g, store
}

func appendTrades(t *testing.T, store *account.Store, outcomes []account.Outcome, profit float64, ts time.Time) {
	t.Helper()
	for _, o := range outcomes {
		p := profit
		if o == account.OutcomeWon {
			p = -profit
		}
		require.NoError(t, store.AppendTrade("u1", account.TradeRecord{
			Symbol:    "R_10",
			Stake:     1,
			Outcome:   o,
			Profit:    p,
			Timestamp: ts,
		}))
	}
}

func TestCheckCapitalProtector_EmptyHistory(t *testing.T) {
	g, _ := newTestGuard(t)

	v, err := g.CheckCapitalProtector("u1")
	require.NoError(t, err)
	assert.False(t, v.ShouldStop)
	assert.Zero(t, v.ConsecutiveLosses)
}

func TestCheckCapitalProtector_ConsecutiveLosses(t *testing.T) {
	g, store := newTestGuard(t)
	now := time.Now()

	// Four trailing losses are below the threshold.
	appendTrades(t, store, []account.Outcome{
		account.OutcomeWon,
		account.OutcomeLost, account.OutcomeLost, account.OutcomeLost, account.OutcomeLost,
	}, -1, now)

	v, err := g.CheckCapitalProtector("u1")
	require.NoError(t, err)
	assert.False(t, v.ShouldStop)
	assert.Equal(t, 4, v.ConsecutiveLosses)

	// The fifth trailing loss trips the protector.
	appendTrades(t, store, []account.Outcome{account.OutcomeLost}, -1, now)

	v, err = g.CheckCapitalProtector("u1")
	require.NoError(t, err)
	assert.True(t, v.ShouldStop)
	assert.Equal(t, 5, v.ConsecutiveLosses)
	assert.Contains(t, v.Reason, "5")
}

func TestCheckCapitalProtector_WinResetsStreak(t *testing.T) {
	g, store := newTestGuard(t)
	now := time.Now()

	appendTrades(t, store, []account.Outcome{
		account.OutcomeLost, account.OutcomeLost, account.OutcomeLost,
		account.OutcomeLost, account.OutcomeLost,
		account.OutcomeWon,
		account.OutcomeLost, account.OutcomeLost,
	}, -1, now)

	v, err := g.CheckCapitalProtector("u1")
	require.NoError(t, err)
	assert.False(t, v.ShouldStop)
	assert.Equal(t, 2, v.ConsecutiveLosses)
}

func TestCheckCapitalProtector_DailyLossLimit(t *testing.T) {
	g, store := newTestGuard(t)
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	// Yesterday's losses never count towards today's limit.
	appendTrades(t, store, []account.Outcome{account.OutcomeLost, account.OutcomeLost}, -80, now.Add(-24*time.Hour))
	// Today: -60 and -50 sum past the -100 floor; the win in between
	// keeps the consecutive-loss check quiet.
	appendTrades(t, store, []account.Outcome{account.OutcomeLost}, -60, now)
	appendTrades(t, store, []account.Outcome{account.OutcomeWon}, -10, now)
	appendTrades(t, store, []account.Outcome{account.OutcomeLost}, -50, now)

	v, err := g.CheckCapitalProtector("u1")
	require.NoError(t, err)
	assert.True(t, v.ShouldStop)
	assert.InDelta(t, -110, v.TotalLossToday, 1e-9)
	assert.Contains(t, v.Reason, "daily loss limit exceeded")
}

func TestCheckCapitalProtector_DailyReasonWinsWhenBothTrigger(t *testing.T) {
	g, store := newTestGuard(t)
	now := time.Now()

	// Five losses of -30 each: both checks trigger; the daily-loss reason
	// is evaluated last and overwrites the streak reason.
	appendTrades(t, store, []account.Outcome{
		account.OutcomeLost, account.OutcomeLost, account.OutcomeLost,
		account.OutcomeLost, account.OutcomeLost,
	}, -30, now)

	v, err := g.CheckCapitalProtector("u1")
	require.NoError(t, err)
	assert.True(t, v.ShouldStop)
	assert.Equal(t, 5, v.ConsecutiveLosses)
	assert.Contains(t, v.Reason, "daily loss limit exceeded")
}

func TestCheckCapitalProtector_UnknownUser(t *testing.T) {
	g, _ := newTestGuard(t)
	_, err := g.CheckCapitalProtector("ghost")
	assert.Error(t, err)
}

func TestRiskMeter(t *testing.T) {
	tests := []struct {
		name       string
		balance    float64
		stake      float64
		wantPct    float64
		wantLevel  string
	}{
		{name: "low exposure", balance: 1000, stake: 10, wantPct: 1, wantLevel: "low"},
		{name: "medium exposure", balance: 1000, stake: 30, wantPct: 3, wantLevel: "medium"},
		{name: "high exposure", balance: 1000, stake: 100, wantPct: 10, wantLevel: "high"},
		{name: "zero balance never divides", balance: 0, stake: 10, wantPct: 0, wantLevel: "low"},
		{name: "negative balance never divides", balance: -5, stake: 10, wantPct: 0, wantLevel: "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := account.NewStore()
			store.CreateSession("u1", "USD", tt.balance)
			g := NewGuard(store, testRiskConf)

			m, err := g.RiskMeter("u1", tt.stake)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPct, m.Percentage, 1e-9)
			assert.Equal(t, tt.wantLevel, m.Level)
		})
	}
}
