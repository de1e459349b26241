// Package bot implements autonomous trading bots: a per-bot state machine,
// swappable strategies and the engine driving one run loop per active bot.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle state of a bot.
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
	StateError
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Config is a bot's trading configuration. It is immutable while the bot
// runs and may only be edited in the STOPPED state.
type Config struct {
	Symbol     string  `json:"symbol"`
	MaxTrades  int     `json:"max_trades"`
	StopLoss   float64 `json:"stop_loss"`   // negative
	TakeProfit float64 `json:"take_profit"` // positive
	Stake      float64 `json:"stake"`
	Strategy   string  `json:"strategy"` // strategy descriptor, e.g. "martingale"
}

func (c Config) validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("bot config: symbol is required")
	}
	if c.MaxTrades <= 0 {
		return fmt.Errorf("bot config: max_trades must be positive, got %d", c.MaxTrades)
	}
	if c.Stake <= 0 {
		return fmt.Errorf("bot config: stake must be positive, got %f", c.Stake)
	}
	if c.StopLoss > 0 {
		return fmt.Errorf("bot config: stop_loss must be zero or negative, got %f", c.StopLoss)
	}
	if c.TakeProfit < 0 {
		return fmt.Errorf("bot config: take_profit must be zero or positive, got %f", c.TakeProfit)
	}
	return nil
}

// Stats is a bot's performance record. Only the owning run loop mutates it.
type Stats struct {
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Profit float64 `json:"profit"`
}

// Log event kinds.
const (
	LogEventTrade         = "TRADE"
	LogEventTradeFailed   = "TRADE_FAILED"
	LogEventStopCondition = "STOP_CONDITION"
	LogEventStopLoss      = "STOP_LOSS_HIT"
	LogEventTakeProfit    = "TAKE_PROFIT_HIT"
	LogEventError         = "ERROR"
)

// Trade result labels used in log entries.
const (
	ResultWin  = "WIN"
	ResultLoss = "LOSS"
)

// LogEntry is one append-only bot log record.
type LogEntry struct {
	Timestamp time.Time `json:"time"`
	Event     string    `json:"event"`
	Stake     float64   `json:"stake,omitempty"`
	Result    string    `json:"result,omitempty"`
	Profit    float64   `json:"profit,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// logRing retains the most recent entries up to a fixed cap. Discarding
// older entries is a memory bound, not a semantic guarantee.
type logRing struct {
	cap     int
	entries []LogEntry
}

func newLogRing(cap int) *logRing {
	if cap <= 0 {
		cap = 100
	}
	return &logRing{cap: cap}
}

func (r *logRing) append(e LogEntry) {
	r.entries = append(r.entries, e)
	if len(r.entries) > r.cap {
		r.entries = r.entries[len(r.entries)-r.cap:]
	}
}

// all returns a copy of the retained entries, oldest first.
func (r *logRing) all() []LogEntry {
	return append([]LogEntry(nil), r.entries...)
}

// Bot is one automation loop's state. All fields behind mu are owned by
// the run loop and the engine's control operations, nothing else.
type Bot struct {
	ID    string
	Owner string
	Name  string

	mu       sync.Mutex
	config   Config
	stats    Stats
	state    State
	logs     *logRing
	strategy Strategy
	cancel   context.CancelFunc
	done     chan struct{}
}

// Info is a read-only snapshot of a bot.
type Info struct {
	ID     string `json:"bot_id"`
	Owner  string `json:"user_id"`
	Name   string `json:"name"`
	State  string `json:"status"`
	Config Config `json:"config"`
	Stats  Stats  `json:"stats"`
}

func (b *Bot) snapshot() Info {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Info{
		ID:     b.ID,
		Owner:  b.Owner,
		Name:   b.Name,
		State:  b.state.String(),
		Config: b.config,
		Stats:  b.stats,
	}
}
