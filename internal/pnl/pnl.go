// Package pnl summarizes realized performance over a user's settled trades.
package pnl

import (
	"github.com/your-org/digit-pulse-bot/internal/account"
)

// Report is a realized-performance summary. ProfitFactor is zero when the
// history has no losing trades.
type Report struct {
	TotalTrades  int     `json:"total_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	NetProfit    float64 `json:"net_profit"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"`
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	BestTrade    float64 `json:"best_trade"`
	WorstTrade   float64 `json:"worst_trade"`
}

// Compute builds a Report from settled trades, oldest first. Pending
// contracts are ignored.
func Compute(trades []account.TradeRecord) Report {
	var r Report
	var equity, peak float64

	for _, t := range trades {
		if t.Outcome == account.OutcomePending {
			continue
		}
		r.TotalTrades++
		r.NetProfit += t.Profit

		if t.Outcome == account.OutcomeWon {
			r.Wins++
			r.GrossProfit += t.Profit
		} else {
			r.Losses++
			r.GrossLoss += -t.Profit
		}

		if r.TotalTrades == 1 || t.Profit > r.BestTrade {
			r.BestTrade = t.Profit
		}
		if r.TotalTrades == 1 || t.Profit < r.WorstTrade {
			r.WorstTrade = t.Profit
		}

		equity += t.Profit
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > r.MaxDrawdown {
			r.MaxDrawdown = dd
		}
	}

	if r.TotalTrades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.TotalTrades)
	}
	if r.GrossLoss > 0 {
		r.ProfitFactor = r.GrossProfit / r.GrossLoss
	}
	return r
}
