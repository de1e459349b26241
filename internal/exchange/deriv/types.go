// Package deriv handles interactions with the Deriv trading API. The core
// only depends on the TickHandler and Gateway contracts defined here; the
// WebSocket client and the simulated gateway are interchangeable behind
// them.
package deriv

import (
	"fmt"
	"time"
)

// Tick is one price observation for a symbol.
type Tick struct {
	Symbol string
	Quote  float64
	Epoch  time.Time
}

// TickHandler consumes ticks delivered by a tick source. Delivery is
// order-preserving per symbol; duplicates must be tolerated by the handler.
type TickHandler func(Tick)

// ContractParams describes a digit contract purchase.
type ContractParams struct {
	ContractType string  // e.g. DIGITOVER, DIGITEVEN
	Symbol       string
	Stake        float64
	Duration     int
	DurationUnit string // "t" for ticks
}

// Contract is a purchased, not yet settled contract.
type Contract struct {
	ContractID   string
	Params       ContractParams
	BuyPrice     float64
	Payout       float64
	PurchaseTime time.Time
}

// Outcome is the settlement result of a contract.
type Outcome struct {
	ContractID string
	Status     string // "won" or "lost"
	Profit     float64
}

// GatewayError reports a failed or timed-out order operation.
type GatewayError struct {
	Op      string // "buy" or "sell"
	Timeout bool
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("gateway %s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
