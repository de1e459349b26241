package deriv

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway is the order execution boundary. Both calls honor the caller's
// context deadline; an expired deadline surfaces as a GatewayError with
// Timeout set.
type Gateway interface {
	Buy(ctx context.Context, params ContractParams) (Contract, error)
	Sell(ctx context.Context, contractID string) (Outcome, error)
}

// payoutMultiplier mirrors the broker's fixed digit-contract payout.
const payoutMultiplier = 1.95

// SimulatedGateway fills orders immediately and settles them with a
// random outcome. It stands in for the live gateway during development and
// for bots trading on a demo balance.
type SimulatedGateway struct {
	mu      sync.Mutex
	rng     *rand.Rand
	winProb float64
	open    map[string]Contract
	logger  *zap.Logger
}

// NewSimulatedGateway creates a SimulatedGateway. seed fixes the outcome
// sequence; winProb is the chance a contract settles as won.
func NewSimulatedGateway(seed int64, winProb float64, logger *zap.Logger) *SimulatedGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedGateway{
		rng:     rand.New(rand.NewSource(seed)),
		winProb: winProb,
		open:    make(map[string]Contract),
		logger:  logger,
	}
}

// Buy simulates an immediate fill at the requested stake.
func (g *SimulatedGateway) Buy(ctx context.Context, params ContractParams) (Contract, error) {
	if err := ctx.Err(); err != nil {
		return Contract{}, &GatewayError{Op: "buy", Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
	if params.Stake <= 0 {
		return Contract{}, &GatewayError{Op: "buy", Err: errors.New("stake must be positive")}
	}

	contract := Contract{
		ContractID:   uuid.NewString(),
		Params:       params,
		BuyPrice:     params.Stake,
		Payout:       params.Stake * payoutMultiplier,
		PurchaseTime: time.Now(),
	}

	g.mu.Lock()
	g.open[contract.ContractID] = contract
	g.mu.Unlock()

	g.logger.Debug("simulated buy",
		zap.String("contract_id", contract.ContractID),
		zap.String("symbol", params.Symbol),
		zap.String("contract_type", params.ContractType),
		zap.Float64("stake", params.Stake),
	)
	return contract, nil
}

// Sell settles an open contract with a random outcome.
func (g *SimulatedGateway) Sell(ctx context.Context, contractID string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, &GatewayError{Op: "sell", Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}

	g.mu.Lock()
	contract, ok := g.open[contractID]
	if ok {
		delete(g.open, contractID)
	}
	won := g.rng.Float64() < g.winProb
	g.mu.Unlock()

	if !ok {
		return Outcome{}, &GatewayError{Op: "sell", Err: errors.New("unknown contract " + contractID)}
	}

	outcome := Outcome{ContractID: contractID, Status: "lost", Profit: -contract.BuyPrice}
	if won {
		outcome.Status = "won"
		outcome.Profit = contract.Payout - contract.BuyPrice
	}

	g.logger.Debug("simulated settlement",
		zap.String("contract_id", contractID),
		zap.String("status", outcome.Status),
		zap.Float64("profit", outcome.Profit),
	)
	return outcome, nil
}
