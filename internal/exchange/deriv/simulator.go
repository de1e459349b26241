package deriv

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Simulator generates a synthetic tick stream with random-walk quotes. It
// is used when no upstream connection is configured, filling the same
// TickHandler contract as the WebSocket client.
type Simulator struct {
	interval time.Duration
	handler  TickHandler
	rng      *rand.Rand
	quotes   map[string]float64
	order    []string
	logger   *zap.Logger
}

// NewSimulator creates a Simulator emitting one tick per symbol every
// interval.
func NewSimulator(symbols []string, interval time.Duration, seed int64, handler TickHandler, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	quotes := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		quotes[s] = 1000
	}
	return &Simulator{
		interval: interval,
		handler:  handler,
		rng:      rand.New(rand.NewSource(seed)),
		quotes:   quotes,
		order:    append([]string(nil), symbols...),
		logger:   logger,
	}
}

// Run emits ticks until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("tick simulator started", zap.Int("symbols", len(s.order)))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tick simulator stopped")
			return ctx.Err()
		case now := <-ticker.C:
			for _, symbol := range s.order {
				s.quotes[symbol] += (s.rng.Float64() - 0.5) * 2
				s.handler(Tick{Symbol: symbol, Quote: s.quotes[symbol], Epoch: now})
			}
		}
	}
}
