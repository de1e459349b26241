package bot

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/digit-pulse-bot/internal/account"
	"github.com/your-org/digit-pulse-bot/internal/config"
	"github.com/your-org/digit-pulse-bot/internal/exchange/deriv"
	"github.com/your-org/digit-pulse-bot/internal/metrics"
	"github.com/your-org/digit-pulse-bot/internal/notifier"
	"github.com/your-org/digit-pulse-bot/internal/risk"
	"github.com/your-org/digit-pulse-bot/internal/signal"
	"github.com/your-org/digit-pulse-bot/pkg/logger"
)

// UnknownBotError reports an operation against a bot that does not exist.
type UnknownBotError struct {
	ID string
}

func (e *UnknownBotError) Error() string {
	return fmt.Sprintf("unknown bot %q", e.ID)
}

// StateTransitionError reports a control operation invalid in the bot's
// current state.
type StateTransitionError struct {
	ID    string
	State State
	Op    string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s bot %s in state %s", e.Op, e.ID, e.State)
}

// Engine owns every bot and drives one run loop goroutine per active bot.
type Engine struct {
	signals  *signal.Engine
	guard    *risk.Guard
	gateway  deriv.Gateway
	accounts *account.Store
	notifier notifier.Notifier

	interval     time.Duration
	orderTimeout time.Duration
	maxLogs      int

	mu   sync.RWMutex
	bots map[string]*Bot
}

// NewEngine creates a bot engine wired to its collaborators.
func NewEngine(
	signals *signal.Engine,
	guard *risk.Guard,
	gateway deriv.Gateway,
	accounts *account.Store,
	notif notifier.Notifier,
	cfg config.BotConf,
) *Engine {
	return &Engine{
		signals:      signals,
		guard:        guard,
		gateway:      gateway,
		accounts:     accounts,
		notifier:     notif,
		interval:     time.Duration(cfg.LoopIntervalSec) * time.Second,
		orderTimeout: time.Duration(cfg.OrderTimeoutSec) * time.Second,
		maxLogs:      cfg.MaxRetainedLogs,
		bots:         make(map[string]*Bot),
	}
}

// Create registers a new bot in the STOPPED state and returns its snapshot.
func (e *Engine) Create(owner, name string, cfg Config) (Info, error) {
	if err := cfg.validate(); err != nil {
		return Info{}, err
	}
	if owner == "" {
		return Info{}, fmt.Errorf("bot owner is required")
	}
	e.accounts.EnsureSession(owner, "USD", account.DefaultBalance)

	b := &Bot{
		ID:       uuid.New().String(),
		Owner:    owner,
		Name:     name,
		config:   cfg,
		state:    StateStopped,
		logs:     newLogRing(e.maxLogs),
		strategy: NewStrategy(cfg.Strategy),
	}

	e.mu.Lock()
	e.bots[b.ID] = b
	e.mu.Unlock()

	logger.Infof("bot %s created for user %s on %s (strategy=%s)", b.ID, owner, cfg.Symbol, b.strategy.Name())
	return b.snapshot(), nil
}

func (e *Engine) get(botID string) (*Bot, error) {
	e.mu.RLock()
	b, ok := e.bots[botID]
	e.mu.RUnlock()
	if !ok {
		return nil, &UnknownBotError{ID: botID}
	}
	return b, nil
}

// Start launches a bot's run loop. From STOPPED a fresh session begins,
// resetting stats and logs; from PAUSED the existing loop resumes. A bot in
// ERROR must be stopped before it can start again.
func (e *Engine) Start(botID string) error {
	b, err := e.get(botID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	switch b.state {
	case StatePaused:
		b.state = StateRunning
		b.mu.Unlock()
		metrics.RunningBots.Inc()
		logger.Infof("bot %s resumed", b.ID)
		return nil
	case StateStopped:
	default:
		defer b.mu.Unlock()
		return &StateTransitionError{ID: b.ID, State: b.state, Op: "start"}
	}
	b.stats = Stats{}
	b.logs = newLogRing(e.maxLogs)
	b.state = StateRunning
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done
	b.mu.Unlock()

	metrics.RunningBots.Inc()
	logger.Infof("bot %s started", b.ID)
	go e.run(ctx, cancel, b, done)
	return nil
}

// Stop moves a bot to STOPPED from any state, cancelling the run loop and
// waiting for it to exit when one is active. Final stats stay intact.
func (e *Engine) Stop(botID string) error {
	b, err := e.get(botID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	switch b.state {
	case StateRunning, StatePaused:
		cancel, done := b.cancel, b.done
		b.mu.Unlock()
		cancel()
		<-done
		logger.Infof("bot %s stopped by request", b.ID)
	case StateError:
		b.state = StateStopped
		b.mu.Unlock()
		logger.Infof("bot %s cleared from ERROR", b.ID)
	default:
		b.mu.Unlock()
	}
	return nil
}

// Pause suspends trading without tearing down the run loop.
func (e *Engine) Pause(botID string) error {
	b, err := e.get(botID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateRunning {
		return &StateTransitionError{ID: b.ID, State: b.state, Op: "pause"}
	}
	b.state = StatePaused
	metrics.RunningBots.Dec()
	logger.Infof("bot %s paused", b.ID)
	return nil
}

// Resume returns a paused bot to RUNNING.
func (e *Engine) Resume(botID string) error {
	b, err := e.get(botID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StatePaused {
		return &StateTransitionError{ID: b.ID, State: b.state, Op: "resume"}
	}
	b.state = StateRunning
	metrics.RunningBots.Inc()
	logger.Infof("bot %s resumed", b.ID)
	return nil
}

// Remove deletes a bot. Only STOPPED and ERROR bots may be removed.
func (e *Engine) Remove(botID string) error {
	b, err := e.get(botID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	state := b.state
	b.mu.Unlock()
	if state != StateStopped && state != StateError {
		return &StateTransitionError{ID: b.ID, State: state, Op: "remove"}
	}
	e.mu.Lock()
	delete(e.bots, botID)
	e.mu.Unlock()
	return nil
}

// Info returns a bot's snapshot.
func (e *Engine) Info(botID string) (Info, error) {
	b, err := e.get(botID)
	if err != nil {
		return Info{}, err
	}
	return b.snapshot(), nil
}

// Logs returns a copy of a bot's retained log, oldest first.
func (e *Engine) Logs(botID string) ([]LogEntry, error) {
	b, err := e.get(botID)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logs.all(), nil
}

// List returns snapshots of every bot, filtered by owner when owner is
// non-empty.
func (e *Engine) List(owner string) []Info {
	e.mu.RLock()
	bots := make([]*Bot, 0, len(e.bots))
	for _, b := range e.bots {
		bots = append(bots, b)
	}
	e.mu.RUnlock()

	infos := make([]Info, 0, len(bots))
	for _, b := range bots {
		if owner != "" && b.Owner != owner {
			continue
		}
		infos = append(infos, b.snapshot())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// StopAll stops every bot. Used during shutdown.
func (e *Engine) StopAll() {
	for _, info := range e.List("") {
		if err := e.Stop(info.ID); err != nil {
			logger.Warnf("stopping bot %s: %v", info.ID, err)
		}
	}
}

// run is the bot's trading loop. Exactly one goroutine per started bot
// mutates that bot's stats. done identifies this loop instance so its
// teardown cannot touch a newer session started after it halted.
func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, b *Bot, done chan struct{}) {
	defer close(done)
	defer e.finalize(b, done)
	defer cancel()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if e.iterate(ctx, b) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// finalize settles the bot's terminal state after the loop exits. The loop's
// own context is already cancelled by run's deferred cancel. A loop that
// exits while PAUSED was decremented from the gauge at pause time.
func (e *Engine) finalize(b *Bot, done chan struct{}) {
	b.mu.Lock()
	paused := b.done == done && b.state == StatePaused
	if b.done == done {
		b.cancel = nil
		if b.state == StateRunning || b.state == StatePaused {
			b.state = StateStopped
		}
	}
	b.mu.Unlock()
	if !paused {
		metrics.RunningBots.Dec()
	}
}

// iterate performs one trading cycle. It returns true when the loop must
// exit: a stop condition fired, the capital protector halted the user, or
// the bot entered ERROR.
func (e *Engine) iterate(ctx context.Context, b *Bot) bool {
	b.mu.Lock()
	if b.state == StatePaused {
		b.mu.Unlock()
		return false
	}
	if b.state != StateRunning {
		b.mu.Unlock()
		return true
	}
	if e.checkStopsLocked(b) {
		b.mu.Unlock()
		return true
	}
	view := StrategyView{Config: b.config, Stats: b.stats, Logs: b.logs.all()}
	strat := b.strategy
	owner := b.Owner
	b.mu.Unlock()

	verdict, err := e.guard.CheckCapitalProtector(owner)
	if err != nil {
		e.fail(b, fmt.Sprintf("capital protector check failed: %v", err))
		return true
	}
	if verdict.ShouldStop {
		b.mu.Lock()
		e.haltLocked(b, LogEventStopCondition, "capital_protector", verdict.Reason)
		b.mu.Unlock()
		return true
	}

	sig, err := e.signals.Evaluate(view.Config.Symbol)
	if err != nil {
		e.fail(b, fmt.Sprintf("signal evaluation failed: %v", err))
		return true
	}
	if sig.Kind == signal.KindWait {
		logger.Debugf("bot %s: no actionable signal for %s (%s)", b.ID, view.Config.Symbol, sig.Reason)
		return false
	}
	view.Signal = sig

	decision, err := strat.Decide(view)
	if err != nil {
		e.fail(b, err.Error())
		return true
	}

	outcome, stake, tradeErr := e.trade(ctx, owner, view.Config.Symbol, decision, sig.RecommendedDuration)
	if tradeErr != nil {
		e.logEvent(b, LogEntry{
			Timestamp: time.Now(),
			Event:     LogEventTradeFailed,
			Stake:     stake,
			Detail:    tradeErr.Error(),
		})
		logger.Warnf("bot %s: trade attempt failed: %v", b.ID, tradeErr)
		return false
	}

	won := outcome.Status == "won"
	profit := -stake
	result := ResultLoss
	acctOutcome := account.OutcomeLost
	if won {
		profit = stake * 0.95
		result = ResultWin
		acctOutcome = account.OutcomeWon
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Event:     LogEventTrade,
		Stake:     stake,
		Result:    result,
		Profit:    profit,
		Detail:    fmt.Sprintf("%s %s: %s", decision.ContractType, view.Config.Symbol, sig.Reason),
	}

	b.mu.Lock()
	b.stats.Trades++
	if won {
		b.stats.Wins++
	} else {
		b.stats.Losses++
	}
	b.stats.Profit += profit
	b.logs.append(entry)
	stopped := e.checkStopsLocked(b)
	b.mu.Unlock()

	settled, err := e.accounts.CloseContract(owner, outcome.ContractID, acctOutcome, profit)
	if err != nil {
		logger.Errorf("bot %s: settling contract: %v", b.ID, err)
	} else {
		e.notifier.Push(owner, notifier.Event{Type: notifier.EventContractClosed, Payload: settled})
	}
	if err := e.accounts.AdjustBalance(owner, profit); err != nil {
		logger.Errorf("bot %s: adjusting balance: %v", b.ID, err)
	}
	metrics.BotTrades.WithLabelValues(outcome.Status).Inc()
	e.notifier.Push(owner, notifier.Event{Type: notifier.EventBotLog, Payload: entry})

	return stopped
}

// trade buys and immediately settles one contract under the order timeout.
// The purchased contract passes through the owner's active set; a contract
// that cannot be settled is voided so the set does not accumulate orphans.
func (e *Engine) trade(ctx context.Context, owner, symbol string, d Decision, duration int) (deriv.Outcome, float64, error) {
	octx, cancel := context.WithTimeout(ctx, e.orderTimeout)
	defer cancel()

	contract, err := e.gateway.Buy(octx, deriv.ContractParams{
		ContractType: d.ContractType,
		Symbol:       symbol,
		Stake:        d.Stake,
		Duration:     duration,
		DurationUnit: "t",
	})
	if err != nil {
		return deriv.Outcome{}, d.Stake, err
	}
	if err := e.accounts.OpenContract(owner, account.TradeRecord{
		ContractID: contract.ContractID,
		Symbol:     symbol,
		Stake:      d.Stake,
		Timestamp:  contract.PurchaseTime,
	}); err != nil {
		logger.Errorf("tracking contract %s for %s: %v", contract.ContractID, owner, err)
	}
	outcome, err := e.gateway.Sell(octx, contract.ContractID)
	if err != nil {
		if verr := e.accounts.VoidContract(owner, contract.ContractID); verr != nil {
			logger.Errorf("voiding contract %s for %s: %v", contract.ContractID, owner, verr)
		}
		return deriv.Outcome{}, d.Stake, err
	}
	return outcome, d.Stake, nil
}

// checkStopsLocked evaluates the bot's stop conditions against its current
// stats and halts the bot on the first one that fires. Callers hold b.mu.
func (e *Engine) checkStopsLocked(b *Bot) bool {
	cfg, st := b.config, b.stats
	switch {
	case st.Trades >= cfg.MaxTrades:
		e.haltLocked(b, LogEventStopCondition, "max_trades",
			fmt.Sprintf("trade limit of %d reached", cfg.MaxTrades))
	case cfg.StopLoss < 0 && st.Profit <= cfg.StopLoss:
		e.haltLocked(b, LogEventStopLoss, "stop_loss",
			fmt.Sprintf("session profit %.2f breached stop loss %.2f", st.Profit, cfg.StopLoss))
	case cfg.TakeProfit > 0 && st.Profit >= cfg.TakeProfit:
		e.haltLocked(b, LogEventTakeProfit, "take_profit",
			fmt.Sprintf("session profit %.2f reached take profit %.2f", st.Profit, cfg.TakeProfit))
	default:
		return false
	}
	return true
}

// haltLocked records a stop event and moves the bot to STOPPED. It runs at
// most once per loop lifetime: every stop path funnels through here while
// the state is still RUNNING. Callers hold b.mu.
func (e *Engine) haltLocked(b *Bot, event, reason, detail string) {
	entry := LogEntry{Timestamp: time.Now(), Event: event, Detail: detail}
	b.logs.append(entry)
	b.state = StateStopped
	metrics.BotStops.WithLabelValues(reason).Inc()
	logger.Infof("bot %s halted (%s): %s", b.ID, reason, detail)
	e.notifier.Push(b.Owner, notifier.Event{Type: notifier.EventBotLog, Payload: entry})
}

// fail moves the bot to ERROR with a diagnostic log entry.
func (e *Engine) fail(b *Bot, detail string) {
	entry := LogEntry{Timestamp: time.Now(), Event: LogEventError, Detail: detail}
	b.mu.Lock()
	b.logs.append(entry)
	b.state = StateError
	b.mu.Unlock()
	metrics.BotStops.WithLabelValues("error").Inc()
	logger.Errorf("bot %s entered ERROR: %s", b.ID, detail)
	e.notifier.Push(b.Owner, notifier.Event{Type: notifier.EventBotLog, Payload: entry})
}

func (e *Engine) logEvent(b *Bot, entry LogEntry) {
	b.mu.Lock()
	b.logs.append(entry)
	b.mu.Unlock()
	e.notifier.Push(b.Owner, notifier.Event{Type: notifier.EventBotLog, Payload: entry})
}
