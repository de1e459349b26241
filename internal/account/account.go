// Package account keeps per-user session state: balance, currency, active
// contracts and the append-only trade history. All state is in-memory for
// the lifetime of the process.
package account

import (
	"fmt"
	"sync"
	"time"
)

// Outcome is the settlement state of a trade.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
)

// TradeRecord describes one contract from purchase to settlement. Once a
// record enters the history it is never mutated.
type TradeRecord struct {
	ContractID string    `json:"contract_id"`
	Symbol     string    `json:"symbol"`
	Stake      float64   `json:"stake"`
	Outcome    Outcome   `json:"outcome"`
	Profit     float64   `json:"profit"`
	Timestamp  time.Time `json:"timestamp"`
}

// Summary is a read-only view of a user's account.
type Summary struct {
	UserID          string  `json:"user_id"`
	Balance         float64 `json:"balance"`
	Currency        string  `json:"currency"`
	ActiveContracts int     `json:"active_contracts"`
	TotalTrades     int     `json:"total_trades"`
}

// Proposal is a payout estimate for a stake before purchase.
type Proposal struct {
	Stake         float64 `json:"stake"`
	Payout        float64 `json:"payout"`
	Profit        float64 `json:"profit"`
	ReturnPercent float64 `json:"return_percent"`
}

// payoutMultiplier mirrors the broker's fixed digit-contract payout.
const payoutMultiplier = 1.95

// DefaultBalance seeds a freshly created demo session.
const DefaultBalance = 10000

// UnknownUserError reports an operation against a user without a session.
type UnknownUserError struct {
	UserID string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("unknown user %q", e.UserID)
}

type session struct {
	balance  float64
	currency string
	active   map[string]TradeRecord
	history  []TradeRecord
}

// Store is an in-memory account repository. One lock guards the session map
// and all per-user state; trade history is append-only.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

// CreateSession registers a user session, replacing any previous one.
func (s *Store) CreateSession(userID, currency string, balance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = &session{
		balance:  balance,
		currency: currency,
		active:   make(map[string]TradeRecord),
	}
}

// EnsureSession registers a user session only if none exists yet.
func (s *Store) EnsureSession(userID, currency string, balance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; ok {
		return
	}
	s.sessions[userID] = &session{
		balance:  balance,
		currency: currency,
		active:   make(map[string]TradeRecord),
	}
}

// AdjustBalance applies a profit or loss delta to a user's balance.
func (s *Store) AdjustBalance(userID string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return &UnknownUserError{UserID: userID}
	}
	sess.balance += delta
	return nil
}

// SetBalance updates a user's live balance.
func (s *Store) SetBalance(userID string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return &UnknownUserError{UserID: userID}
	}
	sess.balance = balance
	return nil
}

// Balance returns a user's current balance.
func (s *Store) Balance(userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return 0, &UnknownUserError{UserID: userID}
	}
	return sess.balance, nil
}

// Summary returns a read-only view of the user's account.
func (s *Store) Summary(userID string) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return Summary{}, &UnknownUserError{UserID: userID}
	}
	return Summary{
		UserID:          userID,
		Balance:         sess.balance,
		Currency:        sess.currency,
		ActiveContracts: len(sess.active),
		TotalTrades:     len(sess.history),
	}, nil
}

// OpenContract records a purchased contract as active. Its outcome is
// pending until CloseContract settles it.
func (s *Store) OpenContract(userID string, rec TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return &UnknownUserError{UserID: userID}
	}
	rec.Outcome = OutcomePending
	sess.active[rec.ContractID] = rec
	return nil
}

// ActiveContracts returns the user's open contracts.
func (s *Store) ActiveContracts(userID string) ([]TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, &UnknownUserError{UserID: userID}
	}
	out := make([]TradeRecord, 0, len(sess.active))
	for _, rec := range sess.active {
		out = append(out, rec)
	}
	return out, nil
}

// VoidContract drops an active contract without settling it. Used when a
// purchased contract cannot be settled; the stake is treated as never
// committed, so neither the history nor the balance is touched. Voiding a
// contract the session does not hold is a no-op.
func (s *Store) VoidContract(userID, contractID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return &UnknownUserError{UserID: userID}
	}
	delete(sess.active, contractID)
	return nil
}

// CloseContract settles an active contract, moves it into the history and
// returns the settled record. A contract unknown to the session is settled
// straight into the history.
func (s *Store) CloseContract(userID, contractID string, outcome Outcome, profit float64) (TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return TradeRecord{}, &UnknownUserError{UserID: userID}
	}

	rec, found := sess.active[contractID]
	if found {
		delete(sess.active, contractID)
	} else {
		rec = TradeRecord{ContractID: contractID}
	}
	rec.Outcome = outcome
	rec.Profit = profit
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	sess.history = append(sess.history, rec)
	return rec, nil
}

// AppendTrade appends an already-settled trade to the history, bypassing
// the active set. Used for importing or replaying settled trades.
func (s *Store) AppendTrade(userID string, rec TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return &UnknownUserError{UserID: userID}
	}
	sess.history = append(sess.history, rec)
	return nil
}

// History returns a copy of the user's trade history, oldest first.
func (s *Store) History(userID string) ([]TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, &UnknownUserError{UserID: userID}
	}
	return append([]TradeRecord(nil), sess.history...), nil
}

// MakeProposal estimates the payout of a digit contract at the given stake.
func MakeProposal(stake float64) Proposal {
	payout := stake * payoutMultiplier
	return Proposal{
		Stake:         stake,
		Payout:        payout,
		Profit:        payout - stake,
		ReturnPercent: (payoutMultiplier - 1) * 100,
	}
}
