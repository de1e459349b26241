package account_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/digit-pulse-bot/internal/account"
)

func TestStore_UnknownUser(t *testing.T) {
	s := account.NewStore()

	var uue *account.UnknownUserError
	_, err := s.Balance("ghost")
	require.Error(t, err)
	assert.True(t, errors.As(err, &uue))
	assert.Equal(t, "ghost", uue.UserID)

	_, err = s.History("ghost")
	assert.Error(t, err)
	assert.Error(t, s.SetBalance("ghost", 10))
}

func TestStore_SessionLifecycle(t *testing.T) {
	s := account.NewStore()
	s.CreateSession("u1", "USD", 500)

	bal, err := s.Balance("u1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, bal)

	require.NoError(t, s.SetBalance("u1", 480.5))
	sum, err := s.Summary("u1")
	require.NoError(t, err)
	assert.Equal(t, 480.5, sum.Balance)
	assert.Equal(t, "USD", sum.Currency)
	assert.Equal(t, 0, sum.ActiveContracts)
	assert.Equal(t, 0, sum.TotalTrades)
}

func TestStore_EnsureSessionAndAdjustBalance(t *testing.T) {
	s := account.NewStore()
	s.CreateSession("u1", "USD", 500)

	// EnsureSession must not clobber an existing session.
	s.EnsureSession("u1", "EUR", 0)
	sum, err := s.Summary("u1")
	require.NoError(t, err)
	assert.Equal(t, "USD", sum.Currency)
	assert.Equal(t, 500.0, sum.Balance)

	s.EnsureSession("u2", "USD", 1000)
	require.NoError(t, s.AdjustBalance("u2", -12.5))
	bal, err := s.Balance("u2")
	require.NoError(t, err)
	assert.Equal(t, 987.5, bal)

	assert.Error(t, s.AdjustBalance("ghost", 1))
}

func TestStore_ContractOpenClose(t *testing.T) {
	s := account.NewStore()
	s.CreateSession("u1", "USD", 500)

	rec := account.TradeRecord{
		ContractID: "c-1",
		Symbol:     "R_10",
		Stake:      2,
		Timestamp:  time.Now(),
	}
	require.NoError(t, s.OpenContract("u1", rec))

	active, err := s.ActiveContracts("u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, account.OutcomePending, active[0].Outcome)

	settled, err := s.CloseContract("u1", "c-1", account.OutcomeWon, 1.9)
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeWon, settled.Outcome)
	assert.Equal(t, 1.9, settled.Profit)

	// The contract moved from the active set into the history.
	active, err = s.ActiveContracts("u1")
	require.NoError(t, err)
	assert.Empty(t, active)

	history, err := s.History("u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "c-1", history[0].ContractID)

	sum, err := s.Summary("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalTrades)
}

func TestStore_VoidContract(t *testing.T) {
	s := account.NewStore()
	s.CreateSession("u1", "USD", 500)
	require.NoError(t, s.OpenContract("u1", account.TradeRecord{ContractID: "c-1", Symbol: "R_10", Stake: 2}))

	require.NoError(t, s.VoidContract("u1", "c-1"))

	// A voided contract leaves no trace: not active, not in the history.
	active, err := s.ActiveContracts("u1")
	require.NoError(t, err)
	assert.Empty(t, active)
	history, err := s.History("u1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// Voiding a contract the session never held is a no-op.
	require.NoError(t, s.VoidContract("u1", "never-opened"))
	assert.Error(t, s.VoidContract("ghost", "c-1"))
}

func TestStore_CloseUnknownContractStillSettles(t *testing.T) {
	s := account.NewStore()
	s.CreateSession("u1", "USD", 100)

	settled, err := s.CloseContract("u1", "external-7", account.OutcomeLost, -3)
	require.NoError(t, err)
	assert.Equal(t, account.OutcomeLost, settled.Outcome)
	assert.False(t, settled.Timestamp.IsZero())

	history, err := s.History("u1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStore_HistoryIsACopy(t *testing.T) {
	s := account.NewStore()
	s.CreateSession("u1", "USD", 100)
	require.NoError(t, s.AppendTrade("u1", account.TradeRecord{ContractID: "c-1", Outcome: account.OutcomeWon}))

	h1, err := s.History("u1")
	require.NoError(t, err)
	h1[0].ContractID = "mutated"

	h2, err := s.History("u1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", h2[0].ContractID)
}

func TestStore_ConcurrentAppendsAndReads(t *testing.T) {
	s := account.NewStore()
	s.CreateSession("u1", "USD", 100)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = s.AppendTrade("u1", account.TradeRecord{ContractID: fmt.Sprintf("c-%d", i)})
		}
	}()
	for i := 0; i < 200; i++ {
		_, err := s.History("u1")
		require.NoError(t, err)
		_, err = s.Summary("u1")
		require.NoError(t, err)
	}
	<-done

	history, err := s.History("u1")
	require.NoError(t, err)
	assert.Len(t, history, 500)
}

func TestMakeProposal(t *testing.T) {
	p := account.MakeProposal(2.0)
	assert.InDelta(t, 3.9, p.Payout, 1e-9)
	assert.InDelta(t, 1.9, p.Profit, 1e-9)
	assert.InDelta(t, 95, p.ReturnPercent, 1e-9)
}
