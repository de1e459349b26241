package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/digit-pulse-bot/internal/analytics"
	"github.com/your-org/digit-pulse-bot/internal/config"
)

func snapshotWithDigits(digits []int, patterns ...analytics.Pattern) analytics.Snapshot {
	return analytics.Snapshot{
		Symbol:     "R_10",
		LastDigits: digits,
		Patterns:   patterns,
	}
}

func repeatSeq(seq []int, times int) []int {
	out := make([]int, 0, len(seq)*times)
	for i := 0; i < times; i++ {
		out = append(out, seq...)
	}
	return out
}

func TestEvaluateSnapshot_InsufficientData(t *testing.T) {
	sig := evaluateSnapshot(snapshotWithDigits([]int{1, 2, 3}))

	assert.Equal(t, KindWait, sig.Kind)
	assert.Equal(t, 0.0, sig.Confidence)
	assert.Equal(t, "insufficient data", sig.Reason)
}

func TestEvaluateSnapshot_BiasRules(t *testing.T) {
	tests := []struct {
		name           string
		digits         []int
		wantKind       Kind
		wantConfidence float64
	}{
		{
			name: "even bias recommends odd",
			// 16 of the last 20 are even, over-count stays neutral.
			digits:         append(repeatSeq([]int{2, 4, 6, 8}, 4), 1, 3, 5, 7),
			wantKind:       KindDigitOdd,
			wantConfidence: 0.75,
		},
		{
			name:           "odd bias recommends even",
			digits:         append(repeatSeq([]int{1, 3, 5, 9}, 4), 2, 4, 6, 8),
			wantKind:       KindDigitEven,
			wantConfidence: 0.75,
		},
		{
			name: "over bias recommends under",
			// All of the last 20 exceed 5 while parity stays balanced.
			digits:         repeatSeq([]int{6, 7, 8, 9}, 5),
			wantKind:       KindDigitUnder,
			wantConfidence: 0.70,
		},
		{
			name:           "under bias recommends over",
			digits:         repeatSeq([]int{0, 1, 2, 3}, 5),
			wantKind:       KindDigitOver,
			wantConfidence: 0.70,
		},
		{
			name:           "balanced window yields wait",
			digits:         repeatSeq([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 2),
			wantKind:       KindWait,
			wantConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := evaluateSnapshot(snapshotWithDigits(tt.digits))
			assert.Equal(t, tt.wantKind, sig.Kind)
			assert.InDelta(t, tt.wantConfidence, sig.Confidence, 1e-9)
		})
	}
}

func TestEvaluateSnapshot_OnlyLastTwentyInspected(t *testing.T) {
	// Heavy odd prefix followed by 20 balanced digits: the prefix must not
	// influence the bias checks.
	digits := append(repeatSeq([]int{1, 3, 5, 7}, 20), repeatSeq([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 2)...)
	sig := evaluateSnapshot(snapshotWithDigits(digits))

	assert.Equal(t, KindWait, sig.Kind)
	assert.InDelta(t, 0.5, sig.Confidence, 1e-9)
}

func TestEvaluateSnapshot_StreakOverride(t *testing.T) {
	neutral := repeatSeq([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 2)

	t.Run("high streak fades to under", func(t *testing.T) {
		sig := evaluateSnapshot(snapshotWithDigits(neutral,
			analytics.Pattern{Kind: analytics.PatternStreak, Digit: 7, Length: 4, Confidence: 0.90}))
		assert.Equal(t, KindDigitUnder, sig.Kind)
		assert.InDelta(t, 0.90, sig.Confidence, 1e-9)
		assert.Contains(t, sig.Reason, "streak of 7")
	})

	t.Run("low streak fades to over", func(t *testing.T) {
		sig := evaluateSnapshot(snapshotWithDigits(neutral,
			analytics.Pattern{Kind: analytics.PatternStreak, Digit: 2, Length: 3, Confidence: 0.85}))
		assert.Equal(t, KindDigitOver, sig.Kind)
		assert.InDelta(t, 0.85, sig.Confidence, 1e-9)
	})

	t.Run("only the most recent pattern counts", func(t *testing.T) {
		sig := evaluateSnapshot(snapshotWithDigits(neutral,
			analytics.Pattern{Kind: analytics.PatternStreak, Digit: 7, Length: 3, Confidence: 0.85},
			analytics.Pattern{Kind: analytics.PatternAlternating, Confidence: 0.75}))
		assert.Equal(t, KindWait, sig.Kind)
	})
}

func TestEvaluateSnapshot_TieKeepsEvaluationOrder(t *testing.T) {
	// Even bias and a streak override at identical confidence: the bias
	// candidate is evaluated first and must win the tie.
	digits := append(repeatSeq([]int{2, 4, 6, 8}, 4), 1, 3, 5, 7)
	sig := evaluateSnapshot(snapshotWithDigits(digits,
		analytics.Pattern{Kind: analytics.PatternStreak, Digit: 8, Length: 3, Confidence: 0.75}))

	assert.Equal(t, KindDigitOdd, sig.Kind)
	assert.InDelta(t, 0.75, sig.Confidence, 1e-9)
}

func TestEvaluateSnapshot_HighestConfidenceWins(t *testing.T) {
	// Odd bias (0.75) loses to a stronger streak override (0.95).
	digits := append(repeatSeq([]int{1, 3, 5, 9}, 4), 2, 4, 6, 8)
	sig := evaluateSnapshot(snapshotWithDigits(digits,
		analytics.Pattern{Kind: analytics.PatternStreak, Digit: 9, Length: 8, Confidence: 0.95}))

	assert.Equal(t, KindDigitUnder, sig.Kind)
	assert.InDelta(t, 0.95, sig.Confidence, 1e-9)
}

func TestEngine_Evaluate_EndToEnd(t *testing.T) {
	a := analytics.NewEngine([]config.SymbolConf{{Name: "R_10", Precision: 3}})
	e := NewEngine(a, 0)

	// Ten identical trailing digits: the streak override (0.95) beats the
	// odd-bias candidate (0.75) and the under-bias candidate (0.70).
	for i := 0; i < 10; i++ {
		_, err := a.Ingest("R_10", 100.003)
		require.NoError(t, err)
	}

	sig, err := e.Evaluate("R_10")
	require.NoError(t, err)
	assert.Equal(t, KindDigitOver, sig.Kind)
	assert.InDelta(t, 0.95, sig.Confidence, 1e-9)
	assert.Equal(t, recommendedDuration, sig.RecommendedDuration)
	assert.Equal(t, recommendedStake, sig.RecommendedStake)
}

func TestEngine_Evaluate_UnknownSymbol(t *testing.T) {
	a := analytics.NewEngine([]config.SymbolConf{{Name: "R_10", Precision: 3}})
	e := NewEngine(a, 0)

	_, err := e.Evaluate("R_404")
	assert.Error(t, err)
}

func TestEngine_Evaluate_CacheFreshnessBound(t *testing.T) {
	a := analytics.NewEngine([]config.SymbolConf{{Name: "R_10", Precision: 3}})
	e := NewEngine(a, time.Hour)

	sig, err := e.Evaluate("R_10")
	require.NoError(t, err)
	require.Equal(t, KindWait, sig.Kind)
	require.Equal(t, 0.0, sig.Confidence)

	// New ticks arrive, but the cached result is still within its TTL.
	for i := 0; i < 10; i++ {
		_, err := a.Ingest("R_10", 100.003)
		require.NoError(t, err)
	}

	cached, err := e.Evaluate("R_10")
	require.NoError(t, err)
	assert.Equal(t, KindWait, cached.Kind)
	assert.Equal(t, 0.0, cached.Confidence)

	// An engine without caching sees the fresh state immediately.
	fresh, err := NewEngine(a, 0).Evaluate("R_10")
	require.NoError(t, err)
	assert.Equal(t, KindDigitOver, fresh.Kind)
}

func TestKind_Strings(t *testing.T) {
	assert.Equal(t, "DIGIT_OVER", KindDigitOver.String())
	assert.Equal(t, "WAIT", KindWait.String())
	assert.Equal(t, "DIGITUNDER", KindDigitUnder.ContractType())
	assert.Equal(t, "", KindWait.ContractType())
}
