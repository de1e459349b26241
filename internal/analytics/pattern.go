package analytics

import "math"

// PatternKind identifies the kind of a detected digit pattern.
type PatternKind int

const (
	// PatternStreak is a run of three or more identical trailing digits.
	PatternStreak PatternKind = iota
	// PatternAlternating is a run of strictly alternating digit parity.
	PatternAlternating
)

// String returns the string representation of PatternKind.
func (k PatternKind) String() string {
	switch k {
	case PatternStreak:
		return "streak"
	case PatternAlternating:
		return "alternating"
	default:
		return "unknown"
	}
}

// Pattern is a short-term digit pattern detected in a symbol's window.
// Digit and Length are only meaningful for streaks.
type Pattern struct {
	Kind       PatternKind `json:"type"`
	Digit      int         `json:"digit,omitempty"`
	Length     int         `json:"length,omitempty"`
	Confidence float64     `json:"confidence"`
}

// maxRetainedPatterns bounds the per-symbol pattern list.
const maxRetainedPatterns = 5

// alternationSpan is how many trailing digits the alternation check inspects.
const alternationSpan = 6

// DetectPatterns inspects a digit sequence (oldest first) and returns the
// patterns present at its tail. It is a pure function of the sequence; both
// checks run independently on every call.
func DetectPatterns(digits []int) []Pattern {
	var patterns []Pattern

	if p, ok := detectStreak(digits); ok {
		patterns = append(patterns, p)
	}
	if p, ok := detectAlternation(digits); ok {
		patterns = append(patterns, p)
	}
	return patterns
}

// detectStreak counts trailing equal digits; three or more form a streak.
func detectStreak(digits []int) (Pattern, bool) {
	n := len(digits)
	if n == 0 {
		return Pattern{}, false
	}

	streak := 1
	for i := n - 1; i > 0; i-- {
		if digits[i] != digits[i-1] {
			break
		}
		streak++
	}
	if streak < 3 {
		return Pattern{}, false
	}
	return Pattern{
		Kind:       PatternStreak,
		Digit:      digits[n-1],
		Length:     streak,
		Confidence: math.Min(0.95, 0.7+0.05*float64(streak)),
	}, true
}

// detectAlternation requires at least six digits and strict parity
// alternation across every consecutive pair of the trailing six.
func detectAlternation(digits []int) (Pattern, bool) {
	n := len(digits)
	if n < alternationSpan {
		return Pattern{}, false
	}

	tail := digits[n-alternationSpan:]
	for i := 0; i < len(tail)-1; i++ {
		if tail[i]%2 == tail[i+1]%2 {
			return Pattern{}, false
		}
	}
	return Pattern{Kind: PatternAlternating, Confidence: 0.75}, true
}
