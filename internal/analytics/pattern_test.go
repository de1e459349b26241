package analytics

import (
	"math"
	"testing"
)

const float64EqualityThreshold = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func TestDetectPatterns_Streak(t *testing.T) {
	tests := []struct {
		name           string
		digits         []int
		wantStreak     bool
		wantDigit      int
		wantLength     int
		wantConfidence float64
	}{
		{
			name:           "three trailing equal digits",
			digits:         []int{1, 5, 3, 3, 3},
			wantStreak:     true,
			wantDigit:      3,
			wantLength:     3,
			wantConfidence: 0.85,
		},
		{
			name:           "four trailing equal digits",
			digits:         []int{3, 3, 3, 3},
			wantStreak:     true,
			wantDigit:      3,
			wantLength:     4,
			wantConfidence: 0.90,
		},
		{
			name:           "bare minimum window",
			digits:         []int{3, 3, 3},
			wantStreak:     true,
			wantDigit:      3,
			wantLength:     3,
			wantConfidence: 0.85,
		},
		{
			name:           "long streak capped at 0.95",
			digits:         []int{7, 7, 7, 7, 7, 7, 7, 7},
			wantStreak:     true,
			wantDigit:      7,
			wantLength:     8,
			wantConfidence: 0.95,
		},
		{
			name:       "two trailing equal digits only",
			digits:     []int{1, 2, 5, 5},
			wantStreak: false,
		},
		{
			name:       "streak broken at the tail",
			digits:     []int{3, 3, 3, 4},
			wantStreak: false,
		},
		{
			name:       "empty sequence",
			digits:     nil,
			wantStreak: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := detectStreak(tt.digits)
			if ok != tt.wantStreak {
				t.Fatalf("detectStreak ok: expected %v, got %v", tt.wantStreak, ok)
			}
			if !ok {
				return
			}
			if p.Digit != tt.wantDigit {
				t.Errorf("digit: expected %d, got %d", tt.wantDigit, p.Digit)
			}
			if p.Length != tt.wantLength {
				t.Errorf("length: expected %d, got %d", tt.wantLength, p.Length)
			}
			if !almostEqual(p.Confidence, tt.wantConfidence) {
				t.Errorf("confidence: expected %f, got %f", tt.wantConfidence, p.Confidence)
			}
		})
	}
}

func TestDetectPatterns_Alternation(t *testing.T) {
	tests := []struct {
		name    string
		digits  []int
		wantAlt bool
	}{
		{
			name:    "strictly alternating parity over six digits",
			digits:  []int{1, 2, 1, 2, 1, 2},
			wantAlt: true,
		},
		{
			name:    "parity break at the tail",
			digits:  []int{1, 2, 1, 2, 1, 1},
			wantAlt: false,
		},
		{
			name: "different digits of alternating parity still qualify",
			// Parity alternates even if the digits themselves differ.
			digits:  []int{0, 3, 8, 5, 2, 9},
			wantAlt: true,
		},
		{
			name:    "fewer than six digits skipped",
			digits:  []int{1, 2, 1, 2, 1},
			wantAlt: false,
		},
		{
			name:    "only the trailing six are inspected",
			digits:  []int{4, 4, 4, 1, 2, 1, 2, 1, 2},
			wantAlt: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := detectAlternation(tt.digits)
			if ok != tt.wantAlt {
				t.Fatalf("detectAlternation ok: expected %v, got %v", tt.wantAlt, ok)
			}
			if ok && !almostEqual(p.Confidence, 0.75) {
				t.Errorf("confidence: expected 0.75, got %f", p.Confidence)
			}
		})
	}
}

func TestDetectPatterns_BothAtOnce(t *testing.T) {
	// A trailing even streak of three after an alternating prefix can
	// trigger the streak check alone; a sequence can also trigger both.
	digits := []int{1, 2, 1, 2, 1, 2, 2, 2} // no: alternation broken by streak
	patterns := DetectPatterns(digits)
	if len(patterns) != 1 || patterns[0].Kind != PatternStreak {
		t.Fatalf("expected one streak pattern, got %v", patterns)
	}
}
