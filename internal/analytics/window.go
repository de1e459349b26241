package analytics

// WindowCap is the fixed capacity of a per-symbol digit window.
const WindowCap = 100

// DigitWindow holds the most recent last-digits of a symbol in a circular
// buffer. When the buffer is full the oldest digit is overwritten.
type DigitWindow struct {
	digits []int
	size   int
	head   int // next slot to write
	count  int // number of digits currently held
}

// NewDigitWindow creates a new DigitWindow with the given capacity.
func NewDigitWindow(size int) *DigitWindow {
	if size <= 0 {
		panic("digit window size must be positive")
	}
	return &DigitWindow{
		digits: make([]int, size),
		size:   size,
	}
}

// Push appends a digit at the tail, evicting the oldest when full.
func (w *DigitWindow) Push(digit int) {
	w.digits[w.head] = digit
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// Len returns the number of digits currently held.
func (w *DigitWindow) Len() int {
	return w.count
}

// Digits returns the held digits in arrival order, oldest first.
func (w *DigitWindow) Digits() []int {
	result := make([]int, w.count)
	if w.count < w.size {
		copy(result, w.digits[:w.head])
		return result
	}
	// Full buffer: the oldest digit sits at head.
	copied := copy(result, w.digits[w.head:])
	copy(result[copied:], w.digits[:w.head])
	return result
}

// Last returns the most recent up-to-n digits in arrival order.
func (w *DigitWindow) Last(n int) []int {
	all := w.Digits()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}
