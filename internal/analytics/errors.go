package analytics

import "fmt"

// MalformedPriceError reports a tick whose price yields no extractable digit.
// The tick is discarded; ingestion continues.
type MalformedPriceError struct {
	Symbol string
	Price  float64
}

func (e *MalformedPriceError) Error() string {
	return fmt.Sprintf("malformed price %v for symbol %s: no last digit can be extracted", e.Price, e.Symbol)
}

// UnknownSymbolError reports a request for a symbol that is not tracked.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q", e.Symbol)
}
