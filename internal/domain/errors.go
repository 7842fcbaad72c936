package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimited         = errors.New("rate limited")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrEmptyHistory        = errors.New("empty history")
	ErrSymbolNotFound      = errors.New("symbol not found")
	ErrTimeout             = errors.New("request timed out")
	ErrInsufficientData    = errors.New("insufficient data")
	ErrInvalidRiskLevel    = errors.New("risk level must be between 1 and 5")
	ErrInvalidInput        = errors.New("invalid input")
)

// FetchError is the typed failure surfaced to consumers. Kind is one of the
// sentinels above; Err carries the underlying cause.
type FetchError struct {
	Symbol string
	Op     string
	Kind   error
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Symbol, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Symbol, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFetchError builds a FetchError for symbol.
func NewFetchError(op, symbol string, kind, cause error) *FetchError {
	return &FetchError{Symbol: symbol, Op: op, Kind: kind, Err: cause}
}

// EmptyHistoryError reports a successful primary response without bars. It
// carries whatever metadata came back so a fallback tier can reuse it.
type EmptyHistoryError struct {
	Symbol string
	Meta   *QuoteMeta
}

func (e *EmptyHistoryError) Error() string {
	return fmt.Sprintf("no bars for %s", e.Symbol)
}

func (e *EmptyHistoryError) Is(target error) bool {
	return target == ErrEmptyHistory
}
