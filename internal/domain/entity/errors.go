package entity

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotInitialized = errors.New("wallet session not initialized")
	ErrMissingAPIKey         = errors.New("api key is required")
	ErrNetwork               = errors.New("network error")
	ErrBuild                 = errors.New("build transaction error")
	ErrSubmit                = errors.New("submit transaction error")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrUnknownChainTarget    = errors.New("unknown chain target")
	ErrTimeout               = errors.New("timeout")
	ErrFundingUnavailable    = errors.New("funding unavailable")
	ErrNotImplemented        = errors.New("not implemented")
	ErrAddressUnresolved     = errors.New("wallet address unresolved")
	ErrInvalidPin            = errors.New("invalid pin")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidTxHash         = errors.New("invalid transaction hash")
)

// ProviderError is a non-2xx answer from the wallet provider.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider request %s failed with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Retryable reports whether the provider may succeed on a later attempt.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
