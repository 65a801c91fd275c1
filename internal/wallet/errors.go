package wallet

import (
	"errors"

	"github.com/congo-pay/walletrace/internal/upstream"
)

var (
	// ErrNoWallet occurs when a deposit or withdrawal is attempted before any
	// balance has been fetched.
	ErrNoWallet = errors.New("no wallet")

	// ErrFetchFailed is the transient upstream failure. It is retryable.
	ErrFetchFailed = upstream.ErrFetchFailed

	// ErrUnknownVariant is returned for a variant name that is not served.
	ErrUnknownVariant = errors.New("unknown wallet variant")

	// ErrInvalidAmount rejects non-positive amounts at the API boundary.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrResetUnsupported is returned when resetting a variant that has no reset.
	ErrResetUnsupported = errors.New("wallet variant does not support reset")
)
