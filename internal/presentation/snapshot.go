// Package presentation delivers wallet state to whatever displays it. All
// state observed by a presenter is produced on a single Loop goroutine.
package presentation

import (
	"time"

	"github.com/congo-pay/walletrace/internal/balance"
)

// Snapshot is the UI-facing state of one wallet after an operation.
type Snapshot struct {
	ID               string         `json:"id"`
	Variant          string         `json:"variant"`
	Balance          balance.Amount `json:"balance"`
	TransactionCount int            `json:"transaction_count"`
	IsLoading        bool           `json:"is_loading"`
	At               time.Time      `json:"at"`
}
