package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus tracks how far a money movement got.
type TransactionStatus string

const (
	StatusInitiated TransactionStatus = "INITIATED" // Record created, no money moved yet
	StatusPending   TransactionStatus = "PENDING"   // Checks passed, balance mutation in flight
	StatusSuccess   TransactionStatus = "SUCCESS"   // Money moved; terminal
	StatusFailed    TransactionStatus = "FAILED"    // Aborted; terminal
)

// Terminal reports whether the status admits no further transition.
func (s TransactionStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Transaction Model - one row per money movement attempt
type Transaction struct {
	ID           uint              `gorm:"primaryKey"`             // Primary key
	FromWalletID uint              `gorm:"index;not null"`         // Sender wallet
	ToWalletID   uint              `gorm:"index;not null"`         // Receiver wallet
	Amount       decimal.Decimal   `gorm:"type:decimal(19,4)"`     // Transfer amount, always > 0
	Timestamp    time.Time         `gorm:"index"`                  // Attempt time
	Status       TransactionStatus `gorm:"type:varchar(16);index"` // Status, written through the status ledger only
}
