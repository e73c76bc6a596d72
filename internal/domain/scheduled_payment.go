package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledPayment Model - a deferred transfer intent, executed at most once
type ScheduledPayment struct {
	ID                uint              `gorm:"primaryKey"`         // Primary key
	SenderID          uint              `gorm:"index;not null"`     // Owning user
	ReceiverAddressID uint              `gorm:"not null"`           // Payment address, resolved to a wallet at execution time
	Amount            decimal.Decimal   `gorm:"type:decimal(19,4)"` // Amount to move when due
	ScheduledAt       time.Time         `gorm:"index;not null"`     // When the payment becomes due
	Status            TransactionStatus `gorm:"type:varchar(16)"`   // PENDING until a terminal outcome
	FailureReason     string            // Populated on failure or cancellation
	Executed          bool              `gorm:"not null;default:false"` // Latch: set true only when money actually moved
	CreatedAt         time.Time         // Creation time
	ExecutedAt        *time.Time        // Set on successful execution
}
