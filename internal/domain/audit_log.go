package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditLog Model - durable trail of sensitive actions and their balance effect
type AuditLog struct {
	ID         uint            `gorm:"primaryKey"`         // Primary key
	UserID     *uint           `gorm:"index"`              // Acting user, nil for system actions
	Action     string          `gorm:"index;not null"`     // e.g. TRANSFER, SCHEDULED_TRANSFER
	Outcome    string          `gorm:"index;not null"`     // e.g. SUCCESS, FAILURE, FRAUD_BLOCK
	OldBalance decimal.Decimal `gorm:"type:decimal(19,4)"` // Sender balance before the action
	NewBalance decimal.Decimal `gorm:"type:decimal(19,4)"` // Sender balance after the action
	CreatedAt  time.Time       // Log time
}
