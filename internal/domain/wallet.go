package domain

import "github.com/shopspring/decimal"

// Wallet Model
type Wallet struct {
	ID      uint            `gorm:"primaryKey"`                  // Primary key
	UserID  uint            `gorm:"uniqueIndex"`                 // Foreign key to User, one wallet per user
	Balance decimal.Decimal `gorm:"type:decimal(19,4);not null"` // Fixed-point balance, never negative once committed
}
