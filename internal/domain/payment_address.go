package domain

import "time"

// PaymentAddress Model - a human-readable handle that resolves to one wallet
type PaymentAddress struct {
	ID        uint      `gorm:"primaryKey"`            // Primary key
	Handle    string    `gorm:"uniqueIndex;not null"`  // e.g. "alice@wallet"
	UserID    uint      `gorm:"uniqueIndex;not null"`  // Owning user, one address per user
	Active    bool      `gorm:"not null;default:true"` // Inactive addresses do not resolve
	CreatedAt time.Time // Creation time
}
