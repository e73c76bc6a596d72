package domain

import "time"

// User Model
type User struct {
	ID             uint       `gorm:"primaryKey"`      // Primary key
	Name           string     `gorm:"not null"`        // Display name
	Email          string     `gorm:"unique;not null"` // Unique email, used as login identity
	Password       string     `gorm:"not null"`        // Bcrypt hash
	TransactionPin string     // Bcrypt hash of the 4-digit transaction PIN; empty until set
	CurrentOtp     *string    // Pending OTP code, nil when no challenge is outstanding
	OtpExpiry      *time.Time // Expiry of the pending OTP code
	Role           string     `gorm:"default:user"` // Role: user or admin
	Wallet         Wallet     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
