package domain

import "time"

// Contact Model - a saved payee handle in a user's address book
type Contact struct {
	ID          uint      `gorm:"primaryKey"`     // Primary key
	OwnerID     uint      `gorm:"index;not null"` // User who saved the contact
	DisplayName string    `gorm:"not null"`       // Free-form label
	Handle      string    `gorm:"not null"`       // Payment address handle of the payee
	CreatedAt   time.Time // Creation time
}
