package service

import (
	"context"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AuditService records sensitive actions and their balance effect. Logging
// is fire-and-forget: a failed audit write must never abort the money
// movement it describes, so errors are logged and swallowed here.
type AuditService struct {
	store repository.Store
}

// NewAuditService builds the audit sink on the root store.
func NewAuditService(store repository.Store) *AuditService {
	return &AuditService{store: store}
}

// Log persists one audit entry. user may be nil for system actions.
func (s *AuditService) Log(ctx context.Context, user *domain.User, action, outcome string, oldBalance, newBalance decimal.Decimal) {
	entry := domain.AuditLog{
		Action:     action,
		Outcome:    outcome,
		OldBalance: oldBalance,
		NewBalance: newBalance,
		CreatedAt:  time.Now(),
	}
	if user != nil {
		id := user.ID
		entry.UserID = &id
	}

	if err := s.store.AuditLogs().Create(ctx, &entry); err != nil {
		logrus.WithFields(logrus.Fields{
			"action":  action,
			"outcome": outcome,
			"error":   err.Error(),
		}).Error("Failed to write audit log")
	}
}
