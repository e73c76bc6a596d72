package service

import (
	"context"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/shopspring/decimal"
)

// AdminSummary is the platform-wide dashboard snapshot.
type AdminSummary struct {
	TotalUsers        int64           `json:"total_users"`
	TotalTransactions int64           `json:"total_transactions"`
	SuccessfulVolume  decimal.Decimal `json:"successful_volume"`
	FraudBlocked      int64           `json:"fraud_blocked"`
}

// AdminService aggregates analytics for the admin dashboard.
type AdminService struct {
	store repository.Store
}

// NewAdminService wires admin analytics.
func NewAdminService(store repository.Store) *AdminService {
	return &AdminService{store: store}
}

// Summary returns user/transaction totals, successful volume and the number
// of fraud-blocked transfer attempts.
func (s *AdminService) Summary(ctx context.Context) (*AdminSummary, error) {
	totalUsers, err := s.store.Users().Count(ctx)
	if err != nil {
		return nil, err
	}
	totalTransactions, err := s.store.Transactions().Count(ctx)
	if err != nil {
		return nil, err
	}
	volume, err := s.store.Transactions().SumAmountByStatus(ctx, domain.StatusSuccess)
	if err != nil {
		return nil, err
	}
	blocked, err := s.store.AuditLogs().CountByActionAndOutcome(ctx, "TRANSFER", "FRAUD_BLOCK")
	if err != nil {
		return nil, err
	}

	return &AdminSummary{
		TotalUsers:        totalUsers,
		TotalTransactions: totalTransactions,
		SuccessfulVolume:  volume,
		FraudBlocked:      blocked,
	}, nil
}

// StatusDistribution returns transaction counts per status.
func (s *AdminService) StatusDistribution(ctx context.Context) (map[domain.TransactionStatus]int64, error) {
	statuses := []domain.TransactionStatus{
		domain.StatusInitiated,
		domain.StatusPending,
		domain.StatusSuccess,
		domain.StatusFailed,
	}
	distribution := make(map[domain.TransactionStatus]int64, len(statuses))
	for _, status := range statuses {
		count, err := s.store.Transactions().CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		distribution[status] = count
	}
	return distribution, nil
}
