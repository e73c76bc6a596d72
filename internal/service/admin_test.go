package service

import (
	"context"
	"testing"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminSummary(t *testing.T) {
	store := repository.NewMemoryStore()
	alice := store.SeedUser(domain.User{Name: "Alice", Email: "alice@example.com"})
	store.SeedUser(domain.User{Name: "Bob", Email: "bob@example.com"})

	store.SeedTransaction(domain.Transaction{FromWalletID: 1, ToWalletID: 2, Amount: d("100"), Timestamp: time.Now(), Status: domain.StatusSuccess})
	store.SeedTransaction(domain.Transaction{FromWalletID: 1, ToWalletID: 2, Amount: d("40"), Timestamp: time.Now(), Status: domain.StatusSuccess})
	store.SeedTransaction(domain.Transaction{FromWalletID: 2, ToWalletID: 1, Amount: d("999"), Timestamp: time.Now(), Status: domain.StatusFailed})

	// One fraud block on record
	audit := NewAuditService(store)
	audit.Log(context.Background(), &alice, "TRANSFER", "FRAUD_BLOCK", decimal.Zero, decimal.Zero)

	svc := NewAdminService(store)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalUsers)
	assert.Equal(t, int64(3), summary.TotalTransactions)
	assert.True(t, summary.SuccessfulVolume.Equal(d("140")), "volume only counts SUCCESS: %s", summary.SuccessfulVolume)
	assert.Equal(t, int64(1), summary.FraudBlocked)
}

func TestAdminStatusDistribution(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedTransaction(domain.Transaction{FromWalletID: 1, ToWalletID: 2, Amount: d("1"), Timestamp: time.Now(), Status: domain.StatusSuccess})
	store.SeedTransaction(domain.Transaction{FromWalletID: 1, ToWalletID: 2, Amount: d("1"), Timestamp: time.Now(), Status: domain.StatusSuccess})
	store.SeedTransaction(domain.Transaction{FromWalletID: 1, ToWalletID: 2, Amount: d("1"), Timestamp: time.Now(), Status: domain.StatusFailed})

	svc := NewAdminService(store)
	distribution, err := svc.StatusDistribution(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), distribution[domain.StatusSuccess])
	assert.Equal(t, int64(1), distribution[domain.StatusFailed])
	assert.Zero(t, distribution[domain.StatusInitiated])
	assert.Zero(t, distribution[domain.StatusPending])
}
