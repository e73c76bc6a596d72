package repository

import (
	"context"
	"time"

	"wallet_service/internal/domain"

	"github.com/shopspring/decimal"
)

// Store bundles the per-entity repositories together with the unit-of-work
// boundary. InTransaction runs fn against a transactional view of the store;
// every mutation made through that view commits or rolls back together.
// Writes made through a different Store (notably the status ledger's root
// store) are not part of that boundary.
type Store interface {
	Users() UserRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	ScheduledPayments() ScheduledPaymentRepository
	Addresses() AddressRepository
	Contacts() ContactRepository
	AuditLogs() AuditLogRepository

	InTransaction(ctx context.Context, fn func(Store) error) error
}

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Save(ctx context.Context, user *domain.User) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, error)
}

// WalletRepository persists wallets
type WalletRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Wallet, error)
	// FindByIDForUpdate takes a row lock on the wallet; only meaningful
	// inside InTransaction.
	FindByIDForUpdate(ctx context.Context, id uint) (*domain.Wallet, error)
	FindByUserID(ctx context.Context, userID uint) (*domain.Wallet, error)
	Create(ctx context.Context, wallet *domain.Wallet) error
	Save(ctx context.Context, wallet *domain.Wallet) error
}

// TransactionRepository persists money movement records and answers the
// history queries the fraud rules and admin analytics need.
type TransactionRepository interface {
	Save(ctx context.Context, tx *domain.Transaction) error
	ListByWallet(ctx context.Context, walletID uint, offset, limit int) ([]domain.Transaction, error)
	CountByWallet(ctx context.Context, walletID uint) (int64, error)
	List(ctx context.Context, offset, limit int) ([]domain.Transaction, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.TransactionStatus) (int64, error)
	SumAmountByStatus(ctx context.Context, status domain.TransactionStatus) (decimal.Decimal, error)

	// Fraud engine support
	ExistsTransfer(ctx context.Context, fromWalletID, toWalletID uint) (bool, error)
	CountOutgoingSince(ctx context.Context, fromWalletID uint, since time.Time) (int64, error)
}

// ScheduledPaymentRepository persists deferred transfer intents
type ScheduledPaymentRepository interface {
	Create(ctx context.Context, p *domain.ScheduledPayment) error
	Save(ctx context.Context, p *domain.ScheduledPayment) error
	FindByID(ctx context.Context, id uint) (*domain.ScheduledPayment, error)
	// FindDue returns payments with executed = false, status = PENDING and
	// scheduledAt <= now. The predicate, not a lock, is what keeps
	// overlapping executor ticks from double-firing a payment.
	FindDue(ctx context.Context, now time.Time) ([]domain.ScheduledPayment, error)
	ListBySender(ctx context.Context, senderID uint) ([]domain.ScheduledPayment, error)
}

// AddressRepository persists payment addresses
type AddressRepository interface {
	Create(ctx context.Context, a *domain.PaymentAddress) error
	FindByID(ctx context.Context, id uint) (*domain.PaymentAddress, error)
	FindByHandle(ctx context.Context, handle string) (*domain.PaymentAddress, error)
	FindByUserID(ctx context.Context, userID uint) (*domain.PaymentAddress, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
}

// ContactRepository persists address book entries
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Contact, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*domain.Contact, error)
	Delete(ctx context.Context, c *domain.Contact) error
}

// AuditLogRepository persists the audit trail
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	CountByActionAndOutcome(ctx context.Context, action, outcome string) (int64, error)
	List(ctx context.Context, offset, limit int) ([]domain.AuditLog, error)
}
