package repository

import (
	"context"
	"errors"
	"time"

	"wallet_service/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore is the MySQL-backed Store. InTransaction maps to a database
// transaction; the nested Store view shares that transaction's handle.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm handle in a Store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                         { return &gormUsers{db: s.db} }
func (s *gormStore) Wallets() WalletRepository                     { return &gormWallets{db: s.db} }
func (s *gormStore) Transactions() TransactionRepository           { return &gormTransactions{db: s.db} }
func (s *gormStore) ScheduledPayments() ScheduledPaymentRepository { return &gormScheduledPayments{db: s.db} }
func (s *gormStore) Addresses() AddressRepository                  { return &gormAddresses{db: s.db} }
func (s *gormStore) Contacts() ContactRepository                   { return &gormContacts{db: s.db} }
func (s *gormStore) AuditLogs() AuditLogRepository                 { return &gormAuditLogs{db: s.db} }

func (s *gormStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// notFound maps gorm's record-not-found to the matching domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// ===== users =====

type gormUsers struct{ db *gorm.DB }

func (r *gormUsers) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *gormUsers) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUsers) Save(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormUsers) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error
	return total, err
}

func (r *gormUsers) List(ctx context.Context, offset, limit int) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Preload("Wallet").Order("id").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// ===== wallets =====

type gormWallets struct{ db *gorm.DB }

func (r *gormWallets) FindByID(ctx context.Context, id uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, id).Error; err != nil {
		return nil, notFound(err, domain.ErrWalletNotFound)
	}
	return &wallet, nil
}

func (r *gormWallets) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrWalletNotFound)
	}
	return &wallet, nil
}

func (r *gormWallets) FindByUserID(ctx context.Context, userID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, notFound(err, domain.ErrWalletNotFound)
	}
	return &wallet, nil
}

func (r *gormWallets) Create(ctx context.Context, wallet *domain.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *gormWallets) Save(ctx context.Context, wallet *domain.Wallet) error {
	return r.db.WithContext(ctx).Save(wallet).Error
}

// ===== transactions =====

type gormTransactions struct{ db *gorm.DB }

func (r *gormTransactions) Save(ctx context.Context, tx *domain.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

func (r *gormTransactions) ListByWallet(ctx context.Context, walletID uint, offset, limit int) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
		Order("timestamp desc").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (r *gormTransactions) CountByWallet(ctx context.Context, walletID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
		Count(&total).Error
	return total, err
}

func (r *gormTransactions) List(ctx context.Context, offset, limit int) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	err := r.db.WithContext(ctx).Order("timestamp desc").Offset(offset).Limit(limit).Find(&transactions).Error
	return transactions, err
}

func (r *gormTransactions) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).Count(&total).Error
	return total, err
}

func (r *gormTransactions) CountByStatus(ctx context.Context, status domain.TransactionStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("status = ?", status).
		Count(&total).Error
	return total, err
}

func (r *gormTransactions) SumAmountByStatus(ctx context.Context, status domain.TransactionStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *gormTransactions) ExistsTransfer(ctx context.Context, fromWalletID, toWalletID uint) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("from_wallet_id = ? AND to_wallet_id = ?", fromWalletID, toWalletID).
		Count(&total).Error
	return total > 0, err
}

func (r *gormTransactions) CountOutgoingSince(ctx context.Context, fromWalletID uint, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("from_wallet_id = ? AND timestamp > ?", fromWalletID, since).
		Count(&total).Error
	return total, err
}

// ===== scheduled payments =====

type gormScheduledPayments struct{ db *gorm.DB }

func (r *gormScheduledPayments) Create(ctx context.Context, p *domain.ScheduledPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormScheduledPayments) Save(ctx context.Context, p *domain.ScheduledPayment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *gormScheduledPayments) FindByID(ctx context.Context, id uint) (*domain.ScheduledPayment, error) {
	var payment domain.ScheduledPayment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, notFound(err, domain.ErrScheduleNotFound)
	}
	return &payment, nil
}

func (r *gormScheduledPayments) FindDue(ctx context.Context, now time.Time) ([]domain.ScheduledPayment, error) {
	var payments []domain.ScheduledPayment
	err := r.db.WithContext(ctx).
		Where("executed = ? AND status = ? AND scheduled_at <= ?", false, domain.StatusPending, now).
		Order("scheduled_at").
		Find(&payments).Error
	return payments, err
}

func (r *gormScheduledPayments) ListBySender(ctx context.Context, senderID uint) ([]domain.ScheduledPayment, error) {
	var payments []domain.ScheduledPayment
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("scheduled_at desc").
		Find(&payments).Error
	return payments, err
}

// ===== payment addresses =====

type gormAddresses struct{ db *gorm.DB }

func (r *gormAddresses) Create(ctx context.Context, a *domain.PaymentAddress) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *gormAddresses) FindByID(ctx context.Context, id uint) (*domain.PaymentAddress, error) {
	var address domain.PaymentAddress
	if err := r.db.WithContext(ctx).First(&address, id).Error; err != nil {
		return nil, notFound(err, domain.ErrAddressNotFound)
	}
	return &address, nil
}

func (r *gormAddresses) FindByHandle(ctx context.Context, handle string) (*domain.PaymentAddress, error) {
	var address domain.PaymentAddress
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&address).Error; err != nil {
		return nil, notFound(err, domain.ErrAddressNotFound)
	}
	return &address, nil
}

func (r *gormAddresses) FindByUserID(ctx context.Context, userID uint) (*domain.PaymentAddress, error) {
	var address domain.PaymentAddress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&address).Error; err != nil {
		return nil, notFound(err, domain.ErrAddressNotFound)
	}
	return &address, nil
}

func (r *gormAddresses) HandleExists(ctx context.Context, handle string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.PaymentAddress{}).
		Where("handle = ?", handle).
		Count(&total).Error
	return total > 0, err
}

// ===== contacts =====

type gormContacts struct{ db *gorm.DB }

func (r *gormContacts) Create(ctx context.Context, c *domain.Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gormContacts) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&contacts).Error
	return contacts, err
}

func (r *gormContacts) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&contact).Error
	if err != nil {
		return nil, notFound(err, domain.ErrContactNotFound)
	}
	return &contact, nil
}

func (r *gormContacts) Delete(ctx context.Context, c *domain.Contact) error {
	return r.db.WithContext(ctx).Delete(c).Error
}

// ===== audit logs =====

type gormAuditLogs struct{ db *gorm.DB }

func (r *gormAuditLogs) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormAuditLogs) CountByActionAndOutcome(ctx context.Context, action, outcome string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.AuditLog{}).
		Where("action = ? AND outcome = ?", action, outcome).
		Count(&total).Error
	return total, err
}

func (r *gormAuditLogs) List(ctx context.Context, offset, limit int) ([]domain.AuditLog, error) {
	var entries []domain.AuditLog
	err := r.db.WithContext(ctx).Order("created_at desc").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}
