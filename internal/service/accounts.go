package service

import (
	"context"
	"strconv"
	"strings"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// handleSuffix is the platform part of every payment address.
const handleSuffix = "@wallet"

// AccountService creates accounts. Registration is atomic: the user, their
// wallet and their payment address exist together or not at all.
type AccountService struct {
	store repository.Store
}

// NewAccountService wires account creation on the root store.
func NewAccountService(store repository.Store) *AccountService {
	return &AccountService{store: store}
}

// Register creates a user with a zero-balance wallet and a unique payment
// address derived from the name.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:     name,
		Email:    strings.ToLower(email),
		Password: string(hash),
		Role:     "user",
	}

	err = s.store.InTransaction(ctx, func(uow repository.Store) error {
		if err := uow.Users().Create(ctx, user); err != nil {
			return err
		}
		wallet := &domain.Wallet{UserID: user.ID, Balance: decimal.Zero}
		if err := uow.Wallets().Create(ctx, wallet); err != nil {
			return err
		}
		handle, err := s.nextHandle(ctx, uow, name)
		if err != nil {
			return err
		}
		address := &domain.PaymentAddress{Handle: handle, UserID: user.ID, Active: true}
		return uow.Addresses().Create(ctx, address)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")
	return user, nil
}

// nextHandle derives a free handle from the name: lowercase letters only,
// with a numeric suffix on collision.
func (s *AccountService) nextHandle(ctx context.Context, uow repository.Store, name string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "user"
	}

	for suffix := 0; ; suffix++ {
		handle := base + handleSuffix
		if suffix > 0 {
			handle = base + strconv.Itoa(suffix) + handleSuffix
		}
		taken, err := uow.Addresses().HandleExists(ctx, handle)
		if err != nil {
			return "", err
		}
		if !taken {
			return handle, nil
		}
	}
}
