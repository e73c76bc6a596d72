// Package otp implements the step-up challenge gate for risky transfers.
package otp

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"
)

// Expiry is how long an issued code stays valid.
const Expiry = 10 * time.Minute

// Service issues and verifies single-use 4-digit codes. Codes live on the
// user row; issuing overwrites any pending code, so at most one challenge is
// outstanding per user.
type Service struct {
	store repository.Store
}

// NewService builds the OTP service on the root store; its writes commit in
// their own unit of work.
func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// Issue generates a fresh 4-digit code, stores it against the user with a
// 10-minute expiry and returns it. Delivery to the user is the caller's
// responsibility.
func (s *Service) Issue(ctx context.Context, user *domain.User) (string, error) {
	code := fmt.Sprintf("%04d", rand.Intn(9000)+1000)
	expiry := time.Now().Add(Expiry)

	user.CurrentOtp = &code
	user.OtpExpiry = &expiry

	err := s.store.InTransaction(ctx, func(uow repository.Store) error {
		return uow.Users().Save(ctx, user)
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Verify reports whether submitted matches the user's pending code. A match
// consumes the code: a second submission of the same code fails.
func (s *Service) Verify(ctx context.Context, user *domain.User, submitted string) (bool, error) {
	if user.CurrentOtp == nil || user.OtpExpiry == nil {
		return false, nil
	}
	if !time.Now().Before(*user.OtpExpiry) {
		return false, nil
	}
	if *user.CurrentOtp != submitted {
		return false, nil
	}

	user.CurrentOtp = nil
	user.OtpExpiry = nil
	err := s.store.InTransaction(ctx, func(uow repository.Store) error {
		return uow.Users().Save(ctx, user)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
