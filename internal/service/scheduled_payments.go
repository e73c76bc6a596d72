package service

import (
	"context"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ScheduledPaymentService manages deferred transfer intents on behalf of
// their owner. Amend and cancel are rejected once the executed latch is set;
// the executor owns the record from that point on.
type ScheduledPaymentService struct {
	store repository.Store
}

// NewScheduledPaymentService wires the scheduled payment manager.
func NewScheduledPaymentService(store repository.Store) *ScheduledPaymentService {
	return &ScheduledPaymentService{store: store}
}

// Create schedules amount to move to receiverHandle at scheduledAt. The
// handle must resolve to an active address now, but the wallet itself is
// resolved again at execution time.
func (s *ScheduledPaymentService) Create(ctx context.Context, senderID uint, receiverHandle string, amount decimal.Decimal, scheduledAt time.Time) (*domain.ScheduledPayment, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := s.store.Users().FindByID(ctx, senderID); err != nil {
		return nil, err
	}
	address, err := s.store.Addresses().FindByHandle(ctx, receiverHandle)
	if err != nil {
		return nil, err
	}
	if !address.Active {
		return nil, domain.ErrAddressNotFound
	}

	payment := &domain.ScheduledPayment{
		SenderID:          senderID,
		ReceiverAddressID: address.ID,
		Amount:            amount,
		ScheduledAt:       scheduledAt,
		Status:            domain.StatusPending,
		Executed:          false,
		CreatedAt:         time.Now(),
	}
	if err := s.store.ScheduledPayments().Create(ctx, payment); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id":   payment.ID,
		"sender_id":    senderID,
		"amount":       amount,
		"scheduled_at": scheduledAt.Format(time.RFC3339),
	}).Info("Scheduled payment created")
	return payment, nil
}

// List returns the sender's scheduled payments, newest first.
func (s *ScheduledPaymentService) List(ctx context.Context, senderID uint) ([]domain.ScheduledPayment, error) {
	return s.store.ScheduledPayments().ListBySender(ctx, senderID)
}

// Update amends the amount and due time of a not-yet-executed payment.
func (s *ScheduledPaymentService) Update(ctx context.Context, id, senderID uint, amount decimal.Decimal, scheduledAt time.Time) (*domain.ScheduledPayment, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	payment, err := s.store.ScheduledPayments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.SenderID != senderID {
		return nil, domain.ErrForbidden
	}
	if payment.Executed {
		return nil, domain.ErrAlreadyExecuted
	}

	payment.Amount = amount
	payment.ScheduledAt = scheduledAt
	if err := s.store.ScheduledPayments().Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Cancel marks a not-yet-executed payment FAILED so the executor never picks
// it up.
func (s *ScheduledPaymentService) Cancel(ctx context.Context, id, senderID uint) error {
	payment, err := s.store.ScheduledPayments().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if payment.SenderID != senderID {
		return domain.ErrForbidden
	}
	if payment.Executed {
		return domain.ErrAlreadyExecuted
	}

	payment.Status = domain.StatusFailed
	payment.FailureReason = "Cancelled by user"
	return s.store.ScheduledPayments().Save(ctx, payment)
}
