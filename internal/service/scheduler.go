package service

import (
	"context"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/sirupsen/logrus"
)

// ScheduledPaymentExecutor replays due scheduled payments on a fixed period.
// Each payment executes in its own isolated unit of work, so one payment's
// failure cannot affect a sibling's commit. Scheduled payments skip the fraud
// engine and the OTP gate: they were authorized by the owner at creation.
type ScheduledPaymentExecutor struct {
	store    repository.Store
	ledger   *StatusLedger
	audit    *AuditService
	notifier BalanceNotifier
	interval time.Duration
}

// NewScheduledPaymentExecutor wires the executor on the root store.
func NewScheduledPaymentExecutor(
	store repository.Store,
	ledger *StatusLedger,
	audit *AuditService,
	notifier BalanceNotifier,
	interval time.Duration,
) *ScheduledPaymentExecutor {
	return &ScheduledPaymentExecutor{
		store:    store,
		ledger:   ledger,
		audit:    audit,
		notifier: notifier,
		interval: interval,
	}
}

// Run ticks on the configured interval until ctx is cancelled. Overlapping
// ticks are safe: the due-payment predicate excludes anything already out of
// PENDING, so a payment fires at most once no matter how often we poll.
func (e *ScheduledPaymentExecutor) Run(ctx context.Context) {
	logrus.WithField("interval", e.interval).Info("Scheduled payment executor started")
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Scheduled payment executor stopped")
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick discovers payments with executed = false, status = PENDING and
// scheduledAt <= now, and executes each one.
func (e *ScheduledPaymentExecutor) Tick(ctx context.Context) {
	due, err := e.store.ScheduledPayments().FindDue(ctx, time.Now())
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Failed to query due scheduled payments")
		return
	}

	for i := range due {
		e.executeSinglePayment(ctx, &due[i])
	}
}

// executeSinglePayment resolves both wallets at execution time, replays the
// transfer sequence (no fraud check, no OTP) and persists the payment's
// terminal bookkeeping regardless of outcome.
func (e *ScheduledPaymentExecutor) executeSinglePayment(ctx context.Context, payment *domain.ScheduledPayment) {
	tx, err := e.attempt(ctx, payment)
	if err != nil {
		if tx != nil {
			if recErr := e.ledger.Record(ctx, tx, domain.StatusFailed); recErr != nil {
				logrus.WithFields(logrus.Fields{
					"transaction_id": tx.ID,
					"error":          recErr.Error(),
				}).Error("Failed to record FAILED status")
			}
		}
		// FAILED is terminal for the payment: executed stays false, but the
		// PENDING-only due query never selects it again.
		payment.Status = domain.StatusFailed
		payment.FailureReason = err.Error()
		logrus.WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"error":      err.Error(),
		}).Error("Scheduled payment failed")
	}

	if saveErr := e.store.ScheduledPayments().Save(ctx, payment); saveErr != nil {
		logrus.WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"error":      saveErr.Error(),
		}).Error("Failed to persist scheduled payment outcome")
	}
}

func (e *ScheduledPaymentExecutor) attempt(ctx context.Context, payment *domain.ScheduledPayment) (*domain.Transaction, error) {
	sender, err := e.store.Wallets().FindByUserID(ctx, payment.SenderID)
	if err != nil {
		return nil, err
	}

	// The receiver address resolves at execution time, not creation time.
	address, err := e.store.Addresses().FindByID(ctx, payment.ReceiverAddressID)
	if err != nil {
		return nil, err
	}
	if !address.Active {
		return nil, domain.ErrAddressNotFound
	}
	receiver, err := e.store.Wallets().FindByUserID(ctx, address.UserID)
	if err != nil {
		return nil, err
	}

	if sender.ID == receiver.ID {
		return nil, domain.ErrSelfTransfer
	}

	senderOldBalance := sender.Balance

	tx := &domain.Transaction{
		FromWalletID: sender.ID,
		ToWalletID:   receiver.ID,
		Amount:       payment.Amount,
		Timestamp:    time.Now(),
	}
	if err := e.ledger.Record(ctx, tx, domain.StatusInitiated); err != nil {
		return nil, err
	}

	senderAfter, receiverAfter, err := moveBalances(ctx, e.store, e.ledger, tx)
	if err != nil {
		return tx, err
	}

	sendingUser, userErr := e.store.Users().FindByID(ctx, payment.SenderID)
	if userErr != nil {
		sendingUser = nil
	}
	e.audit.Log(ctx, sendingUser, "SCHEDULED_TRANSFER", "SUCCESS", senderOldBalance, senderAfter.Balance)
	e.notifier.PublishBalance(ctx, senderAfter.ID, senderAfter.Balance)
	e.notifier.PublishBalance(ctx, receiverAfter.ID, receiverAfter.Balance)

	now := time.Now()
	payment.Executed = true
	payment.Status = domain.StatusSuccess
	payment.ExecutedAt = &now
	payment.FailureReason = ""

	logrus.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"transaction_id": tx.ID,
		"amount":         payment.Amount,
	}).Info("Scheduled payment executed")

	return tx, nil
}
