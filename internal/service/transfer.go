package service

import (
	"context"
	"regexp"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/fraud"
	"wallet_service/internal/otp"
	"wallet_service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Gate policy: a transfer needs a verified OTP when the fraud score exceeds
// this, or the amount exceeds otpAmountLimit.
const otpRiskLimit = 50

var otpAmountLimit = decimal.NewFromInt(1000)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// TransferResult is the non-error outcome of a transfer attempt: either the
// completed movement, or a challenge the caller must answer by resubmitting
// the same request together with the code.
type TransferResult struct {
	OtpRequired bool
	Otp         string // freshly issued code, only set with OtpRequired

	Transaction *domain.Transaction // only set on success
	FromWallet  *domain.Wallet      // post-transfer sender wallet
	ToWallet    *domain.Wallet      // post-transfer receiver wallet
}

// TransferService orchestrates the full transfer sequence: PIN check,
// self-transfer and balance guards, fraud scoring, the OTP gate, the status
// ledger and the atomic balance mutation.
type TransferService struct {
	store    repository.Store
	ledger   *StatusLedger
	engine   *fraud.Engine
	otp      *otp.Service
	audit    *AuditService
	notifier BalanceNotifier
}

// NewTransferService wires the transfer engine. store must be the root store;
// the service opens its own units of work.
func NewTransferService(
	store repository.Store,
	ledger *StatusLedger,
	engine *fraud.Engine,
	otpService *otp.Service,
	audit *AuditService,
	notifier BalanceNotifier,
) *TransferService {
	return &TransferService{
		store:    store,
		ledger:   ledger,
		engine:   engine,
		otp:      otpService,
		audit:    audit,
		notifier: notifier,
	}
}

// Transfer moves amount from userID's wallet to toWalletID. otpCode may be
// empty on the first submission; when the gate decides a challenge is needed
// the result carries a fresh code and nothing has been persisted yet.
func (s *TransferService) Transfer(ctx context.Context, userID, toWalletID uint, amount decimal.Decimal, pin, otpCode string) (*TransferResult, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sender, err := s.store.Wallets().FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. PIN verification
	if user.TransactionPin == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.TransactionPin), []byte(pin)) != nil {
		logrus.WithField("user_id", user.ID).Warn("Invalid PIN attempt")
		return nil, domain.ErrInvalidPIN
	}

	// 2. Self-transfer guard
	if toWalletID == sender.ID {
		return nil, domain.ErrSelfTransfer
	}

	// 3. Resolve the payee wallet
	receiver, err := s.store.Wallets().FindByID(ctx, toWalletID)
	if err != nil {
		return nil, err
	}

	senderOldBalance := sender.Balance

	// 4. Fraud check, before any money moves
	fraudResult, err := s.engine.Evaluate(ctx, fraud.Context{
		FromWalletID:  sender.ID,
		ToWalletID:    receiver.ID,
		UserID:        user.ID,
		Amount:        amount,
		Time:          time.Now(),
		SenderBalance: senderOldBalance,
	})
	if err != nil {
		return nil, err
	}

	// 5. A block happens before the transaction record exists
	if fraudResult.Decision == fraud.Block {
		logrus.WithFields(logrus.Fields{
			"from_wallet": sender.ID,
			"to_wallet":   receiver.ID,
			"amount":      amount,
			"risk_score":  fraudResult.RiskScore,
			"rules":       fraudResult.TriggeredRules,
		}).Warn("Transfer blocked by fraud engine")
		s.audit.Log(ctx, user, "TRANSFER", "FRAUD_BLOCK", senderOldBalance, senderOldBalance)
		return nil, domain.ErrFraudBlocked
	}

	// 6. OTP gate for risky or large transfers
	if fraudResult.RiskScore > otpRiskLimit || amount.GreaterThan(otpAmountLimit) {
		if otpCode == "" {
			code, err := s.otp.Issue(ctx, user)
			if err != nil {
				return nil, err
			}
			return &TransferResult{OtpRequired: true, Otp: code}, nil
		}
		ok, err := s.otp.Verify(ctx, user, otpCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrInvalidOTP
		}
	}

	// 7. Create the record and walk it through the ledger
	tx := &domain.Transaction{
		FromWalletID: sender.ID,
		ToWalletID:   receiver.ID,
		Amount:       amount,
		Timestamp:    time.Now(),
	}
	if err := s.ledger.Record(ctx, tx, domain.StatusInitiated); err != nil {
		return nil, err
	}

	senderAfter, receiverAfter, err := moveBalances(ctx, s.store, s.ledger, tx)
	if err != nil {
		// The FAILED status survives the rollback; the balance change does not.
		s.recordFailed(ctx, tx)
		s.audit.Log(ctx, user, "TRANSFER", "FAILURE", senderOldBalance, senderOldBalance)
		return nil, err
	}

	s.audit.Log(ctx, user, "TRANSFER", "SUCCESS", senderOldBalance, senderAfter.Balance)
	s.notifier.PublishBalance(ctx, senderAfter.ID, senderAfter.Balance)
	s.notifier.PublishBalance(ctx, receiverAfter.ID, receiverAfter.Balance)

	logrus.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"from_wallet":    senderAfter.ID,
		"to_wallet":      receiverAfter.ID,
		"amount":         amount,
		"timestamp":      tx.Timestamp.Format(time.RFC3339),
	}).Info("Transfer transaction")

	return &TransferResult{Transaction: tx, FromWallet: senderAfter, ToWallet: receiverAfter}, nil
}

// moveBalances runs the balance-mutation leg in one atomic unit of work:
// locked re-read of both wallets, balance guard, PENDING, debit+credit,
// SUCCESS. Status writes go through the ledger and commit independently, so
// the history stays truthful when the unit of work rolls back.
func moveBalances(ctx context.Context, store repository.Store, ledger *StatusLedger, tx *domain.Transaction) (*domain.Wallet, *domain.Wallet, error) {
	var sender, receiver *domain.Wallet

	err := store.InTransaction(ctx, func(uow repository.Store) error {
		var err error
		sender, err = uow.Wallets().FindByIDForUpdate(ctx, tx.FromWalletID)
		if err != nil {
			return err
		}
		receiver, err = uow.Wallets().FindByIDForUpdate(ctx, tx.ToWalletID)
		if err != nil {
			return err
		}

		if sender.Balance.LessThan(tx.Amount) {
			if err := ledger.Record(ctx, tx, domain.StatusFailed); err != nil {
				return err
			}
			return domain.ErrInsufficientBalance
		}

		if err := ledger.Record(ctx, tx, domain.StatusPending); err != nil {
			return err
		}

		sender.Balance = sender.Balance.Sub(tx.Amount)
		receiver.Balance = receiver.Balance.Add(tx.Amount)

		if err := uow.Wallets().Save(ctx, sender); err != nil {
			return err
		}
		if err := uow.Wallets().Save(ctx, receiver); err != nil {
			return err
		}

		return ledger.Record(ctx, tx, domain.StatusSuccess)
	})
	if err != nil {
		return nil, nil, err
	}
	return sender, receiver, nil
}

// recordFailed drives the transaction to FAILED after a rolled-back unit of
// work. Re-recording FAILED is a no-op; anything else is only loggable at
// this point since the attempt is already failing.
func (s *TransferService) recordFailed(ctx context.Context, tx *domain.Transaction) {
	if err := s.ledger.Record(ctx, tx, domain.StatusFailed); err != nil {
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"error":          err.Error(),
		}).Error("Failed to record FAILED status")
	}
}

// UpdatePIN sets the user's transaction PIN, stored as a bcrypt hash.
func (s *TransferService) UpdatePIN(ctx context.Context, userID uint, newPin string) error {
	if !pinPattern.MatchString(newPin) {
		return domain.ErrPINFormat
	}
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.TransactionPin = string(hash)
	if err := s.store.Users().Save(ctx, user); err != nil {
		return err
	}
	logrus.WithField("user_id", userID).Info("Transaction PIN updated")
	return nil
}
