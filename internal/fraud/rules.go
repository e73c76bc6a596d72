package fraud

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransferHistory answers the payer-history questions the rules need.
// Satisfied by repository.TransactionRepository.
type TransferHistory interface {
	ExistsTransfer(ctx context.Context, fromWalletID, toWalletID uint) (bool, error)
	CountOutgoingSince(ctx context.Context, fromWalletID uint, since time.Time) (int64, error)
}

// DefaultRules is the canonical rule set, in evaluation order.
func DefaultRules(history TransferHistory) []Rule {
	return []Rule{
		HighAmountRule{},
		NewPayeeRule{History: history},
		VelocityRule{History: history},
		WalletDrainRule{},
	}
}

var highAmountLimit = decimal.NewFromInt(10000)

// HighAmountRule triggers on any single transfer above 10,000.
type HighAmountRule struct{}

func (HighAmountRule) Name() string { return "HIGH_AMOUNT" }

func (HighAmountRule) Triggered(ctx context.Context, fc Context) (bool, error) {
	return fc.Amount.GreaterThan(highAmountLimit), nil
}

func (HighAmountRule) RiskPoints() int { return 70 }

// NewPayeeRule triggers when the payer has never sent to this payee wallet.
type NewPayeeRule struct {
	History TransferHistory
}

func (NewPayeeRule) Name() string { return "NEW_PAYEE" }

func (r NewPayeeRule) Triggered(ctx context.Context, fc Context) (bool, error) {
	hasSentBefore, err := r.History.ExistsTransfer(ctx, fc.FromWalletID, fc.ToWalletID)
	if err != nil {
		return false, err
	}
	return !hasSentBefore, nil
}

func (NewPayeeRule) RiskPoints() int { return 40 }

const (
	velocityMaxTransfers = 5
	velocityWindow       = 10 * time.Minute
)

// VelocityRule triggers when the payer's transfers-out in the trailing ten
// minutes, counting the current attempt, exceed five.
type VelocityRule struct {
	History TransferHistory
}

func (VelocityRule) Name() string { return "VELOCITY" }

func (r VelocityRule) Triggered(ctx context.Context, fc Context) (bool, error) {
	windowStart := fc.Time.Add(-velocityWindow)
	recent, err := r.History.CountOutgoingSince(ctx, fc.FromWalletID, windowStart)
	if err != nil {
		return false, err
	}
	// +1: the current attempt is not persisted yet
	return recent+1 > velocityMaxTransfers, nil
}

func (VelocityRule) RiskPoints() int { return 80 }

var drainThreshold = decimal.RequireFromString("0.80")

// WalletDrainRule triggers when the transfer would move 80% or more of the
// payer's pre-transfer balance. Never triggers on a zero or negative balance;
// the balance check elsewhere owns that case.
type WalletDrainRule struct{}

func (WalletDrainRule) Name() string { return "WALLET_DRAIN" }

func (WalletDrainRule) Triggered(ctx context.Context, fc Context) (bool, error) {
	balance := fc.SenderBalance
	if balance.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}
	// 4-decimal, round-half-up division
	drainRatio := fc.Amount.DivRound(balance, 4)
	return drainRatio.GreaterThanOrEqual(drainThreshold), nil
}

func (WalletDrainRule) RiskPoints() int { return 40 }
