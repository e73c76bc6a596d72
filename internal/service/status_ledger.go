package service

import (
	"context"
	"fmt"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"
)

// StatusLedger records transaction status transitions. Every write runs in
// its own unit of work on the root store, never the caller's, so a rollback
// of the surrounding transfer cannot undo a status already recorded. This is
// how the system can prove, after a crash or rollback, exactly how far a
// transfer got.
type StatusLedger struct {
	store repository.Store
}

// NewStatusLedger builds a ledger on the root store. Passing a
// transaction-bound store here would defeat the whole point.
func NewStatusLedger(store repository.Store) *StatusLedger {
	return &StatusLedger{store: store}
}

// Record writes status onto tx and flushes it immediately. The first call
// creates the row. SUCCESS and FAILED are terminal: re-recording the same
// terminal status is a no-op, moving off it is an error. A failed write is
// fatal for the attempt; there are no retries.
func (l *StatusLedger) Record(ctx context.Context, tx *domain.Transaction, status domain.TransactionStatus) error {
	if tx.Status.Terminal() {
		if tx.Status == status {
			return nil
		}
		return fmt.Errorf("cannot move %s transaction %d to %s: %w", tx.Status, tx.ID, status, domain.ErrStatusFinal)
	}

	tx.Status = status
	return l.store.InTransaction(ctx, func(uow repository.Store) error {
		return uow.Transactions().Save(ctx, tx)
	})
}
