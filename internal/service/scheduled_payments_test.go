package service

import (
	"context"
	"testing"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentsFixture(t *testing.T) (*repository.MemoryStore, *ScheduledPaymentService, domain.User, domain.PaymentAddress) {
	t.Helper()
	store := repository.NewMemoryStore()
	sender := store.SeedUser(domain.User{Name: "Alice", Email: "alice@example.com"})
	receiver := store.SeedUser(domain.User{Name: "Bob", Email: "bob@example.com"})
	address := store.SeedAddress(domain.PaymentAddress{Handle: "bob@wallet", UserID: receiver.ID, Active: true})
	return store, NewScheduledPaymentService(store), sender, address
}

func TestCreateScheduledPayment(t *testing.T) {
	_, svc, sender, address := newPaymentsFixture(t)
	due := time.Now().Add(time.Hour)

	payment, err := svc.Create(context.Background(), sender.ID, "bob@wallet", d("75"), due)
	require.NoError(t, err)
	assert.Equal(t, sender.ID, payment.SenderID)
	assert.Equal(t, address.ID, payment.ReceiverAddressID)
	assert.Equal(t, domain.StatusPending, payment.Status)
	assert.False(t, payment.Executed)
	assert.True(t, payment.ScheduledAt.Equal(due))
}

func TestCreateScheduledPaymentValidation(t *testing.T) {
	store, svc, sender, _ := newPaymentsFixture(t)
	ctx := context.Background()
	due := time.Now().Add(time.Hour)

	_, err := svc.Create(ctx, sender.ID, "bob@wallet", d("0"), due)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Create(ctx, sender.ID, "bob@wallet", d("-5"), due)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Create(ctx, sender.ID, "nobody@wallet", d("10"), due)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)

	_, err = svc.Create(ctx, 999, "bob@wallet", d("10"), due)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	store.SeedAddress(domain.PaymentAddress{Handle: "gone@wallet", UserID: sender.ID, Active: false})
	_, err = svc.Create(ctx, sender.ID, "gone@wallet", d("10"), due)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestUpdateScheduledPayment(t *testing.T) {
	_, svc, sender, _ := newPaymentsFixture(t)
	ctx := context.Background()

	payment, err := svc.Create(ctx, sender.ID, "bob@wallet", d("75"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	newDue := time.Now().Add(2 * time.Hour)
	updated, err := svc.Update(ctx, payment.ID, sender.ID, d("100"), newDue)
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(d("100")))
	assert.True(t, updated.ScheduledAt.Equal(newDue))

	// Only the owner may amend
	_, err = svc.Update(ctx, payment.ID, sender.ID+1, d("50"), newDue)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateExecutedPayment(t *testing.T) {
	store, svc, sender, address := newPaymentsFixture(t)
	payment := store.SeedPayment(domain.ScheduledPayment{
		SenderID:          sender.ID,
		ReceiverAddressID: address.ID,
		Amount:            d("75"),
		ScheduledAt:       time.Now().Add(-time.Hour),
		Status:            domain.StatusSuccess,
		Executed:          true,
	})

	_, err := svc.Update(context.Background(), payment.ID, sender.ID, d("100"), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)

	err = svc.Cancel(context.Background(), payment.ID, sender.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)
}

func TestCancelScheduledPayment(t *testing.T) {
	store, svc, sender, _ := newPaymentsFixture(t)
	ctx := context.Background()

	payment, err := svc.Create(ctx, sender.ID, "bob@wallet", d("75"), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, payment.ID, sender.ID))

	got, err := store.ScheduledPayments().FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "Cancelled by user", got.FailureReason)
	assert.False(t, got.Executed)

	// Cancelled payments never show up as due
	due, err := store.ScheduledPayments().FindDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestListScheduledPayments(t *testing.T) {
	_, svc, sender, _ := newPaymentsFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, sender.ID, "bob@wallet", d("10"), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Create(ctx, sender.ID, "bob@wallet", d("20"), time.Now().Add(2*time.Hour))
	require.NoError(t, err)

	list, err := svc.List(ctx, sender.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	other, err := svc.List(ctx, sender.ID+100)
	require.NoError(t, err)
	assert.Empty(t, other)
}
