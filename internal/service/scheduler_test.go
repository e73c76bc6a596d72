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

type schedulerFixture struct {
	store          *repository.MemoryStore
	executor       *ScheduledPaymentExecutor
	sender         domain.User
	senderWallet   domain.Wallet
	receiver       domain.User
	receiverWallet domain.Wallet
	address        domain.PaymentAddress
}

func newSchedulerFixture(t *testing.T, senderBalance string) *schedulerFixture {
	t.Helper()
	store := repository.NewMemoryStore()

	sender := store.SeedUser(domain.User{Name: "Alice", Email: "alice@example.com", Role: "user"})
	senderWallet := store.SeedWallet(domain.Wallet{UserID: sender.ID, Balance: d(senderBalance)})
	receiver := store.SeedUser(domain.User{Name: "Bob", Email: "bob@example.com", Role: "user"})
	receiverWallet := store.SeedWallet(domain.Wallet{UserID: receiver.ID, Balance: d("100")})
	address := store.SeedAddress(domain.PaymentAddress{Handle: "bob@wallet", UserID: receiver.ID, Active: true})

	executor := NewScheduledPaymentExecutor(
		store,
		NewStatusLedger(store),
		NewAuditService(store),
		NopNotifier{},
		time.Minute,
	)

	return &schedulerFixture{
		store:          store,
		executor:       executor,
		sender:         sender,
		senderWallet:   senderWallet,
		receiver:       receiver,
		receiverWallet: receiverWallet,
		address:        address,
	}
}

func (f *schedulerFixture) seedPayment(amount string, due time.Time) domain.ScheduledPayment {
	return f.store.SeedPayment(domain.ScheduledPayment{
		SenderID:          f.sender.ID,
		ReceiverAddressID: f.address.ID,
		Amount:            d(amount),
		ScheduledAt:       due,
		Status:            domain.StatusPending,
	})
}

func (f *schedulerFixture) payment(t *testing.T, id uint) *domain.ScheduledPayment {
	t.Helper()
	p, err := f.store.ScheduledPayments().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestTickExecutesDuePayment(t *testing.T) {
	f := newSchedulerFixture(t, "1000")
	payment := f.seedPayment("250", time.Now().Add(-time.Minute))

	f.executor.Tick(context.Background())

	got := f.payment(t, payment.ID)
	assert.True(t, got.Executed)
	assert.Equal(t, domain.StatusSuccess, got.Status)
	require.NotNil(t, got.ExecutedAt)

	sw, err := f.store.Wallets().FindByID(context.Background(), f.senderWallet.ID)
	require.NoError(t, err)
	rw, err := f.store.Wallets().FindByID(context.Background(), f.receiverWallet.ID)
	require.NoError(t, err)
	assert.True(t, sw.Balance.Equal(d("750")))
	assert.True(t, rw.Balance.Equal(d("350")))

	success, err := f.store.Transactions().CountByStatus(context.Background(), domain.StatusSuccess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), success)

	entries := f.store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "SCHEDULED_TRANSFER", entries[0].Action)
	assert.Equal(t, "SUCCESS", entries[0].Outcome)
}

func TestTickSkipsNotDuePayments(t *testing.T) {
	f := newSchedulerFixture(t, "1000")

	future := f.seedPayment("100", time.Now().Add(time.Hour))
	executed := f.store.SeedPayment(domain.ScheduledPayment{
		SenderID:          f.sender.ID,
		ReceiverAddressID: f.address.ID,
		Amount:            d("100"),
		ScheduledAt:       time.Now().Add(-time.Hour),
		Status:            domain.StatusSuccess,
		Executed:          true,
	})
	failed := f.store.SeedPayment(domain.ScheduledPayment{
		SenderID:          f.sender.ID,
		ReceiverAddressID: f.address.ID,
		Amount:            d("100"),
		ScheduledAt:       time.Now().Add(-time.Hour),
		Status:            domain.StatusFailed,
		FailureReason:     "insufficient balance",
	})

	f.executor.Tick(context.Background())

	// None of them fired
	count, err := f.store.Transactions().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.False(t, f.payment(t, future.ID).Executed)
	assert.Equal(t, domain.StatusSuccess, f.payment(t, executed.ID).Status)
	assert.Equal(t, domain.StatusFailed, f.payment(t, failed.ID).Status)
}

func TestTickIsIdempotent(t *testing.T) {
	f := newSchedulerFixture(t, "1000")
	f.seedPayment("250", time.Now().Add(-time.Minute))

	f.executor.Tick(context.Background())
	f.executor.Tick(context.Background())

	// The second tick must not replay the payment
	sw, err := f.store.Wallets().FindByID(context.Background(), f.senderWallet.ID)
	require.NoError(t, err)
	assert.True(t, sw.Balance.Equal(d("750")))

	count, err := f.store.Transactions().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTickInsufficientBalanceFailsPayment(t *testing.T) {
	f := newSchedulerFixture(t, "100")
	payment := f.seedPayment("500", time.Now().Add(-time.Minute))

	f.executor.Tick(context.Background())

	got := f.payment(t, payment.ID)
	assert.False(t, got.Executed, "a failed payment never sets the executed latch")
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.NotEmpty(t, got.FailureReason)
	assert.Nil(t, got.ExecutedAt)

	// Balances untouched, FAILED transaction recorded
	sw, err := f.store.Wallets().FindByID(context.Background(), f.senderWallet.ID)
	require.NoError(t, err)
	assert.True(t, sw.Balance.Equal(d("100")))

	failed, err := f.store.Transactions().CountByStatus(context.Background(), domain.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), failed)

	// FAILED is terminal: the next tick leaves it alone
	f.executor.Tick(context.Background())
	assert.Equal(t, domain.StatusFailed, f.payment(t, payment.ID).Status)
}

func TestTickInactiveAddressFailsPayment(t *testing.T) {
	f := newSchedulerFixture(t, "1000")
	inactive := f.store.SeedAddress(domain.PaymentAddress{Handle: "gone@wallet", UserID: f.receiver.ID, Active: false})
	payment := f.store.SeedPayment(domain.ScheduledPayment{
		SenderID:          f.sender.ID,
		ReceiverAddressID: inactive.ID,
		Amount:            d("50"),
		ScheduledAt:       time.Now().Add(-time.Minute),
		Status:            domain.StatusPending,
	})

	f.executor.Tick(context.Background())

	got := f.payment(t, payment.ID)
	assert.False(t, got.Executed)
	assert.Equal(t, domain.StatusFailed, got.Status)
}

func TestTickOnePaymentFailureDoesNotBlockOthers(t *testing.T) {
	f := newSchedulerFixture(t, "300")
	bad := f.seedPayment("500", time.Now().Add(-2*time.Minute)) // over balance
	good := f.seedPayment("200", time.Now().Add(-time.Minute))

	f.executor.Tick(context.Background())

	assert.Equal(t, domain.StatusFailed, f.payment(t, bad.ID).Status)
	assert.True(t, f.payment(t, good.ID).Executed)

	sw, err := f.store.Wallets().FindByID(context.Background(), f.senderWallet.ID)
	require.NoError(t, err)
	assert.True(t, sw.Balance.Equal(d("100")))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := newSchedulerFixture(t, "1000")
	f.executor.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.executor.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("executor did not stop on context cancellation")
	}
}
