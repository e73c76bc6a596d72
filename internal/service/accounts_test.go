package service

import (
	"context"
	"testing"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterCreatesUserWalletAndAddress(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAccountService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice Smith", "Alice@Example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email, "email is stored lowercase")
	assert.Equal(t, "user", user.Role)

	// Password is stored hashed
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cretpass")))

	wallet, err := store.Wallets().FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.IsZero())

	address, err := store.Addresses().FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicesmith@wallet", address.Handle)
	assert.True(t, address.Active)
}

func TestRegisterHandleCollision(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAccountService(store)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Alice", "alice1@example.com", "s3cretpass")
	require.NoError(t, err)
	second, err := svc.Register(ctx, "Alice", "alice2@example.com", "s3cretpass")
	require.NoError(t, err)

	a1, err := store.Addresses().FindByUserID(ctx, first.ID)
	require.NoError(t, err)
	a2, err := store.Addresses().FindByUserID(ctx, second.ID)
	require.NoError(t, err)

	assert.Equal(t, "alice@wallet", a1.Handle)
	assert.Equal(t, "alice1@wallet", a2.Handle)
}

func TestRegisterNonAlphabeticName(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAccountService(store)

	user, err := svc.Register(context.Background(), "1234", "num@example.com", "s3cretpass")
	require.NoError(t, err)

	// No letters in the name: the handle falls back to a generic base
	address, err := store.Addresses().FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@wallet", address.Handle)
}

func TestResolveWallet(t *testing.T) {
	store := repository.NewMemoryStore()
	user := store.SeedUser(domain.User{Name: "Bob", Email: "bob@example.com"})
	wallet := store.SeedWallet(domain.Wallet{UserID: user.ID, Balance: d("10")})
	store.SeedAddress(domain.PaymentAddress{Handle: "bob@wallet", UserID: user.ID, Active: true})
	store.SeedAddress(domain.PaymentAddress{Handle: "old@wallet", UserID: user.ID, Active: false})

	svc := NewAddressService(store)

	got, err := svc.ResolveWallet(context.Background(), "bob@wallet")
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, got.ID)

	_, err = svc.ResolveWallet(context.Background(), "old@wallet")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)

	_, err = svc.ResolveWallet(context.Background(), "nobody@wallet")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestQRPayload(t *testing.T) {
	store := repository.NewMemoryStore()
	user := store.SeedUser(domain.User{Name: "Bob Jones", Email: "bob@example.com"})
	store.SeedAddress(domain.PaymentAddress{Handle: "bobjones@wallet", UserID: user.ID, Active: true})

	svc := NewAddressService(store)

	payload, err := svc.QRPayload(context.Background(), user.ID, d("0"))
	require.NoError(t, err)
	assert.Equal(t, "upi://pay?pa=bobjones@wallet&pn=Bob+Jones&cu=INR", payload)

	payload, err = svc.QRPayload(context.Background(), user.ID, d("49.99"))
	require.NoError(t, err)
	assert.Equal(t, "upi://pay?pa=bobjones@wallet&pn=Bob+Jones&cu=INR&am=49.99", payload)
}
