package service

import (
	"context"
	"testing"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactLifecycle(t *testing.T) {
	store := repository.NewMemoryStore()
	owner := store.SeedUser(domain.User{Name: "Alice", Email: "alice@example.com"})
	payee := store.SeedUser(domain.User{Name: "Bob", Email: "bob@example.com"})
	store.SeedAddress(domain.PaymentAddress{Handle: "bob@wallet", UserID: payee.ID, Active: true})

	svc := NewContactService(store)
	ctx := context.Background()

	contact, err := svc.Create(ctx, owner.ID, "Bobby", "bob@wallet")
	require.NoError(t, err)
	assert.Equal(t, "Bobby", contact.DisplayName)

	list, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, owner.ID, contact.ID))
	list, err = svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestContactGuards(t *testing.T) {
	store := repository.NewMemoryStore()
	owner := store.SeedUser(domain.User{Name: "Alice", Email: "alice@example.com"})
	other := store.SeedUser(domain.User{Name: "Bob", Email: "bob@example.com"})
	store.SeedAddress(domain.PaymentAddress{Handle: "alice@wallet", UserID: owner.ID, Active: true})
	store.SeedAddress(domain.PaymentAddress{Handle: "bob@wallet", UserID: other.ID, Active: true})

	svc := NewContactService(store)
	ctx := context.Background()

	// Unknown handle
	_, err := svc.Create(ctx, owner.ID, "Ghost", "nobody@wallet")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)

	// Own handle
	_, err = svc.Create(ctx, owner.ID, "Me", "alice@wallet")
	assert.ErrorIs(t, err, domain.ErrSelfContact)

	// Deleting someone else's contact
	contact, err := svc.Create(ctx, owner.ID, "Bobby", "bob@wallet")
	require.NoError(t, err)
	err = svc.Delete(ctx, other.ID, contact.ID)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}
