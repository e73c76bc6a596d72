package otp

import (
	"context"
	"regexp"
	"testing"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

func newFixture(t *testing.T) (*repository.MemoryStore, *Service, *domain.User) {
	t.Helper()
	store := repository.NewMemoryStore()
	user := store.SeedUser(domain.User{Name: "Alice", Email: "alice@example.com"})
	return store, NewService(store), &user
}

func TestIssueStoresCodeWithExpiry(t *testing.T) {
	store, svc, user := newFixture(t)

	code, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)
	assert.Regexp(t, codePattern, code)

	// The code is persisted on the user row
	stored, err := store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CurrentOtp)
	assert.Equal(t, code, *stored.CurrentOtp)
	require.NotNil(t, stored.OtpExpiry)
	assert.WithinDuration(t, time.Now().Add(Expiry), *stored.OtpExpiry, 5*time.Second)
}

func TestVerifyConsumesCode(t *testing.T) {
	store, svc, user := newFixture(t)

	code, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)

	ok, err := svc.Verify(context.Background(), user, code)
	require.NoError(t, err)
	assert.True(t, ok)

	// Single use: the same code cannot be replayed
	ok, err = svc.Verify(context.Background(), user, code)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CurrentOtp)
	assert.Nil(t, stored.OtpExpiry)
}

func TestVerifyWrongCode(t *testing.T) {
	_, svc, user := newFixture(t)

	code, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)

	wrong := "0000"
	if code == wrong {
		wrong = "0001"
	}
	ok, err := svc.Verify(context.Background(), user, wrong)
	require.NoError(t, err)
	assert.False(t, ok)

	// A wrong submission does not consume the pending code
	ok, err = svc.Verify(context.Background(), user, code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyExpiredCode(t *testing.T) {
	_, svc, user := newFixture(t)

	code, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	user.OtpExpiry = &past

	ok, err := svc.Verify(context.Background(), user, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyWithoutPendingCode(t *testing.T) {
	_, svc, user := newFixture(t)

	ok, err := svc.Verify(context.Background(), user, "1234")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIssueOverwritesPendingCode(t *testing.T) {
	_, svc, user := newFixture(t)

	first, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)

	// Only the latest code is valid; at most one challenge per user
	if first != second {
		ok, err := svc.Verify(context.Background(), user, first)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, err := svc.Verify(context.Background(), user, second)
	require.NoError(t, err)
	assert.True(t, ok)
}
