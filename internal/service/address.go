package service

import (
	"context"
	"net/url"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"

	"github.com/shopspring/decimal"
)

// AddressService resolves payment handles and builds QR payloads.
type AddressService struct {
	store repository.Store
}

// NewAddressService wires address resolution.
func NewAddressService(store repository.Store) *AddressService {
	return &AddressService{store: store}
}

// ResolveWallet maps an active handle to its owner's wallet. Unknown and
// inactive handles are both not-found to the caller.
func (s *AddressService) ResolveWallet(ctx context.Context, handle string) (*domain.Wallet, error) {
	address, err := s.store.Addresses().FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !address.Active {
		return nil, domain.ErrAddressNotFound
	}
	return s.store.Wallets().FindByUserID(ctx, address.UserID)
}

// QRPayload builds the scannable payment URI for the user's own address,
// optionally pre-filling an amount.
func (s *AddressService) QRPayload(ctx context.Context, userID uint, amount decimal.Decimal) (string, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	address, err := s.store.Addresses().FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !address.Active {
		return "", domain.ErrAddressNotFound
	}

	payload := "upi://pay?pa=" + address.Handle + "&pn=" + url.QueryEscape(user.Name) + "&cu=INR"
	if amount.IsPositive() {
		payload += "&am=" + amount.String()
	}
	return payload, nil
}
