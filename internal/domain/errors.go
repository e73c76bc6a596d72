package domain

import "errors"

// Sentinel errors surfaced by the core. The HTTP layer maps them to status
// codes with errors.Is; everything else is treated as an internal failure.
var (
	ErrInvalidPIN          = errors.New("invalid transaction PIN")
	ErrPINFormat           = errors.New("PIN must be exactly 4 numeric digits")
	ErrInvalidOTP          = errors.New("invalid or expired OTP")
	ErrSelfTransfer        = errors.New("cannot transfer to your own wallet")
	ErrSelfContact         = errors.New("cannot add yourself as a contact")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAddressNotFound     = errors.New("invalid or inactive payment address")
	ErrContactNotFound     = errors.New("contact not found")
	ErrScheduleNotFound    = errors.New("scheduled payment not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrFraudBlocked        = errors.New("transaction blocked due to fraud risk")
	ErrAlreadyExecuted     = errors.New("scheduled payment already executed")
	ErrForbidden           = errors.New("not allowed")
	ErrStatusFinal         = errors.New("transaction status is terminal")
)
