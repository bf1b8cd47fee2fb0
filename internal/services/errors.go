package services

import "errors"

// Sentinel errors returned by the account and order services. Handlers map
// them to HTTP statuses; messages crossing the API stay generic where account
// enumeration is a concern.
var (
	ErrRegistrationFailed = errors.New("registration failed")
	ErrInvalidAdminCode   = errors.New("invalid admin code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeInvalid        = errors.New("invalid verification code")
	ErrTokenExpired       = errors.New("reset token expired")
	ErrTokenInvalid       = errors.New("invalid reset token")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrNotFound           = errors.New("not found")
	ErrNotOwner           = errors.New("not the order owner")
	ErrOrderTerminal      = errors.New("order can no longer be modified")
	ErrUpdateConflict     = errors.New("concurrent order update, retry")
)
