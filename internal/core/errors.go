package core

import "errors"

// Sentinel errors returned by repository implementations.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrLoginCodeNotFound    = errors.New("login code not found")
	ErrLoginCodeCollision   = errors.New("login code already issued")
	ErrRecoveryCodeTaken    = errors.New("recovery code already assigned")
	ErrPresentationNotFound = errors.New("presentation not found")
)
