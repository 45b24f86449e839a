package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrReferrerNotFound  = errors.New("referrer not found")
)

// PackageErrors
var (
	ErrPackageNotFound = errors.New("package not found")
	ErrNotAnUpgrade    = errors.New("target package is not an upgrade")
)

// WithdrawalErrors
var (
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrWithdrawalProcessed = errors.New("withdrawal already processed")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
