package app

import "errors"

var (
	// validation
	ErrMissingFields          = errors.New("required fields are missing")
	ErrInvalidRole            = errors.New("role must be student, faculty or admin")
	ErrInvalidPrice           = errors.New("price must not be negative")
	ErrInvalidYear            = errors.New("publication year is out of range")
	ErrInvalidTransactionType = errors.New("transaction type must be purchase or reserve")

	// auth
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("account role does not match")
	ErrInvalidToken       = errors.New("invalid or expired session token")

	// authorization
	ErrNotAllowed = errors.New("not allowed")

	// ledger
	ErrOwnListing = errors.New("cannot request your own listing")

	// lookups
	ErrUserNotFound         = errors.New("user not found")
	ErrAdNotFound           = errors.New("ad not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrBlogNotFound         = errors.New("blog not found")
	ErrPostNotFound         = errors.New("interview post not found")
	ErrMaterialNotFound     = errors.New("material not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// infrastructure
	ErrStorageDisabled = errors.New("material storage is not configured")
)
