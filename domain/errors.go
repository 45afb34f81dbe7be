package domain

import "errors"

var (
	UnexpectedDatabaseError = errors.New("database-error")
	ErrDuplicateUsername    = errors.New("duplicate-username")
	ErrUserNotFound         = errors.New("user-not-found")
)

var UnexpectedPasswordHashComparisonError = errors.New("hashing-error")

var (
	UnexpectedTokenGenerationError = errors.New("token-error")
	ErrInvalidSigningAlg           = errors.New("invalid-signing-method")
	ErrExpiredToken                = errors.New("expired-token")
	ErrInvalidTokenSignature       = errors.New("invalid-token-signature")
	ErrCorruptedToken              = errors.New("corrupted-token")
)

var (
	ErrNotEnoughQuestions = errors.New("not-enough-questions")
)
