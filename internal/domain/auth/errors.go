package auth

import "github.com/stayrewards/stayrewards-api/internal/pkg/apperr"

var (
	ErrEmailAlreadyExists  = apperr.New(apperr.KindConflict, "email already registered")
	ErrInvalidCredentials  = apperr.New(apperr.KindUnauthorized, "invalid email or password")
	ErrInvalidRefreshToken = apperr.New(apperr.KindUnauthorized, "invalid or expired refresh token")
	ErrSubjectNotFound     = apperr.New(apperr.KindUnauthorized, "token subject no longer exists")
	ErrUserNotFound        = apperr.New(apperr.KindNotFound, "user not found")
	ErrTooManyAttempts     = apperr.New(apperr.KindTooManyRequests, "too many failed login attempts, try again later")
)
