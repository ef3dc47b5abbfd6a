package loyalty

import (
	"errors"

	"github.com/stayrewards/stayrewards-api/internal/pkg/apperr"
)

var (
	ErrAccountNotFound     = apperr.New(apperr.KindNotFound, "loyalty account not found")
	ErrInvalidAmount       = apperr.New(apperr.KindInvalidAmount, "amount must be positive")
	ErrInvalidPoints       = apperr.New(apperr.KindInvalidAmount, "points must be at least 1")
	ErrZeroAdjustment      = apperr.New(apperr.KindInvalidAmount, "adjustment delta must not be zero")
	ErrInsufficientBalance = apperr.New(apperr.KindInsufficientBalance, "insufficient points balance")
	ErrDuplicateBooking    = apperr.New(apperr.KindConflict, "points already earned for this booking")
	ErrBookingRequired     = apperr.New(apperr.KindInvalidInput, "booking_id is required")
	ErrReasonRequired      = apperr.New(apperr.KindInvalidInput, "adjustment reason is required")
	ErrForbidden           = apperr.New(apperr.KindForbidden, "not allowed to access this loyalty account")

	ErrInvalidTierTable = errors.New("invalid tier table")
)
