package errorhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayrewards/stayrewards-api/internal/pkg/apperr"
	"github.com/stayrewards/stayrewards-api/internal/pkg/response"
)

func TestHandleMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.New(apperr.KindNotFound, "account not found"), http.StatusNotFound, "NOT_FOUND"},
		{apperr.New(apperr.KindUnauthorized, "invalid email or password"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{apperr.New(apperr.KindForbidden, "forbidden"), http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("redeem: %w", apperr.New(apperr.KindInsufficientBalance, "insufficient points balance")), http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"},
		{apperr.New(apperr.KindInvalidAmount, "points must be at least 1"), http.StatusBadRequest, "INVALID_AMOUNT"},
		{apperr.New(apperr.KindInvalidInput, "booking_id is required"), http.StatusBadRequest, "INVALID_INPUT"},
		{apperr.New(apperr.KindConflict, "email already registered"), http.StatusConflict, "CONFLICT"},
		{apperr.New(apperr.KindTooManyRequests, "slow down"), http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{errors.New("driver: bad connection"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		Handle(context.Background(), rr, tc.err)

		assert.Equal(t, tc.status, rr.Code, tc.err.Error())

		var out response.Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		require.NotNil(t, out.Error)
		assert.False(t, out.Success)
		assert.Equal(t, tc.code, out.Error.Code)
	}
}

func TestHandleHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	Handle(context.Background(), rr, errors.New("pq: password authentication failed for user"))

	assert.NotContains(t, rr.Body.String(), "pq:")
}

func TestHandleValidation(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleValidation(context.Background(), rr, map[string]string{"reason": "This field is required"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
}
