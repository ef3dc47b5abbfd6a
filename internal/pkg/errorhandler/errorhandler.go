package errorhandler

import (
	"context"
	"net/http"

	"github.com/stayrewards/stayrewards-api/internal/pkg/apperr"
	"github.com/stayrewards/stayrewards-api/internal/pkg/logger"
	"github.com/stayrewards/stayrewards-api/internal/pkg/response"
)

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case apperr.KindInvalidAmount, apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Handle logs err and writes the matching error envelope.
// Unclassified errors become a 500 with a generic message.
func Handle(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	l := logger.FromContext(ctx)
	event := l.Warn()
	if status >= http.StatusInternalServerError {
		event = l.Error()
	}
	event.
		Err(err).
		Str("error_code", string(kind)).
		Int("status_code", status).
		Msg("Request error")

	response.Error(w, status, string(kind), apperr.MessageOf(err))
}

// HandleValidation logs field errors and writes a 422 response
func HandleValidation(ctx context.Context, w http.ResponseWriter, fieldErrors map[string]string) {
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")

	response.ValidationError(w, fieldErrors)
}
