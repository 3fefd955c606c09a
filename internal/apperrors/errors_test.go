package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ValidationError("bad"), http.StatusBadRequest},
		{UnauthorizedError("expired"), http.StatusUnauthorized},
		{QuotaExhaustedError("credits", nil), http.StatusPaymentRequired},
		{NotFoundError("missing"), http.StatusNotFound},
		{RateLimitedError("slow down", nil), http.StatusTooManyRequests},
		{ExternalError("upstream", nil), http.StatusBadGateway},
		{InternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := NotFoundError("reminder not found").WithField("reminder_id", "abc")
	wrapped := fmt.Errorf("handler: %w", original)
	assert.Same(t, original, AsStructuredError(wrapped))

	plain := errors.New("disk on fire")
	converted := AsStructuredError(plain)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)
}

func TestErrorString(t *testing.T) {
	cause := errors.New("connection refused")
	assert.Equal(t, "external: gateway down: connection refused", ExternalError("gateway down", cause).Error())
	assert.Equal(t, "validation: content is required", ValidationError("content is required").Error())
}

func TestToResponse(t *testing.T) {
	resp := ValidationError("invalid platform").WithField("platform", "fax").ToResponse()
	assert.Equal(t, "invalid platform", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "fax", resp.Context["platform"])
}
