package httpserver

import (
	"context"
	"errors"

	"github.com/pathakanu/mindwell/internal/apperrors"
	"github.com/pathakanu/mindwell/internal/assessment"
	myopenai "github.com/pathakanu/mindwell/internal/openai"
	"github.com/pathakanu/mindwell/internal/prediction"
	"github.com/pathakanu/mindwell/internal/reminder"
	"github.com/pathakanu/mindwell/internal/sentiment"
)

// User facing messages of the AI gateway failures the web client shows verbatim.
const (
	msgRateLimited    = "Rate limit exceeded. Please try again in a moment."
	msgQuotaExhausted = "AI credits exhausted. Please add credits to continue."
	msgSessionExpired = "Session expired. Please log in again."
)

// toAppError translates domain sentinels into structured errors. Anything
// unrecognised stays internal.
func toAppError(err error, fallback string) *apperrors.Error {
	switch {
	case errors.Is(err, sentiment.ErrEmptyContent):
		return apperrors.ValidationError("content is required")
	case errors.Is(err, myopenai.ErrRateLimited):
		return apperrors.RateLimitedError(msgRateLimited, err)
	case errors.Is(err, myopenai.ErrQuotaExhausted):
		return apperrors.QuotaExhaustedError(msgQuotaExhausted, err)
	case errors.Is(err, myopenai.ErrMalformedResponse):
		return apperrors.ExternalError("Invalid AI response format", err)
	case errors.Is(err, myopenai.ErrClientNotInitialised):
		return apperrors.InternalError("analyzer is not configured", err)
	case errors.Is(err, assessment.ErrAnalyzer), errors.Is(err, context.DeadlineExceeded):
		return apperrors.ExternalError("AI analysis failed", err)

	case errors.Is(err, reminder.ErrInvalid), errors.Is(err, prediction.ErrInvalidInput):
		return apperrors.ValidationError(err.Error())
	case errors.Is(err, reminder.ErrNotFound):
		return apperrors.NotFoundError("reminder not found")

	case errors.Is(err, prediction.ErrSessionExpired):
		e := apperrors.UnauthorizedError(msgSessionExpired)
		e.Cause = err
		return e
	case errors.Is(err, prediction.ErrNotConfigured), errors.Is(err, prediction.ErrUpstream):
		return apperrors.ExternalError("prediction service unavailable", err)
	}
	return apperrors.InternalError(fallback, err)
}
