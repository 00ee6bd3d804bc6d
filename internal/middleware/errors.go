package middleware

import (
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var (
	ErrTokenNotFound = apperror.New(
		apperror.CodeUnauthorized,
		"Token not found",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = apperror.New(
		apperror.CodeInvalidToken,
		"Invalid token",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		apperror.CodeTokenExpired,
		"Token has expired",
		http.StatusUnauthorized,
	)

	ErrMissingAuthContext = apperror.New(
		apperror.CodeUnauthorized,
		"Missing auth context",
		http.StatusUnauthorized,
	)

	ErrRequestInProgress = apperror.New(
		apperror.CodeProcessing,
		"A request with this Idempotency-Key is still being processed",
		http.StatusConflict,
	)

	ErrTooManyRequests = apperror.New(
		apperror.CodeRateLimited,
		"Too many requests",
		http.StatusTooManyRequests,
	)
)
