// Package service provides business logic services for the landing auth
// service.
package service

import "errors"

// Common service errors.
var (
	// ErrCodeDeliveryFailed indicates the one-time code could not be sent.
	ErrCodeDeliveryFailed = errors.New("failed to deliver one-time code")

	// ErrLoginFailed is the deliberately generic login-validation error.
	// The precise cause (expired, mismatch, no code) is logged server-side
	// only, so callers cannot probe which accounts hold live codes.
	ErrLoginFailed = errors.New("invalid or expired login code")

	// ErrAnalysisDisabled indicates the analysis feature is turned off.
	ErrAnalysisDisabled = errors.New("image analysis is disabled")

	// ErrAnalysisFailed indicates the analysis provider returned an error.
	ErrAnalysisFailed = errors.New("image analysis failed")

	// ErrInternalError is the catch-all for unexpected failures.
	ErrInternalError = errors.New("internal server error")
)
