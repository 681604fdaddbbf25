package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin console
var (
	// Authentication errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrMissingUserID      = errors.New("user id missing from auth response")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrInvalidCredentials = errors.New("email and password are required")

	// Request errors
	ErrMissingProjectID = errors.New("project id is required")
	ErrMissingID        = errors.New("id is required")
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	ErrMissingMetric    = errors.New("metricName, period, startDate and endDate are required")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
