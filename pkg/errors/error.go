package errors

import "errors"

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// LedgerUserNotFound represents an error when no balance record exists for a user.
	LedgerUserNotFound ErrorCode = "user_not_found"
	// LedgerAssetNotFound represents an error when a user has no balance record for an asset.
	LedgerAssetNotFound ErrorCode = "asset_not_found"
	// LedgerInsufficientAvailable represents an error when a freeze exceeds the available balance.
	LedgerInsufficientAvailable ErrorCode = "insufficient_available"
	// LedgerInsufficientFrozen represents an error when an unlock or settle exceeds the frozen balance.
	// Receiving this code indicates a caller-side accounting bug and should be logged as an anomaly.
	LedgerInsufficientFrozen ErrorCode = "insufficient_frozen"
	// LedgerOverflow represents an error when a balance mutation would overflow an unsigned amount.
	LedgerOverflow ErrorCode = "balance_overflow"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
)

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "insufficient available balance".
	Message string

	// Code (required) is the user-defined error code string.
	// E.g. "insufficient_available".
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string

	// Object (optional) is the related object the error occurred on, if any.
	Object interface{}
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// NewErrorDetailsWithObject creates a new ErrorDetails struct with an associated object.
func NewErrorDetailsWithObject(message, code, field string, object interface{}) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
		Object:  object,
	}
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals checks whether a given `error` has a specific code,
// unwrapping any tracer or stack annotations around it.
func ErrorCodeEquals(err error, code ErrorCode) bool {
	var errDetails *ErrorDetails
	if !errors.As(err, &errDetails) {
		return false
	}

	return errDetails.Code == string(code)
}
