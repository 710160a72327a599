package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// Fatal before any work starts
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeConnection    ErrorType = "connection"

	// Fatal to the run: the scrape job never produced usable results
	ErrorTypeSubmission ErrorType = "submission"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeJobFailed  ErrorType = "job_failed"

	// Recovered per item
	ErrorTypeFetch  ErrorType = "fetch"
	ErrorTypeUpload ErrorType = "upload"
	ErrorTypeLookup ErrorType = "lookup"

	// Fatal at the end of the run
	ErrorTypePersist ErrorType = "persist"

	// Transport-level faults
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a pipeline error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error without an HTTP status code
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// NewWithCode creates a typed error carrying an HTTP status code
func NewWithCode(t ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Code: code}
}

// IsFatal reports whether an error type must abort the whole run.
// Per-item fetch/upload/lookup faults are recovered locally and never
// sink the batch.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeConfiguration, ErrorTypeConnection,
		ErrorTypeSubmission, ErrorTypeTimeout, ErrorTypeJobFailed,
		ErrorTypePersist:
		return true
	default:
		return false
	}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeConnection:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 400, 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
