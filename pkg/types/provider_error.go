package types

import "fmt"

// ErrorCode categorizes provider errors
type ErrorCode string

const (
	ErrCodeUnknown            ErrorCode = "unknown"
	ErrCodeInvalidConfig      ErrorCode = "invalid_config"
	ErrCodeDuplicateAlgorithm ErrorCode = "duplicate_algorithm"
	ErrCodeNotFound           ErrorCode = "not_found"
	ErrCodeInactive           ErrorCode = "inactive"
	ErrCodeLoadFailed         ErrorCode = "load_failed"
	ErrCodeNetwork            ErrorCode = "network"
	ErrCodeTimeout            ErrorCode = "timeout"
	ErrCodeServerError        ErrorCode = "server_error"
	ErrCodeRunFailed          ErrorCode = "run_failed"
)

// ProviderError represents a standardized error from a provider
type ProviderError struct {
	Code        ErrorCode // Categorized error code
	Message     string    // Human-readable message
	Provider    string    // ID of the provider that generated this error
	Operation   string    // What operation failed (e.g., "refresh_algorithms", "run")
	Algorithm   string    // Algorithm name if the error is algorithm scoped
	StatusCode  int       // HTTP status code (0 if not applicable)
	OriginalErr error     // Wrapped original error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (status=%d, code=%s)", e.Provider, e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("[%s] %s (code=%s)", e.Provider, e.Message, e.Code)
}

// Unwrap returns the original error for errors.Is/As
func (e *ProviderError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns true if the error is potentially recoverable with retry
func (e *ProviderError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeServerError:
		return true
	}
	return false
}

// WithOperation sets the operation field and returns the error for chaining
func (e *ProviderError) WithOperation(operation string) *ProviderError {
	e.Operation = operation
	return e
}

// WithAlgorithm sets the algorithm field and returns the error for chaining
func (e *ProviderError) WithAlgorithm(name string) *ProviderError {
	e.Algorithm = name
	return e
}

// WithStatusCode sets the status code field and returns the error for chaining
func (e *ProviderError) WithStatusCode(statusCode int) *ProviderError {
	e.StatusCode = statusCode
	return e
}

// WithOriginalErr sets the original error field and returns the error for chaining
func (e *ProviderError) WithOriginalErr(err error) *ProviderError {
	e.OriginalErr = err
	return e
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider string, code ErrorCode, message string) *ProviderError {
	return &ProviderError{
		Code:     code,
		Message:  message,
		Provider: provider,
	}
}

// NewLoadError creates a new load failure error
func NewLoadError(provider string, err error) *ProviderError {
	return &ProviderError{
		Code:        ErrCodeLoadFailed,
		Message:     "provider failed to load algorithms",
		Provider:    provider,
		OriginalErr: err,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(provider string, err error) *ProviderError {
	return &ProviderError{
		Code:        ErrCodeNetwork,
		Message:     "network request failed",
		Provider:    provider,
		OriginalErr: err,
	}
}
