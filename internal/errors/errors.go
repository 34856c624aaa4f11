// Package errors provides custom error types for the fintrack core.
// Service-layer code returns AppError values so callers can classify
// failures with errors.Is/As without matching on message strings.
package errors

// AppError represents a structured application error with a stable code,
// human-readable message, and optional internal cause.
type AppError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so wrapped sentinels
// still satisfy errors.Is(err, Sentinel).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the sentinel's code and message but a
// wrapped internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// Price source errors.
var (
	// ErrSourceStructure means a scraped page no longer contains the expected
	// element. The site layout changed; fetching must not silently continue.
	ErrSourceStructure = &AppError{Code: "SOURCE_STRUCTURE", Message: "Price source page structure changed"}

	// ErrSourceData means a quote API responded, but the payload was
	// malformed, empty, or carried only zero closes.
	ErrSourceData = &AppError{Code: "SOURCE_DATA", Message: "Price source returned unusable data"}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input"}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found"}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred"}
)

// Account errors.
var (
	ErrAccountNotFound  = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}
	ErrDuplicateAccount = &AppError{Code: "DUPLICATE_ACCOUNT", Message: "An account with this name already exists"}
)
