package api

// Common API types and enums

// APIError represents RESTful error response structure
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error codes. Integrity violations, ownership denials and not-found each
// have their own code; the UI must never show the same message for all
// three.
const (
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"
	ErrorCodeValidationFailed   = "VALIDATION_FAILED"
	ErrorCodeNotAuthenticated   = "NOT_AUTHENTICATED"
	ErrorCodeSessionExpired     = "SESSION_EXPIRED"
	ErrorCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorCodeLockedOut          = "LOCKED_OUT"
	ErrorCodeNotOwner           = "NOT_OWNER"
	ErrorCodeAdminOnly          = "ADMIN_ONLY"
	ErrorCodeNotFound           = "NOT_FOUND"
	ErrorCodeIntegrityViolation = "INTEGRITY_VIOLATION"
	ErrorCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrorCodeInternalError      = "INTERNAL_ERROR"
)
