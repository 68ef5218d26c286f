package response

// ErrCode is a typed error code for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// Test sessions
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrWrongPhase      ErrCode = "WRONG_SESSION_PHASE"
	ErrInputDisabled   ErrCode = "INPUT_DISABLED"
	ErrUnknownTestType ErrCode = "UNKNOWN_TEST_TYPE"
	ErrDegradedResult  ErrCode = "DEGRADED_RESULT"

	// Persistence
	ErrPersistence ErrCode = "PERSISTENCE_ERROR"

	// Rate limiting
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns the human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrEmailTaken:
		return "An account with this email already exists."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	case ErrSessionNotFound:
		return "Test session not found or expired."
	case ErrWrongPhase:
		return "This action is not valid in the current session phase."
	case ErrInputDisabled:
		return "Input is disabled while feedback is shown."
	case ErrUnknownTestType:
		return "Unknown test type."
	case ErrDegradedResult:
		return "Results are unavailable for this session."

	case ErrPersistence:
		return "Could not save your data. Please try again."

	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."

	case ErrInternal:
		return "Internal server error."
	}
	return "Unknown error."
}
