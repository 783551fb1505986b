package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionSuperseded  ErrCode = "SESSION_SUPERSEDED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrDeviceMismatch ErrCode = "DEVICE_MISMATCH"
	ErrOwnerOnly      ErrCode = "OWNER_ONLY"
	ErrNoAccess       ErrCode = "NO_ACCESS"
	ErrStaffOnly      ErrCode = "STAFF_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrNameRequired   ErrCode = "STUDENT_NAME_REQUIRED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrConflict      ErrCode = "CONFLICT"
	ErrAlreadySolved ErrCode = "EXAM_ALREADY_SOLVED"
	ErrNoQuestions   ErrCode = "NO_QUESTIONS"
	ErrSubmitLate    ErrCode = "SUBMIT_DEADLINE_PASSED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrUpstream          ErrCode = "UPSTREAM_FAILURE"
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Username or password is incorrect."
	case ErrSessionSuperseded:
		return "Your session was opened on another device. Please log in again."
	case ErrTokenRequired:
		return "Authentication is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrDeviceMismatch:
		return "This account is already bound to a different device."
	case ErrOwnerOnly:
		return "Only the platform owner may perform this action."
	case ErrNoAccess:
		return "You are not subscribed to this content."
	case ErrStaffOnly:
		return "This resource is restricted to staff."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNameRequired:
		return "A student name is required to start this exam."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrAlreadySolved:
		return "You have already completed this exam."
	case ErrNoQuestions:
		return "This exam has no questions."
	case ErrSubmitLate:
		return "The time limit for this exam has passed."
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrUpstream:
		return "Could not load content. Please try again."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
