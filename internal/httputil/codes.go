package httputil

// Machine-readable error codes returned alongside error messages.
// Clients should branch on these rather than on message text.
const (
	// Request / generic
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"

	// Auth
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeMissingAuth        = "MISSING_AUTH"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidTokenUserID = "INVALID_TOKEN_USER_ID"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"

	// Signup validation
	CodeNameRequired       = "NAME_REQUIRED"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"

	// Holdings
	CodeHoldingNotFound = "HOLDING_NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
)
