package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Recipe-specific errors
	ErrAlreadyExists           = "ALREADY_EXISTS"
	ErrSelfFollow              = "SELF_FOLLOW"
	ErrLinkGenerationExhausted = "LINK_GENERATION_EXHAUSTED"

	// Bearer token errors (RFC 6750)
	ErrInvalidRequest = "invalid_request"
	ErrInvalidToken   = "invalid_token"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
