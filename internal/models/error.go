package models

import "fmt"

// APIError is the JSON body of every non-OAuth error response
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// General error codes
const (
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
)

// Pizza error codes
const (
	ErrPizzaNotFound    = "PIZZA_NOT_FOUND"
	ErrPizzaInvalidData = "PIZZA_INVALID_DATA"
)

// Topping error codes. A partial update means some pizzas were rewritten and
// others were not; nothing is rolled back.
const (
	ErrToppingInvalid       = "TOPPING_INVALID"
	ErrToppingNotFound      = "TOPPING_NOT_FOUND"
	ErrToppingDuplicate     = "TOPPING_DUPLICATE"
	ErrToppingPartialUpdate = "TOPPING_PARTIAL_UPDATE"
)

// OAuth error codes, lowercase per RFC 6749 section 5.2
const (
	ErrInvalidRequest       = "invalid_request"
	ErrInvalidClient        = "invalid_client"
	ErrUnsupportedGrantType = "unsupported_grant_type"
	ErrServerError          = "server_error"

	// RFC 6750 bearer token errors
	ErrInvalidToken          = "invalid_token"
	ErrAuthorizationRequired = "authorization_required"
)

// NewAPIError creates an API error without details
func NewAPIError(code, message string) APIError {
	return APIError{Code: code, Message: message}
}

// WithDetail returns a copy of e with key set in its details
func (e APIError) WithDetail(key string, value any) APIError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// OAuth2Error is an RFC 6749 error response
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(code, description string) OAuth2Error {
	return OAuth2Error{
		Error:            code,
		ErrorDescription: description,
	}
}
