package errors

import (
	"errors"
	"net/http"
)

// BusinessError is a domain failure with a fixed status, code and message.
type BusinessError struct {
	Status  int
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

func newBusinessError(status int, code, message string) *BusinessError {
	return &BusinessError{Status: status, Code: code, Message: message}
}

var (
	// ErrPetExists is returned when the login id is already taken.
	ErrPetExists = newBusinessError(http.StatusConflict, "PET_EXISTS", "Pet exists")
	// ErrPetRoleExists is returned when the role was already granted.
	ErrPetRoleExists = newBusinessError(http.StatusConflict, "PET_ROLE_EXISTS", "Role exists")
	// ErrPetNotFound is returned when no pet has the requested id.
	ErrPetNotFound = newBusinessError(http.StatusNotFound, "PET_NOT_FOUND", "Pet not found")
	// ErrAddressNotFound is returned when an address code does not resolve.
	ErrAddressNotFound = newBusinessError(http.StatusNotFound, "ADDRESS_NOT_FOUND", "Address not found")
	// ErrTokenAndIDNotMatch is returned when the caller does not own the resource.
	ErrTokenAndIDNotMatch = newBusinessError(http.StatusForbidden, "TOKEN_AND_ID_NOT_MATCH", "Token and id not match")
	// ErrAdminCodeNotMatch is returned when the admin secret is wrong.
	ErrAdminCodeNotMatch = newBusinessError(http.StatusBadRequest, "ADMIN_CODE_NOT_MATCH", "Admin code not match")
	// ErrInvalidToken is returned for malformed or expired access tokens.
	ErrInvalidToken = newBusinessError(http.StatusBadRequest, "INVALID_TOKEN", "Invalid token")
	// ErrRefreshTokenNotFound is returned when no refresh token is cached for the account.
	ErrRefreshTokenNotFound = newBusinessError(http.StatusBadRequest, "REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
	// ErrInvalidRefreshToken is returned when a refresh token fails validation.
	ErrInvalidRefreshToken = newBusinessError(http.StatusBadRequest, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
	// ErrInvalidCredentials is returned when login id or password is wrong.
	ErrInvalidCredentials = newBusinessError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid login id or password")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var be *BusinessError
	if errors.As(err, &be) {
		return NewHTTPError(be.Status, be.Message, be.Code)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
