package contactsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes carried in the "error" field of error responses.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeValidation          = "validation_error"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeInvalidGrant        = "invalid_grant"
	ErrorCodeEmailNotVerified    = "email_not_verified"
	ErrorCodeAccessDenied        = "access_denied"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeConflict            = "conflict"
	ErrorCodeEmailDispatchFailed = "email_dispatch_failed"
	ErrorCodeUploadFailed        = "upload_failed"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// APIError is an error response of the contacts service. The server writes
// it with WriteError; the client decodes every non-2xx response into one.
type APIError struct {
	StatusCode  int               `json:"-"`
	Code        string            `json:"error"`
	Description string            `json:"error_description"`
	Details     map[string]string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on status and code so callers can write
// errors.Is(err, contactsdk.ErrNotFound).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WriteError writes the error as JSON with its status code.
func (e *APIError) WriteError(w http.ResponseWriter) {
	writeNoCacheJSON(w, e.StatusCode, ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

// NewAPIError builds a one-off APIError.
func NewAPIError(status int, code, description string) *APIError {
	return &APIError{StatusCode: status, Code: code, Description: description}
}

// WriteValidationError writes a 400 validation_error response with
// per-field reasons.
func WriteValidationError(w http.ResponseWriter, message string, details map[string]string) {
	writeNoCacheJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Code:    ErrorCodeValidation,
		Message: message,
		Details: details,
	})
}

func writeNoCacheJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is missing, invalid or expired",
	}

	// ErrInvalidGrant covers bad credentials and unusable refresh tokens.
	ErrInvalidGrant = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidGrant,
		Description: "invalid credentials",
	}

	ErrEmailNotVerified = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeEmailNotVerified,
		Description: "email address has not been verified",
	}

	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "resource already exists",
	}

	ErrEmailDispatch = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeEmailDispatchFailed,
		Description: "the email could not be sent",
	}

	ErrUploadFailed = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeUploadFailed,
		Description: "the file could not be stored",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	var valErr ValidationErrorResponse
	if err := json.Unmarshal(body, &valErr); err == nil && valErr.Code != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        valErr.Code,
			Description: valErr.Message,
			Details:     valErr.Details,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
