package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/convert"
)

// ============================================================================
// STANDARDIZED ERROR HELPERS
// ============================================================================

// ErrorWrapper provides standardized error handling patterns
type ErrorWrapper struct {
	context string
}

// NewErrorWrapper creates a new error wrapper with context
func NewErrorWrapper(context string) *ErrorWrapper {
	return &ErrorWrapper{context: context}
}

// Wrapf wraps an error with context and formatting
func (e *ErrorWrapper) Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %s: %w", e.context, message, err)
}

// Failf creates a new error with context and formatting
func (e *ErrorWrapper) Failf(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %s", e.context, message)
}

// ============================================================================
// STANDARDIZED HTTP HELPERS
// ============================================================================

// HTTPErrorResponse represents a standardized HTTP error response
type HTTPErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// WriteHTTPError writes a standardized HTTP error response
func WriteHTTPError(w http.ResponseWriter, message string, code int) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(code)

	response := HTTPErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	}
	if data, err := json.Marshal(response); err == nil {
		_, _ = w.Write(data)
		return
	}
	fmt.Fprintf(w, "Error: %s", message)
}

// WriteHTTPJSON writes v as indented JSON, keeping the key order of ordered
// maps.
func WriteHTTPJSON(w http.ResponseWriter, v any) error {
	data, err := convert.Encode(v)
	if err != nil {
		WriteHTTPError(w, constants.LogFailedEncodeResponse, http.StatusInternalServerError)
		return err
	}
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	_, err = w.Write(data)
	return err
}
