package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`                  // Machine-readable error code
	Message      string `json:"message"`                // Human-readable message
	RequiresAuth bool   `json:"requiresAuth,omitempty"` // Front end redirects to login when set
	IP           string `json:"ip,omitempty"`           // Caller IP, echoed on login failures only
}

// WriteJSON writes v as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are not reported to the client
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorResponse(w, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// WriteErrorResponse writes a fully populated error body. Success is always false.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	resp.Success = false
	WriteJSON(w, statusCode, resp)
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

// WriteAuthRequired writes a 401 carrying requiresAuth so the UI shows the login prompt
func WriteAuthRequired(w http.ResponseWriter, message string) {
	WriteErrorResponse(w, http.StatusUnauthorized, ErrorResponse{
		Error:        "auth_required",
		Message:      message,
		RequiresAuth: true,
	})
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// WriteTooManyRequests writes a 429. A positive retryAfter is sent as Retry-After (whole seconds, rounded up).
func WriteTooManyRequests(w http.ResponseWriter, message string, retryAfter time.Duration) {
	SetRetryAfter(w, retryAfter)
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

// SetRetryAfter sets the Retry-After header when d is positive
func SetRetryAfter(w http.ResponseWriter, d time.Duration) {
	if d <= 0 {
		return
	}
	secs := int64((d + time.Second - 1) / time.Second)
	w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
}
