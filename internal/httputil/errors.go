package httputil

import (
	"encoding/json"
	"net/http"
)

// Error codes returned to callers. Clients branch on the code; the
// error sentence is fixed per code and never carries upstream text.
const (
	CodeMalformedRequest     = "MALFORMED_REQUEST"
	CodeInvalidMessages      = "INVALID_MESSAGES"
	CodeEmptyMessages        = "EMPTY_MESSAGES"
	CodeTooManyMessages      = "TOO_MANY_MESSAGES"
	CodeMissingField         = "MISSING_FIELD"
	CodeInvalidRole          = "INVALID_ROLE"
	CodeInvalidContentType   = "INVALID_CONTENT_TYPE"
	CodeMessageTooLong       = "MESSAGE_TOO_LONG"
	CodeMissingPrompt        = "MISSING_PROMPT"
	CodePromptTooLong        = "PROMPT_TOO_LONG"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodePaymentRequired      = "PAYMENT_REQUIRED"
	CodeTimeout              = "TIMEOUT"
	CodeAIServiceError       = "AI_SERVICE_ERROR"
	CodePolicyDenied         = "POLICY_DENIED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// ErrorBody is the failure envelope for all gateway error responses.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteError(w http.ResponseWriter, requestID string, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorBody{
		Error: message,
		Code:  code,
	})
}

// WriteJSON writes a success body with status 200.
func WriteJSON(w http.ResponseWriter, requestID string, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	json.NewEncoder(w).Encode(body)
}

func WriteValidationError(w http.ResponseWriter, requestID, code, message string) {
	WriteError(w, requestID, http.StatusBadRequest, code, message)
}

func WriteUnsupportedMediaType(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusBadRequest, CodeUnsupportedMediaType,
		"Content-Type must be application/json.")
}

func WritePayloadTooLarge(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		"Request body must not exceed 100KB.")
}

func WriteRateLimitError(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusTooManyRequests, CodeRateLimitExceeded,
		"Too many requests. Please slow down and try again.")
}

func WritePaymentRequiredError(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusPaymentRequired, CodePaymentRequired,
		"The AI service account has insufficient credit.")
}

func WriteTimeoutError(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusGatewayTimeout, CodeTimeout,
		"The AI service took too long to respond. Please try again.")
}

func WriteUpstreamError(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusServiceUnavailable, CodeAIServiceError,
		"The AI service is currently unavailable. Please try again later.")
}

func WritePolicyDeniedError(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusForbidden, CodePolicyDenied,
		"This request is not permitted by the gateway policy.")
}

func WriteInternalError(w http.ResponseWriter, requestID string) {
	WriteError(w, requestID, http.StatusInternalServerError, CodeInternalError,
		"An unexpected error occurred. Please try again.")
}
