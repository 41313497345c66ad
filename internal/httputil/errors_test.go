package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, "req_123", http.StatusBadRequest, CodeInvalidRole, "Message role must be user, assistant, or system.")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	if rid := w.Header().Get("X-Request-ID"); rid != "req_123" {
		t.Errorf("expected X-Request-ID req_123, got %s", rid)
	}

	var resp ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Code != CodeInvalidRole {
		t.Errorf("expected code %s, got %q", CodeInvalidRole, resp.Code)
	}
	if resp.Error == "" {
		t.Error("expected non-empty error message")
	}
}

func TestWriteStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		code   string
	}{
		{"unsupported media type", func(w http.ResponseWriter) { WriteUnsupportedMediaType(w, "r") }, 400, CodeUnsupportedMediaType},
		{"payload too large", func(w http.ResponseWriter) { WritePayloadTooLarge(w, "r") }, 413, CodePayloadTooLarge},
		{"rate limit", func(w http.ResponseWriter) { WriteRateLimitError(w, "r") }, 429, CodeRateLimitExceeded},
		{"payment required", func(w http.ResponseWriter) { WritePaymentRequiredError(w, "r") }, 402, CodePaymentRequired},
		{"timeout", func(w http.ResponseWriter) { WriteTimeoutError(w, "r") }, 504, CodeTimeout},
		{"upstream error", func(w http.ResponseWriter) { WriteUpstreamError(w, "r") }, 503, CodeAIServiceError},
		{"policy denied", func(w http.ResponseWriter) { WritePolicyDeniedError(w, "r") }, 403, CodePolicyDenied},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, "r") }, 500, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var resp ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, "req_9", map[string]string{"agent": "Math Agent", "reply": "x = 4"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["agent"] != "Math Agent" {
		t.Errorf("unexpected body: %v", body)
	}
}
