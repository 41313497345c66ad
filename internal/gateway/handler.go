package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/wsk776429-afk/tutor-bot-now/internal/audit"
	"github.com/wsk776429-afk/tutor-bot-now/internal/classify"
	"github.com/wsk776429-afk/tutor-bot-now/internal/httputil"
	"github.com/wsk776429-afk/tutor-bot-now/internal/policy"
	"github.com/wsk776429-afk/tutor-bot-now/internal/telemetry"
	"github.com/wsk776429-afk/tutor-bot-now/internal/types"
	"github.com/wsk776429-afk/tutor-bot-now/internal/upstream"
)

// Invoker issues single-shot calls to the model-inference service.
type Invoker interface {
	Chat(ctx context.Context, systemPrompt string, messages []types.Message) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Handler holds dependencies for the gateway HTTP handlers.
type Handler struct {
	classifier *classify.Classifier
	invoker    Invoker
	policies   *policy.Evaluator
	auditLog   *audit.Store
	metrics    *telemetry.Metrics
}

func NewHandler(classifier *classify.Classifier, invoker Invoker, policies *policy.Evaluator, auditLog *audit.Store, metrics *telemetry.Metrics) *Handler {
	return &Handler{
		classifier: classifier,
		invoker:    invoker,
		policies:   policies,
		auditLog:   auditLog,
		metrics:    metrics,
	}
}

// outcome collects per-request bookkeeping emitted once at pipeline exit.
type outcome struct {
	endpoint     string
	agent        string
	status       int
	code         string
	messageCount int
	upstreamMs   int64
}

// Chat handles POST /v1/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	reqCtx := types.RequestContext{
		RequestID:  w.Header().Get("X-Request-ID"),
		ReceivedAt: time.Now(),
	}
	out := outcome{endpoint: "chat"}
	defer h.finish(reqCtx, &out)

	slog.Info("request received",
		"request_id", reqCtx.RequestID,
		"endpoint", out.endpoint,
		"method", r.Method,
	)

	body, ok := h.readBody(w, r, reqCtx, &out)
	if !ok {
		return
	}

	var env types.ChatEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		out.status, out.code = http.StatusBadRequest, httputil.CodeMalformedRequest
		slog.Info("malformed request body", "request_id", reqCtx.RequestID, "body_bytes", len(body))
		httputil.WriteValidationError(w, reqCtx.RequestID, out.code, "Request body must be valid JSON.")
		return
	}

	messages, verr := ValidateChat(&env)
	if verr != nil {
		out.status, out.code = http.StatusBadRequest, verr.Code
		slog.Info("validation failed",
			"request_id", reqCtx.RequestID,
			"code", verr.Code,
			"reason", verr.Message,
		)
		httputil.WriteValidationError(w, reqCtx.RequestID, verr.Code, verr.Message)
		return
	}
	out.messageCount = len(messages)

	profile, rule := h.classifier.Classify(messages)
	out.agent = profile.Name
	if h.metrics != nil {
		h.metrics.RecordClassification(profile.Name, rule)
	}
	slog.Info("agent selected",
		"request_id", reqCtx.RequestID,
		"agent", profile.Name,
		"rule", rule,
		"message_count", len(messages),
		"last_message_chars", len(messages[len(messages)-1].Content),
	)

	if !h.checkPolicy(w, r, reqCtx, &out, messages) {
		return
	}

	upstreamStart := time.Now()
	reply, err := h.invoker.Chat(r.Context(), profile.SystemPrompt, messages)
	out.upstreamMs = time.Since(upstreamStart).Milliseconds()
	if err != nil {
		out.status, out.code = h.writeUpstreamFailure(w, reqCtx.RequestID, err)
		return
	}

	out.status = http.StatusOK
	httputil.WriteJSON(w, reqCtx.RequestID, types.ChatResponse{
		Agent: profile.Name,
		Reply: reply,
	})
}

// Image handles POST /v1/image.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	reqCtx := types.RequestContext{
		RequestID:  w.Header().Get("X-Request-ID"),
		ReceivedAt: time.Now(),
	}
	out := outcome{endpoint: "image"}
	defer h.finish(reqCtx, &out)

	slog.Info("request received",
		"request_id", reqCtx.RequestID,
		"endpoint", out.endpoint,
		"method", r.Method,
	)

	body, ok := h.readBody(w, r, reqCtx, &out)
	if !ok {
		return
	}

	var env types.ImageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		out.status, out.code = http.StatusBadRequest, httputil.CodeMalformedRequest
		slog.Info("malformed request body", "request_id", reqCtx.RequestID, "body_bytes", len(body))
		httputil.WriteValidationError(w, reqCtx.RequestID, out.code, "Request body must be valid JSON.")
		return
	}

	prompt, verr := ValidateImage(&env)
	if verr != nil {
		out.status, out.code = http.StatusBadRequest, verr.Code
		slog.Info("validation failed",
			"request_id", reqCtx.RequestID,
			"code", verr.Code,
			"reason", verr.Message,
		)
		httputil.WriteValidationError(w, reqCtx.RequestID, verr.Code, verr.Message)
		return
	}
	out.messageCount = 1

	if !h.checkPolicy(w, r, reqCtx, &out, nil) {
		return
	}

	upstreamStart := time.Now()
	url, err := h.invoker.GenerateImage(r.Context(), prompt)
	out.upstreamMs = time.Since(upstreamStart).Milliseconds()
	if err != nil {
		out.status, out.code = h.writeUpstreamFailure(w, reqCtx.RequestID, err)
		return
	}

	out.status = http.StatusOK
	httputil.WriteJSON(w, reqCtx.RequestID, types.ImageResponse{URL: url})
}

// readBody enforces the media-type and payload-size gates before any
// decoding. Both reject without reading the body when the declared
// headers already violate the contract.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request, reqCtx types.RequestContext, out *outcome) ([]byte, bool) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		out.status, out.code = http.StatusBadRequest, httputil.CodeUnsupportedMediaType
		slog.Info("unsupported media type", "request_id", reqCtx.RequestID, "content_type", r.Header.Get("Content-Type"))
		httputil.WriteUnsupportedMediaType(w, reqCtx.RequestID)
		return nil, false
	}

	if r.ContentLength > types.MaxPayloadBytes {
		out.status, out.code = http.StatusRequestEntityTooLarge, httputil.CodePayloadTooLarge
		slog.Info("payload too large", "request_id", reqCtx.RequestID, "content_length", r.ContentLength)
		httputil.WritePayloadTooLarge(w, reqCtx.RequestID)
		return nil, false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, types.MaxPayloadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			out.status, out.code = http.StatusRequestEntityTooLarge, httputil.CodePayloadTooLarge
			slog.Info("payload too large", "request_id", reqCtx.RequestID, "limit", maxErr.Limit)
			httputil.WritePayloadTooLarge(w, reqCtx.RequestID)
			return nil, false
		}
		out.status, out.code = http.StatusBadRequest, httputil.CodeMalformedRequest
		httputil.WriteValidationError(w, reqCtx.RequestID, out.code, "Failed to read request body.")
		return nil, false
	}
	defer r.Body.Close()

	return body, true
}

// checkPolicy runs the optional OPA gate. Returns false when the
// request was rejected and a response already written.
func (h *Handler) checkPolicy(w http.ResponseWriter, r *http.Request, reqCtx types.RequestContext, out *outcome, messages []types.Message) bool {
	if h.policies == nil || !h.policies.Enabled() {
		return true
	}

	roles := make([]string, 0, len(messages))
	for _, m := range messages {
		roles = append(roles, m.Role)
	}

	allowed, reason := h.policies.Check(r.Context(), policy.Input{
		Request: policy.RequestInput{
			Endpoint:     out.endpoint,
			Agent:        out.agent,
			MessageCount: out.messageCount,
			Roles:        roles,
			ClientID:     r.Header.Get("X-Client-ID"),
		},
	})
	if !allowed {
		out.status, out.code = http.StatusForbidden, httputil.CodePolicyDenied
		slog.Warn("request denied by policy",
			"request_id", reqCtx.RequestID,
			"reason", reason,
		)
		httputil.WritePolicyDeniedError(w, reqCtx.RequestID)
		return false
	}
	return true
}

// writeUpstreamFailure maps an invoker error to the gateway's error
// envelope. Raw upstream error text goes to the diagnostic log only.
func (h *Handler) writeUpstreamFailure(w http.ResponseWriter, requestID string, err error) (int, string) {
	if errors.Is(err, upstream.ErrMissingCredential) {
		slog.Error("upstream credential not configured", "request_id", requestID)
		httputil.WriteInternalError(w, requestID)
		return http.StatusInternalServerError, httputil.CodeInternalError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		slog.Error("upstream call timed out", "request_id", requestID, "timeout", types.UpstreamTimeout)
		httputil.WriteTimeoutError(w, requestID)
		return http.StatusGatewayTimeout, httputil.CodeTimeout
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		slog.Error("upstream returned error",
			"request_id", requestID,
			"upstream_status", statusErr.StatusCode,
			"upstream_body", statusErr.Body,
		)
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			httputil.WriteRateLimitError(w, requestID)
			return http.StatusTooManyRequests, httputil.CodeRateLimitExceeded
		case http.StatusPaymentRequired:
			httputil.WritePaymentRequiredError(w, requestID)
			return http.StatusPaymentRequired, httputil.CodePaymentRequired
		default:
			httputil.WriteUpstreamError(w, requestID)
			return http.StatusServiceUnavailable, httputil.CodeAIServiceError
		}
	}

	if errors.Is(err, upstream.ErrNoImage) {
		slog.Error("upstream returned no image", "request_id", requestID)
		httputil.WriteUpstreamError(w, requestID)
		return http.StatusServiceUnavailable, httputil.CodeAIServiceError
	}

	slog.Error("upstream call failed", "request_id", requestID, "error", err)
	httputil.WriteUpstreamError(w, requestID)
	return http.StatusServiceUnavailable, httputil.CodeAIServiceError
}

// finish emits the exit log line, metrics, and the audit record.
func (h *Handler) finish(reqCtx types.RequestContext, out *outcome) {
	duration := time.Since(reqCtx.ReceivedAt)

	slog.Info("request completed",
		"request_id", reqCtx.RequestID,
		"endpoint", out.endpoint,
		"agent", out.agent,
		"status", out.status,
		"code", out.code,
		"message_count", out.messageCount,
		"duration_ms", duration.Milliseconds(),
		"upstream_ms", out.upstreamMs,
	)

	if h.metrics != nil {
		h.metrics.RecordRequest(telemetry.RequestLabels{
			Endpoint:           out.endpoint,
			Status:             strconv.Itoa(out.status),
			Code:               out.code,
			DurationMs:         float64(duration.Milliseconds()),
			UpstreamDurationMs: float64(out.upstreamMs),
		})
	}

	h.auditLog.Record(audit.Entry{
		RequestID:    reqCtx.RequestID,
		Endpoint:     out.endpoint,
		Agent:        out.agent,
		Status:       out.status,
		Code:         out.code,
		MessageCount: out.messageCount,
		DurationMs:   duration.Milliseconds(),
		ReceivedAt:   reqCtx.ReceivedAt,
	})
}
