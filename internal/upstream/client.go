package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wsk776429-afk/tutor-bot-now/internal/config"
	"github.com/wsk776429-afk/tutor-bot-now/internal/types"
)

// FallbackReply is returned when the upstream responds 2xx but the
// generated message text is absent. A shape surprise in the reply is
// not treated as a service failure.
const FallbackReply = "I'm not able to answer that right now. Please try asking again."

const maxErrorBodyBytes = 2048

// Client issues single-shot calls to the model-inference service.
// Every call is bounded by the fixed gateway timeout; the context
// deadline propagates to the transport so a timed-out connection is
// torn down, not abandoned.
type Client struct {
	cfg        func() *config.UpstreamConfig
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(cfg func() *config.UpstreamConfig, apiKey string) *Client {
	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		timeout: types.UpstreamTimeout,
	}
}

type chatRequestBody struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type chatResponseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat makes exactly one call to the chat completions endpoint with the
// agent's system instruction prepended to the validated message list.
// No retries are performed; a failed or timed-out attempt is terminal.
func (c *Client) Chat(ctx context.Context, systemPrompt string, messages []types.Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	cfg := c.cfg()
	body := chatRequestBody{
		Model:       cfg.ChatModel,
		Messages:    append([]types.Message{{Role: types.RoleSystem, Content: systemPrompt}}, messages...),
		Temperature: types.Temperature,
		MaxTokens:   types.MaxReplyTokens,
	}

	raw, err := c.post(ctx, cfg.BaseURL+"/chat/completions", body)
	if err != nil {
		return "", err
	}

	var resp chatResponseBody
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		slog.Warn("upstream response missing reply text, using fallback")
		return FallbackReply, nil
	}
	return resp.Choices[0].Message.Content, nil
}

type imageRequestBody struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponseBody struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateImage makes exactly one call to the image generation endpoint.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	cfg := c.cfg()
	body := imageRequestBody{
		Model:  cfg.ImageModel,
		Prompt: prompt,
		N:      1,
		Size:   cfg.ImageSize,
	}

	raw, err := c.post(ctx, cfg.BaseURL+"/images/generations", body)
	if err != nil {
		return "", err
	}

	var resp imageResponseBody
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unmarshal image response: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", ErrNoImage
	}
	return resp.Data[0].URL, nil
}

func (c *Client) post(ctx context.Context, url string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal upstream request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		diag := string(raw)
		if len(diag) > maxErrorBodyBytes {
			diag = diag[:maxErrorBodyBytes]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: diag}
	}
	return raw, nil
}
