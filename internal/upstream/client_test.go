package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wsk776429-afk/tutor-bot-now/internal/config"
	"github.com/wsk776429-afk/tutor-bot-now/internal/types"
)

func testClient(baseURL string) *Client {
	cfg := &config.UpstreamConfig{
		BaseURL:    baseURL,
		ChatModel:  "test-model",
		ImageModel: "test-image-model",
		ImageSize:  "1024x1024",
	}
	return NewClient(func() *config.UpstreamConfig { return cfg }, "test-key")
}

func TestChat_Success(t *testing.T) {
	var gotBody chatRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"x = 4"}}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	reply, err := c.Chat(context.Background(), "You are a math tutor.", []types.Message{
		{Role: types.RoleUser, Content: "solve for x"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "x = 4" {
		t.Errorf("unexpected reply: %q", reply)
	}

	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected 2 messages sent upstream, got %d", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != types.RoleSystem || gotBody.Messages[0].Content != "You are a math tutor." {
		t.Errorf("system instruction not prepended: %+v", gotBody.Messages[0])
	}
	if gotBody.Temperature != types.Temperature {
		t.Errorf("expected temperature %v, got %v", types.Temperature, gotBody.Temperature)
	}
	if gotBody.MaxTokens != types.MaxReplyTokens {
		t.Errorf("expected max_tokens %d, got %d", types.MaxReplyTokens, gotBody.MaxTokens)
	}
}

func TestChat_MissingReplyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	reply, err := c.Chat(context.Background(), "prompt", []types.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("expected soft degradation, got error: %v", err)
	}
	if reply != FallbackReply {
		t.Errorf("expected fallback reply, got %q", reply)
	}
}

func TestChat_UpstreamStatusErrors(t *testing.T) {
	for _, status := range []int{402, 429, 500, 503} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"upstream detail"}}`))
		}))

		c := testClient(srv.URL)
		_, err := c.Chat(context.Background(), "prompt", []types.Message{{Role: "user", Content: "hi"}})
		srv.Close()

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("status %d: expected StatusError, got %v", status, err)
		}
		if se.StatusCode != status {
			t.Errorf("expected status %d, got %d", status, se.StatusCode)
		}
		if se.Body == "" {
			t.Error("expected diagnostic body to be captured")
		}
	}
}

func TestChat_TimeoutCancelsCall(t *testing.T) {
	cancelled := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			close(cancelled)
		case <-time.After(5 * time.Second):
			t.Error("upstream call was never cancelled")
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.Chat(context.Background(), "prompt", []types.Message{{Role: "user", Content: "hi"}})
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("call not abandoned at timeout boundary, took %v", elapsed)
	}

	select {
	case <-cancelled:
		// Connection was torn down; the server observed cancellation.
	case <-time.After(time.Second):
		t.Error("server did not observe cancellation")
	}
}

func TestChat_MissingCredential(t *testing.T) {
	cfg := &config.UpstreamConfig{BaseURL: "http://localhost:0"}
	c := NewClient(func() *config.UpstreamConfig { return cfg }, "")

	_, err := c.Chat(context.Background(), "prompt", []types.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestGenerateImage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body imageRequestBody
		json.NewDecoder(r.Body).Decode(&body)
		if body.Prompt != "water cycle diagram" {
			t.Errorf("unexpected prompt: %q", body.Prompt)
		}
		if body.N != 1 {
			t.Errorf("expected n=1, got %d", body.N)
		}
		w.Write([]byte(`{"data":[{"url":"https://img.example/1.png"}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	url, err := c.GenerateImage(context.Background(), "water cycle diagram")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if url != "https://img.example/1.png" {
		t.Errorf("unexpected url: %q", url)
	}
}

func TestGenerateImage_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.GenerateImage(context.Background(), "a cat")
	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}
