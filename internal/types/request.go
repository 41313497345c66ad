package types

import (
	"encoding/json"
	"time"
)

// Limits enforced on every inbound request. These are part of the
// gateway's contract and are deliberately not configurable.
const (
	MaxPayloadBytes  = 100 * 1024
	MaxMessages      = 50
	MaxContentLength = 10_000
	MaxPromptLength  = 10_000
	UpstreamTimeout  = 30 * time.Second
	Temperature      = 0.7
	MaxReplyTokens   = 1000
)

// Message is a single role-tagged conversation entry. The gateway
// consumes messages read-only and never mutates them.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Valid conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatEnvelope is the raw decoded chat request body. Messages is kept
// as raw JSON so the validator can distinguish an absent field from a
// non-array value from malformed elements.
type ChatEnvelope struct {
	Messages json.RawMessage `json:"messages"`
}

// ImageEnvelope is the raw decoded image request body.
type ImageEnvelope struct {
	Prompt json.RawMessage `json:"prompt"`
}

// RequestContext carries the per-request correlation token and entry
// timestamp through every pipeline stage. It is owned by exactly one
// in-flight request.
type RequestContext struct {
	RequestID  string
	ReceivedAt time.Time
}
