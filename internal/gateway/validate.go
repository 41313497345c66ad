package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/wsk776429-afk/tutor-bot-now/internal/httputil"
	"github.com/wsk776429-afk/tutor-bot-now/internal/types"
)

// ValidationError is a single violated rule. Validation stops at the
// first violation; nothing that fails validation reaches the upstream.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// rawMessage mirrors types.Message with enough looseness to tell a
// missing field from a wrong-typed one.
type rawMessage struct {
	Role    *string         `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ValidateChat checks the decoded chat envelope against the gateway's
// structural and size rules, in fixed order, and returns the message
// list on success.
func ValidateChat(env *types.ChatEnvelope) ([]types.Message, *ValidationError) {
	if len(env.Messages) == 0 || string(env.Messages) == "null" {
		return nil, &ValidationError{httputil.CodeInvalidMessages, "Messages must be an array."}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(env.Messages, &elements); err != nil {
		return nil, &ValidationError{httputil.CodeInvalidMessages, "Messages must be an array."}
	}

	if len(elements) == 0 {
		return nil, &ValidationError{httputil.CodeEmptyMessages, "Messages must contain at least one message."}
	}
	if len(elements) > types.MaxMessages {
		return nil, &ValidationError{httputil.CodeTooManyMessages,
			fmt.Sprintf("Messages must contain at most %d messages.", types.MaxMessages)}
	}

	messages := make([]types.Message, 0, len(elements))
	for _, el := range elements {
		var raw rawMessage
		if err := json.Unmarshal(el, &raw); err != nil {
			return nil, &ValidationError{httputil.CodeMissingField, "Each message must include role and content."}
		}
		if raw.Role == nil || len(raw.Content) == 0 || string(raw.Content) == "null" {
			return nil, &ValidationError{httputil.CodeMissingField, "Each message must include role and content."}
		}

		switch *raw.Role {
		case types.RoleUser, types.RoleAssistant, types.RoleSystem:
		default:
			return nil, &ValidationError{httputil.CodeInvalidRole, "Message role must be user, assistant, or system."}
		}

		var content string
		if err := json.Unmarshal(raw.Content, &content); err != nil {
			return nil, &ValidationError{httputil.CodeInvalidContentType, "Message content must be a string."}
		}
		if content == "" {
			return nil, &ValidationError{httputil.CodeMissingField, "Each message must include role and content."}
		}
		if len([]rune(content)) > types.MaxContentLength {
			return nil, &ValidationError{httputil.CodeMessageTooLong,
				fmt.Sprintf("Message content must be at most %d characters.", types.MaxContentLength)}
		}

		messages = append(messages, types.Message{Role: *raw.Role, Content: content})
	}

	return messages, nil
}

// ValidateImage checks the decoded image envelope and returns the
// prompt text on success.
func ValidateImage(env *types.ImageEnvelope) (string, *ValidationError) {
	if len(env.Prompt) == 0 || string(env.Prompt) == "null" {
		return "", &ValidationError{httputil.CodeMissingPrompt, "Prompt is required."}
	}

	var prompt string
	if err := json.Unmarshal(env.Prompt, &prompt); err != nil {
		return "", &ValidationError{httputil.CodeInvalidContentType, "Prompt must be a string."}
	}
	if prompt == "" {
		return "", &ValidationError{httputil.CodeMissingPrompt, "Prompt is required."}
	}
	if len([]rune(prompt)) > types.MaxPromptLength {
		return "", &ValidationError{httputil.CodePromptTooLong,
			fmt.Sprintf("Prompt must be at most %d characters.", types.MaxPromptLength)}
	}

	return prompt, nil
}
