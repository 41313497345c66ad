package types

// ChatResponse is the success envelope for the chat endpoint.
type ChatResponse struct {
	Agent string `json:"agent"`
	Reply string `json:"reply"`
}

// ImageResponse is the success envelope for the image endpoint.
type ImageResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the failure envelope. Error is a fixed generic
// sentence per code; clients branch on Code, not on prose.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
