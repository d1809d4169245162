package models

import "encoding/json"

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role   `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`                // e.g. "databricks-gpt-oss-120b"
	Messages    []ChatMessage `json:"messages"`             // system message first
	Temperature float64       `json:"temperature"`          // sampling temperature, 0 is meaningful
	MaxTokens   int           `json:"max_tokens,omitempty"` // output token cap
}

// ReplyMessage is the assistant message inside a choice. Content is kept raw
// because endpoints return a string, a list of chunks or null.
type ReplyMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type ChatChoice struct {
	Index        int          `json:"index"`
	Message      ReplyMessage `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// Conversation builds the two-message request sent for every user turn.
func Conversation(systemPrompt, userText string) []ChatMessage {
	return []ChatMessage{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userText},
	}
}
