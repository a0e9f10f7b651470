package dto

import "jyotchat-be/pkg/store"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant function tool"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"dive"`
}

type ChatResult struct {
	Result ChatMessage        `json:"result"`
	Nodes  []store.SourceNode `json:"nodes"`
}
