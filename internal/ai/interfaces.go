package ai

import (
	"context"
)

// Provider is a text-completion collaborator. Implementations must be
// safe for concurrent use.
type Provider interface {
	// Complete sends one prompt and returns the model's final text.
	Complete(ctx context.Context, prompt string) (*Completion, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Name() string
	Close() error
}

// Completion is the reply to one prompt
type Completion struct {
	Text       string
	Model      string
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
