// Package metrics provides usage tracking for extraction runs: token spend,
// cache effectiveness, and failure breakdowns.
package metrics

import "time"

// Metric represents a single recorded extraction attempt.
type Metric struct {
	// Provider info
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// Attribution
	ContentHash string `json:"content_hash,omitempty"`
	RequestID   string `json:"request_id,omitempty"`

	// Tokens
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Timing
	ExecutionSeconds float64 `json:"execution_seconds,omitempty"`

	// Status
	Success   bool   `json:"success"`
	ErrorType string `json:"error_type,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}
