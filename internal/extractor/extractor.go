// Package extractor turns a layout-preserving invoice grid into a raw,
// untrusted extraction payload by prompting a language model. Normalization
// and trust decisions live in the validate package.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoxhq/invox/internal/providers"
	"github.com/invoxhq/invox/internal/types"
)

// Options are per-request extraction parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Headers     Headers
}

// Result carries the raw invoice plus call metadata for metrics.
type Result struct {
	Invoice types.RawInvoice

	Provider         string
	ModelUsed        string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ExecutionTime    time.Duration
	Attempts         int
	RequestID        string
}

// Extractor prompts an LLM with grid text and decodes its JSON reply.
type Extractor struct {
	client providers.LLMClient
	logger *slog.Logger
}

// New creates an extractor backed by the given completion client.
func New(client providers.LLMClient, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, logger: logger}
}

// Extract sends the grid text to the model and returns the parsed payload.
// The returned invoice is untrusted: callers must run it through validation
// before using any field.
func (e *Extractor) Extract(ctx context.Context, gridText string, opts Options) (*Result, error) {
	if strings.TrimSpace(gridText) == "" {
		return nil, fmt.Errorf("empty grid text")
	}

	requestID := uuid.NewString()
	e.logger.Info("extraction request",
		"request_id", requestID,
		"provider", e.client.Name(),
		"model", opts.Model,
		"grid_chars", len(gridText))

	res, err := e.client.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: SystemPrompt(opts.Headers)},
			{Role: "user", Content: "Extract invoice data from this document:\n\n" + gridText},
		},
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Timeout:     opts.Timeout,
		JSONOnly:    true,
		RequestID:   requestID,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	raw, err := providers.ParseStructuredJSON(res.Content)
	if err != nil {
		return nil, fmt.Errorf("extraction returned unparseable output: %w", err)
	}
	if err := validateShape(raw); err != nil {
		return nil, err
	}

	invoice, err := decodeRawInvoice(raw)
	if err != nil {
		return nil, err
	}

	e.logger.Info("extraction response",
		"request_id", requestID,
		"model", res.ModelUsed,
		"products", len(invoice.Products),
		"tokens", res.TotalTokens,
		"attempts", res.Attempts,
		"duration", res.ExecutionTime)

	return &Result{
		Invoice:          *invoice,
		Provider:         res.Provider,
		ModelUsed:        res.ModelUsed,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
		TotalTokens:      res.TotalTokens,
		ExecutionTime:    res.ExecutionTime,
		Attempts:         res.Attempts,
		RequestID:        requestID,
	}, nil
}

// decodeRawInvoice unmarshals with UseNumber so numeric fields survive as
// json.Number instead of lossy float64s; the coercion layer downstream knows
// how to handle both.
func decodeRawInvoice(raw json.RawMessage) (*types.RawInvoice, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var invoice types.RawInvoice
	if err := dec.Decode(&invoice); err != nil {
		return nil, fmt.Errorf("failed to decode extraction payload: %w", err)
	}
	return &invoice, nil
}
