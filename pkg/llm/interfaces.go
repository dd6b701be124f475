// Package llm provides provider-agnostic LLM client functionality for
// the generation pipeline.
package llm

import (
	"context"
)

// LLMClient defines the interface for LLM operations.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse generates a chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// GenerateResponseWithModel generates a chat completion response with
	// a model other than the configured default. An empty model falls back
	// to the default.
	GenerateResponseWithModel(ctx context.Context, prompt string, systemMessage string, temperature float64, model string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure both clients implement LLMClient at compile time.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
)
