// Package echo provides a testing backend that echoes the flattened prompt
// back. It implements the domain.Invoker interface without launching any
// process, providing deterministic responses for development and tests.
package echo

import (
	"context"
	"strings"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
)

const backendName = "echo"

// Invoker implements the domain.Invoker interface for echo testing.
type Invoker struct{}

// NewInvoker creates a new echo invoker.
// No configuration is required as this backend operates entirely in-memory.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Invoke returns the prompt as the generated text, with word-based token
// counts so the usage fields stay plausible.
func (i *Invoker) Invoke(ctx context.Context, inv domain.Invocation) domain.InvocationResult {
	logger := observability.FromContext(ctx)
	logger.Debug("echoing invocation")

	tokens := countTokens(inv.Prompt) + countTokens(inv.SystemPrompt)

	return domain.InvocationResult{
		Text:         inv.Prompt,
		InputTokens:  tokens,
		OutputTokens: countTokens(inv.Prompt),
	}
}

// Name returns the backend identifier.
func (i *Invoker) Name() string {
	return backendName
}

// countTokens performs simple word-based token counting.
func countTokens(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Fields(content))
}
