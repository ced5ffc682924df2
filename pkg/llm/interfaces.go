// Package llm abstracts the conversation model providers (Anthropic and
// OpenAI-compatible endpoints) behind a single tool-calling client
// interface.
package llm

import (
	"context"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// Client is the provider-independent conversation interface.
// Use it for dependency injection so tests can substitute a mock.
type Client interface {
	// Generate produces a plain completion for the prompt.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// GenerateWithTools runs the bounded tool-calling loop: the model may
	// request tool executions, which are dispatched through the executor
	// and fed back, until it produces a final text answer or the iteration
	// budget is exhausted.
	GenerateWithTools(ctx context.Context, req *Request, executor ToolExecutor) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Request carries one conversation turn to the provider.
type Request struct {
	System      string
	History     []models.ChatMessage
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature float32
}

// ToolDefinition describes one tool offered to the model. InputSchema is a
// JSON Schema object.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolExecutor dispatches a tool call requested by the model. Arguments
// arrive as the raw JSON string the model produced. Execution errors are
// returned as tool output so the model can recover; only the error result
// signals an unrecoverable failure of the loop itself.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, name, arguments string) (string, error)
}

// ToolExecutorFunc adapts a function to the ToolExecutor interface.
type ToolExecutorFunc func(ctx context.Context, name, arguments string) (string, error)

// ExecuteTool implements ToolExecutor.
func (f ToolExecutorFunc) ExecuteTool(ctx context.Context, name, arguments string) (string, error) {
	return f(ctx, name, arguments)
}
