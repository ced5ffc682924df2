package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// Config holds provider connection settings shared by both clients.
type Config struct {
	Endpoint  string // Base URL; empty uses the provider default
	Model     string
	APIKey    string
	MaxTokens int

	// MaxToolIterations bounds the tool-calling loop. Zero uses the
	// package default.
	MaxToolIterations int
}

const (
	defaultMaxTokens      = 2048
	defaultToolIterations = 10
)

// OpenAIClient talks to OpenAI or any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client  *openai.Client
	cfg     Config
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		apiCfg.BaseURL = cfg.Endpoint
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = defaultToolIterations
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(apiCfg),
		cfg:     cfg,
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		logger:  logger.Named("llm-openai"),
	}, nil
}

var _ Client = (*OpenAIClient)(nil)

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.cfg.Model
}

// Generate produces a plain completion.
func (c *OpenAIClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := &Request{
		System: system,
		History: []models.ChatMessage{
			{Role: models.RoleUser, Content: prompt},
		},
	}
	return c.GenerateWithTools(ctx, req, nil)
}

// GenerateWithTools runs the bounded tool-calling loop against the
// chat-completions API.
func (c *OpenAIClient) GenerateWithTools(ctx context.Context, req *Request, executor ToolExecutor) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	var tools []openai.Tool
	if executor != nil {
		for _, t := range req.Tools {
			tools = append(tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.InputSchema,
				},
			})
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	for iteration := 0; iteration < c.cfg.MaxToolIterations; iteration++ {
		resp, err := c.complete(ctx, openai.ChatCompletionRequest{
			Model:       c.cfg.Model,
			Messages:    messages,
			Tools:       tools,
			MaxTokens:   maxTokens,
			Temperature: req.Temperature,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", NewError(ErrorTypeUnknown, "empty response from model", false, nil)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			result := c.executeTool(ctx, executor, call.Function.Name, call.Function.Arguments)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("tool-calling loop exceeded %d iterations", c.cfg.MaxToolIterations)
}

// complete performs one API call through the circuit breaker.
func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if ok, err := c.breaker.Allow(); !ok {
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.breaker.RecordFailure()
		return openai.ChatCompletionResponse{}, ClassifyError(err)
	}
	c.breaker.RecordSuccess()
	return resp, nil
}

// executeTool dispatches one tool call, converting executor failures into
// tool output so the model can adjust instead of aborting the turn.
func (c *OpenAIClient) executeTool(ctx context.Context, executor ToolExecutor, name, arguments string) string {
	c.logger.Debug("Executing tool call", zap.String("tool", name))
	result, err := executor.ExecuteTool(ctx, name, arguments)
	if err != nil {
		c.logger.Warn("Tool call failed",
			zap.String("tool", name),
			zap.Error(err))
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return result
}
