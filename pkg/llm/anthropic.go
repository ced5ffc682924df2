package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client  *anthropic.Client
	cfg     Config
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewAnthropicClient creates an Anthropic-backed client.
func NewAnthropicClient(cfg Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = defaultToolIterations
	}

	return &AnthropicClient{
		client:  anthropic.NewClient(cfg.APIKey, opts...),
		cfg:     cfg,
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		logger:  logger.Named("llm-anthropic"),
	}, nil
}

var _ Client = (*AnthropicClient)(nil)

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.cfg.Model
}

// Generate produces a plain completion.
func (c *AnthropicClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := &Request{
		System: system,
		History: []models.ChatMessage{
			{Role: models.RoleUser, Content: prompt},
		},
	}
	return c.GenerateWithTools(ctx, req, nil)
}

// GenerateWithTools runs the bounded tool-calling loop against the
// Messages API.
func (c *AnthropicClient) GenerateWithTools(ctx context.Context, req *Request, executor ToolExecutor) (string, error) {
	messages := make([]anthropic.Message, 0, len(req.History))
	for _, m := range req.History {
		switch m.Role {
		case models.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantTextMessage(m.Content))
		default:
			messages = append(messages, anthropic.NewUserTextMessage(m.Content))
		}
	}

	var tools []anthropic.ToolDefinition
	if executor != nil {
		for _, t := range req.Tools {
			tools = append(tools, anthropic.ToolDefinition{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: t.InputSchema,
			})
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	for iteration := 0; iteration < c.cfg.MaxToolIterations; iteration++ {
		resp, err := c.complete(ctx, anthropic.MessagesRequest{
			Model:     anthropic.Model(c.cfg.Model),
			System:    req.System,
			Messages:  messages,
			MaxTokens: maxTokens,
			Tools:     tools,
		})
		if err != nil {
			return "", err
		}

		if resp.StopReason != anthropic.MessagesStopReasonToolUse {
			return joinTextContent(resp.Content), nil
		}

		// Echo the assistant turn, then answer every tool_use block in a
		// single user turn, as the API requires.
		messages = append(messages, anthropic.Message{
			Role:    anthropic.RoleAssistant,
			Content: resp.Content,
		})

		var results []anthropic.MessageContent
		for _, content := range resp.Content {
			if content.Type != anthropic.MessagesContentTypeToolUse || content.MessageContentToolUse == nil {
				continue
			}
			use := content.MessageContentToolUse
			result, isError := c.executeTool(ctx, executor, use.Name, string(use.Input))
			results = append(results, anthropic.NewToolResultMessageContent(use.ID, result, isError))
		}
		if len(results) == 0 {
			return joinTextContent(resp.Content), nil
		}
		messages = append(messages, anthropic.Message{
			Role:    anthropic.RoleUser,
			Content: results,
		})
	}

	return "", fmt.Errorf("tool-calling loop exceeded %d iterations", c.cfg.MaxToolIterations)
}

// complete performs one API call through the circuit breaker.
func (c *AnthropicClient) complete(ctx context.Context, req anthropic.MessagesRequest) (anthropic.MessagesResponse, error) {
	if ok, err := c.breaker.Allow(); !ok {
		return anthropic.MessagesResponse{}, err
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		c.breaker.RecordFailure()
		return anthropic.MessagesResponse{}, ClassifyError(err)
	}
	c.breaker.RecordSuccess()
	return resp, nil
}

func (c *AnthropicClient) executeTool(ctx context.Context, executor ToolExecutor, name, arguments string) (string, bool) {
	c.logger.Debug("Executing tool call", zap.String("tool", name))
	result, err := executor.ExecuteTool(ctx, name, arguments)
	if err != nil {
		c.logger.Warn("Tool call failed",
			zap.String("tool", name),
			zap.Error(err))
		return err.Error(), true
	}
	return result, false
}

func joinTextContent(content []anthropic.MessageContent) string {
	var sb strings.Builder
	for _, c := range content {
		if c.Type == anthropic.MessagesContentTypeText {
			sb.WriteString(c.GetText())
		}
	}
	return sb.String()
}
