package llm

import (
	"context"
	"fmt"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// MockClient is a test double for the Client interface. Responses are
// returned in order; calls are recorded for assertions.
type MockClient struct {
	Responses []string
	Err       error

	Calls []MockCall

	callCount int
}

// MockCall records one GenerateWithTools invocation.
type MockCall struct {
	System  string
	Prompt  string
	NumMsgs int
}

var _ Client = (*MockClient)(nil)

// Model implements Client.
func (m *MockClient) Model() string {
	return "mock-model"
}

// Generate implements Client.
func (m *MockClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := &Request{
		System: system,
		History: []models.ChatMessage{
			{Role: models.RoleUser, Content: prompt},
		},
	}
	return m.GenerateWithTools(ctx, req, nil)
}

// GenerateWithTools implements Client.
func (m *MockClient) GenerateWithTools(ctx context.Context, req *Request, executor ToolExecutor) (string, error) {
	prompt := ""
	if len(req.History) > 0 {
		prompt = req.History[len(req.History)-1].Content
	}
	m.Calls = append(m.Calls, MockCall{
		System:  req.System,
		Prompt:  prompt,
		NumMsgs: len(req.History),
	})

	if m.Err != nil {
		return "", m.Err
	}
	if m.callCount >= len(m.Responses) {
		return "", fmt.Errorf("mock client exhausted after %d responses", len(m.Responses))
	}
	resp := m.Responses[m.callCount]
	m.callCount++
	return resp, nil
}
