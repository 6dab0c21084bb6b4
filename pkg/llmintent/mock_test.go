package llmintent

import (
	"context"
	"sync"

	"github.com/entrhq/voxbrowse/pkg/llm"
	"github.com/entrhq/voxbrowse/pkg/types"
)

type mockProvider struct {
	mu       sync.Mutex
	model    string
	response string
	err      error
	calls    []mockCall
}

type mockCall struct {
	system string
	user   string
	opts   llm.CompletionOptions
	model  string
}

func (m *mockProvider) Complete(ctx context.Context, messages []*types.Message, opts ...llm.CompletionOption) (*types.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := mockCall{opts: llm.ApplyOptions(opts...), model: m.model}
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			call.system = msg.Content
		case types.RoleUser:
			call.user = msg.Content
		}
	}
	m.calls = append(m.calls, call)
	if m.err != nil {
		return nil, m.err
	}
	return types.NewAssistantMessage(m.response), nil
}

func (m *mockProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Name: m.model, Provider: "mock"}
}

func (m *mockProvider) GetModel() string   { return m.model }
func (m *mockProvider) GetBaseURL() string { return "" }

func (m *mockProvider) lastCall() mockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// cloningProvider records the model it was cloned with.
type cloningProvider struct {
	*mockProvider
}

func (c *cloningProvider) CloneWithModel(model string) llm.Provider {
	return &mockProvider{model: model, response: c.response}
}
