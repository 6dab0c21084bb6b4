// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/entrhq/voxbrowse/pkg/llm"
//	    "github.com/entrhq/voxbrowse/pkg/llm/openai"
//	)
//
//	func main() {
//	    provider, err := openai.NewProvider(
//	        os.Getenv("OPENAI_API_KEY"),
//	        openai.WithModel("gpt-4o-mini"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    text, err := llm.ChatComplete(context.Background(), provider,
//	        "You are terse.", "Say hello.", 0, 64)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(text)
//	}
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/entrhq/voxbrowse/pkg/types"
)

// ErrNoProvider is returned when a completion is requested without a configured provider.
var ErrNoProvider = errors.New("llm: no provider configured")

// ModelCloner is an optional interface that LLM providers can implement to
// support lightweight per-call model overrides without constructing a full
// second provider. The returned provider shares credentials and transport with
// the original but directs calls to the given model.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// CompletionOptions holds the per-call sampling parameters.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// CompletionOption configures a single completion call.
type CompletionOption func(*CompletionOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CompletionOption {
	return func(o *CompletionOptions) {
		o.Temperature = t
	}
}

// WithMaxTokens caps the number of tokens in the reply. Zero leaves the provider default.
func WithMaxTokens(n int) CompletionOption {
	return func(o *CompletionOptions) {
		o.MaxTokens = n
	}
}

// ApplyOptions folds opts into a CompletionOptions value.
func ApplyOptions(opts ...CompletionOption) CompletionOptions {
	var o CompletionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Provider defines the interface for LLM integrations.
//
// Providers handle API communication with LLM services. Callers own prompt
// construction and interpretation of the reply; a provider only moves
// messages in and text out.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response.
	//
	// Returns the assistant's response message or an error.
	Complete(ctx context.Context, messages []*types.Message, opts ...CompletionOption) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}

// ChatComplete runs a single system+user exchange and returns the trimmed reply text.
func ChatComplete(ctx context.Context, p Provider, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	if p == nil {
		return "", ErrNoProvider
	}

	messages := []*types.Message{
		types.NewSystemMessage(systemPrompt),
		types.NewUserMessage(userPrompt),
	}

	resp, err := p.Complete(ctx, messages, WithTemperature(temperature), WithMaxTokens(maxTokens))
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("llm: empty response")
	}
	return strings.TrimSpace(resp.Content), nil
}
