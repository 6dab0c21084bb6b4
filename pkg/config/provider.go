package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/voxbrowse/pkg/llm/openai"
)

const (
	// GroqBaseURL is the OpenAI-compatible endpoint used with GROQ_API_KEY.
	GroqBaseURL = "https://api.groq.com/openai/v1"

	// GroqModel is the default model when the Groq endpoint is selected.
	GroqModel = "llama-3.3-70b-versatile"
)

// ErrNoAPIKey means no credential was found; callers run without an LLM.
var ErrNoAPIKey = errors.New("no LLM API key configured")

// BuildProvider creates an LLM provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
//
// OPENAI_API_KEY is preferred over GROQ_API_KEY; the Groq key switches the
// default base URL and model to Groq's endpoint.
func BuildProvider(cliModel, cliBaseURL, cliAPIKey string) (*openai.Provider, error) {
	finalModel := cliModel
	finalBaseURL := cliBaseURL
	finalAPIKey := cliAPIKey
	groq := false

	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalAPIKey == "" {
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			finalAPIKey = key
			groq = true
		}
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if fileCfg := GetLLM(); fileCfg != nil {
		if finalModel == "" {
			finalModel = fileCfg.Model
		}
		if finalBaseURL == "" {
			finalBaseURL = fileCfg.BaseURL
		}
		if finalAPIKey == "" {
			finalAPIKey = fileCfg.APIKey
		}
	}

	if groq {
		if finalBaseURL == "" {
			finalBaseURL = GroqBaseURL
		}
		if finalModel == "" {
			finalModel = GroqModel
		}
	}
	if finalModel == "" {
		finalModel = openai.DefaultModel
	}

	if finalAPIKey == "" {
		return nil, ErrNoAPIKey
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(finalModel),
	}
	if finalBaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(finalBaseURL))
	}

	provider, err := openai.NewProvider(finalAPIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return provider, nil
}
