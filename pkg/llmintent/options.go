package llmintent

import (
	"github.com/entrhq/voxbrowse/pkg/llm"
	"github.com/entrhq/voxbrowse/pkg/llm/tokenizer"
	"github.com/entrhq/voxbrowse/pkg/logging"
)

// Option configures a Resolver or a Describer.
type Option func(*settings)

type settings struct {
	logger    *logging.Logger
	model     string
	tokenizer *tokenizer.Tokenizer
	budget    int
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger: logging.Discard(),
		budget: DefaultTokenBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// apply returns provider switched to the configured model when it supports cloning.
func (s *settings) apply(provider llm.Provider) llm.Provider {
	if provider == nil || s.model == "" {
		return provider
	}
	if cloner, ok := provider.(llm.ModelCloner); ok {
		return cloner.CloneWithModel(s.model)
	}
	s.logger.Warnf("Provider cannot switch to model %s; using %s", s.model, provider.GetModel())
	return provider
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModel overrides the provider's model for this component.
func WithModel(model string) Option {
	return func(s *settings) { s.model = model }
}

// WithTokenizer sets the tokenizer used to budget prompt content.
func WithTokenizer(t *tokenizer.Tokenizer) Option {
	return func(s *settings) { s.tokenizer = t }
}

// WithTokenBudget caps the tokens of page content placed in a description prompt.
func WithTokenBudget(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.budget = n
		}
	}
}
