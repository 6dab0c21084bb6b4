package llmintent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/entrhq/voxbrowse/pkg/command"
	"github.com/entrhq/voxbrowse/pkg/llm"
	"github.com/entrhq/voxbrowse/pkg/llm/parser"
	"github.com/entrhq/voxbrowse/pkg/logging"
)

// ErrUnrecognized is returned when the model answers with a command outside the vocabulary.
var ErrUnrecognized = errors.New("llmintent: command not in vocabulary")

const (
	resolveTemperature = 0.0
	resolveMaxTokens   = 256
)

// Resolver classifies utterances with a language model.
type Resolver struct {
	provider     llm.Provider
	logger       *logging.Logger
	systemPrompt string
}

// NewResolver returns a Resolver. A nil provider yields a resolver whose
// Resolve always fails with llm.ErrNoProvider.
func NewResolver(provider llm.Provider, opts ...Option) *Resolver {
	s := newSettings(opts)
	return &Resolver{
		provider:     s.apply(provider),
		logger:       s.logger,
		systemPrompt: resolverPrompt(),
	}
}

// Available reports whether a provider is configured.
func (r *Resolver) Available() bool {
	return r != nil && r.provider != nil
}

// reply is the JSON object the model is asked to produce.
type reply struct {
	Command    string                     `json:"command"`
	Parameters map[string]json.RawMessage `json:"parameters"`
}

// Resolve classifies text. Transport failures, unparseable replies and
// commands outside the vocabulary are all returned as errors.
func (r *Resolver) Resolve(ctx context.Context, text string) (command.Intent, error) {
	if !r.Available() {
		return nil, llm.ErrNoProvider
	}

	out, err := llm.ChatComplete(ctx, r.provider, r.systemPrompt, text, resolveTemperature, resolveMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("intent completion failed: %w", err)
	}

	raw, err := parser.ExtractJSON(out)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}

	var rep reply
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}

	cmd, ok := Lookup(rep.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognized, rep.Command)
	}

	params := parseParams(rep.Parameters)
	r.logger.Infof("LLM resolved %q to %s with params %v", text, cmd.Name, params)
	return cmd.Build(params), nil
}

// parseParams keeps string and number values; everything else is dropped.
func parseParams(raw map[string]json.RawMessage) Params {
	params := Params{}
	for key, value := range raw {
		value = bytes.TrimSpace(value)
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				params[key] = s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(value, &n); err == nil {
			params[key] = n.String()
			continue
		}
		var b bool
		if err := json.Unmarshal(value, &b); err == nil {
			params[key] = strconv.FormatBool(b)
		}
	}
	return params
}

func resolverPrompt() string {
	names := make([]string, len(Vocabulary))
	for i, c := range Vocabulary {
		names[i] = c.Name
	}

	var b strings.Builder
	b.WriteString("You are an assistant that interprets natural language commands for a voice-controlled browser.\n")
	b.WriteString("Your task is to analyze the user's query and determine which command they want to execute.\n\n")
	b.WriteString("Here are the supported commands:\n")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\nSome example phrasings for each command:\n")
	for _, c := range Vocabulary {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, strings.Join(c.Examples, ", "))
	}
	b.WriteString(`
Respond with a JSON object in the following format:
{
  "command": "The matched command name from the list above",
  "parameters": {
    "param1": "value1",
    "param2": "value2"
  }
}

Parameter names: website, query, direction, element, category, position.

Examples:
User: "Open Google"
Response: {"command": "Open website", "parameters": {"website": "google.com"}}

User: "I want to watch some videos"
Response: {"command": "Open category website", "parameters": {"category": "videos"}}

User: "Set my shopping favorite to Amazon"
Response: {"command": "Set favorite category", "parameters": {"category": "shopping", "website": "amazon.com"}}

User: "Tell me what's on this page"
Response: {"command": "Describe page", "parameters": {}}

User: "Play the second video"
Response: {"command": "Play video number", "parameters": {"position": 2}}

DO NOT include any explanation, just the JSON object.`)
	return b.String()
}
