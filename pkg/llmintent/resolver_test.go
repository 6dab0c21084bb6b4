package llmintent

import (
	"context"
	"errors"
	"testing"

	"github.com/entrhq/voxbrowse/pkg/command"
	"github.com/entrhq/voxbrowse/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     command.Intent
	}{
		{
			name:     "open website",
			response: `{"command": "Open website", "parameters": {"website": "google.com"}}`,
			want:     command.OpenWebsite{Target: "google.com"},
		},
		{
			name:     "fenced reply with thinking",
			response: "<think>user wants videos</think>\n```json\n{\"command\": \"Open category website\", \"parameters\": {\"category\": \"Videos\"}}\n```",
			want:     command.OpenCategory{Category: "videos"},
		},
		{
			name:     "numeric position",
			response: `{"command": "Play video number", "parameters": {"position": 2}}`,
			want:     command.YoutubePlay{Position: 2},
		},
		{
			name:     "ordinal position",
			response: `{"command": "Describe video number", "parameters": {"position": "third"}}`,
			want:     command.YoutubeDescribe{Position: 3},
		},
		{
			name:     "scroll up",
			response: `{"command": "Scroll down/up", "parameters": {"direction": "Up"}}`,
			want:     command.Scroll{Direction: command.DirectionUp},
		},
		{
			name:     "scroll defaults down",
			response: `{"command": "Scroll down/up"}`,
			want:     command.Scroll{Direction: command.DirectionDown},
		},
		{
			name:     "navigate defaults back",
			response: `{"command": "go back/forward", "parameters": {}}`,
			want:     command.Navigate{Direction: command.DirectionBack},
		},
		{
			name:     "describe content",
			response: `{"command": "Describe images", "parameters": {}}`,
			want:     command.DescribeContent{Content: "images"},
		},
		{
			name:     "set favorite",
			response: `{"command": "Set favorite category", "parameters": {"category": "Shopping", "website": "amazon.com"}}`,
			want:     command.SetFavorite{Category: "shopping", Site: "amazon.com"},
		},
		{
			name:     "missing parameter leaves field empty",
			response: `{"command": "Search for", "parameters": {"query": "  "}}`,
			want:     command.Search{},
		},
		{
			name:     "youtube search",
			response: `{"command": "Search YouTube", "parameters": {"query": "cat videos"}}`,
			want:     command.YoutubeSearch{Query: "cat videos"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{response: tt.response}
			r := NewResolver(p)

			got, err := r.Resolve(context.Background(), "utterance")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			call := p.lastCall()
			assert.Equal(t, "utterance", call.user)
			assert.Equal(t, 0.0, call.opts.Temperature)
			assert.Equal(t, 256, call.opts.MaxTokens)
		})
	}
}

func TestResolveFailures(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		r := NewResolver(nil)
		assert.False(t, r.Available())
		_, err := r.Resolve(context.Background(), "open google")
		assert.ErrorIs(t, err, llm.ErrNoProvider)
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("connection refused")
		r := NewResolver(&mockProvider{err: boom})
		_, err := r.Resolve(context.Background(), "open google")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("not json", func(t *testing.T) {
		r := NewResolver(&mockProvider{response: "I think you want Google."})
		_, err := r.Resolve(context.Background(), "open google")
		assert.Error(t, err)
	})

	t.Run("unknown command", func(t *testing.T) {
		r := NewResolver(&mockProvider{response: `{"command": "Order pizza", "parameters": {}}`})
		_, err := r.Resolve(context.Background(), "order pizza")
		assert.ErrorIs(t, err, ErrUnrecognized)
	})
}

func TestResolverPromptListsVocabulary(t *testing.T) {
	p := &mockProvider{response: `{"command": "Refresh page"}`}
	r := NewResolver(p)
	_, err := r.Resolve(context.Background(), "reload")
	require.NoError(t, err)

	system := p.lastCall().system
	for _, c := range Vocabulary {
		assert.Contains(t, system, c.Name)
	}
	assert.Contains(t, system, "DO NOT include any explanation")
	assert.Len(t, Vocabulary, 21)
}

func TestResolverWithModel(t *testing.T) {
	base := &cloningProvider{mockProvider: &mockProvider{model: "base", response: `{"command": "Help"}`}}
	r := NewResolver(base, WithModel("fast-model"))
	assert.Equal(t, "fast-model", r.provider.GetModel())
}

func TestPosition(t *testing.T) {
	assert.Equal(t, 2, position("2"))
	assert.Equal(t, 2, position("2.0"))
	assert.Equal(t, 1, position("First"))
	assert.Equal(t, 4, position("4th"))
	assert.Equal(t, 0, position("many"))
}
