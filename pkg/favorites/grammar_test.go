package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSetCommand(t *testing.T) {
	tests := []struct {
		text     string
		category string
		site     string
	}{
		{"when i say videos use vimeo.com", "videos", "vimeo.com"},
		{"when i say news use bbc dot co.", "news", "bbc dot co"},
		{"set favorite videos to vimeo.com", "videos", "vimeo.com"},
		{"change default music as tidal.com.", "music", "tidal.com"},
		{"make movies favorite website to disney.com", "movies", "disney.com"},
		{"set shopping default to ebay", "shopping", "ebay"},
		{"use vimeo.com as my videos site", "videos", "vimeo.com"},
		{"save bbc.co.uk for the news website", "news", "bbc.co.uk"},
		{"for music use soundcloud.com", "music", "soundcloud.com"},
		{"for maps go to openstreetmap.org", "maps", "openstreetmap.org"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.True(t, IsSetCommand(tt.text))
			category, site, ok := ParseSetCommand(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.site, site)
		})
	}
}

func TestParseSetCommandRejects(t *testing.T) {
	for _, text := range []string{
		"open category videos",
		"play video number 2",
		"search for cats",
		"when i say",
		"list favorites",
	} {
		assert.False(t, IsSetCommand(text), text)
		_, _, ok := ParseSetCommand(text)
		assert.False(t, ok, text)
	}
}

func TestWhenISayWithoutUseIsSetButUnparsable(t *testing.T) {
	text := "when i say videos please vimeo"
	assert.True(t, IsSetCommand(text))
	_, _, ok := ParseSetCommand(text)
	assert.False(t, ok)
}

func TestParseOpenCategory(t *testing.T) {
	tests := map[string]string{
		"open category videos":             "videos",
		"open the category news":           "news",
		"go to my category music":          "music",
		"launch category shopping":         "shopping",
		"please navigate to category maps": "maps",
	}
	for text, want := range tests {
		got, ok := ParseOpenCategory(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}

	_, ok := ParseOpenCategory("open videos")
	assert.False(t, ok)
}

func TestSetTakesPrecedenceOverOpenCategoryWords(t *testing.T) {
	text := "set favorite videos to vimeo.com"
	assert.True(t, IsSetCommand(text))
	_, ok := ParseOpenCategory(text)
	assert.False(t, ok)
}

func TestIsListCommand(t *testing.T) {
	for _, text := range []string{
		"list favorites", "please show favorites now", "display favorites",
		"what are my favorites", "tell me my favorites", "show my favorites", "list my favorites",
	} {
		assert.True(t, IsListCommand(text), text)
	}
	assert.False(t, IsListCommand("favorite color"))
}
