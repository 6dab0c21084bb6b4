package intent

import (
	"strings"

	"github.com/entrhq/voxbrowse/pkg/favorites"
)

// CategorySource lists the currently known favorite categories.
type CategorySource interface {
	Categories() []string
}

type keywordRule struct {
	intent   string
	category string
	keywords []string
}

// keywordRules is ordered; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{"watch_video", "videos", []string{"watch", "video", "youtube", "videos", "film", "stream", "streaming", "watch video"}},
	{"shopping", "shopping", []string{"shop", "buy", "purchase", "shopping", "amazon", "order", "cart"}},
	{"social_media", "social", []string{"social", "facebook", "twitter", "instagram", "post", "friend", "connect", "social media"}},
	{"search", "search", []string{"search", "find", "google", "look up", "lookup", "query"}},
	{"news", "news", []string{"news", "headlines", "current events", "world news", "breaking news"}},
	{"mail", "mail", []string{"mail", "email", "gmail", "message", "inbox"}},
	{"movies", "movies", []string{"movie", "movies", "netflix", "film", "cinema", "watch movie"}},
	{"music", "music", []string{"music", "song", "listen", "spotify", "playlist", "album", "artist"}},
}

type moodRule struct {
	category string
	phrases  []string
}

var moodRules = []moodRule{
	{"videos", []string{"in the mood for watching", "want to watch", "feel like watching"}},
	{"shopping", []string{"in the mood for shopping", "want to shop", "feel like shopping"}},
	{"social", []string{"check social media", "see what friends are doing"}},
	{"movies", []string{"in the mood for a movie", "want to watch a film", "feel like a movie"}},
	{"music", []string{"in the mood for music", "want to listen", "feel like listening"}},
}

// Classifier guesses the favorite category an utterance is about.
type Classifier struct {
	categories CategorySource
}

// NewClassifier returns a classifier that consults categories on every call.
func NewClassifier(categories CategorySource) *Classifier {
	return &Classifier{categories: categories}
}

// Classify returns the category text most likely refers to. Set-favorite
// commands never classify. A direct category word wins, then the keyword
// table, then mood phrases.
func (c *Classifier) Classify(text string) (string, bool) {
	text = strings.ToLower(text)
	if favorites.IsSetCommand(text) {
		return "", false
	}

	if c.categories != nil {
		words := make(map[string]bool)
		for _, word := range strings.Fields(text) {
			words[strings.Trim(word, `.,!?;:'"`)] = true
		}
		for _, cat := range c.categories.Categories() {
			if words[cat] {
				return cat, true
			}
		}
	}

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category, true
			}
		}
	}

	for _, rule := range moodRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(text, phrase) {
				return rule.category, true
			}
		}
	}

	return "", false
}

// Intent returns the coarse intent name behind a category chosen by the
// keyword table, for logging.
func Intent(category string) string {
	for _, rule := range keywordRules {
		if rule.category == category {
			return rule.intent
		}
	}
	return category
}
