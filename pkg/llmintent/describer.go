package llmintent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/voxbrowse/pkg/llm"
	"github.com/entrhq/voxbrowse/pkg/llm/parser"
	"github.com/entrhq/voxbrowse/pkg/llm/tokenizer"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/page"
)

const (
	describeTemperature = 0.2
	describeMaxTokens   = 1024

	// DefaultTokenBudget caps the page content placed in one description prompt.
	DefaultTokenBudget = 3000

	pageItemsPerSection    = 5
	contentItemsPerSection = 10
)

// Describer turns extracted page content into a spoken description.
type Describer struct {
	provider  llm.Provider
	logger    *logging.Logger
	tokenizer *tokenizer.Tokenizer
	budget    int
}

// NewDescriber returns a Describer. A nil provider yields a describer whose
// methods always fail with llm.ErrNoProvider.
func NewDescriber(provider llm.Provider, opts ...Option) *Describer {
	s := newSettings(opts)
	return &Describer{
		provider:  s.apply(provider),
		logger:    s.logger,
		tokenizer: s.tokenizer,
		budget:    s.budget,
	}
}

// Available reports whether a provider is configured.
func (d *Describer) Available() bool {
	return d != nil && d.provider != nil
}

const pageSystemPrompt = `You are a specialized web page analyzer that can identify and categorize content on websites.
Analyze the provided website content and identify the following elements:

1. Products - with details about name, price, seller, ratings
2. Videos - with details about title, creator, duration
3. Music/Audio tracks - with details about title, artist, album
4. Articles/Blog posts - with title, author, date
5. Images - with description of what they show (from alt text)
6. Interactive elements - buttons, forms, etc.

Describe what's on the page in a conversational way suited to being read aloud.
If you detect a specific type of website (e-commerce, video platform, news site, etc.), mention that.

Return your analysis as a JSON object with a single 'description' field containing the conversational summary.`

// DescribePage asks the model for a description of the whole page.
func (d *Describer) DescribePage(ctx context.Context, info *page.Info) (string, error) {
	if !d.Available() {
		return "", llm.ErrNoProvider
	}

	sectionNames := map[page.Kind]string{
		page.Products: "Products",
		page.Videos:   "Videos",
		page.Articles: "Articles/Cards",
		page.Music:    "Music",
		page.Images:   "Images",
		page.Links:    "Links",
	}
	perSection := d.budget / len(page.Kinds)

	var b strings.Builder
	fmt.Fprintf(&b, "Website: %s\nTitle: %s\nWebsite type: %s\n\nHere's what I've detected so far:\n", info.URL, info.Title, SiteKind(info))
	for _, k := range page.Kinds {
		items := info.Items(k)
		fmt.Fprintf(&b, "\n%s (%d):\n%s\n", sectionNames[k], len(items), d.itemsJSON(items, pageItemsPerSection, perSection))
	}
	b.WriteString(`
Based on this information, provide an enhanced analysis of what's on this page.
Add any insights about the type of website, what it's selling or offering, and the main content.
For e-commerce sites, describe the products in more detail.
For video platforms, identify the main themes of videos.
For music sites, describe the music collection.
For news/blog sites, summarize the article topics.`)

	return d.complete(ctx, pageSystemPrompt, b.String())
}

// DescribeContent asks the model for a description of one kind of content.
// The caller has already checked that the section is not empty.
func (d *Describer) DescribeContent(ctx context.Context, kind page.Kind, info *page.Info) (string, error) {
	if !d.Available() {
		return "", llm.ErrNoProvider
	}

	items := info.Items(kind)
	system := fmt.Sprintf(`You are a specialized web content analyzer. For the given %[1]s information from a webpage,
provide a detailed, conversational description of these %[1]s.
Focus only on the %[1]s and their characteristics.`, kind)

	user := fmt.Sprintf(`I found %d %s on the page %q.
Here are the details:

%s

Please provide a detailed, conversational description of these %s.
For products: describe what's being sold, price ranges, brands, etc.
For videos: describe the content themes, creators, topics, etc.
For images: explain what they show based on alt text.
For music: describe the artists, genres, themes, etc.
For articles: summarize the topics and themes.`,
		len(items), kind, info.Title, d.itemsJSON(items, contentItemsPerSection, d.budget), kind)

	return d.complete(ctx, system, user)
}

func (d *Describer) complete(ctx context.Context, system, user string) (string, error) {
	out, err := llm.ChatComplete(ctx, d.provider, system, user, describeTemperature, describeMaxTokens)
	if err != nil {
		return "", fmt.Errorf("description completion failed: %w", err)
	}
	desc := unwrapDescription(out)
	if desc == "" {
		return "", errors.New("llmintent: empty description")
	}
	return desc, nil
}

// unwrapDescription prefers the "description" field of a JSON reply and
// falls back to the reply text itself.
func unwrapDescription(out string) string {
	if raw, err := parser.ExtractJSON(out); err == nil {
		var rep struct {
			Description string `json:"description"`
		}
		if json.Unmarshal([]byte(raw), &rep) == nil && strings.TrimSpace(rep.Description) != "" {
			return strings.TrimSpace(rep.Description)
		}
	}
	return strings.TrimSpace(parser.StripThinking(out))
}

// itemsJSON renders up to limit items as indented JSON trimmed to budget tokens.
func (d *Describer) itemsJSON(items []page.Item, limit, budget int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []page.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		d.logger.Warnf("Failed to encode page items: %v", err)
		return "[]"
	}
	text := string(data)
	if d.tokenizer.CountTokens(text) > budget {
		text = d.tokenizer.Truncate(text, budget) + "\n..."
	}
	return text
}

type siteRule struct {
	kind  string
	hints []string
}

var siteRules = []siteRule{
	{"e-commerce", []string{"amazon", "ebay", "shop", "store", "product"}},
	{"video sharing", []string{"youtube", "vimeo", "netflix", "video"}},
	{"music streaming", []string{"spotify", "soundcloud", "music", "audio"}},
	{"news or blog", []string{"news", "blog", "article"}},
	{"social media", []string{"facebook", "twitter", "instagram", "social"}},
}

// SiteKind guesses what sort of website info came from, first from its URL and then from its content.
func SiteKind(info *page.Info) string {
	url := strings.ToLower(info.URL)
	for _, rule := range siteRules {
		for _, hint := range rule.hints {
			if strings.Contains(url, hint) {
				return rule.kind
			}
		}
	}

	switch {
	case len(info.Products) > 0:
		return "e-commerce"
	case len(info.Videos) > 0:
		return "video content"
	case len(info.Music) > 0:
		return "music content"
	case len(info.Articles) > 0:
		return "article or blog"
	}
	return "general content"
}
