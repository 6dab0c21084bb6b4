package dispatch

import (
	"regexp"
	"strings"
)

const (
	// Greeting is spoken once the browser is ready.
	Greeting = "I'm ready for your commands. Say help for instructions."
	// Farewell is spoken when the session closes.
	Farewell = "Closing browser. Goodbye!"

	helpText = "You can use the following commands: Open a website like Google, Search for information, " +
		"Scroll up or down, Click on links or buttons, Go back or forward between pages, Refresh the page, " +
		"Set favorites for categories, Open websites by category, Show all your favorites, " +
		"Read the current page aloud, Ask what's on the page, and Stop reading. " +
		"Say Close browser when you're done."

	searchEngineURL = "https://www.google.com"
	scrollStep      = 500
)

// Confirmation answers. Negatives are checked first so "don't play" never reads as "play".
var (
	negativeAnswer    = regexp.MustCompile(`\b(no|nope|don't|dont|cancel|stop|don't play|not now)\b`)
	affirmativeAnswer = regexp.MustCompile(`\b(yes|yeah|sure|okay|ok|play it|confirm)\b`)
)

var stopReadingPattern = regexp.MustCompile(`\b(stop reading|stop|quiet|silence|be quiet|shut up)\b`)

var readAloudPhrases = []string{
	"read page", "read this page", "read aloud", "read the page", "read to me",
	"read this to me", "read this", "read the article", "read this article", "start reading",
}

var youtubeSearchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:search|find|look for)(?:.+?)(?:on|in|at)(?:.+?)youtube(?:.+?)(?:for\s+)(.+)`),
	regexp.MustCompile(`(?i)youtube(?:.+?)(?:search|find|look for)(?:.+?)(?:for\s+)(.+)`),
	regexp.MustCompile(`(?i)(?:search|find|look for)(?:.+?)youtube(?:\s+for\s+)(.+)`),
}

var videoPositionPattern = regexp.MustCompile(
	`(?i)(?:tell me about|what's|describe|play|show|start)(?:.+?)(?:video|) (?:number |#)?(first|second|third|fourth|fifth|1st|2nd|3rd|4th|5th|[1-9])`)

var describeVideoWords = []string{"tell me about", "what's", "describe"}

var videoPositions = map[string]int{
	"first": 1, "1st": 1,
	"second": 2, "2nd": 2,
	"third": 3, "3rd": 3,
	"fourth": 4, "4th": 4,
	"fifth": 5, "5th": 5,
}

var listVideoPhrases = []string{
	"list videos", "show videos", "what videos", "summarize videos", "summarize results",
}

var (
	openPattern = regexp.MustCompile(`open\s+(.*?)(?:\s+in browser|\s+website|\s+site|\s*$)`)
	goToPattern = regexp.MustCompile(`go to\s+(.*?)(?:\s+website|\s+site|\s*$)`)
)

var clickPrefix = regexp.MustCompile(`(?i)^\s*(?:.*?\bclick)(?:\s+on)?\s*`)

var describePagePhrases = []string{
	"what's on this page", "what is on this page", "describe this page", "tell me about this page",
	"what's on the page", "what can you see", "describe what you see", "analyze this page", "page content",
}

// contentPattern maps a content question onto a page.Kind name.
type contentPattern struct {
	re   *regexp.Regexp
	kind string
}

func contentQuestion(word, kind string) contentPattern {
	return contentPattern{
		re:   regexp.MustCompile(`(?:tell|describe|what|list)(?:.+?)` + word),
		kind: kind,
	}
}

var contentPatterns = []contentPattern{
	contentQuestion("products", "products"),
	contentQuestion("videos", "videos"),
	contentQuestion(`(?:images|pictures)`, "images"),
	contentQuestion(`(?:music|songs|tracks)`, "music"),
	contentQuestion(`(?:articles|posts)`, "articles"),
}

var helpPhrases = []string{
	"help", "how to use", "instructions", "what can i say", "available commands",
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// trimUtterance drops the trailing punctuation speech engines like to add.
func trimUtterance(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".?!,"))
}
