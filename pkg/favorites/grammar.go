package favorites

import (
	"regexp"
	"strings"
)

// setPattern extracts a category and a site from one "set favorite" phrasing.
type setPattern struct {
	re        *regexp.Regexp
	siteFirst bool // the site is captured before the category
}

var setPatterns = []setPattern{
	{re: regexp.MustCompile(`(?:set|make|change)\s+(?:favorite|default)\s+(\w+)\s+(?:to|as|website to)\s+(.+)`)},
	{re: regexp.MustCompile(`(?:set|make|change)\s+(\w+)\s+(?:favorite|default)\s+(?:to|as|website to)\s+(.+)`)},
	{re: regexp.MustCompile(`(?:use|save)\s+(.+)\s+(?:as|for)\s+(?:my|the)\s+(\w+)\s+(?:category|site|website)`), siteFirst: true},
	{re: regexp.MustCompile(`(?:for)\s+(\w+)\s+(?:use|open|go to)\s+(.+)`)},
}

var openCategoryPattern = regexp.MustCompile(`(?:open|go\s+to|launch|navigate\s+to)\s+(?:the|my)?\s*category\s+(\w+)`)

var listPhrases = []string{
	"list favorites",
	"show favorites",
	"display favorites",
	"what are my favorites",
	"tell me my favorites",
	"show my favorites",
	"list my favorites",
}

// whenISay returns the index of "say" in a "when i say ..." token run, or -1.
func whenISay(parts []string) int {
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "when" && parts[i+1] == "i" && parts[i+2] == "say" {
			return i + 2
		}
	}
	return -1
}

// IsSetCommand reports whether text tries to bind a category to a site.
// text must already be lower-cased.
func IsSetCommand(text string) bool {
	if strings.Contains(text, "when i say") {
		parts := strings.Fields(text)
		if len(parts) >= 5 {
			if say := whenISay(parts); say >= 0 && say+1 < len(parts) {
				return true
			}
		}
	}

	for _, p := range setPatterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}

// ParseSetCommand extracts the category and the raw site from a set-favorite
// utterance. The site still needs Normalize. text must already be lower-cased.
func ParseSetCommand(text string) (category, site string, ok bool) {
	if strings.Contains(text, "when i say") {
		parts := strings.Fields(text)
		if say := whenISay(parts); say >= 0 && say+2 < len(parts) {
			for j := say + 2; j < len(parts)-1; j++ {
				if parts[j] == "use" {
					return parts[say+1], cleanSite(strings.Join(parts[j+1:], " ")), true
				}
			}
		}
	}

	for _, p := range setPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		category, site = m[1], m[2]
		if p.siteFirst {
			category, site = m[2], m[1]
		}
		site = cleanSite(site)
		if category == "" || site == "" {
			continue
		}
		return strings.ToLower(category), site, true
	}
	return "", "", false
}

func cleanSite(site string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(site), "."))
}

// ParseOpenCategory extracts <category> from "open|go to|launch|navigate to
// (the|my) category <category>". text must already be lower-cased.
func ParseOpenCategory(text string) (string, bool) {
	m := openCategoryPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsListCommand reports whether text asks for the favorites list.
// text must already be lower-cased.
func IsListCommand(text string) bool {
	for _, phrase := range listPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
