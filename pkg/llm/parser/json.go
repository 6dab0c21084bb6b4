// Package parser provides utilities for parsing structured content from LLM replies.
package parser

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a reply contains no JSON object.
var ErrNoJSON = errors.New("parser: no JSON object in reply")

var (
	thinkingBlock = regexp.MustCompile(`(?is)<(thinking|think)>.*?</(thinking|think)>`)
	codeFence     = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
)

// StripThinking removes <thinking> and <think> blocks some models emit before their answer.
// An unterminated block swallows the rest of the text.
func StripThinking(text string) string {
	text = thinkingBlock.ReplaceAllString(text, "")
	lower := strings.ToLower(text)
	for _, open := range []string{"<thinking>", "<think>"} {
		if idx := strings.Index(lower, open); idx >= 0 {
			text = text[:idx]
			lower = lower[:idx]
		}
	}
	return strings.TrimSpace(text)
}

// ExtractJSON returns the first balanced JSON object in text, ignoring thinking
// blocks, markdown fences and surrounding prose.
func ExtractJSON(text string) (string, error) {
	text = codeFence.ReplaceAllString(StripThinking(text), "")

	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := matchBrace(text, start); end > start {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
