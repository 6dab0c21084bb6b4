// Package tokenizer counts and trims prompt text in model tokens.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the BPE used by the gpt-4o family and close enough for
// OpenAI-compatible hosts.
const Encoding = "cl100k_base"

// charsPerToken is the estimate used when no encoder is available.
const charsPerToken = 4

// Tokenizer wraps a tiktoken encoder. A nil *Tokenizer is valid and estimates
// from character counts.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads the encoder. It can fail when the BPE ranks cannot be fetched.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", Encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.enc == nil {
		return (len(text) + charsPerToken - 1) / charsPerToken
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text that fits in n tokens.
func (t *Tokenizer) Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if t == nil || t.enc == nil {
		limit := n * charsPerToken
		if len(text) <= limit {
			return text
		}
		// Back up to a rune boundary.
		for limit > 0 && !isRuneStart(text[limit]) {
			limit--
		}
		return text[:limit]
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= n {
		return text
	}
	return t.enc.Decode(tokens[:n])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
