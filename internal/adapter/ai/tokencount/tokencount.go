// Package tokencount measures and caps prompt text in model tokens.
//
// It uses tiktoken-go with the cl100k_base encoding as an approximation of the
// Gemini tokenizer, loaded from the embedded offline BPE tables so no network
// access is needed at runtime.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const encodingName = "cl100k_base"

// charsPerToken is the estimate used when the encoder is unavailable.
const charsPerToken = 4

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter counts and truncates text by token budget. Safe for concurrent use.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter { return &Counter{} }

// DefaultCounter is a global token counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(encodingName)
		if c.err != nil {
			slog.Warn("token encoder unavailable, using estimates", slog.Any("error", c.err))
		}
	})
	return c.enc, c.err
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	enc, err := c.encoding()
	if err != nil {
		return estimate(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// Truncate returns text cut to at most maxTokens tokens. A non-positive budget
// disables truncation. The second result reports whether text was cut.
func (c *Counter) Truncate(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || text == "" {
		return text, false
	}
	enc, err := c.encoding()
	if err != nil {
		limit := maxTokens * charsPerToken
		if utf8.RuneCountInString(text) <= limit {
			return text, false
		}
		return string([]rune(text)[:limit]), true
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false
	}
	// A cut can split a multi-byte rune.
	return strings.ToValidUTF8(enc.Decode(tokens[:maxTokens]), ""), true
}

func estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}
