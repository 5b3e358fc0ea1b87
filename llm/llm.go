// Package llm provides summarization backends for the ingestion pipeline.
// Two providers are supported: a local Ollama instance and the Cohere API,
// selected by configuration.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Result is a parsed summarization response: an abstract plus the 3-5
// category tags the model was asked for alongside it.
type Result struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Summarizer produces an AI-generated abstract of article text.
type Summarizer interface {
	// Summarize returns a summary of text. Input longer than the provider's
	// cap is pre-truncated at a sentence boundary, never failed.
	Summarize(ctx context.Context, text string) (*Result, error)
	// Name identifies the backing provider for logging.
	Name() string
}

// Error is a classified summarization failure.
type Error struct {
	StatusCode int // 0 for transport-level failures
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("summarization backend: %s", e.Message)
	}
	return fmt.Sprintf("summarization backend: HTTP %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether the failure is worth retrying: rate limits,
// server errors and transport failures. Invalid requests and content policy
// rejections are terminal.
func (e *Error) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// IsTransient reports whether err represents a retryable backend failure.
func IsTransient(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Transient()
}

// summaryPrompt asks for a JSON object so the response parses without
// scraping prose. The schema mirrors the stored record fields.
const summaryPrompt = `Please provide a concise summary of this article:

%s

Also, provide 3-5 relevant topics/tags that this article would fall under.
Respond with a single JSON object and nothing else, following this schema:

{"summary": "<AI-generated summary>", "tags": ["<category>", "..."]}`

const systemPrompt = "You are a professional summarizer. Provide clear, concise summaries while maintaining key information."

// buildPrompt renders the summarization prompt for text.
func buildPrompt(text string) string {
	return fmt.Sprintf(summaryPrompt, text)
}

// parseResult extracts the JSON result from a model response, tolerating
// prose or code fences around the object.
func parseResult(raw string) (*Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, &Error{Message: "response contains no JSON object"}
	}

	var result Result
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, &Error{Message: fmt.Sprintf("malformed JSON response: %v", err)}
	}
	if strings.TrimSpace(result.Summary) == "" {
		return nil, &Error{Message: "response is missing a summary"}
	}
	return &result, nil
}

// truncateAtSentence clips text to at most maxRunes, cutting at the last
// sentence boundary before the limit when one exists.
func truncateAtSentence(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	clipped := string(runes[:maxRunes])

	if idx := strings.LastIndexAny(clipped, ".!?"); idx > maxRunes/2 {
		return clipped[:idx+1]
	}
	if idx := strings.LastIndex(clipped, " "); idx > 0 {
		return clipped[:idx]
	}
	return clipped
}
