package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"
)

const (
	defaultCohereModel = "command-r"

	// cohereMaxInputRunes bounds the article text sent per request.
	cohereMaxInputRunes = 16000

	cohereTimeout = 60 * time.Second
)

// CohereClient implements Summarizer against the Cohere chat API.
type CohereClient struct {
	client *cohereclient.Client
	model  string
}

// NewCohereClient creates a Cohere-backed summarizer. The HTTP client forces
// HTTP/1.1 to avoid intermittent HTTP/2 protocol errors against the Cohere
// edge.
func NewCohereClient(apiKey, model string) *CohereClient {
	if model == "" {
		model = defaultCohereModel
	}
	httpClient := &http.Client{
		Timeout: cohereTimeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	return &CohereClient{
		client: cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
		),
		model: model,
	}
}

// Name implements Summarizer.
func (c *CohereClient) Name() string { return "cohere/" + c.model }

// Summarize implements Summarizer via a single chat turn.
func (c *CohereClient) Summarize(ctx context.Context, text string) (*Result, error) {
	prompt := buildPrompt(truncateAtSentence(text, cohereMaxInputRunes))
	preamble := systemPrompt
	temperature := 0.0

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     prompt,
		Model:       &c.model,
		Preamble:    &preamble,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, classifyCohereError(err)
	}
	if resp == nil || resp.Text == "" {
		return nil, &Error{Message: "cohere returned an empty response"}
	}

	return parseResult(resp.Text)
}

// classifyCohereError maps SDK errors onto the package error type so retry
// classification works uniformly across providers.
func classifyCohereError(err error) error {
	var apiErr *coherecore.APIError
	if errors.As(err, &apiErr) {
		return &Error{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
	}
	return &Error{Message: err.Error()}
}
