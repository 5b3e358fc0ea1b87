package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the standard local Ollama endpoint.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3.1"

	// ollamaMaxInputRunes bounds the article text handed to the model.
	// Longer input is pre-truncated at a sentence boundary.
	ollamaMaxInputRunes = 24000

	ollamaTimeout = 2 * time.Minute
)

// OllamaClient talks to an Ollama instance's generate API.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient creates an Ollama-backed summarizer.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: ollamaTimeout,
		},
	}
}

// Name implements Summarizer.
func (c *OllamaClient) Name() string { return "ollama/" + c.model }

// generateRequest is the Ollama generate API request payload.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

// generateResponse is the Ollama generate API response payload.
type generateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// Summarize implements Summarizer against the Ollama generate endpoint.
func (c *OllamaClient) Summarize(ctx context.Context, text string) (*Result, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(truncateAtSentence(text, ollamaMaxInputRunes)),
		System: systemPrompt,
		Stream: false,
		Format: "json",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(detail))}
	}

	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	return parseResult(generated.Response)
}
