package llm

// ProviderConfig selects and configures the summarization backend.
type ProviderConfig struct {
	CohereAPIKey  string
	CohereModel   string
	OllamaBaseURL string
	OllamaModel   string
}

// NewSummarizer returns the configured provider: Cohere when an API key is
// present, otherwise a local Ollama instance.
func NewSummarizer(cfg ProviderConfig) Summarizer {
	if cfg.CohereAPIKey != "" {
		return NewCohereClient(cfg.CohereAPIKey, cfg.CohereModel)
	}
	return NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel)
}
