package llm

import (
	"strings"
	"testing"
)

func TestNewSummarizerSelectsProvider(t *testing.T) {
	t.Run("cohere when key is set", func(t *testing.T) {
		s := NewSummarizer(ProviderConfig{CohereAPIKey: "key", CohereModel: "command-r"})
		if !strings.HasPrefix(s.Name(), "cohere/") {
			t.Errorf("Name() = %q, want a cohere provider", s.Name())
		}
	})

	t.Run("ollama by default", func(t *testing.T) {
		s := NewSummarizer(ProviderConfig{OllamaModel: "llama3.1"})
		if !strings.HasPrefix(s.Name(), "ollama/") {
			t.Errorf("Name() = %q, want an ollama provider", s.Name())
		}
	})
}
