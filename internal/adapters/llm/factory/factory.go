package factory

import (
	"fmt"
	"strings"

	"github.com/bestony/mintranslate/internal/adapters/llm/anthropic"
	"github.com/bestony/mintranslate/internal/adapters/llm/gemini"
	"github.com/bestony/mintranslate/internal/adapters/llm/ollama"
	"github.com/bestony/mintranslate/internal/adapters/llm/openai"
	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/ports"
)

// FromProvider returns a streaming chat client for the given provider
// record. Credential-presence checks live in each concrete constructor, so
// the error kind stays next to the provider type that requires it.
func FromProvider(p *domain.Provider) (ports.ChatClient, error) {
	switch p.Type {
	case domain.ProviderOpenAI:
		return openai.New(p.APIKey, strings.TrimSpace(p.BaseURL))
	case domain.ProviderAnthropic:
		return anthropic.New(p.APIKey, strings.TrimSpace(p.BaseURL))
	case domain.ProviderGemini:
		return gemini.New(p.APIKey, strings.TrimSpace(p.BaseURL))
	case domain.ProviderOllama:
		return ollama.New(p.BaseURL), nil
	}
	return nil, fmt.Errorf("unsupported provider type: %s", p.Type)
}
