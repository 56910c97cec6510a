package domain

// ProviderType identifies which LLM backend protocol a provider speaks.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGemini    ProviderType = "gemini"
	ProviderOllama    ProviderType = "ollama"
)

// ParseProviderType returns the typed value for a stored tag, or false for
// anything outside the closed enumeration.
func ParseProviderType(s string) (ProviderType, bool) {
	switch ProviderType(s) {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama:
		return ProviderType(s), true
	}
	return "", false
}

// RequiresAPIKey reports whether the provider type cannot be used without a
// credential. Only ollama is keyless.
func (t ProviderType) RequiresAPIKey() bool { return t != ProviderOllama }

// Provider is a user-defined connection to one LLM backend.
type Provider struct {
	ID      string       `json:"id"`
	Type    ProviderType `json:"type"`
	Name    string       `json:"name"`
	Model   string       `json:"model"`
	APIKey  string       `json:"apiKey,omitempty"`
	BaseURL string       `json:"baseUrl,omitempty"`
}

// DefaultModelByProvider holds the model suggested when the user creates a
// provider of each type.
var DefaultModelByProvider = map[ProviderType]string{
	ProviderOpenAI:    "gpt-4.1-mini",
	ProviderAnthropic: "claude-3-5-haiku",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOllama:    "llama3",
}
