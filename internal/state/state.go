package state

import "github.com/bestony/mintranslate/internal/domain"

// TranslateState is the live session state. Snapshots are values: mutators
// derive a new snapshot from the previous one, never edit in place.
type TranslateState struct {
	Providers         []domain.Provider `json:"providers"`
	DefaultProviderID string            `json:"defaultProviderId"`

	SystemPrompt string `json:"systemPrompt"`

	LeftLang  domain.Lang `json:"leftLang"`
	RightLang domain.Lang `json:"rightLang"`
	LeftText  string      `json:"leftText"`
	RightText string      `json:"rightText"`

	IsTranslating     bool   `json:"isTranslating"`
	TranslateError    string `json:"translateError"`
	DebouncedLeftText string `json:"debouncedLeftText"`
}

// ActiveProvider resolves the default provider pointer, or nil when the
// pointer is empty or dangling.
func (s TranslateState) ActiveProvider() *domain.Provider {
	if s.DefaultProviderID == "" {
		return nil
	}
	for i := range s.Providers {
		if s.Providers[i].ID == s.DefaultProviderID {
			p := s.Providers[i]
			return &p
		}
	}
	return nil
}

// initialState is the session state before any hydration ran.
func initialState(systemPrompt string) TranslateState {
	return TranslateState{
		SystemPrompt: systemPrompt,
		LeftLang:     domain.LangChinese,
		RightLang:    domain.LangEnglish,
	}
}
