package app

import (
	"context"

	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/state"
	"github.com/bestony/mintranslate/internal/usecase/settings"
)

type SettingsAPI struct {
	store    *state.Store
	settings *settings.Service
}

func NewSettingsAPI(store *state.Store, svc *settings.Service) *SettingsAPI {
	return &SettingsAPI{store: store, settings: svc}
}

func (a *SettingsAPI) SystemPrompt() string { return a.store.State().SystemPrompt }

func (a *SettingsAPI) DefaultSystemPrompt() string { return domain.DefaultSystemPrompt }

// SaveSystemPrompt persists the prompt; on a storage failure the in-memory
// value rolls back and the error is returned to the UI.
func (a *SettingsAPI) SaveSystemPrompt(prompt string) error {
	return a.settings.SaveSystemPrompt(context.Background(), prompt)
}
