package app

import (
	"strings"

	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/state"
	"github.com/bestony/mintranslate/internal/usecase/settings"
)

type ProviderAPI struct {
	store    *state.Store
	settings *settings.Service
}

func NewProviderAPI(store *state.Store, svc *settings.Service) *ProviderAPI {
	return &ProviderAPI{store: store, settings: svc}
}

// Save validates and upserts a provider configuration. A masked or empty API
// key on an existing provider keeps the stored key.
func (a *ProviderAPI) Save(f settings.ProviderForm) (*domain.Provider, error) {
	if strings.HasPrefix(f.APIKey, "****") || f.APIKey == "" {
		if existing := a.find(f.ID); existing != nil {
			f.APIKey = existing.APIKey
		}
	}
	id, err := a.settings.SaveProviderFromForm(f)
	if err != nil {
		return nil, err
	}
	saved := a.find(id)
	if saved == nil {
		return nil, nil
	}
	saved.APIKey = mask(saved.APIKey)
	return saved, nil
}

func (a *ProviderAPI) List() []domain.Provider {
	src := a.store.State().Providers
	out := make([]domain.Provider, 0, len(src))
	for _, p := range src {
		p.APIKey = mask(p.APIKey)
		out = append(out, p)
	}
	return out
}

func (a *ProviderAPI) Delete(id string) { a.settings.DeleteProvider(id) }

func (a *ProviderAPI) SetDefault(id string) { a.settings.SetDefaultProvider(id) }

func (a *ProviderAPI) DefaultID() string { return a.store.State().DefaultProviderID }

func (a *ProviderAPI) find(id string) *domain.Provider {
	for _, p := range a.store.State().Providers {
		if p.ID == id {
			cp := p
			return &cp
		}
	}
	return nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "****" + s[len(s)-4:]
}
