// Package settings owns the provider list, the default-provider pointer,
// the language pair preference and the system prompt. Fast-store writes are
// best effort: the in-memory state change always lands even when the disk
// write fails. Only the durable system-prompt write surfaces failure, with a
// rollback of the optimistic update.
package settings

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bestony/mintranslate/internal/apperr"
	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/ports"
	"github.com/bestony/mintranslate/internal/state"
)

// Storage keys, kept byte-compatible with the web build's localStorage.
const (
	ProvidersKey         = "mintranslate.aiProviders"
	DefaultProviderIDKey = "mintranslate.aiDefaultProviderId"
	LegacyGeminiKeyKey   = "mintranslate.geminiApiKey"
	LangPairKey          = "mintranslate.translateLangPair"
	AppSettingsKey       = "mintranslate.appSettings"
)

type Service struct {
	store *state.Store
	kv    ports.KVStore
	repo  ports.SettingsRepository
}

func New(store *state.Store, kv ports.KVStore, repo ports.SettingsRepository) *Service {
	return &Service{store: store, kv: kv, repo: repo}
}

// ReadOptimisticSystemPrompt reads the fast-store copy of the app settings
// for store construction, before the durable store is available. Garbage or
// absence yields the bundled default.
func ReadOptimisticSystemPrompt(kv ports.KVStore) string {
	raw, ok := kv.Get(AppSettingsKey)
	if !ok {
		return domain.DefaultSystemPrompt
	}
	var s domain.AppSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return domain.DefaultSystemPrompt
	}
	if s.SystemPrompt == "" {
		return domain.DefaultSystemPrompt
	}
	return s.SystemPrompt
}



// persistProviderSettings writes the provider list and default pointer to
// the fast store. Failures are swallowed: availability over durability for
// a purely local settings store.
func (s *Service) persistProviderSettings(providers []domain.Provider, defaultID string) {
	if b, err := json.Marshal(providers); err == nil {
		_ = s.kv.Set(ProvidersKey, string(b))
	}
	_ = s.kv.Set(DefaultProviderIDKey, defaultID)
}

// ParseProviders decodes a persisted provider list defensively: malformed
// JSON reads as empty, and any record missing a required field or carrying
// an unknown type is dropped silently.
func ParseProviders(raw string) []domain.Provider {
	if raw == "" {
		return nil
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	out := make([]domain.Provider, 0, len(items))
	for _, item := range items {
		id, _ := item["id"].(string)
		typeTag, _ := item["type"].(string)
		name, _ := item["name"].(string)
		model, _ := item["model"].(string)
		apiKey, _ := item["apiKey"].(string)
		baseURL, _ := item["baseUrl"].(string)

		providerType, ok := domain.ParseProviderType(typeTag)
		if id == "" || !ok || name == "" || model == "" {
			continue
		}
		out = append(out, domain.Provider{
			ID:      id,
			Type:    providerType,
			Name:    name,
			Model:   model,
			APIKey:  apiKey,
			BaseURL: baseURL,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HydrateProviders loads the provider list and default pointer from the fast
// store, self-heals a dangling default, and migrates the legacy single
// Gemini API key when no providers exist yet.
func (s *Service) HydrateProviders() {
	raw, _ := s.kv.Get(ProvidersKey)
	providers := ParseProviders(raw)
	defaultID, _ := s.kv.Get(DefaultProviderIDKey)

	if defaultID == "" && len(providers) > 0 {
		defaultID = providers[0].ID
	}
	if defaultID != "" && !hasProvider(providers, defaultID) {
		defaultID = ""
		if len(providers) > 0 {
			defaultID = providers[0].ID
		}
	}

	if len(providers) == 0 {
		if legacy, _ := s.kv.Get(LegacyGeminiKeyKey); strings.TrimSpace(legacy) != "" {
			migrated := domain.Provider{
				ID:     domain.NewID(),
				Type:   domain.ProviderGemini,
				Name:   "Gemini",
				APIKey: strings.TrimSpace(legacy),
				Model:  domain.DefaultModelByProvider[domain.ProviderGemini],
			}
			providers = []domain.Provider{migrated}
			defaultID = migrated.ID
			s.persistProviderSettings(providers, defaultID)
		}
	}

	s.store.Patch(func(st *state.TranslateState) {
		st.Providers = providers
		st.DefaultProviderID = defaultID
	})
}

func hasProvider(providers []domain.Provider, id string) bool {
	for _, p := range providers {
		if p.ID == id {
			return true
		}
	}
	return false
}

// SetDefaultProvider points the default at an existing provider. Unknown ids
// and the current default are no-ops.
func (s *Service) SetDefaultProvider(id string) {
	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		if st.DefaultProviderID == id || !hasProvider(st.Providers, id) {
			return st
		}
		s.persistProviderSettings(st.Providers, id)
		st.DefaultProviderID = id
		return st
	})
}

// DeleteProvider removes a provider; when it was the default, the first
// remaining provider is promoted (or the pointer cleared).
func (s *Service) DeleteProvider(id string) {
	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		next := make([]domain.Provider, 0, len(st.Providers))
		for _, p := range st.Providers {
			if p.ID != id {
				next = append(next, p)
			}
		}
		defaultID := st.DefaultProviderID
		if defaultID == id {
			defaultID = ""
			if len(next) > 0 {
				defaultID = next[0].ID
			}
		}
		s.persistProviderSettings(next, defaultID)
		st.Providers = next
		st.DefaultProviderID = defaultID
		return st
	})
}

// ProviderForm carries the provider dialog values. An empty ID means create.
type ProviderForm struct {
	ID      string              `json:"id"`
	Type    domain.ProviderType `json:"type"`
	Name    string              `json:"name"`
	Model   string              `json:"model"`
	APIKey  string              `json:"apiKey"`
	BaseURL string              `json:"baseUrl"`
}

// SaveProviderFromForm validates and upserts a provider. Rules run in order
// name, model, apiKey; the first failure returns its error kind and nothing
// is persisted. On success the saved provider becomes default when no valid
// default existed.
func (s *Service) SaveProviderFromForm(f ProviderForm) (string, error) {
	name := strings.TrimSpace(f.Name)
	model := strings.TrimSpace(f.Model)
	apiKey := strings.TrimSpace(f.APIKey)
	baseURL := strings.TrimSpace(f.BaseURL)

	if name == "" {
		return "", apperr.ProviderNameRequired
	}
	if model == "" {
		return "", apperr.ModelRequired
	}
	if f.Type.RequiresAPIKey() && apiKey == "" {
		return "", apperr.APIKeyRequired
	}

	id := f.ID
	if id == "" {
		id = domain.NewID()
	}
	provider := domain.Provider{
		ID:      id,
		Type:    f.Type,
		Name:    name,
		Model:   model,
		APIKey:  apiKey,
		BaseURL: baseURL,
	}

	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		next := make([]domain.Provider, 0, len(st.Providers)+1)
		replaced := false
		for _, p := range st.Providers {
			if p.ID == id {
				next = append(next, provider)
				replaced = true
			} else {
				next = append(next, p)
			}
		}
		if !replaced {
			next = append(next, provider)
		}

		defaultID := st.DefaultProviderID
		if defaultID == "" || !hasProvider(next, defaultID) {
			defaultID = provider.ID
		}

		s.persistProviderSettings(next, defaultID)
		st.Providers = next
		st.DefaultProviderID = defaultID
		return st
	})

	return id, nil
}

// HydrateSystemPrompt reconciles the optimistic prompt against the durable
// store; the durable value wins when present.
func (s *Service) HydrateSystemPrompt(ctx context.Context) error {
	stored, err := s.repo.Get(ctx, domain.AppSettingsID)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}
	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		if st.SystemPrompt == stored.SystemPrompt {
			return st
		}
		st.SystemPrompt = stored.SystemPrompt
		return st
	})
	return nil
}

// SaveSystemPrompt applies the new prompt optimistically, then writes the
// durable row. A failed write rolls the in-memory value back and re-raises
// so the UI can tell the user the save failed. The fast-store mirror is
// refreshed best effort.
func (s *Service) SaveSystemPrompt(ctx context.Context, next string) error {
	prev := s.store.State().SystemPrompt
	s.store.Patch(func(st *state.TranslateState) { st.SystemPrompt = next })

	record := &domain.AppSettings{
		ID:           domain.AppSettingsID,
		SystemPrompt: next,
		UpdatedAt:    time.Now().UnixMilli(),
	}
	if err := s.repo.Put(ctx, record); err != nil {
		s.store.Patch(func(st *state.TranslateState) { st.SystemPrompt = prev })
		return err
	}
	if b, err := json.Marshal(record); err == nil {
		if err := s.kv.Set(AppSettingsKey, string(b)); err != nil {
			log.WithError(err).Warn("app settings: fast-store mirror write failed")
		}
	}
	return nil
}

type langPair struct {
	SourceLang domain.Lang `json:"sourceLang"`
	TargetLang domain.Lang `json:"targetLang"`
}

// persistLangPair saves the language pair, only when the two differ.
func (s *Service) persistLangPair(src, tgt domain.Lang) {
	if src == tgt {
		return
	}
	if b, err := json.Marshal(langPair{SourceLang: src, TargetLang: tgt}); err == nil {
		_ = s.kv.Set(LangPairKey, string(b))
	}
}

// HydrateLangPair restores the persisted language pair. Restoring the pair
// re-commits the current raw input so a pending translation reflects it.
func (s *Service) HydrateLangPair() {
	raw, ok := s.kv.Get(LangPairKey)
	if !ok {
		return
	}
	var p langPair
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return
	}
	if _, ok := domain.ParseLang(string(p.SourceLang)); !ok {
		return
	}
	if _, ok := domain.ParseLang(string(p.TargetLang)); !ok {
		return
	}
	if p.SourceLang == p.TargetLang {
		return
	}
	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		if st.LeftLang == p.SourceLang && st.RightLang == p.TargetLang {
			return st
		}
		st.LeftLang = p.SourceLang
		st.RightLang = p.TargetLang
		st.DebouncedLeftText = st.LeftText
		return st
	})
}

// SetSourceLang switches the source language. Selecting the current target
// is rejected; the raw input is re-committed immediately.
func (s *Service) SetSourceLang(next domain.Lang) {
	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		if st.LeftLang == next || st.RightLang == next {
			return st
		}
		st.LeftLang = next
		st.DebouncedLeftText = st.LeftText
		s.persistLangPair(st.LeftLang, st.RightLang)
		return st
	})
}

// SetTargetLang switches the target language, mirroring SetSourceLang.
func (s *Service) SetTargetLang(next domain.Lang) {
	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		if st.RightLang == next || st.LeftLang == next {
			return st
		}
		st.RightLang = next
		st.DebouncedLeftText = st.LeftText
		s.persistLangPair(st.LeftLang, st.RightLang)
		return st
	})
}

// SwapLanguages exchanges the language pair; when a translation is showing,
// the texts swap too so the output becomes the new input.
func (s *Service) SwapLanguages() {
	s.store.SetState(func(st state.TranslateState) state.TranslateState {
		st.LeftLang, st.RightLang = st.RightLang, st.LeftLang
		if strings.TrimSpace(st.RightText) != "" {
			st.LeftText, st.RightText = st.RightText, st.LeftText
		}
		st.DebouncedLeftText = st.LeftText
		s.persistLangPair(st.LeftLang, st.RightLang)
		return st
	})
}
