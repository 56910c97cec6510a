package app

import (
	"fmt"

	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/state"
	"github.com/bestony/mintranslate/internal/usecase/settings"
)

// TranslateAPI exposes the editor surface: input edits, manual triggers and
// language pair changes. All of it funnels into the state store, where the
// orchestrator picks the changes up.
type TranslateAPI struct {
	store    *state.Store
	settings *settings.Service
}

func NewTranslateAPI(store *state.Store, svc *settings.Service) *TranslateAPI {
	return &TranslateAPI{store: store, settings: svc}
}

func (a *TranslateAPI) SetLeftText(text string) { a.store.SetLeftText(text) }

// TranslateNow commits the current input immediately, skipping the debounce.
func (a *TranslateAPI) TranslateNow() { a.store.TriggerTranslateNow() }

func (a *TranslateAPI) SetSourceLang(code string) error {
	l, ok := domain.ParseLang(code)
	if !ok {
		return fmt.Errorf("unknown language: %s", code)
	}
	a.settings.SetSourceLang(l)
	return nil
}

func (a *TranslateAPI) SetTargetLang(code string) error {
	l, ok := domain.ParseLang(code)
	if !ok {
		return fmt.Errorf("unknown language: %s", code)
	}
	a.settings.SetTargetLang(l)
	return nil
}

func (a *TranslateAPI) SwapLanguages() { a.settings.SwapLanguages() }

type LangOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

func (a *TranslateAPI) Languages() []LangOption {
	out := make([]LangOption, 0, len(domain.TranslateLangs))
	for _, l := range domain.TranslateLangs {
		out = append(out, LangOption{Code: string(l), Label: l.Label()})
	}
	return out
}

// State returns the current translation state snapshot for initial render;
// subsequent updates arrive over the state change event.
func (a *TranslateAPI) State() state.TranslateState { return a.store.State() }
