package main

import (
	"context"

	"github.com/bestony/mintranslate/internal/state"
	"github.com/bestony/mintranslate/internal/usecase/settings"
	"github.com/bestony/mintranslate/internal/usecase/translate"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App struct
type App struct {
	ctx context.Context

	store        *state.Store
	settings     *settings.Service
	orchestrator *translate.Orchestrator

	unsubscribe func()
}

// NewApp creates a new App application struct
func NewApp(store *state.Store, svc *settings.Service, orch *translate.Orchestrator) *App {
	return &App{store: store, settings: svc, orchestrator: orch}
}

// startup is called when the app starts. The context is saved so we can call
// the runtime methods, persisted settings are loaded into the state store, and
// the translation effects loop begins.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	// Relay every state transition to the frontend before any hydration runs
	// so the first render already sees restored settings.
	a.unsubscribe = a.store.Subscribe(func(cur, prev state.TranslateState) {
		runtime.EventsEmit(a.ctx, "translate:state", cur)
	})

	a.settings.HydrateProviders()
	a.settings.HydrateLangPair()
	if err := a.settings.HydrateSystemPrompt(ctx); err != nil {
		runtime.LogErrorf(a.ctx, "load system prompt: %v", err)
	}

	a.orchestrator.Start()
}

// shutdown stops the effects loop and detaches the frontend relay.
func (a *App) shutdown(ctx context.Context) {
	a.orchestrator.Stop()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}
